// Package thumbnails provides the resize capability consumed by the
// thumbnail pipeline.
package thumbnails

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrUnsupportedImage is returned for payloads that cannot be decoded.
var ErrUnsupportedImage = errors.New("unsupported image")

// Resizer renders a copy of an encoded image scaled to width, preserving the
// aspect ratio.
type Resizer interface {
	Resize(ctx context.Context, data []byte, width int) ([]byte, error)
}

// ImagingResizer implements Resizer with github.com/disintegration/imaging.
// The output keeps the source format when it is one imaging can encode and
// falls back to PNG otherwise.
type ImagingResizer struct {
	filter imaging.ResampleFilter
}

// NewImagingResizer returns a resizer using the Lanczos filter.
func NewImagingResizer() *ImagingResizer {
	return &ImagingResizer{filter: imaging.Lanczos}
}

func (r *ImagingResizer) Resize(ctx context.Context, data []byte, width int) ([]byte, error) {
	if width <= 0 {
		return nil, fmt.Errorf("invalid width %d", width)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, formatName, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	dst := imaging.Resize(src, width, 0, r.filter)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format, err := imaging.FormatFromExtension(formatName)
	if err != nil {
		format = imaging.PNG
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, format); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

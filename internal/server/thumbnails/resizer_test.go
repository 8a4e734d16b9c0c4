package thumbnails

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImagingResizer_ScalesToWidthKeepingAspect(t *testing.T) {
	r := NewImagingResizer()
	src := encodePNG(t, 800, 400)

	for _, width := range []int{500, 250, 100} {
		out, err := r.Resize(context.Background(), src, width)
		require.NoError(t, err)

		cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, "png", format)
		assert.Equal(t, width, cfg.Width)
		assert.Equal(t, width/2, cfg.Height)
	}
}

func TestImagingResizer_KeepsJPEG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 300, 300))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	out, err := NewImagingResizer().Resize(context.Background(), buf.Bytes(), 100)
	require.NoError(t, err)

	_, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestImagingResizer_RejectsGarbage(t *testing.T) {
	_, err := NewImagingResizer().Resize(context.Background(), []byte("not an image"), 100)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestImagingResizer_RejectsBadWidth(t *testing.T) {
	_, err := NewImagingResizer().Resize(context.Background(), encodePNG(t, 10, 10), 0)
	assert.Error(t, err)
}

func TestImagingResizer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewImagingResizer().Resize(ctx, encodePNG(t, 10, 10), 5)
	assert.ErrorIs(t, err, context.Canceled)
}

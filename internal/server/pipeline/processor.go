package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/blobstore"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/thumbnails"
	"github.com/google/uuid"
)

// FileSource resolves the catalog record a job refers to.
type FileSource interface {
	GetOwned(ctx context.Context, id, ownerID string) (*models.File, error)
}

// Processor renders every configured width for one job. A job always
// regenerates all widths, so running it twice leaves the same renditions.
type Processor struct {
	files   FileSource
	blobs   blobstore.Store
	resizer thumbnails.Resizer
	widths  []int
	logger  logging.Logger
}

func NewProcessor(files FileSource, blobs blobstore.Store, resizer thumbnails.Resizer, logger logging.Logger) *Processor {
	return &Processor{
		files:   files,
		blobs:   blobs,
		resizer: resizer,
		widths:  common.ThumbnailWidths,
		logger:  logger.With("module", "thumbnail_processor"),
	}
}

func validateJob(job models.ThumbnailJob) error {
	if job.FileID == "" {
		return fmt.Errorf("%w: missing fileId", common.ErrInvalidJob)
	}
	if job.OwnerID == "" {
		return fmt.Errorf("%w: missing userId", common.ErrInvalidJob)
	}
	if _, err := uuid.Parse(job.FileID); err != nil {
		return fmt.Errorf("%w: malformed fileId %q", common.ErrInvalidJob, job.FileID)
	}
	return nil
}

// Process runs job to completion. Errors wrapped with Permanent must not be
// retried; all others are transient.
func (p *Processor) Process(ctx context.Context, job models.ThumbnailJob) error {
	if err := validateJob(job); err != nil {
		return Permanent(err)
	}

	f, err := p.files.GetOwned(ctx, job.FileID, job.OwnerID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return Permanent(fmt.Errorf("%w: %s", common.ErrFileNotFound, job.FileID))
		}
		return fmt.Errorf("fetch file: %w", err)
	}
	if f.Type != models.FileTypeImage || f.BlobRef == "" {
		return Permanent(fmt.Errorf("%w: file %s is not an image", common.ErrInvalidJob, f.ID))
	}

	src, err := p.blobs.Get(ctx, f.BlobRef)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return Permanent(fmt.Errorf("%w: source blob of %s is missing", common.ErrFileNotFound, f.ID))
		}
		return fmt.Errorf("read source: %w", err)
	}

	for _, width := range p.widths {
		out, err := p.resizer.Resize(ctx, src, width)
		if err != nil {
			return fmt.Errorf("render %d: %w", width, err)
		}
		ref, err := p.blobs.PutDerived(ctx, f.BlobRef, strconv.Itoa(width), out)
		if err != nil {
			return fmt.Errorf("store %d: %w", width, err)
		}
		p.logger.Debug(ctx, "thumbnail stored", "file_id", f.ID, "width", width, "ref", ref)
	}

	return nil
}

package services

import (
	"context"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/blobstore"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
)

// FileCatalog is the part of Catalog the uploader depends on.
type FileCatalog interface {
	CheckParent(ctx context.Context, parentID string) error
	Create(ctx context.Context, in NewFile) (*models.File, error)
}

// ThumbnailQueue accepts thumbnail jobs for uploaded images.
type ThumbnailQueue interface {
	Enqueue(ctx context.Context, job models.ThumbnailJob) (*models.Job, error)
}

// UploadRequest is one upload as received from a client. An empty ParentID
// means root.
type UploadRequest struct {
	OwnerID  string
	Name     string
	Type     models.FileType
	ParentID string
	IsPublic bool
	Data     []byte
}

// UploadResult carries the created record. Warnings lists non-fatal problems,
// such as a thumbnail job that could not be queued.
type UploadResult struct {
	File            *models.File
	ThumbnailQueued bool
	Warnings        []string
}

const warnThumbnailNotQueued = "thumbnail generation could not be scheduled"

// Uploader turns upload requests into a stored blob, a catalog record and,
// for images, a thumbnail job.
type Uploader struct {
	catalog FileCatalog
	blobs   blobstore.Store
	queue   ThumbnailQueue
	logger  logging.Logger
}

func NewUploader(catalog FileCatalog, blobs blobstore.Store, queue ThumbnailQueue, logger logging.Logger) *Uploader {
	return &Uploader{
		catalog: catalog,
		blobs:   blobs,
		queue:   queue,
		logger:  logger.With("module", "uploader"),
	}
}

func validateUpload(req UploadRequest) error {
	if req.Name == "" {
		return common.ErrMissingName
	}
	if !req.Type.Valid() {
		return common.ErrMissingType
	}
	if req.Type.HasContent() && len(req.Data) == 0 {
		return common.ErrMissingData
	}
	return nil
}

// Upload validates the request before any side effect, resolves the parent,
// writes the blob, records the file and finally queues thumbnails for images.
// The blob is written before the record so a record never points at missing
// content. If recording fails the blob is left behind as an orphan.
func (u *Uploader) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if err := validateUpload(req); err != nil {
		return nil, err
	}

	if err := u.catalog.CheckParent(ctx, req.ParentID); err != nil {
		return nil, err
	}

	in := NewFile{
		OwnerID:  req.OwnerID,
		Name:     req.Name,
		Type:     req.Type,
		IsPublic: req.IsPublic,
		ParentID: req.ParentID,
	}

	if req.Type.HasContent() {
		ref, err := u.blobs.Put(ctx, req.Data)
		if err != nil {
			return nil, err
		}
		in.BlobRef = ref
	}

	f, err := u.catalog.Create(ctx, in)
	if err != nil {
		if in.BlobRef != "" {
			u.logger.Warn(ctx, "orphan blob left after failed catalog write",
				"blob_ref", in.BlobRef, "owner_id", req.OwnerID, "error", err)
		}
		return nil, err
	}

	res := &UploadResult{File: f}

	if f.Type == models.FileTypeImage {
		job, err := u.queue.Enqueue(ctx, models.ThumbnailJob{FileID: f.ID, OwnerID: f.OwnerID})
		if err != nil {
			u.logger.Error(ctx, "failed to enqueue thumbnail job", "file_id", f.ID, "error", err)
			res.Warnings = append(res.Warnings, warnThumbnailNotQueued)
		} else {
			res.ThumbnailQueued = true
			u.logger.Debug(ctx, "thumbnail job queued", "file_id", f.ID, "job_id", job.ID)
		}
	}

	return res, nil
}

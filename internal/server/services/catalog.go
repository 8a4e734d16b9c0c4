package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/dbx"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/files"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// NewFile describes a record to be created by Catalog.Create.
type NewFile struct {
	OwnerID  string
	Name     string
	Type     models.FileType
	IsPublic bool
	ParentID string
	BlobRef  string
}

// Catalog is the authoritative store of file metadata. Records are created
// once and never updated or deleted.
type Catalog struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	pageSize    int
}

func NewCatalog(db *sql.DB, repomanager repomanager.RepositoryManager, pageSize int) *Catalog {
	if pageSize <= 0 {
		pageSize = common.DefaultPageSize
	}
	return &Catalog{
		db:          db,
		repomanager: repomanager,
		pageSize:    pageSize,
	}
}

// PageSize is the page size used when callers do not pass a valid one.
func (c *Catalog) PageSize() int {
	return c.pageSize
}

func validateNewFile(in NewFile) error {
	if in.Name == "" {
		return common.ErrMissingName
	}
	if !in.Type.Valid() {
		return common.ErrMissingType
	}
	if in.Type.HasContent() && in.BlobRef == "" {
		return common.ErrMissingData
	}
	if !in.Type.HasContent() && in.BlobRef != "" {
		return fmt.Errorf("%w: folder cannot reference a blob", common.ErrValidation)
	}
	return nil
}

func isRoot(parentID string) bool {
	return parentID == "" || parentID == common.RootParentID
}

// lookupParent loads the parent folder. Ids that are not UUIDs cannot exist.
func lookupParent(ctx context.Context, repo files.Repository, parentID string) error {
	if isRoot(parentID) {
		return nil
	}
	if _, err := uuid.Parse(parentID); err != nil {
		return common.ErrParentNotFound
	}

	parent, err := repo.GetByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrParentNotFound
		}
		return err
	}
	if !parent.IsFolder() {
		return common.ErrParentNotFolder
	}
	return nil
}

// CheckParent reports whether parentID may be used as the parent of a new
// record: root, or an existing folder.
func (c *Catalog) CheckParent(ctx context.Context, parentID string) error {
	return lookupParent(ctx, c.repomanager.Files(c.db), parentID)
}

// Create validates and persists a new record with a freshly assigned id.
// The parent check and the insert share one transaction.
func (c *Catalog) Create(ctx context.Context, in NewFile) (*models.File, error) {
	if err := validateNewFile(in); err != nil {
		return nil, err
	}

	parentID := in.ParentID
	if isRoot(parentID) {
		parentID = common.RootParentID
	}

	return dbx.WithTxResult(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.File, error) {
		repo := c.repomanager.Files(tx)

		if err := lookupParent(ctx, repo, parentID); err != nil {
			return nil, err
		}

		f := &models.File{
			ID:       uuid.NewString(),
			OwnerID:  in.OwnerID,
			Name:     in.Name,
			Type:     in.Type,
			IsPublic: in.IsPublic,
			ParentID: parentID,
			BlobRef:  in.BlobRef,
		}
		if err := repo.Create(ctx, f); err != nil {
			return nil, err
		}
		return f, nil
	})
}

func (c *Catalog) get(ctx context.Context, id string) (*models.File, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}
	return c.repomanager.Files(c.db).GetByID(ctx, id)
}

// GetByID returns the record when requesterID owns it or it is public.
// A record the requester may not see is reported as common.ErrorNotFound.
func (c *Catalog) GetByID(ctx context.Context, id, requesterID string) (*models.File, error) {
	f, err := c.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !f.VisibleTo(requesterID) {
		return nil, common.ErrorNotFound
	}
	return f, nil
}

// GetOwned is GetByID restricted to records owned by ownerID.
func (c *Catalog) GetOwned(ctx context.Context, id, ownerID string) (*models.File, error) {
	f, err := c.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.OwnerID != ownerID {
		return nil, common.ErrorNotFound
	}
	return f, nil
}

// List returns one page of ownerID's records under parentID in insertion
// order. A negative page is treated as 0 and a non-positive pageSize as the
// configured default. Pages past the end are empty.
func (c *Catalog) List(ctx context.Context, ownerID, parentID string, page, pageSize int) ([]*models.File, error) {
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 {
		pageSize = c.pageSize
	}
	if isRoot(parentID) {
		parentID = common.RootParentID
	}

	return c.repomanager.Files(c.db).List(ctx, ownerID, parentID, page*pageSize, pageSize)
}

// ParsePage converts a query value into a page number. Non-numeric and
// negative input yields 0.
func ParsePage(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

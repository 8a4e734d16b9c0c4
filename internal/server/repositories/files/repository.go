package files

import (
	"context"

	"github.com/dmitrijs2005/filesmanager/internal/server/models"
)

// Repository is the persistence contract the catalog requires: create,
// point lookup and a filtered, paginated listing in insertion order.
type Repository interface {
	// Create persists a fully populated record (ID included).
	Create(ctx context.Context, file *models.File) error
	// GetByID returns common.ErrorNotFound when no such record exists.
	GetByID(ctx context.Context, id string) (*models.File, error)
	// List returns the owner's records under parentID, skipping offset rows.
	List(ctx context.Context, ownerID, parentID string, offset, limit int) ([]*models.File, error)
}

package users

import (
	"context"

	"github.com/dmitrijs2005/filesmanager/internal/server/models"
)

// Repository stores registered accounts.
type Repository interface {
	// Create inserts user (ID included) and returns common.ErrAlreadyExists
	// when the email is taken.
	Create(ctx context.Context, user *models.User) error
	// GetByEmail returns common.ErrorNotFound for an unknown email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

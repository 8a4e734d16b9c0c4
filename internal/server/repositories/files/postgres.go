// Package files provides the PostgreSQL-backed catalog repository.
package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/dbx"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the record and fills CreatedAt from the database clock.
func (r *PostgresRepository) Create(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (id, user_id, name, type, is_public, parent_id, blob_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		file.ID, file.OwnerID, file.Name, string(file.Type), file.IsPublic, file.ParentID, dbx.NullString(file.BlobRef),
	).Scan(&file.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// GetByID returns the record with the given id or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := `
		SELECT id, user_id, name, type, is_public, parent_id, blob_ref, created_at
		FROM files
		WHERE id = $1
	`
	f, err := scanFile(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select file: %w", err)
	}
	return f, nil
}

// List returns one page of the owner's records under parentID ordered by
// insertion sequence.
func (r *PostgresRepository) List(ctx context.Context, ownerID, parentID string, offset, limit int) ([]*models.File, error) {
	query := `
		SELECT id, user_id, name, type, is_public, parent_id, blob_ref, created_at
		FROM files
		WHERE user_id = $1 AND parent_id = $2
		ORDER BY seq
		OFFSET $3 LIMIT $4
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID, parentID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	result := make([]*models.File, 0, limit)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(s scanner) (*models.File, error) {
	var (
		f       models.File
		typ     string
		blobRef sql.NullString
	)
	if err := s.Scan(&f.ID, &f.OwnerID, &f.Name, &typ, &f.IsPublic, &f.ParentID, &blobRef, &f.CreatedAt); err != nil {
		return nil, err
	}
	f.Type = models.FileType(typ)
	f.BlobRef = dbx.StringOrEmpty(blobRef)
	return &f, nil
}

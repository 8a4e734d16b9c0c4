package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/dbx"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/google/uuid"
)

const jobColumns = `id, file_id, user_id, status, attempts, last_error, visible_at, created_at, updated_at`

// PostgresRepository implements Repository over a dbx.DBTX. Concurrent
// workers never receive the same job because Claim locks with SKIP LOCKED.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Enqueue(ctx context.Context, job models.ThumbnailJob) (*models.Job, error) {
	query := `
		INSERT INTO thumbnail_jobs (id, file_id, user_id, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING ` + jobColumns
	j, err := scanJob(r.db.QueryRowContext(ctx, query, uuid.NewString(), job.FileID, job.OwnerID))
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}
	return j, nil
}

func (r *PostgresRepository) Claim(ctx context.Context, visibility time.Duration) (*models.Job, error) {
	query := `
		UPDATE thumbnail_jobs SET
			status = 'running',
			attempts = attempts + 1,
			visible_at = now() + $1::double precision * interval '1 millisecond',
			updated_at = now()
		WHERE id = (
			SELECT id FROM thumbnail_jobs
			WHERE status IN ('pending', 'running') AND visible_at <= now()
			ORDER BY visible_at, created_at
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING ` + jobColumns
	j, err := scanJob(r.db.QueryRowContext(ctx, query, visibility.Milliseconds()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}
	return j, nil
}

func (r *PostgresRepository) Complete(ctx context.Context, id string) error {
	query := `UPDATE thumbnail_jobs SET status = 'done', last_error = '', updated_at = now() WHERE id = $1`
	return r.exec(ctx, query, id)
}

func (r *PostgresRepository) Retry(ctx context.Context, id string, reason string, delay time.Duration) error {
	query := `
		UPDATE thumbnail_jobs SET
			status = 'pending',
			last_error = $2,
			visible_at = now() + $3::double precision * interval '1 millisecond',
			updated_at = now()
		WHERE id = $1`
	return r.exec(ctx, query, id, reason, delay.Milliseconds())
}

func (r *PostgresRepository) Fail(ctx context.Context, id string, reason string) error {
	query := `UPDATE thumbnail_jobs SET status = 'failed', last_error = $2, updated_at = now() WHERE id = $1`
	return r.exec(ctx, query, id, reason)
}

func (r *PostgresRepository) Bury(ctx context.Context, id string, reason string) error {
	query := `UPDATE thumbnail_jobs SET status = 'dead', last_error = $2, updated_at = now() WHERE id = $1`
	return r.exec(ctx, query, id, reason)
}

func (r *PostgresRepository) ListDead(ctx context.Context, ownerID string, limit int) ([]*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM thumbnail_jobs
		WHERE status = 'dead' AND user_id = $1
		ORDER BY updated_at DESC
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select jobs: %w", err)
	}
	defer rows.Close()

	var result []*models.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// exec runs a single-row status update; exactly one row must be affected.
func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (*models.Job, error) {
	var (
		j      models.Job
		status string
	)
	err := s.Scan(&j.ID, &j.Payload.FileID, &j.Payload.OwnerID, &status, &j.Attempts, &j.LastError, &j.VisibleAt, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	j.Status = models.JobStatus(status)
	return &j, nil
}

// Package jobs declares the durable thumbnail queue contract and its
// PostgreSQL implementation.
package jobs

import (
	"context"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/server/models"
)

// Repository is an at-least-once queue with a visibility timeout.
type Repository interface {
	// Enqueue stores a new pending job.
	Enqueue(ctx context.Context, job models.ThumbnailJob) (*models.Job, error)

	// Claim hands out one visible job, marks it running, increments its
	// attempts and hides it for visibility. It returns common.ErrorNotFound
	// when nothing is ready.
	Claim(ctx context.Context, visibility time.Duration) (*models.Job, error)

	// Complete marks the job done.
	Complete(ctx context.Context, id string) error

	// Retry makes the job visible again after delay.
	Retry(ctx context.Context, id string, reason string, delay time.Duration) error

	// Fail records a permanent failure; the job is never handed out again.
	Fail(ctx context.Context, id string, reason string) error

	// Bury parks a job whose retry budget is exhausted.
	Bury(ctx context.Context, id string, reason string) error

	// ListDead returns ownerID's most recently buried jobs.
	ListDead(ctx context.Context, ownerID string, limit int) ([]*models.Job, error)
}

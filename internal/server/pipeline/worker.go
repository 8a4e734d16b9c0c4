package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/jobs"
	"golang.org/x/sync/errgroup"
)

// JobProcessor handles the payload of one job.
type JobProcessor interface {
	Process(ctx context.Context, job models.ThumbnailJob) error
}

// WorkerConfig tunes the worker loop.
type WorkerConfig struct {
	// Concurrency is the number of jobs handled in parallel.
	Concurrency int
	// MaxAttempts is the number of deliveries before a job is buried.
	MaxAttempts int
	// Visibility hides a claimed job from other workers. A job whose worker
	// dies reappears after this long.
	Visibility time.Duration
	// PollInterval is the idle sleep when the queue is empty.
	PollInterval time.Duration
	// JobTimeout bounds a single processing attempt.
	JobTimeout time.Duration
}

// Worker claims thumbnail jobs from the queue and applies the retry budget:
// permanent failures are failed at once, transient ones are retried with
// exponential backoff until MaxAttempts deliveries, then buried.
type Worker struct {
	queue        jobs.Repository
	processor    JobProcessor
	cfg          WorkerConfig
	buildBackoff func() backoff.BackOff
	metrics      *Metrics
	logger       logging.Logger
}

func NewWorker(queue jobs.Repository, processor JobProcessor, cfg WorkerConfig, metrics *Metrics, logger logging.Logger) *Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &Worker{
		queue:     queue,
		processor: processor,
		cfg:       cfg,
		buildBackoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 2 * time.Second
			b.MaxInterval = 5 * time.Minute
			b.MaxElapsedTime = 0
			return b
		},
		metrics: metrics,
		logger:  logger.With("module", "thumbnail_worker"),
	}
}

// Run starts Concurrency loops and blocks until ctx is cancelled or a loop
// fails on a queue error it cannot recover from.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info(ctx, "Starting thumbnail worker", "concurrency", w.cfg.Concurrency, "max_attempts", w.cfg.MaxAttempts)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.cfg.Concurrency; i++ {
		g.Go(func() error { return w.loop(ctx) })
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	w.logger.Info(context.Background(), "Thumbnail worker stopped")
	return err
}

func (w *Worker) loop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		handled, err := w.RunOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Error(ctx, "queue error", "error", err)
		}
		if handled && err == nil {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.cfg.PollInterval):
		}
	}
}

// RunOnce claims and handles at most one job. It reports whether a job was
// claimed.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	job, err := w.queue.Claim(ctx, w.cfg.Visibility)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, w.handle(ctx, job)
}

func (w *Worker) handle(ctx context.Context, job *models.Job) error {
	logger := w.logger.With("job_id", job.ID, "file_id", job.Payload.FileID, "attempt", job.Attempts)
	started := time.Now()

	// A claim past the budget means earlier deliveries never reported back,
	// for example because the worker crashed while decoding the image.
	if job.Attempts > w.cfg.MaxAttempts {
		reason := fmt.Sprintf("%v: %d deliveries without a result", ErrBudgetExhausted, job.Attempts-1)
		if job.LastError != "" {
			reason += "; last error: " + job.LastError
		}
		w.metrics.observe(outcomeDead, 0)
		logger.Error(ctx, "thumbnail job is dead, retry budget exhausted before processing")
		return w.queue.Bury(ctx, job.ID, reason)
	}

	jobCtx := ctx
	if w.cfg.JobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, w.cfg.JobTimeout)
		defer cancel()
	}

	perr := w.processor.Process(jobCtx, job.Payload)

	// Shutting down: leave the job claimed so it is redelivered after the
	// visibility timeout.
	if ctx.Err() != nil {
		return ctx.Err()
	}

	switch {
	case perr == nil:
		w.metrics.observe(outcomeDone, time.Since(started))
		logger.Info(ctx, "thumbnails generated")
		return w.queue.Complete(ctx, job.ID)

	case IsPermanent(perr):
		w.metrics.observe(outcomeFailed, time.Since(started))
		logger.Warn(ctx, "thumbnail job failed permanently", "error", perr)
		return w.queue.Fail(ctx, job.ID, perr.Error())

	case job.Attempts >= w.cfg.MaxAttempts:
		w.metrics.observe(outcomeDead, time.Since(started))
		logger.Error(ctx, "thumbnail job is dead, retry budget exhausted", "error", perr)
		return w.queue.Bury(ctx, job.ID, perr.Error())

	default:
		delay := w.retryDelay(job.Attempts)
		w.metrics.observe(outcomeRetried, time.Since(started))
		logger.Warn(ctx, "thumbnail job will be retried", "error", perr, "delay", delay)
		return w.queue.Retry(ctx, job.ID, perr.Error(), delay)
	}
}

// retryDelay returns the backoff interval after the given number of attempts.
func (w *Worker) retryDelay(attempts int) time.Duration {
	b := w.buildBackoff()
	b.Reset()
	delay := time.Duration(0)
	for i := 0; i < attempts; i++ {
		next := b.NextBackOff()
		if next == backoff.Stop {
			break
		}
		delay = next
	}
	return delay
}

// DeadJobs lists ownerID's most recently buried jobs. The limit is clamped to
// [1, 500] with 50 used for non-positive values.
func DeadJobs(ctx context.Context, queue jobs.Repository, ownerID string, limit int) ([]*models.Job, error) {
	switch {
	case limit <= 0:
		limit = 50
	case limit > 500:
		limit = 500
	}
	return queue.ListDead(ctx, ownerID, limit)
}

package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/repositories/jobs"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memQueue mimics the claim semantics of the PostgreSQL queue: a claim
// increments attempts and hides the job; Retry makes it visible at once.
type memQueue struct {
	jobs.Repository
	mu      sync.Mutex
	jobs    []*models.Job
	retries []time.Duration
	claims  int
}

func (q *memQueue) add(payload models.ThumbnailJob) *models.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	j := &models.Job{ID: payload.FileID, Payload: payload, Status: models.JobPending}
	q.jobs = append(q.jobs, j)
	return j
}

func (q *memQueue) Claim(_ context.Context, _ time.Duration) (*models.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, j := range q.jobs {
		if j.Status == models.JobPending {
			j.Status = models.JobRunning
			j.Attempts++
			q.claims++
			cp := *j
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (q *memQueue) set(id string, status models.JobStatus, reason string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, j := range q.jobs {
		if j.ID == id {
			j.Status = status
			j.LastError = reason
			return nil
		}
	}
	return common.ErrorNotFound
}

func (q *memQueue) Complete(_ context.Context, id string) error {
	return q.set(id, models.JobDone, "")
}

func (q *memQueue) Retry(_ context.Context, id, reason string, delay time.Duration) error {
	q.mu.Lock()
	q.retries = append(q.retries, delay)
	q.mu.Unlock()
	return q.set(id, models.JobPending, reason)
}

func (q *memQueue) Fail(_ context.Context, id, reason string) error {
	return q.set(id, models.JobFailed, reason)
}

func (q *memQueue) Bury(_ context.Context, id, reason string) error {
	return q.set(id, models.JobDead, reason)
}

func (q *memQueue) ListDead(_ context.Context, ownerID string, limit int) ([]*models.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []*models.Job
	for _, j := range q.jobs {
		if j.Status == models.JobDead && j.Payload.OwnerID == ownerID && len(out) < limit {
			out = append(out, j)
		}
	}
	return out, nil
}

func (q *memQueue) status(id string) models.JobStatus {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, j := range q.jobs {
		if j.ID == id {
			return j.Status
		}
	}
	return ""
}

type funcProcessor func(ctx context.Context, job models.ThumbnailJob) error

func (f funcProcessor) Process(ctx context.Context, job models.ThumbnailJob) error {
	return f(ctx, job)
}

func counterValue(t *testing.T, m *Metrics, outcome string) float64 {
	t.Helper()
	var pb dto.Metric
	require.NoError(t, m.outcomes.WithLabelValues(outcome).Write(&pb))
	return pb.GetCounter().GetValue()
}

func newTestWorker(q *memQueue, p JobProcessor, maxAttempts int) (*Worker, *Metrics) {
	m := MustNewMetrics(prometheus.NewRegistry())
	w := NewWorker(q, p, WorkerConfig{
		Concurrency:  2,
		MaxAttempts:  maxAttempts,
		Visibility:   time.Minute,
		PollInterval: 5 * time.Millisecond,
		JobTimeout:   time.Second,
	}, m, logging.Discard())
	return w, m
}

func drain(t *testing.T, w *Worker) {
	t.Helper()
	for i := 0; i < 100; i++ {
		handled, err := w.RunOnce(context.Background())
		require.NoError(t, err)
		if !handled {
			return
		}
	}
	t.Fatal("queue did not drain")
}

func TestWorker_SuccessCompletes(t *testing.T) {
	q := &memQueue{}
	q.add(models.ThumbnailJob{FileID: "f1", OwnerID: "u1"})

	w, m := newTestWorker(q, funcProcessor(func(context.Context, models.ThumbnailJob) error { return nil }), 5)
	drain(t, w)

	assert.Equal(t, models.JobDone, q.status("f1"))
	assert.Equal(t, 1.0, counterValue(t, m, outcomeDone))
}

func TestWorker_PermanentFailureIsNeverRetried(t *testing.T) {
	q := &memQueue{}
	q.add(models.ThumbnailJob{FileID: "f1", OwnerID: "u1"})

	calls := 0
	w, m := newTestWorker(q, funcProcessor(func(context.Context, models.ThumbnailJob) error {
		calls++
		return Permanent(common.ErrFileNotFound)
	}), 5)
	drain(t, w)

	assert.Equal(t, 1, calls)
	assert.Equal(t, models.JobFailed, q.status("f1"))
	assert.Empty(t, q.retries)
	assert.Equal(t, 1.0, counterValue(t, m, outcomeFailed))
}

func TestWorker_TransientFailureRetriesThenDies(t *testing.T) {
	q := &memQueue{}
	q.add(models.ThumbnailJob{FileID: "f1", OwnerID: "u1"})

	w, m := newTestWorker(q, funcProcessor(func(context.Context, models.ThumbnailJob) error {
		return errors.New("disk full")
	}), 3)
	drain(t, w)

	assert.Equal(t, 3, q.claims)
	assert.Equal(t, models.JobDead, q.status("f1"))
	assert.Len(t, q.retries, 2)
	assert.Equal(t, 2.0, counterValue(t, m, outcomeRetried))
	assert.Equal(t, 1.0, counterValue(t, m, outcomeDead))

	dead, err := DeadJobs(context.Background(), q, "u1", 0)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, "disk full", dead[0].LastError)
}

func TestWorker_TransientThenSuccess(t *testing.T) {
	q := &memQueue{}
	q.add(models.ThumbnailJob{FileID: "f1", OwnerID: "u1"})

	calls := 0
	w, _ := newTestWorker(q, funcProcessor(func(context.Context, models.ThumbnailJob) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	}), 5)
	drain(t, w)

	assert.Equal(t, 3, calls)
	assert.Equal(t, models.JobDone, q.status("f1"))
}

func TestWorker_JobTimeoutIsTransient(t *testing.T) {
	q := &memQueue{}
	q.add(models.ThumbnailJob{FileID: "f1", OwnerID: "u1"})

	w, _ := newTestWorker(q, funcProcessor(func(ctx context.Context, _ models.ThumbnailJob) error {
		<-ctx.Done()
		return ctx.Err()
	}), 5)
	w.cfg.JobTimeout = 10 * time.Millisecond

	handled, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, models.JobPending, q.status("f1"))
	assert.Len(t, q.retries, 1)
}

func TestWorker_ShutdownLeavesJobClaimed(t *testing.T) {
	q := &memQueue{}
	q.add(models.ThumbnailJob{FileID: "f1", OwnerID: "u1"})

	ctx, cancel := context.WithCancel(context.Background())
	w, _ := newTestWorker(q, funcProcessor(func(context.Context, models.ThumbnailJob) error {
		cancel()
		return context.Canceled
	}), 5)

	_, err := w.RunOnce(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, models.JobRunning, q.status("f1"))
}

func TestWorker_RunProcessesConcurrentlyAndStops(t *testing.T) {
	q := &memQueue{}
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		q.add(models.ThumbnailJob{FileID: id, OwnerID: "u1"})
	}

	var mu sync.Mutex
	done := map[string]bool{}
	w, _ := newTestWorker(q, funcProcessor(func(_ context.Context, job models.ThumbnailJob) error {
		mu.Lock()
		done[job.FileID] = true
		mu.Unlock()
		return nil
	}), 5)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(done) == 5
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_RetryDelayGrows(t *testing.T) {
	w, _ := newTestWorker(&memQueue{}, nil, 5)
	w.buildBackoff = func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = time.Second
		b.Multiplier = 2
		b.RandomizationFactor = 0
		b.MaxInterval = 5 * time.Second
		b.MaxElapsedTime = 0
		return b
	}

	assert.Equal(t, time.Second, w.retryDelay(1))
	assert.Equal(t, 2*time.Second, w.retryDelay(2))
	assert.Equal(t, 4*time.Second, w.retryDelay(3))
	assert.Equal(t, 5*time.Second, w.retryDelay(4))
}

func TestDeadJobsClampsLimit(t *testing.T) {
	q := &limitSpy{}
	for _, tc := range []struct{ in, want int }{{0, 50}, {-1, 50}, {10, 10}, {10000, 500}} {
		_, err := DeadJobs(context.Background(), q, "u1", tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, q.limit)
		assert.Equal(t, "u1", q.owner)
	}
}

type limitSpy struct {
	jobs.Repository
	owner string
	limit int
}

func (l *limitSpy) ListDead(_ context.Context, ownerID string, limit int) ([]*models.Job, error) {
	l.owner, l.limit = ownerID, limit
	return nil, nil
}

func TestMetrics_ReuseRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := MustNewMetrics(reg)
	b := MustNewMetrics(reg)

	a.observe(outcomeDone, time.Millisecond)
	b.observe(outcomeDone, time.Millisecond)

	assert.Equal(t, 2.0, counterValue(t, a, outcomeDone))
}

func TestWorker_BuriesJobThatKeptCrashingWorker(t *testing.T) {
	q := &memQueue{}
	j := q.add(models.ThumbnailJob{FileID: "f1", OwnerID: "u1"})
	// three deliveries were claimed and never reported back
	j.Attempts = 3
	j.LastError = "resize: out of memory"

	w, m := newTestWorker(q, funcProcessor(func(context.Context, models.ThumbnailJob) error {
		t.Fatal("a job over its budget must not be processed")
		return nil
	}), 3)

	handled, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	require.True(t, handled)

	assert.Equal(t, models.JobDead, q.status("f1"))
	assert.Equal(t, 1.0, counterValue(t, m, outcomeDead))

	dead, err := DeadJobs(context.Background(), q, "u1", 0)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Contains(t, dead[0].LastError, ErrBudgetExhausted.Error())
	assert.Contains(t, dead[0].LastError, "out of memory")
}

func TestWorker_LastAttemptWithinBudgetStillRuns(t *testing.T) {
	q := &memQueue{}
	j := q.add(models.ThumbnailJob{FileID: "f1", OwnerID: "u1"})
	j.Attempts = 2

	calls := 0
	w, _ := newTestWorker(q, funcProcessor(func(context.Context, models.ThumbnailJob) error {
		calls++
		return nil
	}), 3)

	handled, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	require.True(t, handled)
	assert.Equal(t, 1, calls)
	assert.Equal(t, models.JobDone, q.status("f1"))
}

// Package pipeline turns queued thumbnail jobs into derived blobs. The
// Processor handles a single job; the Worker claims jobs from the queue,
// runs them and applies the retry budget.
package pipeline

import (
	"errors"

	"github.com/cenkalti/backoff/v4"
)

// ErrBudgetExhausted is recorded on jobs buried without a final attempt.
var ErrBudgetExhausted = errors.New("retry budget exhausted")

// PermanentError marks a job failure that retrying cannot fix.
type PermanentError = backoff.PermanentError

// Permanent wraps err so the worker fails the job instead of retrying it.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// IsPermanent reports whether err, or anything it wraps, is permanent.
func IsPermanent(err error) bool {
	var perm *PermanentError
	return errors.As(err, &perm)
}

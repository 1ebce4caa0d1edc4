package sync

import (
	"errors"
	"fmt"
	"time"
)

// ErrTargetsFailed marks a run that completed with at least one failed
// target. main translates it into a dedicated exit code so schedulers can
// tell "partial failure" apart from "could not start".
var ErrTargetsFailed = errors.New("one or more sync targets failed")

// TransientError wraps a network-level or 5xx failure that is worth
// retrying with backoff.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient api failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// RateLimitError signals an explicit quota-exceeded response (HTTP 429).
// RetryAfter is zero when the platform did not suggest a delay.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
	}
	return "rate limit exceeded"
}

// APIError is a non-retryable client error (4xx other than 429). It aborts
// the current target's fetch but never the whole run.
type APIError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api request failed: status=%d url=%s message=%s", e.StatusCode, e.URL, e.Message)
}

// DataContractViolation reports an external record that does not satisfy
// the documented contract, typically an enum value outside the closed set.
// It fails the single record, not the batch.
type DataContractViolation struct {
	Kind  Kind
	Field string
	Value string
}

func (e *DataContractViolation) Error() string {
	return fmt.Sprintf("data contract violation: kind=%s field=%s value=%q", e.Kind, e.Field, e.Value)
}

// ReferentialIntegrityError reports a child record whose parent was never
// resolved. The enclosing hierarchy unit is rolled back.
type ReferentialIntegrityError struct {
	Kind   Kind
	Parent Kind
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("referential integrity: %s record has no resolved %s parent", e.Kind, e.Parent)
}

// StorageConstraintError surfaces a unique or foreign-key violation at
// write time. Reconcilers treat it as a concurrent-writer collision and
// retry the lookup once before reporting a unit failure.
type StorageConstraintError struct {
	Kind Kind
	Err  error
}

func (e *StorageConstraintError) Error() string {
	return fmt.Sprintf("storage constraint violated for %s: %v", e.Kind, e.Err)
}

func (e *StorageConstraintError) Unwrap() error { return e.Err }

package sync

import (
	"errors"
	"fmt"
)

// Outcome classifies one reconciliation result.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
)

// Counts accumulates reconciliation outcomes for one entity kind.
type Counts struct {
	Created   int
	Updated   int
	Unchanged int
	Failed    int
}

// Stats maps entity kinds to their outcome counts within one unit or run.
type Stats map[Kind]*Counts

func NewStats() Stats { return make(Stats) }

func (s Stats) Record(kind Kind, outcome Outcome) {
	c := s.counts(kind)
	switch outcome {
	case OutcomeCreated:
		c.Created++
	case OutcomeUpdated:
		c.Updated++
	case OutcomeUnchanged:
		c.Unchanged++
	}
}

func (s Stats) RecordFailure(kind Kind) {
	s.counts(kind).Failed++
}

func (s Stats) counts(kind Kind) *Counts {
	c, ok := s[kind]
	if !ok {
		c = &Counts{}
		s[kind] = c
	}
	return c
}

// Merge folds other into s.
func (s Stats) Merge(other Stats) {
	for kind, c := range other {
		dst := s.counts(kind)
		dst.Created += c.Created
		dst.Updated += c.Updated
		dst.Unchanged += c.Unchanged
		dst.Failed += c.Failed
	}
}

func (s Stats) Totals() Counts {
	var total Counts
	for _, c := range s {
		total.Created += c.Created
		total.Updated += c.Updated
		total.Unchanged += c.Unchanged
		total.Failed += c.Failed
	}
	return total
}

// RecordFailure describes a single record that could not be reconciled.
// The enclosing unit keeps going; the detail lands in the run summary.
type RecordFailure struct {
	Kind    Kind
	Key     string
	Message string
}

// TargetReport is the outcome of one top-level target (one workspace
// slice or one organization slice).
type TargetReport struct {
	Target         string
	Succeeded      bool
	ErrorKind      string
	ErrorMessage   string
	Stats          Stats
	RecordFailures []RecordFailure
	LastSyncedAt   string
}

// RunSummary aggregates a whole batch run.
type RunSummary struct {
	StartedAt  string
	FinishedAt string
	Targets    []TargetReport
}

func (r *RunSummary) FailedTargets() int {
	failed := 0
	for _, t := range r.Targets {
		if !t.Succeeded {
			failed++
		}
	}
	return failed
}

func (r *RunSummary) Totals() Counts {
	var total Counts
	for _, t := range r.Targets {
		if t.Stats == nil {
			continue
		}
		st := t.Stats.Totals()
		total.Created += st.Created
		total.Updated += st.Updated
		total.Unchanged += st.Unchanged
		total.Failed += st.Failed
	}
	return total
}

// Err returns ErrTargetsFailed when any target failed, nil otherwise.
func (r *RunSummary) Err() error {
	if n := r.FailedTargets(); n > 0 {
		return fmt.Errorf("%d of %d targets failed: %w", n, len(r.Targets), ErrTargetsFailed)
	}
	return nil
}

// ErrorKindOf maps an error anywhere in the chain to the taxonomy name
// recorded in summaries.
func ErrorKindOf(err error) string {
	var (
		transient  *TransientError
		rateLimit  *RateLimitError
		api        *APIError
		contract   *DataContractViolation
		refs       *ReferentialIntegrityError
		constraint *StorageConstraintError
	)
	switch {
	case errors.As(err, &rateLimit):
		return "rate_limit"
	case errors.As(err, &transient):
		return "transient"
	case errors.As(err, &api):
		return "api"
	case errors.As(err, &contract):
		return "data_contract"
	case errors.As(err, &refs):
		return "referential_integrity"
	case errors.As(err, &constraint):
		return "storage_constraint"
	default:
		return "internal"
	}
}

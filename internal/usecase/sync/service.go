package sync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	domainsync "qualisync/internal/domain/sync"
	"qualisync/internal/ports"
)

// Settings tunes the batch runner.
type Settings struct {
	// Concurrency bounds how many targets run at once. Values below 2
	// mean sequential processing.
	Concurrency int
}

// Service drives ingestion and reconciliation for both hierarchies. All
// writes of one hierarchy unit (a repository with its children, or an
// analysis project with its children) happen in one transaction; fetches
// happen before the transaction opens so no network call runs with a
// transaction held.
type Service struct {
	source     ports.SourceAPI
	quality    ports.QualityAPI
	sourceCat  ports.SourceCatalog
	qualityCat ports.QualityCatalog
	uow        ports.UnitOfWork
	state      ports.SyncState
	settings   Settings

	now     func() string
	newUUID func() string
}

func NewService(
	source ports.SourceAPI,
	quality ports.QualityAPI,
	sourceCat ports.SourceCatalog,
	qualityCat ports.QualityCatalog,
	uow ports.UnitOfWork,
	state ports.SyncState,
	settings Settings,
) *Service {
	return &Service{
		source:     source,
		quality:    quality,
		sourceCat:  sourceCat,
		qualityCat: qualityCat,
		uow:        uow,
		state:      state,
		settings:   settings,
		now:        nowUTC,
		newUUID:    func() string { return uuid.NewString() },
	}
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// reconcileFlow runs the shared lookup-then-write sequence. lookup tries
// the natural keys in order, insert creates the row, update refreshes an
// existing one. When insert loses a race to a concurrent writer the
// lookup is retried once and the update path takes over; a second miss
// is reported as a storage constraint failure.
func reconcileFlow[T any](
	ctx context.Context,
	kind domainsync.Kind,
	lookup func(ctx context.Context) (T, error),
	insert func(ctx context.Context) (T, error),
	update func(ctx context.Context, existing T) (T, domainsync.Outcome, error),
) (T, domainsync.Outcome, error) {
	var zero T

	existing, err := lookup(ctx)
	switch {
	case err == nil:
		return update(ctx, existing)
	case errors.Is(err, ports.ErrNotFound):
	default:
		return zero, "", err
	}

	created, err := insert(ctx)
	if err == nil {
		return created, domainsync.OutcomeCreated, nil
	}
	if !errors.Is(err, ports.ErrConflict) {
		return zero, "", err
	}

	existing, lookupErr := lookup(ctx)
	if lookupErr != nil {
		return zero, "", &domainsync.StorageConstraintError{Kind: kind, Err: err}
	}
	return update(ctx, existing)
}

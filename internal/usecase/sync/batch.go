package sync

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"qualisync/internal/bootstrap/logging"
	domainsync "qualisync/internal/domain/sync"
)

type runTarget struct {
	label string
	run   func(ctx context.Context) (domainsync.Stats, []domainsync.RecordFailure, error)
}

// Run processes every target in the list and always produces a summary.
// A failed target never stops the others; the summary's Err method tells
// callers whether anything failed. Cancellation stops targets that have
// not started and surfaces as the returned error.
func (s *Service) Run(ctx context.Context, targets TargetList) (*domainsync.RunSummary, error) {
	summary := &domainsync.RunSummary{StartedAt: s.now()}

	all := make([]runTarget, 0, len(targets.Source)+len(targets.Quality))
	for _, t := range targets.Source {
		t := t
		all = append(all, runTarget{
			label: "source:" + t.Workspace,
			run: func(ctx context.Context) (domainsync.Stats, []domainsync.RecordFailure, error) {
				return s.SyncSourceTarget(ctx, t)
			},
		})
	}
	for _, t := range targets.Quality {
		t := t
		all = append(all, runTarget{
			label: "quality:" + t.Organization,
			run: func(ctx context.Context) (domainsync.Stats, []domainsync.RecordFailure, error) {
				return s.SyncQualityTarget(ctx, t)
			},
		})
	}

	limit := s.settings.Concurrency
	if limit < 1 {
		limit = 1
	}

	reports := make([]domainsync.TargetReport, len(all))
	var group errgroup.Group
	group.SetLimit(limit)
	for i, target := range all {
		i, target := i, target
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				reports[i] = domainsync.TargetReport{
					Target:       target.label,
					ErrorKind:    "canceled",
					ErrorMessage: err.Error(),
				}
				return nil
			}
			reports[i] = s.runOne(ctx, target)
			return nil
		})
	}
	_ = group.Wait()

	summary.Targets = reports
	summary.FinishedAt = s.now()
	return summary, ctx.Err()
}

func (s *Service) runOne(ctx context.Context, target runTarget) domainsync.TargetReport {
	ctx = logging.WithAttrs(ctx, slog.String("target", target.label))
	logging.Info(ctx, "sync target started")

	stats, failures, err := target.run(ctx)
	report := domainsync.TargetReport{
		Target:         target.label,
		Stats:          stats,
		RecordFailures: failures,
	}

	if err != nil {
		report.ErrorKind = domainsync.ErrorKindOf(err)
		report.ErrorMessage = err.Error()
		if prev, ok, stateErr := s.state.Get(ctx, stateKey(target.label)); stateErr == nil && ok {
			report.LastSyncedAt = prev
		}
		logging.Error(ctx, "sync target failed",
			slog.String("error_kind", report.ErrorKind),
			slog.String("error", report.ErrorMessage))
		return report
	}

	report.Succeeded = true
	now := s.now()
	report.LastSyncedAt = now
	if err := s.state.Set(ctx, stateKey(target.label), now); err != nil {
		logging.Warn(ctx, "record last sync time failed", slog.String("error", err.Error()))
	}

	totals := stats.Totals()
	logging.Info(ctx, "sync target finished",
		slog.Int("created", totals.Created),
		slog.Int("updated", totals.Updated),
		slog.Int("unchanged", totals.Unchanged),
		slog.Int("failed", totals.Failed))
	return report
}

// ResetTarget clears the recorded last successful sync time for one
// target label ("source:<workspace>" or "quality:<organization>"). The
// next run reports that target as never synced. Useful after a target
// is removed from the targets file or its catalog rows were rebuilt.
func (s *Service) ResetTarget(ctx context.Context, label string) error {
	return s.state.Delete(ctx, stateKey(label))
}

func stateKey(label string) string {
	return "last_sync:" + label
}

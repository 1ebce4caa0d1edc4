package sync

import (
	"context"
	"errors"
	"testing"

	domainsync "qualisync/internal/domain/sync"
)

func TestRunIsolatesFailedTargets(t *testing.T) {
	source := acmeSource()
	source.workspaceErr = map[string]error{
		"broken": &domainsync.TransientError{Err: errors.New("connection reset")},
	}
	env := newTestEnv(t, source, acmeQuality())
	ctx := context.Background()

	summary, err := env.svc.Run(ctx, TargetList{
		Source: []SourceTarget{
			{Workspace: "acme"},
			{Workspace: "broken"},
		},
		Quality: []QualityTarget{{Organization: "acme-org"}},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(summary.Targets) != 3 {
		t.Fatalf("Run() targets = %d, want 3", len(summary.Targets))
	}
	if summary.FailedTargets() != 1 {
		t.Fatalf("FailedTargets() = %d, want 1", summary.FailedTargets())
	}
	if !errors.Is(summary.Err(), domainsync.ErrTargetsFailed) {
		t.Fatalf("summary.Err() = %v, want ErrTargetsFailed", summary.Err())
	}

	byLabel := make(map[string]domainsync.TargetReport, len(summary.Targets))
	for _, report := range summary.Targets {
		byLabel[report.Target] = report
	}
	if !byLabel["source:acme"].Succeeded || !byLabel["quality:acme-org"].Succeeded {
		t.Fatalf("healthy targets did not succeed: %+v", summary.Targets)
	}
	failed := byLabel["source:broken"]
	if failed.Succeeded || failed.ErrorKind != "transient" {
		t.Fatalf("broken target report = %+v", failed)
	}

	// Only successful targets advance their last-sync marker.
	if _, found, err := env.state.Get(ctx, "last_sync:source:acme"); err != nil || !found {
		t.Fatalf("last sync for source:acme found=%v err=%v, want recorded", found, err)
	}
	if _, found, err := env.state.Get(ctx, "last_sync:source:broken"); err != nil || found {
		t.Fatalf("last sync for source:broken found=%v err=%v, want absent", found, err)
	}
}

func TestRunFailedTargetKeepsPreviousSyncTime(t *testing.T) {
	source := acmeSource()
	env := newTestEnv(t, source, acmeQuality())
	ctx := context.Background()

	targets := TargetList{Source: []SourceTarget{{Workspace: "acme"}}}
	first, err := env.svc.Run(ctx, targets)
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if first.FailedTargets() != 0 {
		t.Fatalf("first Run() failed targets = %d", first.FailedTargets())
	}
	previous := first.Targets[0].LastSyncedAt
	if previous == "" {
		t.Fatalf("first Run() recorded no sync time")
	}

	source.workspaceErr = map[string]error{
		"acme": &domainsync.APIError{StatusCode: 403, URL: "/workspaces/acme", Message: "forbidden"},
	}
	second, err := env.svc.Run(ctx, targets)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	report := second.Targets[0]
	if report.Succeeded || report.ErrorKind != "api" {
		t.Fatalf("second Run() report = %+v", report)
	}
	if report.LastSyncedAt != previous {
		t.Fatalf("LastSyncedAt = %q, want previous success time %q", report.LastSyncedAt, previous)
	}
}

func TestResetTargetForgetsLastSyncTime(t *testing.T) {
	env := newTestEnv(t, acmeSource(), acmeQuality())
	ctx := context.Background()

	summary, err := env.svc.Run(ctx, TargetList{Source: []SourceTarget{{Workspace: "acme"}}})
	if err != nil || summary.FailedTargets() != 0 {
		t.Fatalf("Run() summary = %+v, err = %v", summary, err)
	}
	if _, found, err := env.state.Get(ctx, "last_sync:source:acme"); err != nil || !found {
		t.Fatalf("last sync found=%v err=%v, want recorded", found, err)
	}

	if err := env.svc.ResetTarget(ctx, "source:acme"); err != nil {
		t.Fatalf("ResetTarget() error = %v", err)
	}
	if _, found, err := env.state.Get(ctx, "last_sync:source:acme"); err != nil || found {
		t.Fatalf("last sync found=%v err=%v after reset, want absent", found, err)
	}
}

func TestRunCanceledContext(t *testing.T) {
	env := newTestEnv(t, acmeSource(), acmeQuality())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := env.svc.Run(ctx, TargetList{Source: []SourceTarget{{Workspace: "acme"}}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(summary.Targets) != 1 || summary.Targets[0].ErrorKind != "canceled" {
		t.Fatalf("Run() targets = %+v", summary.Targets)
	}
}

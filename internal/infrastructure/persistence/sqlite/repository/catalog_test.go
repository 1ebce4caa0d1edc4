package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"qualisync/internal/infrastructure/persistence/sqlite/model"
	"qualisync/internal/ports"
)

func setupCatalogDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "catalog.sqlite")), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&model.Workspace{},
		&model.Project{},
		&model.Repository{},
		&model.Commit{},
		&model.PullRequest{},
		&model.Branch{},
		&model.Organization{},
		&model.AnalysisProject{},
		&model.Issue{},
		&model.SecurityHotspot{},
		&model.QualityGate{},
		&model.Metric{},
		&model.SyncStateKV{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

const testStamp = "2026-08-27T12:00:00Z"

func TestWorkspaceNaturalKeyLookups(t *testing.T) {
	catalog := NewSourceCatalogRepository(setupCatalogDB(t))
	ctx := context.Background()

	created, err := catalog.InsertWorkspace(ctx, ports.Workspace{
		UUID: "ws-uuid-1", Slug: "acme", Name: "Acme", IsPrivate: true,
		CreatedAt: testStamp, UpdatedAt: testStamp,
	})
	if err != nil {
		t.Fatalf("InsertWorkspace() error = %v", err)
	}
	if created.WorkspaceID == 0 {
		t.Fatalf("InsertWorkspace() did not assign a surrogate id")
	}

	byUUID, err := catalog.WorkspaceByUUID(ctx, "ws-uuid-1")
	if err != nil {
		t.Fatalf("WorkspaceByUUID() error = %v", err)
	}
	bySlug, err := catalog.WorkspaceBySlug(ctx, "acme")
	if err != nil {
		t.Fatalf("WorkspaceBySlug() error = %v", err)
	}
	if byUUID.WorkspaceID != created.WorkspaceID || bySlug.WorkspaceID != created.WorkspaceID {
		t.Fatalf("lookups resolved different rows: %d / %d / %d", created.WorkspaceID, byUUID.WorkspaceID, bySlug.WorkspaceID)
	}

	if _, err := catalog.WorkspaceByUUID(ctx, "missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("WorkspaceByUUID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestInsertWorkspaceDuplicateIsConflict(t *testing.T) {
	catalog := NewSourceCatalogRepository(setupCatalogDB(t))
	ctx := context.Background()

	row := ports.Workspace{UUID: "ws-uuid-1", Slug: "acme", Name: "Acme", CreatedAt: testStamp, UpdatedAt: testStamp}
	if _, err := catalog.InsertWorkspace(ctx, row); err != nil {
		t.Fatalf("InsertWorkspace() error = %v", err)
	}

	row.Slug = "acme-other"
	if _, err := catalog.InsertWorkspace(ctx, row); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("InsertWorkspace(duplicate uuid) error = %v, want ErrConflict", err)
	}
}

func TestInsertWithoutUUIDDoesNotCollide(t *testing.T) {
	catalog := NewSourceCatalogRepository(setupCatalogDB(t))
	ctx := context.Background()

	// Slug-only records carry no platform uuid; two of them must not
	// trip the uuid unique index.
	first, err := catalog.InsertWorkspace(ctx, ports.Workspace{Slug: "alpha", Name: "Alpha", CreatedAt: testStamp, UpdatedAt: testStamp})
	if err != nil {
		t.Fatalf("InsertWorkspace(alpha) error = %v", err)
	}
	if _, err := catalog.InsertWorkspace(ctx, ports.Workspace{Slug: "beta", Name: "Beta", CreatedAt: testStamp, UpdatedAt: testStamp}); err != nil {
		t.Fatalf("InsertWorkspace(beta) error = %v", err)
	}

	for _, slug := range []string{"billing", "frontend"} {
		if _, err := catalog.InsertRepository(ctx, ports.Repository{
			WorkspaceID: first.WorkspaceID, Slug: slug, Name: slug,
			CreatedAt: testStamp, UpdatedAt: testStamp,
		}); err != nil {
			t.Fatalf("InsertRepository(%s) error = %v", slug, err)
		}
	}

	got, err := catalog.WorkspaceBySlug(ctx, "alpha")
	if err != nil {
		t.Fatalf("WorkspaceBySlug() error = %v", err)
	}
	if got.UUID != "" {
		t.Fatalf("UUID = %q, want empty round-trip", got.UUID)
	}
}

func TestRepositorySlugScopedToWorkspace(t *testing.T) {
	catalog := NewSourceCatalogRepository(setupCatalogDB(t))
	ctx := context.Background()

	wsA, _ := catalog.InsertWorkspace(ctx, ports.Workspace{UUID: "ws-a", Slug: "alpha", Name: "Alpha", CreatedAt: testStamp, UpdatedAt: testStamp})
	wsB, _ := catalog.InsertWorkspace(ctx, ports.Workspace{UUID: "ws-b", Slug: "beta", Name: "Beta", CreatedAt: testStamp, UpdatedAt: testStamp})

	for _, ws := range []ports.Workspace{wsA, wsB} {
		_, err := catalog.InsertRepository(ctx, ports.Repository{
			WorkspaceID: ws.WorkspaceID, UUID: "repo-" + ws.Slug, Slug: "billing",
			Name: "billing", CreatedAt: testStamp, UpdatedAt: testStamp,
		})
		if err != nil {
			t.Fatalf("InsertRepository(%s) error = %v", ws.Slug, err)
		}
	}

	got, err := catalog.RepositoryBySlug(ctx, wsB.WorkspaceID, "billing")
	if err != nil {
		t.Fatalf("RepositoryBySlug() error = %v", err)
	}
	if got.WorkspaceID != wsB.WorkspaceID {
		t.Fatalf("RepositoryBySlug() workspace = %d, want %d", got.WorkspaceID, wsB.WorkspaceID)
	}

	// Same slug inside one workspace is a conflict.
	_, err = catalog.InsertRepository(ctx, ports.Repository{
		WorkspaceID: wsA.WorkspaceID, UUID: "repo-dup", Slug: "billing",
		Name: "billing", CreatedAt: testStamp, UpdatedAt: testStamp,
	})
	if !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("InsertRepository(duplicate slug) error = %v, want ErrConflict", err)
	}
}

func TestLinkAnalysisProjectEnforcesOneToOne(t *testing.T) {
	db := setupCatalogDB(t)
	source := NewSourceCatalogRepository(db)
	quality := NewQualityCatalogRepository(db)
	ctx := context.Background()

	ws, _ := source.InsertWorkspace(ctx, ports.Workspace{UUID: "ws-a", Slug: "acme", Name: "Acme", CreatedAt: testStamp, UpdatedAt: testStamp})
	repo, _ := source.InsertRepository(ctx, ports.Repository{
		WorkspaceID: ws.WorkspaceID, UUID: "repo-a", Slug: "billing", Name: "billing",
		CreatedAt: testStamp, UpdatedAt: testStamp,
	})

	org, _ := quality.InsertOrganization(ctx, ports.Organization{Key: "acme-org", Name: "Acme", CreatedAt: testStamp, UpdatedAt: testStamp})
	first, _ := quality.InsertAnalysisProject(ctx, ports.AnalysisProject{
		OrganizationID: org.OrganizationID, UUID: "ap-1", Key: "acme-org:billing", Name: "billing",
		CreatedAt: testStamp, UpdatedAt: testStamp,
	})
	second, _ := quality.InsertAnalysisProject(ctx, ports.AnalysisProject{
		OrganizationID: org.OrganizationID, UUID: "ap-2", Key: "acme-org:billing-fork", Name: "billing-fork",
		CreatedAt: testStamp, UpdatedAt: testStamp,
	})

	if err := quality.LinkAnalysisProject(ctx, first.AnalysisProjectID, repo.RepositoryID, testStamp); err != nil {
		t.Fatalf("LinkAnalysisProject() error = %v", err)
	}
	err := quality.LinkAnalysisProject(ctx, second.AnalysisProjectID, repo.RepositoryID, testStamp)
	if !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("LinkAnalysisProject(second project, same repo) error = %v, want ErrConflict", err)
	}

	relinked, err := quality.AnalysisProjectByKey(ctx, "acme-org:billing")
	if err != nil {
		t.Fatalf("AnalysisProjectByKey() error = %v", err)
	}
	if relinked.LinkedRepositoryID == nil || *relinked.LinkedRepositoryID != repo.RepositoryID {
		t.Fatalf("link not persisted: %+v", relinked.LinkedRepositoryID)
	}
}

func TestRankingSnapshotsDeriveWorstHotspot(t *testing.T) {
	quality := NewQualityCatalogRepository(setupCatalogDB(t))
	ctx := context.Background()

	org, _ := quality.InsertOrganization(ctx, ports.Organization{Key: "acme-org", Name: "Acme", CreatedAt: testStamp, UpdatedAt: testStamp})

	coverage := 82.5
	analyzed, _ := quality.InsertAnalysisProject(ctx, ports.AnalysisProject{
		OrganizationID: org.OrganizationID, UUID: "ap-1", Key: "acme-org:billing", Name: "billing",
		LastAnalysisAt: testStamp, Coverage: &coverage, NewIssuesCount: 3,
		CreatedAt: testStamp, UpdatedAt: testStamp,
	})
	unanalyzed, _ := quality.InsertAnalysisProject(ctx, ports.AnalysisProject{
		OrganizationID: org.OrganizationID, UUID: "ap-2", Key: "acme-org:fresh", Name: "fresh",
		CreatedAt: testStamp, UpdatedAt: testStamp,
	})

	for i, priority := range []string{"MEDIUM", "HIGH", "LOW"} {
		_, err := quality.InsertHotspot(ctx, ports.SecurityHotspot{
			AnalysisProjectID: analyzed.AnalysisProjectID,
			UUID:              "hs-" + string(rune('a'+i)), Key: "hs-" + string(rune('a'+i)),
			ReviewPriority: priority, Status: "TO_REVIEW",
			CreatedAt: testStamp, UpdatedAt: testStamp,
		})
		if err != nil {
			t.Fatalf("InsertHotspot(%s) error = %v", priority, err)
		}
	}

	snapshots, err := quality.RankingSnapshots(ctx, org.OrganizationID)
	if err != nil {
		t.Fatalf("RankingSnapshots() error = %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("RankingSnapshots() len = %d, want 2", len(snapshots))
	}

	byID := map[uint64]ports.RankingSnapshot{}
	for _, s := range snapshots {
		byID[s.AnalysisProjectID] = s
	}

	got := byID[analyzed.AnalysisProjectID]
	if got.WorstHotspot != "HIGH" {
		t.Fatalf("WorstHotspot = %q, want HIGH", got.WorstHotspot)
	}
	if got.NewIssues == nil || *got.NewIssues != 3 {
		t.Fatalf("NewIssues = %v, want 3", got.NewIssues)
	}
	if got.Coverage == nil || *got.Coverage != coverage {
		t.Fatalf("Coverage = %v, want %v", got.Coverage, coverage)
	}

	fresh := byID[unanalyzed.AnalysisProjectID]
	if fresh.NewIssues != nil {
		t.Fatalf("NewIssues for unanalyzed project = %v, want nil", fresh.NewIssues)
	}
	if fresh.WorstHotspot != "" {
		t.Fatalf("WorstHotspot for unanalyzed project = %q, want empty", fresh.WorstHotspot)
	}
}

func TestMetricKeyScopedToAnalysisProject(t *testing.T) {
	quality := NewQualityCatalogRepository(setupCatalogDB(t))
	ctx := context.Background()

	org, _ := quality.InsertOrganization(ctx, ports.Organization{Key: "acme-org", Name: "Acme", CreatedAt: testStamp, UpdatedAt: testStamp})
	a, _ := quality.InsertAnalysisProject(ctx, ports.AnalysisProject{
		OrganizationID: org.OrganizationID, UUID: "ap-1", Key: "acme-org:a", Name: "a", CreatedAt: testStamp, UpdatedAt: testStamp,
	})
	b, _ := quality.InsertAnalysisProject(ctx, ports.AnalysisProject{
		OrganizationID: org.OrganizationID, UUID: "ap-2", Key: "acme-org:b", Name: "b", CreatedAt: testStamp, UpdatedAt: testStamp,
	})

	va, vb := 80.0, 60.0
	for _, m := range []ports.Metric{
		{AnalysisProjectID: a.AnalysisProjectID, UUID: "m-1", Key: "coverage", Name: "Coverage", Value: &va, ValueType: "FLOAT", MeasuredAt: testStamp, CreatedAt: testStamp, UpdatedAt: testStamp},
		{AnalysisProjectID: b.AnalysisProjectID, UUID: "m-2", Key: "coverage", Name: "Coverage", Value: &vb, ValueType: "FLOAT", MeasuredAt: testStamp, CreatedAt: testStamp, UpdatedAt: testStamp},
	} {
		if _, err := quality.InsertMetric(ctx, m); err != nil {
			t.Fatalf("InsertMetric() error = %v", err)
		}
	}

	got, err := quality.MetricByKey(ctx, b.AnalysisProjectID, "coverage")
	if err != nil {
		t.Fatalf("MetricByKey() error = %v", err)
	}
	if got.Value == nil || *got.Value != vb {
		t.Fatalf("MetricByKey() value = %v, want %v", got.Value, vb)
	}

	// Same key on the same project is a conflict.
	_, err = quality.InsertMetric(ctx, ports.Metric{
		AnalysisProjectID: a.AnalysisProjectID, UUID: "m-3", Key: "coverage", Name: "Coverage",
		Value: &va, ValueType: "FLOAT", MeasuredAt: testStamp, CreatedAt: testStamp, UpdatedAt: testStamp,
	})
	if !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("InsertMetric(duplicate key) error = %v, want ErrConflict", err)
	}
}

package sync

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"qualisync/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "qualisync/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "qualisync/internal/infrastructure/persistence/sqlite/uow"
	"qualisync/internal/infrastructure/state"
	"qualisync/internal/ports"
)

// stubSource serves canned source-platform records keyed by workspace
// slug and "workspace/repo".
type stubSource struct {
	workspaces   map[string]ports.RawWorkspace
	workspaceErr map[string]error
	projects     map[string][]ports.RawProject
	repos        map[string][]ports.RawRepository
	commits      map[string][]ports.RawCommit
	prs          map[string][]ports.RawPullRequest
	branches     map[string][]ports.RawBranch
}

func (s *stubSource) Workspace(_ context.Context, slug string) (ports.RawWorkspace, error) {
	if err := s.workspaceErr[slug]; err != nil {
		return ports.RawWorkspace{}, err
	}
	ws, ok := s.workspaces[slug]
	if !ok {
		return ports.RawWorkspace{}, fmt.Errorf("unknown workspace %q", slug)
	}
	return ws, nil
}

func (s *stubSource) Projects(_ context.Context, workspace string, fn func(ports.RawProject) error) error {
	for _, p := range s.projects[workspace] {
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

func (s *stubSource) Repositories(_ context.Context, workspace string, fn func(ports.RawRepository) error) error {
	for _, r := range s.repos[workspace] {
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

func (s *stubSource) Commits(_ context.Context, workspace, repoSlug string, fn func(ports.RawCommit) error) error {
	for _, c := range s.commits[workspace+"/"+repoSlug] {
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

func (s *stubSource) PullRequests(_ context.Context, workspace, repoSlug string, fn func(ports.RawPullRequest) error) error {
	for _, pr := range s.prs[workspace+"/"+repoSlug] {
		if err := fn(pr); err != nil {
			return err
		}
	}
	return nil
}

func (s *stubSource) Branches(_ context.Context, workspace, repoSlug string, fn func(ports.RawBranch) error) error {
	for _, b := range s.branches[workspace+"/"+repoSlug] {
		if err := fn(b); err != nil {
			return err
		}
	}
	return nil
}

// stubQuality serves canned quality-platform records keyed by
// organization and project key.
type stubQuality struct {
	orgs     map[string]ports.RawOrganization
	orgErr   map[string]error
	projects map[string][]ports.RawAnalysisProject
	issues   map[string][]ports.RawIssue
	hotspots map[string][]ports.RawHotspot
	gates    map[string]ports.RawQualityGate
	gateErr  map[string]error
	measures map[string][]ports.RawMeasure
}

func (s *stubQuality) Organization(_ context.Context, key string) (ports.RawOrganization, error) {
	if err := s.orgErr[key]; err != nil {
		return ports.RawOrganization{}, err
	}
	org, ok := s.orgs[key]
	if !ok {
		return ports.RawOrganization{}, fmt.Errorf("unknown organization %q", key)
	}
	return org, nil
}

func (s *stubQuality) Projects(_ context.Context, organization string, fn func(ports.RawAnalysisProject) error) error {
	for _, p := range s.projects[organization] {
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

func (s *stubQuality) Issues(_ context.Context, _, projectKey string, fn func(ports.RawIssue) error) error {
	for _, i := range s.issues[projectKey] {
		if err := fn(i); err != nil {
			return err
		}
	}
	return nil
}

func (s *stubQuality) Hotspots(_ context.Context, projectKey string, fn func(ports.RawHotspot) error) error {
	for _, h := range s.hotspots[projectKey] {
		if err := fn(h); err != nil {
			return err
		}
	}
	return nil
}

func (s *stubQuality) QualityGate(_ context.Context, projectKey string) (ports.RawQualityGate, error) {
	if err := s.gateErr[projectKey]; err != nil {
		return ports.RawQualityGate{}, err
	}
	return s.gates[projectKey], nil
}

func (s *stubQuality) Measures(_ context.Context, projectKey string) ([]ports.RawMeasure, error) {
	return s.measures[projectKey], nil
}

type testEnv struct {
	svc        *Service
	sourceCat  ports.SourceCatalog
	qualityCat ports.QualityCatalog
	state      ports.SyncState
}

func newTestEnv(t *testing.T, source ports.SourceAPI, quality ports.QualityAPI) testEnv {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "engine.sqlite")), &gorm.Config{
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

	sourceCat := sqliterepo.NewSourceCatalogRepository(db)
	qualityCat := sqliterepo.NewQualityCatalogRepository(db)
	syncState := state.NewSQLiteSyncState(db)

	svc := NewService(source, quality, sourceCat, qualityCat, sqliteuow.NewUnitOfWork(db), syncState, Settings{})
	return testEnv{svc: svc, sourceCat: sourceCat, qualityCat: qualityCat, state: syncState}
}

// acmeSource is the baseline fixture: one workspace, one project, two
// repositories with commits, pull requests and branches.
func acmeSource() *stubSource {
	return &stubSource{
		workspaces: map[string]ports.RawWorkspace{
			"acme": {UUID: "ws-1", Slug: "acme", Name: "Acme", IsPrivate: true},
		},
		projects: map[string][]ports.RawProject{
			"acme": {{UUID: "proj-1", Key: "CORE", Name: "Core"}},
		},
		repos: map[string][]ports.RawRepository{
			"acme": {
				{UUID: "repo-1", Slug: "billing", Name: "billing", ProjectKey: "CORE", Language: "go", SizeBytes: 2048},
				{UUID: "repo-2", Slug: "frontend", Name: "frontend", Language: "typescript"},
			},
		},
		commits: map[string][]ports.RawCommit{
			"acme/billing": {
				{Hash: "c1", Message: "init", AuthorName: "Dana", AuthorEmail: "dana@example.test", AuthoredAt: "2026-08-01T10:00:00Z", CommittedAt: "2026-08-01T10:00:00Z"},
				{Hash: "c2", Message: "merge", IsMerge: true, AuthoredAt: "2026-08-02T10:00:00Z", CommittedAt: "2026-08-02T10:00:00Z"},
			},
		},
		prs: map[string][]ports.RawPullRequest{
			"acme/billing": {
				{ExternalID: "7", Title: "Add invoices", State: "OPEN", Author: "Dana", CreatedOn: "2026-08-03T10:00:00Z", UpdatedOn: "2026-08-03T11:00:00Z"},
			},
		},
		branches: map[string][]ports.RawBranch{
			"acme/billing": {
				{Name: "main", TargetHash: "c2", IsDefault: true},
				{Name: "feature/invoices", TargetHash: "c1"},
			},
		},
	}
}

func acmeQuality() *stubQuality {
	return &stubQuality{
		orgs: map[string]ports.RawOrganization{
			"acme-org": {Key: "acme-org", Name: "Acme", Description: "main org"},
		},
		projects: map[string][]ports.RawAnalysisProject{
			"acme-org": {{Key: "acme-org:billing", Name: "billing", Visibility: "private", LastAnalysisAt: "2026-08-20T00:00:00Z"}},
		},
		issues: map[string][]ports.RawIssue{
			"acme-org:billing": {
				{Key: "i-1", Rule: "go:S1000", Severity: "MAJOR", Type: "BUG", Status: "OPEN", Component: "billing/main.go", Line: 10, Message: "bug", CreatedAt: "2026-08-10T00:00:00Z"},
				{Key: "i-2", Rule: "go:S2000", Severity: "MINOR", Type: "CODE_SMELL", Status: "RESOLVED", Resolution: "FIXED", Component: "billing/util.go", Message: "smell"},
			},
		},
		hotspots: map[string][]ports.RawHotspot{
			"acme-org:billing": {
				{Key: "h-1", RuleKey: "go:S5000", ReviewPriority: "HIGH", SecurityCategory: "auth", Status: "TO_REVIEW", Component: "billing/auth.go", Message: "check"},
			},
		},
		gates: map[string]ports.RawQualityGate{
			"acme-org:billing": {ExternalID: "9", Name: "Default", Status: "PASSED", IsDefault: true, EvaluatedAt: "2026-08-20T00:00:00Z"},
		},
		measures: map[string][]ports.RawMeasure{
			"acme-org:billing": {
				{MetricKey: "coverage", Name: "Coverage", Description: "Line coverage by tests", Value: "82.5", ValueType: "PERCENT", Domain: "Coverage", Direction: 1},
				{MetricKey: "duplicated_lines_density", Name: "Duplication", Value: "3.5", ValueType: "PERCENT", Direction: -1},
				{MetricKey: "bugs", Name: "Bugs", Value: "4", ValueType: "INT", Direction: -1},
				{MetricKey: "new_violations", Name: "New issues", Value: "2", ValueType: "INT", Direction: -1},
				{MetricKey: "sqale_rating", Name: "Maintainability", Value: "2.0", ValueType: "RATING", Direction: -1},
			},
		},
	}
}

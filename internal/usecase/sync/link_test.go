package sync

import (
	"context"
	"testing"

	"qualisync/internal/ports"
)

const linkStamp = "2026-08-27T00:00:00Z"

func seedLinkFixture(t *testing.T, env testEnv) (ports.Workspace, ports.Organization) {
	t.Helper()
	ctx := context.Background()

	ws, err := env.sourceCat.InsertWorkspace(ctx, ports.Workspace{
		UUID: "ws-1", Slug: "acme", Name: "Acme", CreatedAt: linkStamp, UpdatedAt: linkStamp,
	})
	if err != nil {
		t.Fatalf("seed workspace: %v", err)
	}
	org, err := env.qualityCat.InsertOrganization(ctx, ports.Organization{
		Key: "acme-org", Name: "Acme", CreatedAt: linkStamp, UpdatedAt: linkStamp,
	})
	if err != nil {
		t.Fatalf("seed organization: %v", err)
	}
	return ws, org
}

func seedRepository(t *testing.T, env testEnv, workspaceID uint64, slug string) ports.Repository {
	t.Helper()
	repo, err := env.sourceCat.InsertRepository(context.Background(), ports.Repository{
		WorkspaceID: workspaceID, UUID: "repo-" + slug, Slug: slug, Name: slug,
		CreatedAt: linkStamp, UpdatedAt: linkStamp,
	})
	if err != nil {
		t.Fatalf("seed repository %s: %v", slug, err)
	}
	return repo
}

func seedAnalysisProject(t *testing.T, env testEnv, organizationID uint64, key string) ports.AnalysisProject {
	t.Helper()
	project, err := env.qualityCat.InsertAnalysisProject(context.Background(), ports.AnalysisProject{
		OrganizationID: organizationID, UUID: "ap-" + key, Key: key, Name: key,
		CreatedAt: linkStamp, UpdatedAt: linkStamp,
	})
	if err != nil {
		t.Fatalf("seed analysis project %s: %v", key, err)
	}
	return project
}

func TestLinkAnalysisProjects(t *testing.T) {
	env := newTestEnv(t, acmeSource(), acmeQuality())
	ctx := context.Background()

	ws, org := seedLinkFixture(t, env)
	billing := seedRepository(t, env, ws.WorkspaceID, "billing")
	seedRepository(t, env, ws.WorkspaceID, "frontend")

	seedAnalysisProject(t, env, org.OrganizationID, "acme-org:billing")
	seedAnalysisProject(t, env, org.OrganizationID, "acme-org:ghost")

	report, err := env.svc.LinkAnalysisProjects(ctx, "acme-org", "acme")
	if err != nil {
		t.Fatalf("LinkAnalysisProjects() error = %v", err)
	}
	if report.Linked != 1 || report.Unmatched != 1 || report.AlreadyLinked != 0 || len(report.Conflicts) != 0 {
		t.Fatalf("report = %+v", report)
	}

	project, err := env.qualityCat.AnalysisProjectByKey(ctx, "acme-org:billing")
	if err != nil {
		t.Fatalf("AnalysisProjectByKey() error = %v", err)
	}
	if project.LinkedRepositoryID == nil || *project.LinkedRepositoryID != billing.RepositoryID {
		t.Fatalf("LinkedRepositoryID = %v, want %d", project.LinkedRepositoryID, billing.RepositoryID)
	}
}

func TestLinkAnalysisProjectsIsIdempotent(t *testing.T) {
	env := newTestEnv(t, acmeSource(), acmeQuality())
	ctx := context.Background()

	ws, org := seedLinkFixture(t, env)
	seedRepository(t, env, ws.WorkspaceID, "billing")
	seedAnalysisProject(t, env, org.OrganizationID, "acme-org:billing")

	if _, err := env.svc.LinkAnalysisProjects(ctx, "acme-org", "acme"); err != nil {
		t.Fatalf("first pass error = %v", err)
	}
	report, err := env.svc.LinkAnalysisProjects(ctx, "acme-org", "acme")
	if err != nil {
		t.Fatalf("second pass error = %v", err)
	}
	if report.Linked != 0 || report.AlreadyLinked != 1 {
		t.Fatalf("second pass report = %+v", report)
	}
}

func TestLinkAnalysisProjectsReportsConflicts(t *testing.T) {
	env := newTestEnv(t, acmeSource(), acmeQuality())
	ctx := context.Background()

	ws, org := seedLinkFixture(t, env)
	seedRepository(t, env, ws.WorkspaceID, "billing")

	// Two projects whose keys both resolve to the billing slug. The link
	// is one-to-one, so the second claim must surface as a conflict.
	seedAnalysisProject(t, env, org.OrganizationID, "acme-org:billing")
	seedAnalysisProject(t, env, org.OrganizationID, "legacy:billing")

	report, err := env.svc.LinkAnalysisProjects(ctx, "acme-org", "acme")
	if err != nil {
		t.Fatalf("LinkAnalysisProjects() error = %v", err)
	}
	if report.Linked != 1 {
		t.Fatalf("Linked = %d, want 1", report.Linked)
	}
	if len(report.Conflicts) != 1 || report.Conflicts[0] != "legacy:billing" {
		t.Fatalf("Conflicts = %v, want [legacy:billing]", report.Conflicts)
	}
}

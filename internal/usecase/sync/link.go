package sync

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"qualisync/internal/bootstrap/logging"
	"qualisync/internal/errs"
	"qualisync/internal/ports"
)

// LinkReport summarizes one cross-link pass.
type LinkReport struct {
	Organization  string
	Workspace     string
	Linked        int
	AlreadyLinked int
	Unmatched     int
	Conflicts     []string
}

// LinkAnalysisProjects connects analysis projects to repositories by
// matching the repository slug embedded in the analysis project key. The
// link is one-to-one; a repository already claimed by another analysis
// project is reported as a conflict, not overwritten.
func (s *Service) LinkAnalysisProjects(ctx context.Context, organizationKey, workspaceSlug string) (LinkReport, error) {
	report := LinkReport{Organization: organizationKey, Workspace: workspaceSlug}

	org, err := s.qualityCat.OrganizationByKey(ctx, organizationKey)
	if err != nil {
		return report, errs.Wrapf(err, "resolve organization %s", organizationKey)
	}
	workspace, err := s.sourceCat.WorkspaceBySlug(ctx, workspaceSlug)
	if err != nil {
		return report, errs.Wrapf(err, "resolve workspace %s", workspaceSlug)
	}

	repositories, err := s.sourceCat.ListRepositories(ctx, workspace.WorkspaceID)
	if err != nil {
		return report, err
	}
	repoBySlug := make(map[string]ports.Repository, len(repositories))
	for _, repo := range repositories {
		repoBySlug[repo.Slug] = repo
	}

	projects, err := s.qualityCat.ListAnalysisProjects(ctx, org.OrganizationID)
	if err != nil {
		return report, err
	}

	for _, project := range projects {
		repo, ok := repoBySlug[repoSlugFromKey(project.Key)]
		if !ok {
			report.Unmatched++
			continue
		}
		if project.LinkedRepositoryID != nil {
			// Existing links are never overwritten, matching or not.
			report.AlreadyLinked++
			continue
		}

		err := s.qualityCat.LinkAnalysisProject(ctx, project.AnalysisProjectID, repo.RepositoryID, s.now())
		if errors.Is(err, ports.ErrConflict) {
			report.Conflicts = append(report.Conflicts, project.Key)
			logging.Warn(ctx, "repository already linked",
				slog.String("project", project.Key),
				slog.String("repository", repo.Slug))
			continue
		}
		if err != nil {
			return report, err
		}
		report.Linked++
	}

	logging.Info(ctx, "link pass finished",
		slog.String("organization", organizationKey),
		slog.String("workspace", workspaceSlug),
		slog.Int("linked", report.Linked),
		slog.Int("already_linked", report.AlreadyLinked),
		slog.Int("unmatched", report.Unmatched),
		slog.Int("conflicts", len(report.Conflicts)))
	return report, nil
}

// repoSlugFromKey extracts the repository slug from an analysis project
// key. Platform keys take the form "prefix:slug"; a key without a prefix
// is used as-is.
func repoSlugFromKey(key string) string {
	if i := strings.LastIndex(key, ":"); i >= 0 {
		return key[i+1:]
	}
	return key
}

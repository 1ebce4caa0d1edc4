package sync

import (
	"context"
	"log/slog"

	"qualisync/internal/bootstrap/logging"
	domainsync "qualisync/internal/domain/sync"
	"qualisync/internal/ports"
)

// SyncSourceTarget ingests one workspace slice. The workspace and its
// projects form the prelude transaction; after that every repository and
// its children is one hierarchy unit in its own transaction. Failures
// inside a unit never spill into neighbouring units.
//
// The returned error is target-fatal: the workspace could not be fetched
// or reconciled at all. Partial damage is reported through stats and the
// failure list instead.
func (s *Service) SyncSourceTarget(ctx context.Context, target SourceTarget) (domainsync.Stats, []domainsync.RecordFailure, error) {
	stats := domainsync.NewStats()
	var failures []domainsync.RecordFailure

	rawWorkspace, err := s.source.Workspace(ctx, target.Workspace)
	if err != nil {
		return stats, failures, err
	}

	var rawProjects []ports.RawProject
	err = s.source.Projects(ctx, target.Workspace, func(p ports.RawProject) error {
		rawProjects = append(rawProjects, p)
		return nil
	})
	if err != nil {
		return stats, failures, err
	}

	var workspace ports.Workspace
	projectIDByKey := make(map[string]uint64)
	err = s.uow.WithTx(ctx, func(ctx context.Context) error {
		ws, outcome, err := s.reconcileWorkspace(ctx, rawWorkspace)
		if err != nil {
			return err
		}
		workspace = ws
		stats.Record(domainsync.KindWorkspace, outcome)

		for _, rawProject := range rawProjects {
			project, outcome, err := s.reconcileProject(ctx, workspace.WorkspaceID, rawProject)
			if err != nil {
				stats.RecordFailure(domainsync.KindProject)
				failures = append(failures, failureOf(domainsync.KindProject, rawProject.Key, err))
				continue
			}
			stats.Record(domainsync.KindProject, outcome)
			projectIDByKey[project.Key] = project.ProjectID
		}
		return nil
	})
	if err != nil {
		stats.RecordFailure(domainsync.KindWorkspace)
		return stats, failures, err
	}

	var rawRepositories []ports.RawRepository
	err = s.source.Repositories(ctx, target.Workspace, func(r ports.RawRepository) error {
		rawRepositories = append(rawRepositories, r)
		return nil
	})
	if err != nil {
		return stats, failures, err
	}

	wanted := make(map[string]bool, len(target.Repositories))
	for _, slug := range target.Repositories {
		wanted[slug] = true
	}

	for _, rawRepo := range rawRepositories {
		if err := ctx.Err(); err != nil {
			return stats, failures, err
		}
		if len(wanted) > 0 && !wanted[rawRepo.Slug] {
			continue
		}

		if err := s.syncRepositoryUnit(ctx, workspace, projectIDByKey, rawRepo, stats, &failures); err != nil {
			stats.RecordFailure(domainsync.KindRepository)
			failures = append(failures, failureOf(domainsync.KindRepository, rawRepo.Slug, err))
			logging.Warn(ctx, "repository unit failed",
				slog.String("workspace", target.Workspace),
				slog.String("repository", rawRepo.Slug),
				slog.String("error", err.Error()))
		}
	}

	return stats, failures, nil
}

// syncRepositoryUnit fetches all children of one repository, then writes
// the repository and its children in one transaction. A repository
// failure rolls the whole unit back; a child failure is recorded and the
// rest of the unit commits.
func (s *Service) syncRepositoryUnit(
	ctx context.Context,
	workspace ports.Workspace,
	projectIDByKey map[string]uint64,
	rawRepo ports.RawRepository,
	stats domainsync.Stats,
	failures *[]domainsync.RecordFailure,
) error {
	var commits []ports.RawCommit
	err := s.source.Commits(ctx, workspace.Slug, rawRepo.Slug, func(c ports.RawCommit) error {
		commits = append(commits, c)
		return nil
	})
	if err != nil {
		return err
	}

	var pullRequests []ports.RawPullRequest
	err = s.source.PullRequests(ctx, workspace.Slug, rawRepo.Slug, func(pr ports.RawPullRequest) error {
		pullRequests = append(pullRequests, pr)
		return nil
	})
	if err != nil {
		return err
	}

	var branches []ports.RawBranch
	err = s.source.Branches(ctx, workspace.Slug, rawRepo.Slug, func(b ports.RawBranch) error {
		branches = append(branches, b)
		return nil
	})
	if err != nil {
		return err
	}

	var projectID *uint64
	if rawRepo.ProjectKey != "" {
		if id, ok := projectIDByKey[rawRepo.ProjectKey]; ok {
			projectID = &id
		}
	}

	return s.uow.WithTx(ctx, func(ctx context.Context) error {
		repo, outcome, err := s.reconcileRepository(ctx, workspace.WorkspaceID, projectID, rawRepo)
		if err != nil {
			return err
		}
		stats.Record(domainsync.KindRepository, outcome)

		for _, raw := range commits {
			_, outcome, err := s.reconcileCommit(ctx, repo.RepositoryID, raw)
			if err != nil {
				stats.RecordFailure(domainsync.KindCommit)
				*failures = append(*failures, failureOf(domainsync.KindCommit, raw.Hash, err))
				continue
			}
			stats.Record(domainsync.KindCommit, outcome)
		}

		for _, raw := range pullRequests {
			_, outcome, err := s.reconcilePullRequest(ctx, repo.RepositoryID, raw)
			if err != nil {
				stats.RecordFailure(domainsync.KindPullRequest)
				*failures = append(*failures, failureOf(domainsync.KindPullRequest, raw.ExternalID, err))
				continue
			}
			stats.Record(domainsync.KindPullRequest, outcome)
		}

		for _, raw := range branches {
			_, outcome, err := s.reconcileBranch(ctx, repo.RepositoryID, raw)
			if err != nil {
				stats.RecordFailure(domainsync.KindBranch)
				*failures = append(*failures, failureOf(domainsync.KindBranch, raw.Name, err))
				continue
			}
			stats.Record(domainsync.KindBranch, outcome)
		}

		return nil
	})
}

func failureOf(kind domainsync.Kind, key string, err error) domainsync.RecordFailure {
	return domainsync.RecordFailure{Kind: kind, Key: key, Message: err.Error()}
}

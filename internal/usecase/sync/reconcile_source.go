package sync

import (
	"context"
	"errors"

	domainsync "qualisync/internal/domain/sync"
	"qualisync/internal/ports"
)

// Source-hierarchy reconcilers. Each resolves the incoming record by its
// primary natural key, falls back to the secondary key, then inserts or
// updates. An update always refreshes updated_at, even when no business
// field changed, so updated_at doubles as a last-seen marker.

func (s *Service) reconcileWorkspace(ctx context.Context, raw ports.RawWorkspace) (ports.Workspace, domainsync.Outcome, error) {
	if raw.UUID == "" && raw.Slug == "" {
		return ports.Workspace{}, "", &domainsync.DataContractViolation{Kind: domainsync.KindWorkspace, Field: "uuid", Value: ""}
	}

	lookup := func(ctx context.Context) (ports.Workspace, error) {
		if raw.UUID != "" {
			row, err := s.sourceCat.WorkspaceByUUID(ctx, raw.UUID)
			if err == nil || !errors.Is(err, ports.ErrNotFound) {
				return row, err
			}
		}
		if raw.Slug != "" {
			return s.sourceCat.WorkspaceBySlug(ctx, raw.Slug)
		}
		return ports.Workspace{}, ports.ErrNotFound
	}

	insert := func(ctx context.Context) (ports.Workspace, error) {
		now := s.now()
		return s.sourceCat.InsertWorkspace(ctx, ports.Workspace{
			UUID:      raw.UUID,
			Slug:      raw.Slug,
			Name:      raw.Name,
			IsPrivate: raw.IsPrivate,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	update := func(ctx context.Context, existing ports.Workspace) (ports.Workspace, domainsync.Outcome, error) {
		next := existing
		next.Slug = raw.Slug
		next.Name = raw.Name
		next.IsPrivate = raw.IsPrivate
		if raw.UUID != "" {
			next.UUID = raw.UUID
		}

		outcome := domainsync.OutcomeUnchanged
		if next != existing {
			outcome = domainsync.OutcomeUpdated
		}
		next.UpdatedAt = s.now()
		if err := s.sourceCat.UpdateWorkspace(ctx, next); err != nil {
			return ports.Workspace{}, "", err
		}
		return next, outcome, nil
	}

	return reconcileFlow(ctx, domainsync.KindWorkspace, lookup, insert, update)
}

func (s *Service) reconcileProject(ctx context.Context, workspaceID uint64, raw ports.RawProject) (ports.Project, domainsync.Outcome, error) {
	if workspaceID == 0 {
		return ports.Project{}, "", &domainsync.ReferentialIntegrityError{Kind: domainsync.KindProject, Parent: domainsync.KindWorkspace}
	}
	if raw.UUID == "" && raw.Key == "" {
		return ports.Project{}, "", &domainsync.DataContractViolation{Kind: domainsync.KindProject, Field: "key", Value: ""}
	}

	lookup := func(ctx context.Context) (ports.Project, error) {
		if raw.UUID != "" {
			row, err := s.sourceCat.ProjectByUUID(ctx, raw.UUID)
			if err == nil || !errors.Is(err, ports.ErrNotFound) {
				return row, err
			}
		}
		if raw.Key != "" {
			return s.sourceCat.ProjectByKey(ctx, raw.Key)
		}
		return ports.Project{}, ports.ErrNotFound
	}

	insert := func(ctx context.Context) (ports.Project, error) {
		now := s.now()
		return s.sourceCat.InsertProject(ctx, ports.Project{
			WorkspaceID: workspaceID,
			UUID:        raw.UUID,
			Key:         raw.Key,
			Name:        raw.Name,
			Description: raw.Description,
			IsPrivate:   raw.IsPrivate,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	update := func(ctx context.Context, existing ports.Project) (ports.Project, domainsync.Outcome, error) {
		next := existing
		next.WorkspaceID = workspaceID
		next.Key = raw.Key
		next.Name = raw.Name
		next.Description = raw.Description
		next.IsPrivate = raw.IsPrivate
		if raw.UUID != "" {
			next.UUID = raw.UUID
		}

		outcome := domainsync.OutcomeUnchanged
		if next != existing {
			outcome = domainsync.OutcomeUpdated
		}
		next.UpdatedAt = s.now()
		if err := s.sourceCat.UpdateProject(ctx, next); err != nil {
			return ports.Project{}, "", err
		}
		return next, outcome, nil
	}

	return reconcileFlow(ctx, domainsync.KindProject, lookup, insert, update)
}

func (s *Service) reconcileRepository(ctx context.Context, workspaceID uint64, projectID *uint64, raw ports.RawRepository) (ports.Repository, domainsync.Outcome, error) {
	if workspaceID == 0 {
		return ports.Repository{}, "", &domainsync.ReferentialIntegrityError{Kind: domainsync.KindRepository, Parent: domainsync.KindWorkspace}
	}
	if raw.UUID == "" && raw.Slug == "" {
		return ports.Repository{}, "", &domainsync.DataContractViolation{Kind: domainsync.KindRepository, Field: "uuid", Value: ""}
	}

	lookup := func(ctx context.Context) (ports.Repository, error) {
		if raw.UUID != "" {
			row, err := s.sourceCat.RepositoryByUUID(ctx, raw.UUID)
			if err == nil || !errors.Is(err, ports.ErrNotFound) {
				return row, err
			}
		}
		if raw.Slug != "" {
			return s.sourceCat.RepositoryBySlug(ctx, workspaceID, raw.Slug)
		}
		return ports.Repository{}, ports.ErrNotFound
	}

	insert := func(ctx context.Context) (ports.Repository, error) {
		now := s.now()
		return s.sourceCat.InsertRepository(ctx, ports.Repository{
			WorkspaceID: workspaceID,
			ProjectID:   projectID,
			UUID:        raw.UUID,
			Slug:        raw.Slug,
			Name:        raw.Name,
			Description: raw.Description,
			IsPrivate:   raw.IsPrivate,
			Language:    raw.Language,
			SizeBytes:   raw.SizeBytes,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	update := func(ctx context.Context, existing ports.Repository) (ports.Repository, domainsync.Outcome, error) {
		next := existing
		next.WorkspaceID = workspaceID
		next.Slug = raw.Slug
		next.Name = raw.Name
		next.Description = raw.Description
		next.IsPrivate = raw.IsPrivate
		next.Language = raw.Language
		next.SizeBytes = raw.SizeBytes
		if raw.UUID != "" {
			next.UUID = raw.UUID
		}
		if projectID != nil {
			next.ProjectID = projectID
		}

		outcome := domainsync.OutcomeUnchanged
		if !repositoriesEqual(next, existing) {
			outcome = domainsync.OutcomeUpdated
		}
		next.UpdatedAt = s.now()
		if err := s.sourceCat.UpdateRepository(ctx, next); err != nil {
			return ports.Repository{}, "", err
		}
		return next, outcome, nil
	}

	return reconcileFlow(ctx, domainsync.KindRepository, lookup, insert, update)
}

func repositoriesEqual(a, b ports.Repository) bool {
	aProject, bProject := uint64(0), uint64(0)
	if a.ProjectID != nil {
		aProject = *a.ProjectID
	}
	if b.ProjectID != nil {
		bProject = *b.ProjectID
	}
	a.ProjectID, b.ProjectID = nil, nil
	return a == b && aProject == bProject
}

func (s *Service) reconcileCommit(ctx context.Context, repositoryID uint64, raw ports.RawCommit) (ports.Commit, domainsync.Outcome, error) {
	if repositoryID == 0 {
		return ports.Commit{}, "", &domainsync.ReferentialIntegrityError{Kind: domainsync.KindCommit, Parent: domainsync.KindRepository}
	}
	if raw.Hash == "" {
		return ports.Commit{}, "", &domainsync.DataContractViolation{Kind: domainsync.KindCommit, Field: "hash", Value: ""}
	}

	lookup := func(ctx context.Context) (ports.Commit, error) {
		return s.sourceCat.CommitByHash(ctx, raw.Hash)
	}

	insert := func(ctx context.Context) (ports.Commit, error) {
		now := s.now()
		return s.sourceCat.InsertCommit(ctx, ports.Commit{
			RepositoryID: repositoryID,
			Hash:         raw.Hash,
			Message:      raw.Message,
			AuthorName:   raw.AuthorName,
			AuthorEmail:  raw.AuthorEmail,
			AuthoredAt:   raw.AuthoredAt,
			CommittedAt:  raw.CommittedAt,
			IsMerge:      raw.IsMerge,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	update := func(ctx context.Context, existing ports.Commit) (ports.Commit, domainsync.Outcome, error) {
		next := existing
		next.RepositoryID = repositoryID
		next.Message = raw.Message
		next.AuthorName = raw.AuthorName
		next.AuthorEmail = raw.AuthorEmail
		next.AuthoredAt = raw.AuthoredAt
		next.CommittedAt = raw.CommittedAt
		next.IsMerge = raw.IsMerge

		outcome := domainsync.OutcomeUnchanged
		if next != existing {
			outcome = domainsync.OutcomeUpdated
		}
		next.UpdatedAt = s.now()
		if err := s.sourceCat.UpdateCommit(ctx, next); err != nil {
			return ports.Commit{}, "", err
		}
		return next, outcome, nil
	}

	return reconcileFlow(ctx, domainsync.KindCommit, lookup, insert, update)
}

func (s *Service) reconcilePullRequest(ctx context.Context, repositoryID uint64, raw ports.RawPullRequest) (ports.PullRequest, domainsync.Outcome, error) {
	if repositoryID == 0 {
		return ports.PullRequest{}, "", &domainsync.ReferentialIntegrityError{Kind: domainsync.KindPullRequest, Parent: domainsync.KindRepository}
	}
	if raw.ExternalID == "" || raw.ExternalID == "0" {
		return ports.PullRequest{}, "", &domainsync.DataContractViolation{Kind: domainsync.KindPullRequest, Field: "id", Value: raw.ExternalID}
	}
	if err := domainsync.ValidateEnum(domainsync.KindPullRequest, "state", raw.State, domainsync.PullRequestStates); err != nil {
		return ports.PullRequest{}, "", err
	}
	state := domainsync.NormalizeEnum(raw.State)

	lookup := func(ctx context.Context) (ports.PullRequest, error) {
		return s.sourceCat.PullRequestByExternalID(ctx, raw.ExternalID)
	}

	insert := func(ctx context.Context) (ports.PullRequest, error) {
		now := s.now()
		return s.sourceCat.InsertPullRequest(ctx, ports.PullRequest{
			RepositoryID: repositoryID,
			ExternalID:   raw.ExternalID,
			Title:        raw.Title,
			Description:  raw.Description,
			State:        state,
			Author:       raw.Author,
			OpenedAt:     raw.CreatedOn,
			LastActivity: raw.UpdatedOn,
			ClosedAt:     raw.ClosedOn,
			MergedAt:     raw.MergedOn,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	update := func(ctx context.Context, existing ports.PullRequest) (ports.PullRequest, domainsync.Outcome, error) {
		next := existing
		next.RepositoryID = repositoryID
		next.Title = raw.Title
		next.Description = raw.Description
		next.State = state
		next.Author = raw.Author
		next.OpenedAt = raw.CreatedOn
		next.LastActivity = raw.UpdatedOn
		next.ClosedAt = raw.ClosedOn
		next.MergedAt = raw.MergedOn

		outcome := domainsync.OutcomeUnchanged
		if next != existing {
			outcome = domainsync.OutcomeUpdated
		}
		next.UpdatedAt = s.now()
		if err := s.sourceCat.UpdatePullRequest(ctx, next); err != nil {
			return ports.PullRequest{}, "", err
		}
		return next, outcome, nil
	}

	return reconcileFlow(ctx, domainsync.KindPullRequest, lookup, insert, update)
}

func (s *Service) reconcileBranch(ctx context.Context, repositoryID uint64, raw ports.RawBranch) (ports.Branch, domainsync.Outcome, error) {
	if repositoryID == 0 {
		return ports.Branch{}, "", &domainsync.ReferentialIntegrityError{Kind: domainsync.KindBranch, Parent: domainsync.KindRepository}
	}
	if raw.Name == "" {
		return ports.Branch{}, "", &domainsync.DataContractViolation{Kind: domainsync.KindBranch, Field: "name", Value: ""}
	}

	lookup := func(ctx context.Context) (ports.Branch, error) {
		return s.sourceCat.BranchByName(ctx, repositoryID, raw.Name)
	}

	insert := func(ctx context.Context) (ports.Branch, error) {
		now := s.now()
		return s.sourceCat.InsertBranch(ctx, ports.Branch{
			RepositoryID: repositoryID,
			Name:         raw.Name,
			TargetHash:   raw.TargetHash,
			IsDefault:    raw.IsDefault,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	update := func(ctx context.Context, existing ports.Branch) (ports.Branch, domainsync.Outcome, error) {
		next := existing
		next.TargetHash = raw.TargetHash
		next.IsDefault = raw.IsDefault

		outcome := domainsync.OutcomeUnchanged
		if next != existing {
			outcome = domainsync.OutcomeUpdated
		}
		next.UpdatedAt = s.now()
		if err := s.sourceCat.UpdateBranch(ctx, next); err != nil {
			return ports.Branch{}, "", err
		}
		return next, outcome, nil
	}

	return reconcileFlow(ctx, domainsync.KindBranch, lookup, insert, update)
}

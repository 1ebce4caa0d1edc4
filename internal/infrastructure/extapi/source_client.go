package extapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	domainsync "qualisync/internal/domain/sync"
	"qualisync/internal/ports"
)

// SourceClient talks to the source-hosting platform. Listings follow the
// platform's cursor style: every page carries an absolute "next" URL and
// the walk ends when it is absent.
type SourceClient struct {
	*client
}

var _ ports.SourceAPI = (*SourceClient)(nil)

func NewSourceClient(cfg Config) *SourceClient {
	return &SourceClient{client: newClient(cfg)}
}

type srcWorkspace struct {
	UUID      string `json:"uuid"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	IsPrivate bool   `json:"is_private"`
}

type srcProject struct {
	UUID        string `json:"uuid"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"is_private"`
}

type srcRepository struct {
	UUID        string `json:"uuid"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"is_private"`
	Language    string `json:"language"`
	Size        int64  `json:"size"`
	Project     struct {
		Key string `json:"key"`
	} `json:"project"`
}

type srcCommit struct {
	Hash    string `json:"hash"`
	Message string `json:"message"`
	Date    string `json:"date"`
	Author  struct {
		Raw  string `json:"raw"`
		User struct {
			DisplayName string `json:"display_name"`
		} `json:"user"`
	} `json:"author"`
	Parents []struct {
		Hash string `json:"hash"`
	} `json:"parents"`
}

type srcPullRequest struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	State       string `json:"state"`
	Author      struct {
		DisplayName string `json:"display_name"`
	} `json:"author"`
	CreatedOn string `json:"created_on"`
	UpdatedOn string `json:"updated_on"`
	ClosedOn  string `json:"closed_on"`
	MergedOn  string `json:"merged_on"`
}

type srcBranch struct {
	Name   string `json:"name"`
	Target struct {
		Hash string `json:"hash"`
	} `json:"target"`
	IsDefault bool `json:"is_default"`
}

func (s *SourceClient) Workspace(ctx context.Context, slug string) (ports.RawWorkspace, error) {
	var wire srcWorkspace
	u := s.endpoint("/workspaces/" + url.PathEscape(slug))
	if err := s.getWithRetry(ctx, u, &wire); err != nil {
		return ports.RawWorkspace{}, err
	}
	return ports.RawWorkspace{
		UUID:      trimBraces(wire.UUID),
		Slug:      wire.Slug,
		Name:      wire.Name,
		IsPrivate: wire.IsPrivate,
	}, nil
}

func (s *SourceClient) Projects(ctx context.Context, workspace string, fn func(ports.RawProject) error) error {
	path := fmt.Sprintf("/workspaces/%s/projects?pagelen=%d", url.PathEscape(workspace), s.pageSize)
	return s.list(ctx, path, func(raw json.RawMessage) error {
		var wire srcProject
		if err := decodeRecord(raw, &wire, domainsync.KindProject); err != nil {
			return err
		}
		return fn(ports.RawProject{
			UUID:        trimBraces(wire.UUID),
			Key:         wire.Key,
			Name:        wire.Name,
			Description: wire.Description,
			IsPrivate:   wire.IsPrivate,
		})
	})
}

func (s *SourceClient) Repositories(ctx context.Context, workspace string, fn func(ports.RawRepository) error) error {
	path := fmt.Sprintf("/repositories/%s?pagelen=%d", url.PathEscape(workspace), s.pageSize)
	return s.list(ctx, path, func(raw json.RawMessage) error {
		var wire srcRepository
		if err := decodeRecord(raw, &wire, domainsync.KindRepository); err != nil {
			return err
		}
		return fn(ports.RawRepository{
			UUID:        trimBraces(wire.UUID),
			Slug:        wire.Slug,
			Name:        wire.Name,
			Description: wire.Description,
			ProjectKey:  wire.Project.Key,
			IsPrivate:   wire.IsPrivate,
			Language:    wire.Language,
			SizeBytes:   wire.Size,
		})
	})
}

func (s *SourceClient) Commits(ctx context.Context, workspace, repoSlug string, fn func(ports.RawCommit) error) error {
	path := fmt.Sprintf("/repositories/%s/%s/commits?pagelen=%d",
		url.PathEscape(workspace), url.PathEscape(repoSlug), s.pageSize)
	return s.list(ctx, path, func(raw json.RawMessage) error {
		var wire srcCommit
		if err := decodeRecord(raw, &wire, domainsync.KindCommit); err != nil {
			return err
		}
		name, email := splitAuthor(wire.Author.Raw)
		if name == "" {
			name = wire.Author.User.DisplayName
		}
		return fn(ports.RawCommit{
			Hash:        wire.Hash,
			Message:     wire.Message,
			AuthorName:  name,
			AuthorEmail: email,
			AuthoredAt:  wire.Date,
			CommittedAt: wire.Date,
			IsMerge:     len(wire.Parents) > 1,
		})
	})
}

func (s *SourceClient) PullRequests(ctx context.Context, workspace, repoSlug string, fn func(ports.RawPullRequest) error) error {
	path := fmt.Sprintf("/repositories/%s/%s/pullrequests?state=OPEN&state=MERGED&state=DECLINED&state=SUPERSEDED&pagelen=%d",
		url.PathEscape(workspace), url.PathEscape(repoSlug), s.pageSize)
	return s.list(ctx, path, func(raw json.RawMessage) error {
		var wire srcPullRequest
		if err := decodeRecord(raw, &wire, domainsync.KindPullRequest); err != nil {
			return err
		}
		return fn(ports.RawPullRequest{
			ExternalID:  strconv.FormatInt(wire.ID, 10),
			Title:       wire.Title,
			Description: wire.Description,
			State:       wire.State,
			Author:      wire.Author.DisplayName,
			CreatedOn:   wire.CreatedOn,
			UpdatedOn:   wire.UpdatedOn,
			ClosedOn:    wire.ClosedOn,
			MergedOn:    wire.MergedOn,
		})
	})
}

func (s *SourceClient) Branches(ctx context.Context, workspace, repoSlug string, fn func(ports.RawBranch) error) error {
	path := fmt.Sprintf("/repositories/%s/%s/refs/branches?pagelen=%d",
		url.PathEscape(workspace), url.PathEscape(repoSlug), s.pageSize)
	return s.list(ctx, path, func(raw json.RawMessage) error {
		var wire srcBranch
		if err := decodeRecord(raw, &wire, domainsync.KindBranch); err != nil {
			return err
		}
		return fn(ports.RawBranch{
			Name:       wire.Name,
			TargetHash: wire.Target.Hash,
			IsDefault:  wire.IsDefault,
		})
	})
}

// list walks one cursor-style listing. The cursor is the absolute URL of
// the next page.
func (s *SourceClient) list(ctx context.Context, path string, fn func(json.RawMessage) error) error {
	first := s.endpoint(path)
	return s.eachPage(ctx, func(ctx context.Context, cursor string) (page, error) {
		pageURL := first
		if cursor != "" {
			pageURL = cursor
		}
		var env struct {
			Values []json.RawMessage `json:"values"`
			Next   string            `json:"next"`
		}
		if err := s.getJSON(ctx, pageURL, &env); err != nil {
			return page{}, err
		}
		return page{Values: env.Values, Next: env.Next}, nil
	}, fn)
}

func decodeRecord(raw json.RawMessage, out any, kind domainsync.Kind) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return &domainsync.DataContractViolation{Kind: kind, Field: "payload", Value: err.Error()}
	}
	return nil
}

// trimBraces strips the platform's brace-wrapped identifier form,
// "{uuid}" to "uuid".
func trimBraces(s string) string {
	return strings.Trim(s, "{}")
}

// splitAuthor separates a "Name <email>" author line.
func splitAuthor(raw string) (name, email string) {
	open := strings.LastIndex(raw, "<")
	end := strings.LastIndex(raw, ">")
	if open < 0 || end < open {
		return strings.TrimSpace(raw), ""
	}
	return strings.TrimSpace(raw[:open]), strings.TrimSpace(raw[open+1 : end])
}

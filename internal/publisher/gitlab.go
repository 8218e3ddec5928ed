package publisher

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/xanzy/go-gitlab"
)

// GitLab publishes merge request notes and commit comments through the GitLab API.
type GitLab struct {
	client *gitlab.Client
	logger hclog.Logger
}

// NewGitLab creates a GitLab publisher. An empty baseURL targets gitlab.com.
func NewGitLab(base *http.Client, baseURL, token string, retryMax int, logger hclog.Logger) (*GitLab, error) {
	opts := []gitlab.ClientOptionFunc{gitlab.WithCustomRetryMax(retryMax)}
	if base != nil {
		opts = append(opts, gitlab.WithHTTPClient(base))
	}
	if baseURL != "" {
		opts = append(opts, gitlab.WithBaseURL(baseURL))
	}

	client, err := gitlab.NewClient(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}
	return &GitLab{client: client, logger: logger}, nil
}

func projectID(owner, repo string) string {
	return strings.Trim(owner, "/") + "/" + strings.Trim(repo, "/")
}

// CreatePullRequestComment adds a note to a merge request.
func (g *GitLab) CreatePullRequestComment(ctx context.Context, owner, repo string, number int, body string) error {
	pid := projectID(owner, repo)
	g.logger.Debug("creating merge request note", "project", pid, "iid", number)

	_, _, err := g.client.Notes.CreateMergeRequestNote(pid, number, &gitlab.CreateMergeRequestNoteOptions{
		Body: gitlab.String(body),
	}, gitlab.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to comment on merge request %s!%d: %w", pid, number, err)
	}
	return nil
}

// CreateCommitComment adds a comment to a commit. GitLab anchors comments by
// line only, so a diff position without a line is ignored.
func (g *GitLab) CreateCommitComment(ctx context.Context, owner, repo, sha string, comment CommitComment) error {
	pid := projectID(owner, repo)
	g.logger.Debug("creating commit comment", "project", pid, "sha", sha)

	opt := &gitlab.PostCommitCommentOptions{Note: gitlab.String(comment.Body)}
	if comment.Path != "" && comment.Line > 0 {
		opt.Path = gitlab.String(strings.TrimPrefix(comment.Path, "/"))
		opt.Line = gitlab.Int(comment.Line)
		opt.LineType = gitlab.String("new")
	} else if comment.Position > 0 {
		g.logger.Debug("diff positions are not supported for GitLab commit comments", "position", comment.Position)
	}

	if _, _, err := g.client.Commits.PostCommitComment(pid, sha, opt, gitlab.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to comment on commit %s@%s: %w", pid, sha, err)
	}
	return nil
}

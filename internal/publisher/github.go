package publisher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v47/github"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"
)

const publicGitHubHost = "github.com"

// GitHub publishes comments through the GitHub REST API.
type GitHub struct {
	client *github.Client
	logger hclog.Logger
}

// NewGitHub creates a GitHub publisher. base is the transport the OAuth
// client wraps. A baseURL other than github.com selects GitHub Enterprise.
func NewGitHub(base *http.Client, baseURL, token string, logger hclog.Logger) (*GitHub, error) {
	httpClient := base
	if token != "" {
		ctx := context.Background()
		if base != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
		}
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}

	if isPublicGitHub(baseURL) {
		return &GitHub{client: github.NewClient(httpClient), logger: logger}, nil
	}

	client, err := github.NewEnterpriseClient(baseURL, baseURL, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub Enterprise client for %q: %w", baseURL, err)
	}
	return &GitHub{client: client, logger: logger}, nil
}

func isPublicGitHub(baseURL string) bool {
	if baseURL == "" {
		return true
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == publicGitHubHost || host == "api."+publicGitHubHost
}

// CreatePullRequestComment adds a conversation comment to a pull request.
func (g *GitHub) CreatePullRequestComment(ctx context.Context, owner, repo string, number int, body string) error {
	g.logger.Debug("creating pull request comment", "owner", owner, "repository", repo, "number", number)

	_, _, err := g.client.Issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return fmt.Errorf("failed to comment on pull request %s/%s#%d: %w", owner, repo, number, err)
	}
	return nil
}

// CreateCommitComment adds a comment to a commit, anchored to a diff position when one is given.
func (g *GitHub) CreateCommitComment(ctx context.Context, owner, repo, sha string, comment CommitComment) error {
	g.logger.Debug("creating commit comment", "owner", owner, "repository", repo, "sha", sha)

	payload := &github.RepositoryComment{Body: github.String(comment.Body)}
	if comment.Path != "" {
		payload.Path = github.String(strings.TrimPrefix(comment.Path, "/"))
	}
	if comment.Position > 0 {
		payload.Position = github.Int(comment.Position)
	}
	if comment.Line > 0 {
		g.logger.Debug("line anchors are not sent for GitHub commit comments", "line", comment.Line)
	}

	if _, _, err := g.client.Repositories.CreateComment(ctx, owner, repo, sha, payload); err != nil {
		return fmt.Errorf("failed to comment on commit %s/%s@%s: %w", owner, repo, sha, err)
	}
	return nil
}

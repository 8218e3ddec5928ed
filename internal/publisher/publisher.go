// Package publisher creates report comments on GitHub, GitLab and Bitbucket Server.
package publisher

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/sfl-io/sflreport/internal/ci"
	"github.com/sfl-io/sflreport/pkg/shared/config"
	"github.com/sfl-io/sflreport/pkg/shared/httpclient"
)

// CommitComment is a comment attached to a commit. Path, Position and Line
// are optional anchors; zero values leave the comment on the commit itself.
type CommitComment struct {
	Body     string
	Path     string
	Position int
	Line     int
}

// Publisher creates comments on a hosted repository.
type Publisher interface {
	CreatePullRequestComment(ctx context.Context, owner, repo string, number int, body string) error
	CreateCommitComment(ctx context.Context, owner, repo, sha string, comment CommitComment) error
}

// Options carries the connection settings of a publisher.
type Options struct {
	BaseURL string
	Token   string
}

// New returns the publisher for the given VCS kind. An unknown kind falls back to GitHub.
func New(kind ci.CIKind, cfg *config.Config, opts Options, logger hclog.Logger) (Publisher, error) {
	restyClient := httpclient.InitializeRestyClient(logger.Named("http"), cfg)

	switch kind {
	case ci.CIGitLab:
		retryMax := config.DefaultHTTPConfig().RetryCount
		if cfg != nil {
			retryMax = config.SetThen(cfg.HTTPClient.RetryCount, retryMax)
		}
		return NewGitLab(restyClient.GetClient(), opts.BaseURL, opts.Token, retryMax, logger.Named("gitlab"))
	case ci.CIBitbucket:
		return NewBitbucket(restyClient, opts.BaseURL, opts.Token, logger.Named("bitbucket"))
	case ci.CIGitHub, ci.CIUnknown:
		return NewGitHub(restyClient.GetClient(), opts.BaseURL, opts.Token, logger.Named("github"))
	default:
		return nil, fmt.Errorf("unsupported vcs %q", kind)
	}
}

// Package integrator publishes assembled reports to the hosting VCS and stores their artifacts.
package integrator

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/sfl-io/sflreport/internal/ci"
	"github.com/sfl-io/sflreport/internal/publisher"
	"github.com/sfl-io/sflreport/internal/report"
	"github.com/sfl-io/sflreport/pkg/shared/artifacts"
	serrors "github.com/sfl-io/sflreport/pkg/shared/errors"
)

const (
	ActionCommentPR     = "commentPR"
	ActionCommentCommit = "commentCommit"
)

// ArtifactStore is the part of artifacts.Store used for uploads.
type ArtifactStore interface {
	Upload(ctx context.Context, name string, paths []string, rootDir string, opts artifacts.Options) (*artifacts.UploadResponse, error)
}

// Integrator turns analysis results into a published comment.
type Integrator struct {
	publisher publisher.Publisher
	logger    hclog.Logger
}

// New creates an Integrator publishing through pub.
func New(pub publisher.Publisher, logger hclog.Logger) *Integrator {
	return &Integrator{
		publisher: pub,
		logger:    logger,
	}
}

// Action names the comment call a repository context results in.
func Action(rc ci.RepositoryContext) string {
	if rc.InPullRequest {
		return ActionCommentPR
	}
	return ActionCommentCommit
}

// CommentLineSuspiciousness renders the report for in and publishes it with
// exactly one comment call: a pull request comment in pull request mode,
// otherwise a commit comment on the event commit. The rendered report is
// returned even when publishing fails.
func (i *Integrator) CommentLineSuspiciousness(ctx context.Context, rc ci.RepositoryContext, renderer *report.Renderer, in report.Input) (*report.Report, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := rc.Validate(); err != nil {
		return nil, serrors.New(serrors.KindValidation, "invalid repository context", err)
	}
	if renderer == nil {
		return nil, serrors.Validation("arg 'renderer' must not be nil")
	}

	rep := renderer.Build(in)
	action := Action(rc)
	i.logger.Info("publishing report", "action", action, "owner", rc.Owner, "repository", rc.Repository, "findings", len(rep.Lines))

	if err := i.publish(ctx, rc, action, rep.Body); err != nil {
		return rep, serrors.New(serrors.KindPublish,
			"encountered an error when creating Commit/PR comment based on threshold of algorithms", err)
	}

	i.logger.Debug("report published", "action", action)
	return rep, nil
}

func (i *Integrator) publish(ctx context.Context, rc ci.RepositoryContext, action, body string) error {
	switch action {
	case ActionCommentPR:
		return i.publisher.CreatePullRequestComment(ctx, rc.Owner, rc.Repository, rc.PullRequestNumber, body)
	case ActionCommentCommit:
		return i.publisher.CreateCommitComment(ctx, rc.Owner, rc.Repository, rc.EventSHA, publisher.CommitComment{Body: body})
	default:
		return fmt.Errorf("unsupported action: %q", action)
	}
}

// UploadArtifacts stores the report files. Individual failures are logged
// and returned in the response without failing the call.
func (i *Integrator) UploadArtifacts(ctx context.Context, store ArtifactStore, name string, paths []string, rootDir string) (*artifacts.UploadResponse, error) {
	if store == nil {
		return nil, serrors.Validation("arg 'store' must not be nil")
	}
	if name == "" {
		return nil, serrors.Validation("arg 'name' must not be empty")
	}
	if len(paths) == 0 {
		return nil, serrors.Validation("arg 'paths' must not be empty")
	}

	resp, err := store.Upload(ctx, name, paths, rootDir, artifacts.Options{ContinueOnError: true})
	if err != nil {
		return resp, err
	}

	if len(resp.FailedItems) > 0 {
		i.logger.Warn("some artifacts were not uploaded", "failed", len(resp.FailedItems), "uploaded", len(resp.Uploaded))
	} else {
		i.logger.Info("artifacts uploaded", "key_prefix", resp.KeyPrefix, "count", len(resp.Uploaded))
	}
	return resp, nil
}

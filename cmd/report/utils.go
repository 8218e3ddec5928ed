package report

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	"github.com/sfl-io/sflreport/internal/ci"
	"github.com/sfl-io/sflreport/internal/git"
	"github.com/sfl-io/sflreport/internal/publisher"
	sflreport "github.com/sfl-io/sflreport/internal/report"
	"github.com/sfl-io/sflreport/pkg/shared/config"
	"github.com/sfl-io/sflreport/pkg/shared/files"
)

// applyReportDefaults fills ranking settings that were not passed as flags
// from the config file and returns the effective report configuration.
func applyReportDefaults(options *RunOptionsReport, flags *pflag.FlagSet, cfg config.Report) config.Report {
	if !flags.Changed("ranking") && len(cfg.Ranking) > 0 {
		options.Ranking = cfg.Ranking
	}
	if !flags.Changed("threshold") && len(cfg.Thresholds) > 0 {
		options.Thresholds = cfg.Thresholds
	}
	if !flags.Changed("order") && cfg.Order != "" {
		options.Order = cfg.Order
	}

	cfg.Ranking = options.Ranking
	cfg.Thresholds = options.Thresholds
	cfg.Order = options.Order
	effective := config.ReportDefaults(cfg)

	options.Ranking = effective.Ranking
	options.Thresholds = effective.Thresholds
	options.Order = effective.Order
	return effective
}

// resolveRepository builds the repository context from flags, the CI
// environment and finally the local git checkout.
func resolveRepository(logger hclog.Logger, options *RunOptionsReport, cfg *config.Config, lookup ci.LookupFunc) (ci.RepositoryContext, *git.RepositoryMetadata, error) {
	vcs := options.VCS
	if vcs == "" {
		vcs = cfg.Publisher.VCS
	}

	rc, err := ci.ResolveRepositoryContext(logger, ci.Overrides{
		VCS:           vcs,
		Owner:         options.Namespace,
		Repository:    options.Repository,
		CommitSHA:     options.Commit,
		PullRequestID: options.PullRequestID,
	}, lookup)
	if err != nil {
		return ci.RepositoryContext{}, nil, err
	}

	start := rc.RootDirectory
	if start == "" {
		start = "."
	}
	md, err := git.CollectRepositoryMetadata(start)
	if err != nil {
		logger.Debug("git metadata fallback failed", "error", err)
		return rc, nil, nil
	}
	applyGitMetadata(&rc, md)
	return rc, md, nil
}

// applyGitMetadata fills the coordinates the CI environment and flags left empty.
func applyGitMetadata(rc *ci.RepositoryContext, md *git.RepositoryMetadata) {
	if md == nil {
		return
	}
	if rc.ServerURL == "" && md.Host != "" {
		rc.ServerURL = "https://" + md.Host
	}
	if rc.Owner == "" {
		rc.Owner = md.Owner
	}
	if rc.Repository == "" {
		rc.Repository = md.Repository
	}
	if rc.CommitSHA == "" {
		rc.CommitSHA = md.CommitHash
	}
	if rc.EventSHA == "" {
		rc.EventSHA = md.CommitHash
	}
	if rc.RootDirectory == "" {
		rc.RootDirectory = md.RootFolder
	}
}

// repositoryRoot returns the checkout used to resolve source paths.
func repositoryRoot(rc ci.RepositoryContext, md *git.RepositoryMetadata) string {
	if rc.RootDirectory != "" {
		return rc.RootDirectory
	}
	if md != nil {
		return md.RootFolder
	}
	return "."
}

// publisherOptions picks the API base URL and token for the resolved VCS.
func publisherOptions(cfg *config.Config, rc ci.RepositoryContext, lookup config.LookupFunc) publisher.Options {
	vcs := rc.Kind.String()
	if rc.Kind == ci.CIUnknown {
		vcs = "github"
	}

	// Pipelines reports bitbucket.org, which is not a Bitbucket Server API.
	baseURL := cfg.Publisher.BaseURL
	if baseURL == "" && rc.Kind != ci.CIBitbucket {
		baseURL = rc.ServerURL
	}

	return publisher.Options{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   config.ResolveToken(cfg, vcs, lookup),
	}
}

// writeOutputs stores the comment body and its SARIF rendition in dir.
func writeOutputs(dir string, rep *sflreport.Report, toolName string) ([]string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output path: %w", err)
	}

	commentPath := filepath.Join(dir, commentFileName)
	if err := files.WriteFile(commentPath, []byte(rep.Body)); err != nil {
		return nil, fmt.Errorf("failed to write comment: %w", err)
	}

	var sarifOut bytes.Buffer
	if err := sflreport.WriteSarif(&sarifOut, rep, toolName); err != nil {
		return nil, fmt.Errorf("failed to render SARIF report: %w", err)
	}
	sarifPath := filepath.Join(dir, sarifFileName)
	if err := files.WriteFile(sarifPath, sarifOut.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to write SARIF report: %w", err)
	}

	return []string{commentPath, sarifPath}, nil
}

package report

import (
	"fmt"
	"strings"

	"github.com/sfl-io/sflreport/internal/ci"
	"github.com/sfl-io/sflreport/pkg/shared/config"
	"github.com/sfl-io/sflreport/pkg/shared/errors"
	"github.com/sfl-io/sflreport/pkg/shared/files"
)

// validateReportArgs validates the command options after the repository context was resolved.
func validateReportArgs(options *RunOptionsReport, rc ci.RepositoryContext, args []string) error {
	var (
		missing []string
		issues  []string
	)

	if len(args) > 0 {
		issues = append(issues, fmt.Sprintf("unexpected positional arguments: %s", strings.Join(args, ", ")))
	}

	if strings.TrimSpace(options.BuildPath) == "" {
		missing = append(missing, "build-path")
	} else {
		expanded, err := files.ExpandPath(options.BuildPath)
		if err != nil {
			issues = append(issues, fmt.Sprintf("failed to expand 'build-path' %q: %v", options.BuildPath, err))
		} else {
			options.BuildPath = expanded
		}
	}
	if options.OutputPath != "" {
		expanded, err := files.ExpandPath(options.OutputPath)
		if err != nil {
			issues = append(issues, fmt.Sprintf("failed to expand 'output' %q: %v", options.OutputPath, err))
		} else {
			options.OutputPath = expanded
		}
	}
	if !options.DryRun {
		if rc.Owner == "" {
			missing = append(missing, "namespace")
		}
		if rc.Repository == "" {
			missing = append(missing, "repository")
		}
		if !rc.InPullRequest && rc.EventSHA == "" {
			missing = append(missing, "commit")
		}
	}

	if len(missing) > 0 {
		issues = append(issues, fmt.Sprintf("missing required flags: %s", strings.Join(missing, ", ")))
	}

	if err := config.ValidateRanking(options.Ranking, options.Thresholds, options.Order); err != nil {
		issues = append(issues, err.Error())
	}
	if options.PullRequestID < 0 {
		issues = append(issues, "'pull-request-id' cannot be negative")
	}
	if options.PullRequestID > 0 && options.Commit != "" {
		issues = append(issues, "'pull-request-id' and 'commit' are mutually exclusive")
	}
	if options.UploadArtifacts && strings.TrimSpace(options.OutputPath) == "" {
		issues = append(issues, "'upload-artifacts' requires 'output'")
	}

	if len(issues) > 0 {
		return errors.Validation("%s", strings.Join(issues, "; "))
	}

	return nil
}

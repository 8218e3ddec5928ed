package report

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/sfl-io/sflreport/internal/gzoltar"
	"github.com/sfl-io/sflreport/internal/integrator"
	"github.com/sfl-io/sflreport/internal/publisher"
	sflreport "github.com/sfl-io/sflreport/internal/report"
	"github.com/sfl-io/sflreport/pkg/shared/artifacts"
	"github.com/sfl-io/sflreport/pkg/shared/config"
	"github.com/sfl-io/sflreport/pkg/shared/errors"
)

// RunOptionsReport holds the arguments of the report command.
type RunOptionsReport struct {
	BuildPath       string    `json:"build_path,omitempty"`
	SourceFolder    string    `json:"source_folder,omitempty"`
	Ranking         []string  `json:"ranking,omitempty"`
	Thresholds      []float64 `json:"thresholds,omitempty"`
	Order           string    `json:"order,omitempty"`
	VCS             string    `json:"vcs,omitempty"`
	Namespace       string    `json:"namespace,omitempty"`
	Repository      string    `json:"repository,omitempty"`
	PullRequestID   int       `json:"pull_request_id,omitempty"`
	Commit          string    `json:"commit,omitempty"`
	OutputPath      string    `json:"output_path,omitempty"`
	DryRun          bool      `json:"dry_run,omitempty"`
	UploadArtifacts bool      `json:"upload_artifacts,omitempty"`
}

const (
	exitFailure    = 1
	exitValidation = 2

	commentFileName = "comment.md"
	sarifFileName   = "report.sarif"
)

// Global variables for configuration and command arguments
var (
	AppConfig     *config.Config
	logger        hclog.Logger
	reportOptions RunOptionsReport

	exampleReportUsage = `  # Publish the report of a GitHub Actions pull request build
  sflreport report --build-path build --ranking ochiai,tarantula --threshold 0.5,0.6 --order ochiai

  # Comment on a specific GitLab merge request
  sflreport report --vcs gitlab --namespace group --repository project --pull-request-id 42 --build-path build --source-folder src/main/java

  # Render the comment locally without publishing and keep the artifacts
  sflreport report --build-path build --dry-run --output reports`

	ReportCmd = &cobra.Command{
		Use:                   "report --build-path PATH [--ranking ALG,...] [--threshold N,...] [--order ALG] [--vcs NAME] [--namespace NAMESPACE] [--repository REPO] [--pull-request-id ID | --commit SHA] [--output DIR] [--dry-run] [--upload-artifacts]",
		Short:                 "Publish suspicious lines found by GZoltar as a review comment",
		Example:               exampleReportUsage,
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		RunE:                  runReport,
	}
)

// Init wires config and logger into the command package.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runReport(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && cmd.Flags().NFlag() == 0 {
		return cmd.Help()
	}

	cfg := AppConfig
	if cfg == nil {
		cfg = &config.Config{}
	}
	reportCfg := applyReportDefaults(&reportOptions, cmd.Flags(), cfg.Report)

	rc, md, err := resolveRepository(logger, &reportOptions, cfg, os.Getenv)
	if err != nil {
		logger.Error("failed to resolve repository context", "error", err)
		return errors.NewCommandError(fmt.Errorf("failed to resolve repository context: %w", err), exitFailure)
	}

	if err := validateReportArgs(&reportOptions, rc, args); err != nil {
		logger.Error("invalid command arguments", "error", err)
		return errors.NewCommandError(fmt.Errorf("invalid arguments: %w", err), exitValidation)
	}

	result, err := gzoltar.Load(logger.Named("gzoltar"), gzoltar.Options{
		BuildPath:    reportOptions.BuildPath,
		RepoRoot:     repositoryRoot(rc, md),
		SourceFolder: reportOptions.SourceFolder,
		Ranking:      reportOptions.Ranking,
	})
	if err != nil {
		logger.Error("failed to load GZoltar reports", "error", err)
		return errors.NewCommandError(err, exitFailure)
	}

	renderer := sflreport.NewRenderer(rc, sflreport.Options{
		ToolName:            reportCfg.ToolName,
		StacktraceMaxLength: reportCfg.StacktraceMaxLength,
	})
	in := sflreport.Input{
		Lines:      result.Lines,
		TestCases:  result.TestCases,
		Ranking:    reportOptions.Ranking,
		Thresholds: reportOptions.Thresholds,
		Order:      reportOptions.Order,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		rep        *sflreport.Report
		publishErr error
		integ      *integrator.Integrator
	)
	if reportOptions.DryRun {
		if err := in.Validate(); err != nil {
			return errors.NewCommandError(err, exitValidation)
		}
		rep = renderer.Build(in)
		fmt.Fprint(cmd.OutOrStdout(), rep.Body)
		if err := sflreport.WritePreview(cmd.OutOrStdout(), rep); err != nil {
			logger.Warn("failed to render preview", "error", err)
		}
		integ = integrator.New(nil, logger)
	} else {
		pub, err := publisher.New(rc.Kind, cfg, publisherOptions(cfg, rc, os.Getenv), logger.Named("publisher"))
		if err != nil {
			logger.Error("failed to initialize publisher", "error", err)
			return errors.NewCommandError(err, exitFailure)
		}
		integ = integrator.New(pub, logger)
		rep, publishErr = integ.CommentLineSuspiciousness(ctx, rc, renderer, in)
		if rep == nil {
			logger.Error("failed to build report", "error", publishErr)
			return errors.NewCommandError(publishErr, exitValidation)
		}
	}

	if reportOptions.OutputPath != "" {
		paths, err := writeOutputs(reportOptions.OutputPath, rep, reportCfg.ToolName)
		if err != nil {
			logger.Error("failed to write report outputs", "error", err)
			return errors.NewCommandError(err, exitFailure)
		}
		logger.Info("report written", "path", reportOptions.OutputPath, "files", len(paths))

		if reportOptions.UploadArtifacts {
			store, err := artifacts.NewS3Store(cfg.Artifacts, logger.Named("artifacts"))
			if err != nil {
				logger.Error("failed to initialize artifact store", "error", err)
				return errors.NewCommandError(err, exitFailure)
			}
			name := artifacts.GetArtifactName("report", reportCfg.ToolName, time.Now())
			if _, err := integ.UploadArtifacts(ctx, store, name, paths, reportOptions.OutputPath); err != nil {
				logger.Error("failed to upload artifacts", "error", err)
				return errors.NewCommandError(err, exitFailure)
			}
		}
	}

	if publishErr != nil {
		logger.Error("failed to publish report", "error", publishErr)
		return errors.NewCommandError(publishErr, exitFailure)
	}
	return nil
}

func init() {
	ReportCmd.Flags().StringVarP(&reportOptions.BuildPath, "build-path", "b", "", "Directory searched for GZoltar reports (spectra.csv, tests.csv, matrix.txt, <algorithm>.ranking.csv)")
	ReportCmd.Flags().StringVarP(&reportOptions.SourceFolder, "source-folder", "s", "", "Source folder relative to the repository root used to resolve file links (e.g., src/main/java)")
	ReportCmd.Flags().StringSliceVar(&reportOptions.Ranking, "ranking", nil, "Ranking algorithms to report (repeat flag or use comma-separated values)")
	ReportCmd.Flags().Float64SliceVar(&reportOptions.Thresholds, "threshold", nil, "Suspiciousness threshold per ranking algorithm, in the same order")
	ReportCmd.Flags().StringVar(&reportOptions.Order, "order", "", "Algorithm used to sort rows and blocks (default \"ochiai\")")
	ReportCmd.Flags().StringVarP(&reportOptions.VCS, "vcs", "p", "", "VCS hosting the repository (github, gitlab, bitbucket)")
	ReportCmd.Flags().StringVar(&reportOptions.Namespace, "namespace", "", "Owner, group or project key of the repository")
	ReportCmd.Flags().StringVar(&reportOptions.Repository, "repository", "", "Repository name")
	ReportCmd.Flags().IntVar(&reportOptions.PullRequestID, "pull-request-id", 0, "Pull request number; enables pull request comments")
	ReportCmd.Flags().StringVar(&reportOptions.Commit, "commit", "", "Commit SHA receiving the comment and used for file links")
	ReportCmd.Flags().StringVarP(&reportOptions.OutputPath, "output", "o", "", "Directory receiving the rendered comment and SARIF report")
	ReportCmd.Flags().BoolVar(&reportOptions.DryRun, "dry-run", false, "Print the comment instead of publishing it")
	ReportCmd.Flags().BoolVar(&reportOptions.UploadArtifacts, "upload-artifacts", false, "Upload the files written to --output to the configured artifact bucket")
	ReportCmd.Flags().BoolP("help", "h", false, "Show help for report command.")
}

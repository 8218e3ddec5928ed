package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	reportcmd "github.com/sfl-io/sflreport/cmd/report"
	"github.com/sfl-io/sflreport/cmd/version"
	"github.com/sfl-io/sflreport/pkg/shared/config"
	serrors "github.com/sfl-io/sflreport/pkg/shared/errors"
	"github.com/sfl-io/sflreport/pkg/shared/logger"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "sflreport [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "sflreport publishes fault localization results as review comments.",
		Long: `sflreport reads GZoltar spectrum-based fault localization reports, selects the
	lines whose suspiciousness passes the configured thresholds and publishes them
	as a pull request or commit comment on GitHub, GitLab or Bitbucket Server.
	`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(reportcmd.ReportCmd)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		var cmdErr *serrors.CommandError
		if errors.As(err, &cmdErr) {
			return cmdErr.ExitCode
		}
		return 1
	}
	return 0
}

func initConfig() {
	var err error

	if cfgFile == "" {
		cfgFile = "config.yml"
	}
	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing config file function is crashed - %v\n", err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	reportcmd.Init(AppConfig, logger.NewLogger(AppConfig, "core-report"))
}

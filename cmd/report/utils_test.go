package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfl-io/sflreport/internal/ci"
	"github.com/sfl-io/sflreport/internal/git"
	"github.com/sfl-io/sflreport/internal/publisher"
	sflreport "github.com/sfl-io/sflreport/internal/report"
	"github.com/sfl-io/sflreport/internal/sfl"
	"github.com/sfl-io/sflreport/pkg/shared/config"
	"github.com/sfl-io/sflreport/pkg/shared/errors"
)

func newReportFlags(t *testing.T, opts *RunOptionsReport, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("report", pflag.ContinueOnError)
	flags.StringSliceVar(&opts.Ranking, "ranking", nil, "")
	flags.Float64SliceVar(&opts.Thresholds, "threshold", nil, "")
	flags.StringVar(&opts.Order, "order", "", "")
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestApplyReportDefaults(t *testing.T) {
	t.Run("flags win over config", func(t *testing.T) {
		opts := &RunOptionsReport{}
		flags := newReportFlags(t, opts, "--ranking", "dstar,ochiai", "--threshold", "0.7,0.4", "--order", "dstar")

		effective := applyReportDefaults(opts, flags, config.Report{
			Ranking:    []string{"tarantula"},
			Thresholds: []float64{0.1},
			Order:      "tarantula",
			ToolName:   "Jaguar",
		})
		assert.Equal(t, []string{"dstar", "ochiai"}, opts.Ranking)
		assert.Equal(t, []float64{0.7, 0.4}, opts.Thresholds)
		assert.Equal(t, "dstar", opts.Order)
		assert.Equal(t, "Jaguar", effective.ToolName)
		assert.Equal(t, config.DefaultStacktraceMaxLength, effective.StacktraceMaxLength)
	})

	t.Run("config fills unset flags", func(t *testing.T) {
		opts := &RunOptionsReport{}
		flags := newReportFlags(t, opts)

		applyReportDefaults(opts, flags, config.Report{
			Ranking:    []string{"tarantula", "ochiai"},
			Thresholds: []float64{0.2, 0.3},
			Order:      "ochiai",
		})
		assert.Equal(t, []string{"tarantula", "ochiai"}, opts.Ranking)
		assert.Equal(t, []float64{0.2, 0.3}, opts.Thresholds)
		assert.Equal(t, "ochiai", opts.Order)
	})

	t.Run("built-in defaults", func(t *testing.T) {
		opts := &RunOptionsReport{}
		flags := newReportFlags(t, opts)

		effective := applyReportDefaults(opts, flags, config.Report{})
		assert.Equal(t, []string{config.DefaultOrder}, opts.Ranking)
		assert.Equal(t, []float64{config.DefaultThreshold}, opts.Thresholds)
		assert.Equal(t, config.DefaultOrder, opts.Order)
		assert.Equal(t, config.DefaultToolName, effective.ToolName)
	})
}

func TestApplyGitMetadata(t *testing.T) {
	md := &git.RepositoryMetadata{
		RootFolder: "/work/demo",
		CommitHash: "deadbeef",
		Host:       "gitlab.example.com",
		Owner:      "group",
		Repository: "demo",
	}

	rc := ci.RepositoryContext{Owner: "octo"}
	applyGitMetadata(&rc, md)
	assert.Equal(t, "https://gitlab.example.com", rc.ServerURL)
	assert.Equal(t, "octo", rc.Owner)
	assert.Equal(t, "demo", rc.Repository)
	assert.Equal(t, "deadbeef", rc.CommitSHA)
	assert.Equal(t, "deadbeef", rc.EventSHA)
	assert.Equal(t, "/work/demo", rc.RootDirectory)
	assert.Equal(t, "/work/demo", repositoryRoot(rc, md))

	untouched := ci.RepositoryContext{ServerURL: "https://github.com", CommitSHA: "head", EventSHA: "merge"}
	applyGitMetadata(&untouched, md)
	assert.Equal(t, "https://github.com", untouched.ServerURL)
	assert.Equal(t, "head", untouched.CommitSHA)
	assert.Equal(t, "merge", untouched.EventSHA)

	applyGitMetadata(&untouched, nil)
	assert.Equal(t, ".", repositoryRoot(ci.RepositoryContext{}, nil))
}

func TestPublisherOptions(t *testing.T) {
	env := map[string]string{"GITHUB_TOKEN": "gh", "GITLAB_TOKEN": "gl"}
	lookup := func(key string) string { return env[key] }

	opts := publisherOptions(&config.Config{}, ci.RepositoryContext{Kind: ci.CIGitLab, ServerURL: "https://gitlab.example.com/"}, lookup)
	assert.Equal(t, "https://gitlab.example.com", opts.BaseURL)
	assert.Equal(t, "gl", opts.Token)

	opts = publisherOptions(&config.Config{}, ci.RepositoryContext{}, lookup)
	assert.Empty(t, opts.BaseURL)
	assert.Equal(t, "gh", opts.Token)

	cfg := &config.Config{Publisher: config.Publisher{BaseURL: "https://bitbucket.example.com", Token: "configured"}}
	opts = publisherOptions(cfg, ci.RepositoryContext{Kind: ci.CIBitbucket, ServerURL: "https://bitbucket.org"}, lookup)
	assert.Equal(t, "https://bitbucket.example.com", opts.BaseURL)
	assert.Equal(t, "configured", opts.Token)
}

func TestPublisherOptionsBitbucketCloudHost(t *testing.T) {
	rc := ci.RepositoryContext{Kind: ci.CIBitbucket, ServerURL: "https://bitbucket.org"}
	opts := publisherOptions(&config.Config{}, rc, func(string) string { return "" })
	assert.Empty(t, opts.BaseURL)

	_, err := publisher.New(rc.Kind, &config.Config{}, opts, hclog.NewNullLogger())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindValidation))
}

func TestWriteOutputs(t *testing.T) {
	method := &sfl.Method{Name: "count", File: &sfl.File{Name: "Counter.java", Path: "/src/Counter.java"}}
	line := &sfl.SourceCodeLine{LineNumber: 7, Method: method}
	line.SetSuspiciousness("ochiai", 0.8)

	rc := ci.RepositoryContext{Kind: ci.CIGitHub, Owner: "octo", Repository: "demo", CommitSHA: "abc"}
	rep := sflreport.NewRenderer(rc, sflreport.Options{}).Build(sflreport.Input{
		Lines:      []*sfl.SourceCodeLine{line},
		Ranking:    []string{"ochiai"},
		Thresholds: []float64{0.5},
		Order:      "ochiai",
	})

	dir := filepath.Join(t.TempDir(), "out")
	paths, err := writeOutputs(dir, rep, "GZoltar")
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, commentFileName), filepath.Join(dir, sarifFileName)}, paths)

	body, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, rep.Body, string(body))

	raw, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "2.1.0", doc["version"])
}

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/sfl-io/sflreport/internal/sfl"
)

const (
	sarifRuleID           = "sfl-suspicious-line"
	gzoltarInformationURI = "https://gzoltar.com"
)

// NewSarifReport converts the selected lines of rep into a SARIF log with one
// result per line. Scores of every algorithm are kept as result properties.
func NewSarifReport(rep *Report, toolName string) (*sarif.Report, error) {
	sarifReport, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, gzoltarInformationURI)
	rule := run.AddRule(sarifRuleID).
		WithDescription("Line ranked as suspicious by spectrum-based fault localization").
		WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: "warning"})

	for _, line := range rep.Lines {
		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(sarifURI(line))).
				WithRegion(sarif.NewRegion().WithStartLine(line.LineNumber)),
		)

		result := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(sarifMessage(line, rep.Ranking))).
			WithLevel("warning").
			WithLocations([]*sarif.Location{location})
		result.PropertyBag = *sarif.NewPropertyBag()
		for _, algorithm := range rep.Ranking {
			if value, ok := line.Suspiciousness(algorithm); ok {
				result.Add(algorithm, value)
			}
		}
		run.AddResult(result)
	}
	sarifReport.AddRun(run)

	return sarifReport, nil
}

// WriteSarif writes the SARIF form of rep to w.
func WriteSarif(w io.Writer, rep *Report, toolName string) error {
	sarifReport, err := NewSarifReport(rep, toolName)
	if err != nil {
		return err
	}
	return sarifReport.PrettyWrite(w)
}

func sarifURI(line *sfl.SourceCodeLine) string {
	if line.Method != nil && line.Method.File.HasPath() {
		return strings.TrimPrefix(line.Method.File.Path, "/")
	}
	return line.FileName()
}

func sarifMessage(line *sfl.SourceCodeLine, ranking []string) string {
	scores := make([]string, 0, len(ranking))
	for _, algorithm := range ranking {
		scores = append(scores, fmt.Sprintf("%s %s", algorithm, formatScore(line, algorithm)))
	}

	var method string
	if line.Method != nil {
		method = line.Method.Name
	}
	return fmt.Sprintf("Suspicious line %d in %s: %s", line.LineNumber, method, strings.Join(scores, ", "))
}

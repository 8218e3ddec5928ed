package report

import (
	"fmt"
	"strings"

	"github.com/sfl-io/sflreport/internal/sfl"
	serrors "github.com/sfl-io/sflreport/pkg/shared/errors"
)

// Input is everything the analysis produced for one report.
type Input struct {
	Lines      []*sfl.SourceCodeLine
	TestCases  []*sfl.TestCase
	Ranking    []string
	Thresholds []float64
	Order      string
}

// Validate checks the ranking configuration before any rendering happens.
func (in Input) Validate() error {
	if len(in.Ranking) == 0 {
		return serrors.Validation("arg 'ranking' must not be empty")
	}
	if len(in.Ranking) != len(in.Thresholds) {
		return serrors.Validation("ranking has %d algorithms but %d thresholds were given", len(in.Ranking), len(in.Thresholds))
	}
	if in.Order == "" {
		return serrors.Validation("arg 'order' must not be empty")
	}
	for i, algorithm := range in.Ranking {
		if algorithm == "" {
			return serrors.Validation("ranking entry %d is empty", i)
		}
	}
	return nil
}

// Report is an assembled comment body plus the data it was rendered from.
type Report struct {
	Body    string
	Ranking []string // order algorithm first
	Order   string
	Lines   []*sfl.SourceCodeLine // selected, highest score first
	Groups  []sfl.LineGroup
}

// HasFindings reports whether any line met a threshold.
func (r *Report) HasFindings() bool {
	return len(r.Lines) > 0
}

// Build selects the suspicious lines and assembles the full comment body.
func (r *Renderer) Build(in Input) *Report {
	selected := sfl.SelectLines(in.Lines, in.Ranking, in.Thresholds)
	rep := &Report{
		Ranking: sfl.OrderRanking(in.Ranking, in.Order),
		Order:   in.Order,
	}

	var b strings.Builder
	if len(selected) == 0 {
		fmt.Fprintf(&b, "✅ **%s didn't find any possible bug in your code** 🙌", r.opts.ToolName)
	} else {
		rep.Lines = sfl.SortBySuspiciousness(selected, in.Order)
		rep.Groups = sfl.GroupLines(selected, in.Order)

		fmt.Fprintf(&b, "⚠️ **%s found possible bugs** ⚠️\n\n", r.opts.ToolName)
		writeSection(&b, "Line Suspiciousness by Algorithm",
			r.LineSuspiciousnessTable(rep.Lines, in.Ranking, in.Order, in.TestCases))
		writeSection(&b, "Lines Code Block Suspiciousness by Algorithm",
			r.CodeBlockSuspiciousnessTable(rep.Groups, in.Ranking, in.Order))
	}
	b.WriteString("\n\n")

	rep.Body = b.String()
	return rep
}

func writeSection(b *strings.Builder, summary, table string) {
	b.WriteString("<details>\n<summary>" + summary + "</summary>\n\n")
	b.WriteString(table)
	b.WriteString("</details>\n")
}

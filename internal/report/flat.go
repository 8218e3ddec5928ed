package report

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sfl-io/sflreport/internal/sfl"
)

// LineSuspiciousnessTable renders one row per line, highest order-algorithm
// score first. Each location cell embeds the tests covering that line.
// It returns an empty string when there are no lines.
func (r *Renderer) LineSuspiciousnessTable(lines []*sfl.SourceCodeLine, ranking []string, order string, tests []*sfl.TestCase) string {
	if len(lines) == 0 {
		return ""
	}
	ranking = sfl.OrderRanking(ranking, order)

	var b strings.Builder
	writeTableHeader(&b, "Line Suspiciousness by Algorithm", ranking)

	for _, line := range sfl.SortBySuspiciousness(lines, order) {
		scores := make([]string, 0, len(ranking))
		for _, algorithm := range ranking {
			scores = append(scores, formatScore(line, algorithm))
		}
		fmt.Fprintf(&b, "|%s%s| %s|\n", r.lineLocation(line), r.coveringTests(line, tests), strings.Join(scores, " | "))
	}
	return b.String()
}

func (r *Renderer) lineLocation(line *sfl.SourceCodeLine) string {
	if line.Method != nil && line.Method.File.HasPath() {
		return fmt.Sprintf("%s#L%d ", r.locationTarget(line), line.LineNumber)
	}
	return fmt.Sprintf("%s#L%d", r.locationTarget(line), line.LineNumber)
}

// coveringTests renders the collapsible sub-table of tests that executed the line.
func (r *Renderer) coveringTests(line *sfl.SourceCodeLine, tests []*sfl.TestCase) string {
	covering := make([]*sfl.TestCase, 0)
	for _, tc := range tests {
		if tc != nil && tc.Covers(line) {
			covering = append(covering, tc)
		}
	}
	if len(covering) == 0 {
		return ""
	}

	// failing tests first
	sort.SliceStable(covering, func(i, j int) bool {
		return !covering[i].Passed && covering[j].Passed
	})

	var b strings.Builder
	b.WriteString("<details><summary>Tests that cover this line</summary>")
	b.WriteString("<table><thead><tr><th>Test Case</th><th>Result</th><th>Stacktrace</th></tr></thead><tbody>")
	for _, tc := range covering {
		result := "❌"
		if tc.Passed {
			result = "✅"
		}
		stacktrace := scorePlaceholder
		if tc.Stacktrace != "" {
			stacktrace = r.stacktraceCell(tc.Stacktrace)
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td></tr>", htmlCell(tc.Name), result, stacktrace)
	}
	b.WriteString("</tbody></table></details>")
	return b.String()
}

// stacktraceCell escapes traces that fit the limit. Longer ones end up in
// code spans by TruncateOnSpaces and are kept verbatim.
func (r *Renderer) stacktraceCell(trace string) string {
	cell := tableCell(trace)
	maxLen := r.opts.StacktraceMaxLength
	if maxLen <= 0 || utf8.RuneCountInString(cell) <= maxLen {
		return htmlReplacer.Replace(cell)
	}
	return TruncateOnSpaces(cell, maxLen)
}

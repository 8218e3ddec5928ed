package report

import (
	"fmt"
	"strings"

	"github.com/sfl-io/sflreport/internal/sfl"
)

// CodeBlockSuspiciousnessTable renders one row per code block. Score cells
// list every line of the block, including unscored lines between members.
// It returns an empty string when there are no groups.
func (r *Renderer) CodeBlockSuspiciousnessTable(groups []sfl.LineGroup, ranking []string, order string) string {
	if len(groups) == 0 {
		return ""
	}
	ranking = sfl.OrderRanking(ranking, order)

	var b strings.Builder
	writeTableHeader(&b, "Lines Code Block Suspiciousness by Algorithm", ranking)

	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		cells := make([]string, 0, len(ranking))
		for _, algorithm := range ranking {
			cells = append(cells, blockCell(group, algorithm))
		}
		fmt.Fprintf(&b, "|%s| %s|\n", r.blockLocation(group), strings.Join(cells, " | "))
	}
	return b.String()
}

func (r *Renderer) blockLocation(group sfl.LineGroup) string {
	location := fmt.Sprintf("%s#L%d", r.locationTarget(group.First()), group.First().LineNumber)
	if len(group) > 1 {
		location += fmt.Sprintf("-L%d", group.Last().LineNumber)
	}
	return location
}

// blockCell lists one labelled entry per line number spanned by the group.
func blockCell(group sfl.LineGroup, algorithm string) string {
	entries := make([]string, 0, len(group))
	for i, line := range group {
		if i > 0 {
			for n := group[i-1].LineNumber + 1; n < line.LineNumber; n++ {
				entries = append(entries, blockEntry(n, scorePlaceholder))
			}
		}
		entries = append(entries, blockEntry(line.LineNumber, formatScore(line, algorithm)))
	}
	return strings.Join(entries, "<br>")
}

func blockEntry(lineNumber int, value string) string {
	return fmt.Sprintf("**L%d %s** %s", lineNumber, lineTick, value)
}

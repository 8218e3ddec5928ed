package report

import "strings"

// TruncateOnSpaces shows the first maxLen runes of text as a code span and hides
// the rest behind a collapsible region, cut into code spans of at most maxLen
// runes. Cuts happen at the last space within the limit, or exactly at the
// limit when there is none. Text that fits, or a non-positive maxLen, is
// returned unchanged.
func TruncateOnSpaces(text string, maxLen int) string {
	runes := []rune(text)
	if maxLen <= 0 || len(runes) <= maxLen {
		return text
	}

	segment, rest := cutOnSpace(runes, maxLen)

	var b strings.Builder
	b.WriteString("```" + string(segment) + "```")
	b.WriteString("<details><summary>...</summary>")
	for len(rest) > maxLen {
		segment, rest = cutOnSpace(rest, maxLen)
		b.WriteString("<br> ```" + string(segment) + "```")
	}
	b.WriteString("<br> ```" + string(rest) + "```")
	b.WriteString("</details>")

	return b.String()
}

// cutOnSpace splits before the last space of the first maxLen runes. The space
// stays at the start of the remainder.
func cutOnSpace(runes []rune, maxLen int) ([]rune, []rune) {
	for i := maxLen - 1; i > 0; i-- {
		if runes[i] == ' ' {
			return runes[:i], runes[i:]
		}
	}
	return runes[:maxLen], runes[maxLen:]
}

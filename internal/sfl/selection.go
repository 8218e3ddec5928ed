package sfl

import "sort"

// SelectLines returns the lines that at least one algorithm flags at or above
// its threshold. thresholds[i] applies to ranking[i]; only the common prefix
// of both slices is considered. Lines are deduplicated by identity and kept in
// first-encountered order across the algorithm iteration.
func SelectLines(lines []*SourceCodeLine, ranking []string, thresholds []float64) []*SourceCodeLine {
	selected := make([]*SourceCodeLine, 0)
	seen := make(map[*SourceCodeLine]struct{})

	for i, algorithm := range ranking {
		if i >= len(thresholds) {
			break
		}
		for _, line := range lines {
			if line == nil {
				continue
			}
			value, ok := line.Suspiciousness(algorithm)
			if !ok || value < thresholds[i] {
				continue
			}
			if _, dup := seen[line]; dup {
				continue
			}
			seen[line] = struct{}{}
			selected = append(selected, line)
		}
	}
	return selected
}

// OrderRanking returns a copy of ranking with order moved to the front.
// The relative order of the other algorithms is preserved and the input is
// never modified.
func OrderRanking(ranking []string, order string) []string {
	ordered := make([]string, 0, len(ranking))
	for _, algorithm := range ranking {
		if algorithm == order {
			ordered = append(ordered, algorithm)
		}
	}
	for _, algorithm := range ranking {
		if algorithm != order {
			ordered = append(ordered, algorithm)
		}
	}
	return ordered
}

// SortBySuspiciousness returns a copy of lines sorted by the order algorithm,
// highest first. Lines without a score for that algorithm go last, keeping
// their relative order.
func SortBySuspiciousness(lines []*SourceCodeLine, order string) []*SourceCodeLine {
	sorted := make([]*SourceCodeLine, len(lines))
	copy(sorted, lines)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, aOK := sorted[i].Suspiciousness(order)
		b, bOK := sorted[j].Suspiciousness(order)
		switch {
		case aOK && bOK:
			return a > b
		case aOK:
			return true
		default:
			return false
		}
	})
	return sorted
}

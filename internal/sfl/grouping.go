package sfl

import "sort"

// BlockLineDistance is the largest line-number gap between two suspicious
// lines of one method that still keeps them in the same code block.
const BlockLineDistance = 5

// LineGroup is a run of suspicious lines of one method, sorted ascending by
// line number, where consecutive members are at most BlockLineDistance apart.
type LineGroup []*SourceCodeLine

// First returns the first line of the group.
func (g LineGroup) First() *SourceCodeLine {
	return g[0]
}

// Last returns the last line of the group.
func (g LineGroup) Last() *SourceCodeLine {
	return g[len(g)-1]
}

// MaxSuspiciousness returns the highest score of the algorithm in the group.
// Unscored lines count as 0.
func (g LineGroup) MaxSuspiciousness(algorithm string) float64 {
	best := 0.0
	for i, line := range g {
		value, _ := line.Suspiciousness(algorithm)
		if i == 0 || value > best {
			best = value
		}
	}
	return best
}

// GroupLines splits the selected lines into code blocks and orders the blocks
// by their highest score under the order algorithm, highest first.
func GroupLines(lines []*SourceCodeLine, order string) []LineGroup {
	var (
		methods  []*Method
		byMethod = make(map[*Method][]*SourceCodeLine)
	)
	for _, line := range lines {
		if _, ok := byMethod[line.Method]; !ok {
			methods = append(methods, line.Method)
		}
		byMethod[line.Method] = append(byMethod[line.Method], line)
	}

	groups := make([]LineGroup, 0)
	for _, method := range methods {
		methodLines := byMethod[method]
		sort.SliceStable(methodLines, func(i, j int) bool {
			return methodLines[i].LineNumber < methodLines[j].LineNumber
		})

		var current LineGroup
		for _, line := range methodLines {
			if len(current) == 0 || line.LineNumber-current.Last().LineNumber <= BlockLineDistance {
				current = append(current, line)
				continue
			}
			groups = append(groups, current)
			current = LineGroup{line}
		}
		if len(current) > 0 {
			groups = append(groups, current)
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].MaxSuspiciousness(order) > groups[j].MaxSuspiciousness(order)
	})
	return groups
}

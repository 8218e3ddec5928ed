// Package sfl holds the spectrum-based fault localization data model and the
// selection, ordering and grouping rules applied to it before rendering.
package sfl

// File identifies a source file that owns analyzed methods.
type File struct {
	Name string // Name is the bare file name (e.g. CharacterCounter.java).
	Path string // Path is the repository-rooted path starting with "/", empty when unresolved.
}

// HasPath reports whether the file resolves to a location in the hosted repository.
func (f *File) HasPath() bool {
	return f != nil && f.Path != ""
}

// Method identifies a method or function enclosing analyzed lines.
// Two lines belong to the same method only if they share the same *Method.
type Method struct {
	Name string
	File *File
}

// SuspiciousnessMetric is the score one ranking algorithm assigned to a line.
type SuspiciousnessMetric struct {
	Algorithm string  `json:"algorithm"`
	Value     float64 `json:"suspiciousness_value"`
}

// SourceCodeLine is a single analyzed line with its per-algorithm scores.
type SourceCodeLine struct {
	LineNumber int
	Method     *Method
	Metrics    []SuspiciousnessMetric
}

// Suspiciousness returns the score the given algorithm assigned to the line.
func (l *SourceCodeLine) Suspiciousness(algorithm string) (float64, bool) {
	for _, m := range l.Metrics {
		if m.Algorithm == algorithm {
			return m.Value, true
		}
	}
	return 0, false
}

// SetSuspiciousness records a score, replacing any previous one for the algorithm.
func (l *SourceCodeLine) SetSuspiciousness(algorithm string, value float64) {
	for i := range l.Metrics {
		if l.Metrics[i].Algorithm == algorithm {
			l.Metrics[i].Value = value
			return
		}
	}
	l.Metrics = append(l.Metrics, SuspiciousnessMetric{Algorithm: algorithm, Value: value})
}

// FileName returns the owning file name, or an empty string.
func (l *SourceCodeLine) FileName() string {
	if l.Method == nil || l.Method.File == nil {
		return ""
	}
	return l.Method.File.Name
}

// LineCoverage records whether a test executed a line.
type LineCoverage struct {
	Line    *SourceCodeLine
	Covered bool
}

// TestCase is a single test execution result.
type TestCase struct {
	Name       string
	Passed     bool
	Stacktrace string // Stacktrace is only set for failed tests.
	Coverage   []LineCoverage
}

// Covers reports whether the test executed exactly this line.
func (t *TestCase) Covers(line *SourceCodeLine) bool {
	for _, c := range t.Coverage {
		if c.Line == line && c.Covered {
			return true
		}
	}
	return false
}

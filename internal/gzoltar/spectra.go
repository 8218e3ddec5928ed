package gzoltar

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// Spectrum is a parsed GZoltar line identifier such as
// org.demo$Counter$Inner#count(java.lang.String):12.
type Spectrum struct {
	Package    string // org.demo
	Class      string // Counter$Inner
	Signature  string // count(java.lang.String)
	LineNumber int
}

// ParseSpectrum parses one entry of spectra.csv or a ranking file.
func ParseSpectrum(raw string) (Spectrum, error) {
	raw = strings.TrimSpace(raw)

	colon := strings.LastIndex(raw, ":")
	if colon < 0 {
		return Spectrum{}, fmt.Errorf("missing line number in %q", raw)
	}
	lineNumber, err := strconv.Atoi(raw[colon+1:])
	if err != nil || lineNumber <= 0 {
		return Spectrum{}, fmt.Errorf("invalid line number in %q", raw)
	}

	hash := strings.Index(raw[:colon], "#")
	if hash < 0 {
		return Spectrum{}, fmt.Errorf("missing method separator in %q", raw)
	}
	owner, signature := raw[:hash], raw[hash+1:colon]

	dollar := strings.Index(owner, "$")
	if dollar < 0 || dollar == len(owner)-1 {
		return Spectrum{}, fmt.Errorf("missing class name in %q", raw)
	}

	return Spectrum{
		Package:    owner[:dollar],
		Class:      owner[dollar+1:],
		Signature:  signature,
		LineNumber: lineNumber,
	}, nil
}

// MethodKey identifies the method; lines sharing it share one *sfl.Method.
func (s Spectrum) MethodKey() string {
	return s.Package + "$" + s.Class + "#" + s.Signature
}

// MethodName is the signature without its parameter list.
func (s Spectrum) MethodName() string {
	if i := strings.Index(s.Signature, "("); i >= 0 {
		return s.Signature[:i]
	}
	return s.Signature
}

// OuterClass is the top-level class owning the source file.
func (s Spectrum) OuterClass() string {
	if i := strings.Index(s.Class, "$"); i >= 0 {
		return s.Class[:i]
	}
	return s.Class
}

// FileName is the Java source file name of the outer class.
func (s Spectrum) FileName() string {
	return s.OuterClass() + ".java"
}

// SourcePath is the slash-separated path of the source file relative to a source root.
func (s Spectrum) SourcePath() string {
	if s.Package == "" {
		return s.FileName()
	}
	return path.Join(strings.ReplaceAll(s.Package, ".", "/"), s.FileName())
}

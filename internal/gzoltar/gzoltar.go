// Package gzoltar reads the text reports written by GZoltar into the sfl model.
package gzoltar

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/sfl-io/sflreport/internal/sfl"
	serrors "github.com/sfl-io/sflreport/pkg/shared/errors"
	"github.com/sfl-io/sflreport/pkg/shared/files"
)

// Report file names written by GZoltar.
const (
	SpectraFile       = "spectra.csv"
	TestsFile         = "tests.csv"
	MatrixFile        = "matrix.txt"
	RankingFileSuffix = ".ranking.csv"
)

// Options locate the reports and the sources they refer to.
type Options struct {
	BuildPath    string   // directory searched for GZoltar reports
	RepoRoot     string   // repository checkout
	SourceFolder string   // optional, relative to RepoRoot
	Ranking      []string // algorithms whose ranking files are read
}

// Result is the analysis loaded from disk.
type Result struct {
	Lines     []*sfl.SourceCodeLine
	TestCases []*sfl.TestCase
	// Files lists every report file that was read.
	Files []string
}

// Load reads the spectra, ranking, test and coverage matrix reports found under BuildPath.
func Load(logger hclog.Logger, opts Options) (*Result, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if opts.BuildPath == "" {
		return nil, serrors.Validation("arg 'buildPath' must not be empty")
	}

	spectraPath, err := locate(opts.BuildPath, SpectraFile)
	if err != nil {
		return nil, err
	}
	testsPath, err := locate(opts.BuildPath, TestsFile)
	if err != nil {
		return nil, err
	}
	matrixPath, err := locate(opts.BuildPath, MatrixFile)
	if err != nil {
		return nil, err
	}
	result := &Result{Files: []string{spectraPath, testsPath, matrixPath}}

	resolver, err := newPathResolver(logger, opts.RepoRoot, opts.SourceFolder)
	if err != nil {
		return nil, err
	}

	lines, index, err := readSpectra(spectraPath, resolver)
	if err != nil {
		return nil, err
	}
	result.Lines = lines
	logger.Debug("spectra loaded", "path", spectraPath, "lines", len(lines))

	for _, algorithm := range opts.Ranking {
		rankingPath, err := files.SearchFile(opts.BuildPath, algorithm+RankingFileSuffix)
		if err != nil {
			return nil, err
		}
		if rankingPath == "" {
			logger.Warn("ranking file not found, lines will have no score for this algorithm",
				"algorithm", algorithm, "build_path", opts.BuildPath)
			continue
		}
		scored, err := readRanking(rankingPath, algorithm, index)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, rankingPath)
		logger.Debug("ranking loaded", "algorithm", algorithm, "path", rankingPath, "scored", scored)
	}

	tests, err := readTests(testsPath)
	if err != nil {
		return nil, err
	}
	if err := readMatrix(matrixPath, tests, lines); err != nil {
		return nil, err
	}
	result.TestCases = tests
	logger.Debug("tests loaded", "path", testsPath, "tests", len(tests))

	return result, nil
}

func locate(buildPath, name string) (string, error) {
	found, err := files.SearchFile(buildPath, name)
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", serrors.New(serrors.KindIO,
			fmt.Sprintf("unable to locate %q under %q", name, buildPath), os.ErrNotExist)
	}
	return found, nil
}

func parseError(file string, lineNo int, err error) error {
	return serrors.New(serrors.KindParse, fmt.Sprintf("malformed report %q at line %d", file, lineNo), err)
}

// readSpectra builds one line per spectrum. Lines of one method share a
// *sfl.Method and methods of one class share a *sfl.File.
func readSpectra(file string, resolver *pathResolver) ([]*sfl.SourceCodeLine, map[string]*sfl.SourceCodeLine, error) {
	rows, err := files.ReadLines(file)
	if err != nil {
		return nil, nil, err
	}

	var (
		lines   []*sfl.SourceCodeLine
		index   = make(map[string]*sfl.SourceCodeLine)
		methods = make(map[string]*sfl.Method)
		srcs    = make(map[string]*sfl.File)
	)
	for i, row := range rows {
		row = strings.TrimSpace(row)
		if row == "" || (i == 0 && row == "name") {
			continue
		}

		spectrum, err := ParseSpectrum(row)
		if err != nil {
			return nil, nil, parseError(file, i+1, err)
		}

		method, ok := methods[spectrum.MethodKey()]
		if !ok {
			src, ok := srcs[spectrum.SourcePath()]
			if !ok {
				src = &sfl.File{Name: spectrum.FileName(), Path: resolver.resolve(spectrum.SourcePath())}
				srcs[spectrum.SourcePath()] = src
			}
			method = &sfl.Method{Name: spectrum.MethodName(), File: src}
			methods[spectrum.MethodKey()] = method
		}

		line := &sfl.SourceCodeLine{LineNumber: spectrum.LineNumber, Method: method}
		lines = append(lines, line)
		index[row] = line
	}
	return lines, index, nil
}

// readRanking attaches the scores of one algorithm. Rows are "name;value".
func readRanking(file, algorithm string, index map[string]*sfl.SourceCodeLine) (int, error) {
	rows, err := files.ReadLines(file)
	if err != nil {
		return 0, err
	}

	scored := 0
	for i, row := range rows {
		row = strings.TrimSpace(row)
		if row == "" || (i == 0 && strings.HasPrefix(row, "name;")) {
			continue
		}

		sep := strings.LastIndex(row, ";")
		if sep < 0 {
			return 0, parseError(file, i+1, fmt.Errorf("missing ';' separator"))
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(row[sep+1:]), 64)
		if err != nil {
			return 0, parseError(file, i+1, err)
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			continue
		}

		line, ok := index[strings.TrimSpace(row[:sep])]
		if !ok {
			continue
		}
		line.SetSuspiciousness(algorithm, value)
		scored++
	}
	return scored, nil
}

// readTests reads tests.csv. The stack trace column may span several lines.
func readTests(file string) ([]*sfl.TestCase, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, serrors.New(serrors.KindIO, fmt.Sprintf("encountered an error when reading file path %q", file), err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	var tests []*sfl.TestCase
	for record := 1; ; record++ {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, parseError(file, record, err)
		}
		if record == 1 && len(fields) > 0 && fields[0] == "name" {
			continue
		}
		if len(fields) < 2 {
			return nil, parseError(file, record, fmt.Errorf("expected at least 2 columns, got %d", len(fields)))
		}

		tc := &sfl.TestCase{
			Name:   fields[0],
			Passed: strings.EqualFold(strings.TrimSpace(fields[1]), "PASS"),
		}
		if !tc.Passed && len(fields) > 3 {
			tc.Stacktrace = strings.TrimSpace(fields[3])
		}
		tests = append(tests, tc)
	}
	return tests, nil
}

// readMatrix fills the coverage of each test. Row i belongs to test i and
// holds one 0/1 column per spectrum followed by "+" (pass) or "-" (fail).
// Only covered lines are recorded.
func readMatrix(file string, tests []*sfl.TestCase, lines []*sfl.SourceCodeLine) error {
	rows, err := files.ReadLines(file)
	if err != nil {
		return err
	}

	t := 0
	for i, row := range rows {
		fields := strings.Fields(row)
		if len(fields) == 0 {
			continue
		}
		if t >= len(tests) {
			return parseError(file, i+1, fmt.Errorf("more rows than the %d tests in %s", len(tests), TestsFile))
		}
		if len(fields) != len(lines)+1 {
			return parseError(file, i+1, fmt.Errorf("expected %d columns, got %d", len(lines)+1, len(fields)))
		}

		tc := tests[t]
		for j, cell := range fields[:len(lines)] {
			if cell == "1" {
				tc.Coverage = append(tc.Coverage, sfl.LineCoverage{Line: lines[j], Covered: true})
			}
		}
		t++
	}
	if t != len(tests) {
		return parseError(file, len(rows), fmt.Errorf("%d rows for %d tests", t, len(tests)))
	}
	return nil
}

// pathResolver maps a package-relative source path to its repository-rooted path.
type pathResolver struct {
	logger  hclog.Logger
	prefix  string
	sources []string
	cache   map[string]string
}

func newPathResolver(logger hclog.Logger, repoRoot, sourceFolder string) (*pathResolver, error) {
	r := &pathResolver{logger: logger, cache: make(map[string]string)}
	if repoRoot == "" {
		return r, nil
	}

	searchRoot := filepath.Join(repoRoot, sourceFolder)
	exists, err := files.DirectoryExists(searchRoot)
	if err != nil {
		return nil, err
	}
	if !exists {
		logger.Warn("source folder does not exist, links to sources are disabled", "path", searchRoot)
		return r, nil
	}

	sources, err := files.FindBySuffix(searchRoot, ".java")
	if err != nil {
		return nil, err
	}
	r.sources = sources
	r.prefix = filepath.ToSlash(filepath.Clean(sourceFolder))
	return r, nil
}

func (r *pathResolver) resolve(sourcePath string) string {
	if resolved, ok := r.cache[sourcePath]; ok {
		return resolved
	}

	var resolved string
	for _, candidate := range r.sources {
		if candidate == sourcePath || strings.HasSuffix(candidate, "/"+sourcePath) {
			resolved = "/" + strings.TrimPrefix(path.Join(r.prefix, candidate), "/")
			break
		}
	}
	if resolved == "" && len(r.sources) > 0 {
		r.logger.Debug("source file not found in repository", "path", sourcePath)
	}

	r.cache[sourcePath] = resolved
	return resolved
}

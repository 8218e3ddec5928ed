// Package report renders SFL results into the Markdown/HTML comment body
// published on pull requests and commits.
package report

import (
	"fmt"
	"strings"

	"github.com/sfl-io/sflreport/internal/ci"
	"github.com/sfl-io/sflreport/internal/sfl"
)

const (
	scorePlaceholder = "---"
	lineTick         = "𑗅"
)

// Options tune the rendered output.
type Options struct {
	ToolName            string
	StacktraceMaxLength int
}

// Renderer turns selected lines into report tables. Links are built from Repo.
type Renderer struct {
	Repo ci.RepositoryContext
	opts Options
}

// NewRenderer returns a Renderer. Unset options fall back to GZoltar and 50.
func NewRenderer(repo ci.RepositoryContext, opts Options) *Renderer {
	if opts.ToolName == "" {
		opts.ToolName = "GZoltar"
	}
	if opts.StacktraceMaxLength == 0 {
		opts.StacktraceMaxLength = 50
	}
	return &Renderer{Repo: repo, opts: opts}
}

// locationTarget is the link to the file at the linked commit, or
// "file$method" when the file does not resolve to a repository path.
func (r *Renderer) locationTarget(line *sfl.SourceCodeLine) string {
	if line.Method != nil && line.Method.File.HasPath() {
		return r.Repo.BlobURL(line.Method.File.Path)
	}

	var methodName string
	if line.Method != nil {
		methodName = line.Method.Name
	}
	return fmt.Sprintf("%s$%s", line.FileName(), methodName)
}

func writeTableHeader(b *strings.Builder, title string, ranking []string) {
	b.WriteString("## " + title + "\n")
	b.WriteString("|Line | ⬇ " + strings.Join(ranking, " | ") + "|\n")
	b.WriteString("|---|" + strings.Repeat(":---:|", len(ranking)) + "\n")
}

func formatScore(line *sfl.SourceCodeLine, algorithm string) string {
	value, ok := line.Suspiciousness(algorithm)
	if !ok {
		return scorePlaceholder
	}
	return fmt.Sprintf("%.2f", value)
}

var cellReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ", "|", `\|`)

// tableCell keeps free text from breaking the surrounding pipe table.
func tableCell(text string) string {
	return cellReplacer.Replace(text)
}

var htmlReplacer = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// htmlCell is tableCell for text placed bare inside an HTML element, where
// angle brackets would otherwise be read as tags.
func htmlCell(text string) string {
	return htmlReplacer.Replace(tableCell(text))
}

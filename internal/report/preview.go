package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// WritePreview prints the code blocks of rep as a plain console table.
func WritePreview(w io.Writer, rep *Report) error {
	if !rep.HasFindings() {
		_, err := fmt.Fprintln(w, "no suspicious lines above the configured thresholds")
		return err
	}

	headers := append([]string{"Block", "Lines"}, rep.Ranking...)
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{AutoFormat: tw.Off},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
			MaxWidth: 120,
			Behavior: tw.Behavior{TrimSpace: tw.Off},
		}),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleLight),
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)

	for _, group := range rep.Groups {
		first := group.First()
		name := first.FileName()
		if first.Method != nil {
			name = fmt.Sprintf("%s$%s", name, first.Method.Name)
		}

		lines := fmt.Sprintf("%d", first.LineNumber)
		if len(group) > 1 {
			lines = fmt.Sprintf("%d-%d", first.LineNumber, group.Last().LineNumber)
		}

		row := []string{name, lines}
		for _, algorithm := range rep.Ranking {
			row = append(row, fmt.Sprintf("%.2f", group.MaxSuspiciousness(algorithm)))
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("append preview row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("render preview: %w", err)
	}
	return nil
}

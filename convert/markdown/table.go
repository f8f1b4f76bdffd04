package markdown

import (
	"strings"

	"go.uber.org/zap"

	"github.com/Usuiensan/xml-markdown/lawxml"
)

// Table rendering pipeline: build the logical grid, partition it into header
// and body sections, emit markup. Each phase is a pure function over the
// previous phase's output; a malformed table fails the whole pipeline and
// the caller falls back to plain text.

// renderTable runs the three phase pipeline over declared rows.
func renderTable(table string, rows []SourceRow, indent string, forceHTML bool) (string, error) {
	grid, err := buildGrid(table, rows)
	if err != nil {
		return "", err
	}
	return emitTable(partitionGrid(grid), indent, forceHTML), nil
}

// sourceRows converts parsed table rows to declared source rows, rendering
// each cell's nested content through the external content renderer.
func (g *Generator) sourceRows(t *lawxml.Table) []SourceRow {
	rows := make([]SourceRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		kind := RowBody
		if row.Header {
			kind = RowHeader
		}
		sr := SourceRow{Kind: kind, Cells: make([]SourceCell, 0, len(row.Cells))}
		for _, cell := range row.Cells {
			sr.Cells = append(sr.Cells, SourceCell{
				RowSpan:      cell.RowSpan,
				ColSpan:      cell.ColSpan,
				Align:        cell.Align,
				VAlign:       cell.VAlign,
				BorderTop:    cell.BorderTop,
				BorderBottom: cell.BorderBottom,
				BorderLeft:   cell.BorderLeft,
				BorderRight:  cell.BorderRight,
				Vertical:     cell.Vertical,
				Content:      g.renderInlines(cell.Content),
			})
		}
		rows = append(rows, sr)
	}
	return rows
}

// writeTableStruct renders a table with its title and remarks. Malformed
// tables degrade to plain text lines so one bad table never fails the
// document.
func (g *Generator) writeTableStruct(b *strings.Builder, ts *lawxml.TableStruct, name, indent string) {
	if ts.Title != "" {
		b.WriteString(indent + g.text(ts.Title) + "\n")
	}

	rows := g.sourceRows(&ts.Table)
	if len(rows) > 0 {
		out, err := renderTable(name, rows, indent, g.opts.ForceHTMLTables)
		if err != nil {
			g.log.Warn("Malformed table, rendering content without grid", zap.Error(err))
			out = g.plainTable(rows, indent)
		}
		b.WriteString(out)
		b.WriteString("\n")
	}

	for _, remarks := range ts.Remarks {
		g.writeRemarks(b, &remarks, indent)
	}
}

// plainTable is the malformed-table fallback: cell contents row by row,
// without any grid semantics.
func (g *Generator) plainTable(rows []SourceRow, indent string) string {
	var b strings.Builder
	for _, row := range rows {
		parts := make([]string, 0, len(row.Cells))
		for _, cell := range row.Cells {
			if cell.Content != "" {
				parts = append(parts, cell.Content)
			}
		}
		if len(parts) == 0 {
			continue
		}
		b.WriteString(indent + "- " + strings.Join(parts, " / ") + "\n")
	}
	return b.String()
}

func (g *Generator) writeRemarks(b *strings.Builder, r *lawxml.Remarks, indent string) {
	label := g.text(r.Label)
	if label == "" {
		label = "備考"
	}
	b.WriteString(indent + "**" + label + "**\n")
	for _, line := range r.Lines {
		if text := g.renderInlines(line); text != "" {
			b.WriteString(indent + "- " + text + "\n")
		}
	}
	b.WriteString("\n")
}

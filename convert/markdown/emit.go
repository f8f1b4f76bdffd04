package markdown

import (
	"fmt"
	"strings"
)

// Table emission. Markdown pipe tables cannot express spans, so tables are
// emitted as an embedded HTML fragment (header section plus one body
// section) whenever the grid carries spans, suppressed borders or vertical
// writing. Trivial grids take the pipe-table fast path, matching what a
// Markdown reader expects for plain tables.

// emitTable renders partitioned rows. Every line is prefixed with indent so
// tables nest correctly inside list items. Output is deterministic: the same
// render rows always produce byte-identical markup. forceHTML skips the pipe
// table fast path entirely.
func emitTable(rows []RenderRow, indent string, forceHTML bool) string {
	if len(rows) == 0 {
		return ""
	}
	if !forceHTML && pipeCompatible(rows) {
		return emitPipeTable(rows, indent)
	}
	return emitHTMLTable(rows, indent)
}

// pipeCompatible reports whether the grid can be expressed as a GitHub pipe
// table: at most one header row, no spans, no suppressed or decorated
// borders, no vertical writing.
func pipeCompatible(rows []RenderRow) bool {
	headers := 0
	for _, row := range rows {
		if row.Kind == RowHeader {
			headers++
		}
	}
	if headers > 1 {
		return false
	}
	for _, row := range rows {
		for _, rc := range row.Cells {
			if rc.Continuation {
				return false
			}
			if rc.Cell == nil {
				continue
			}
			if rc.RowSpan > 1 || rc.ColSpan > 1 || rc.Cell.Vertical {
				return false
			}
			for _, border := range []string{rc.Cell.BorderTop, rc.Cell.BorderBottom, rc.Cell.BorderLeft, rc.Cell.BorderRight} {
				if border != "" && border != "solid" {
					return false
				}
			}
			if strings.Contains(rc.Cell.Content, "\n") {
				return false
			}
		}
	}
	return true
}

func emitPipeTable(rows []RenderRow, indent string) string {
	width := 0
	for _, row := range rows {
		if len(row.Cells) > width {
			width = len(row.Cells)
		}
	}
	if width == 0 {
		return ""
	}

	cellText := func(rc *RenderCell) string {
		if rc.Cell == nil {
			return ""
		}
		return strings.ReplaceAll(rc.Cell.Content, "|", `\|`)
	}

	line := func(cells []RenderCell) string {
		parts := make([]string, width)
		for i := range parts {
			if i < len(cells) {
				parts[i] = cellText(&cells[i])
			}
		}
		return indent + "| " + strings.Join(parts, " | ") + " |"
	}

	var header []RenderCell
	bodyStart := 0
	if rows[0].Kind == RowHeader {
		header = rows[0].Cells
		bodyStart = 1
	}

	var b strings.Builder
	if header != nil {
		b.WriteString(line(header))
	} else {
		// GFM requires a header row, synthesize an empty one
		b.WriteString(indent + "|" + strings.Repeat(" |", width))
	}
	b.WriteString("\n")

	seps := make([]string, width)
	for i := range seps {
		seps[i] = "---"
		if header != nil && i < len(header) && header[i].Cell != nil {
			switch header[i].Cell.Align {
			case "center":
				seps[i] = ":---:"
			case "right":
				seps[i] = "---:"
			case "left":
				seps[i] = ":---"
			}
		}
	}
	b.WriteString(indent + "| " + strings.Join(seps, " | ") + " |\n")

	for ri := bodyStart; ri < len(rows); ri++ {
		b.WriteString(line(rows[ri].Cells))
		b.WriteString("\n")
	}
	return b.String()
}

func emitHTMLTable(rows []RenderRow, indent string) string {
	var b strings.Builder
	b.WriteString(indent + "<table>\n")

	var header, body []RenderRow
	for _, row := range rows {
		if row.Kind == RowHeader {
			header = append(header, row)
		} else {
			body = append(body, row)
		}
	}

	if len(header) > 0 {
		b.WriteString(indent + "<thead>\n")
		for _, row := range header {
			emitHTMLRow(&b, &row, "th", indent)
		}
		b.WriteString(indent + "</thead>\n")
	}

	b.WriteString(indent + "<tbody>\n")
	for _, row := range body {
		emitHTMLRow(&b, &row, "td", indent)
	}
	b.WriteString(indent + "</tbody>\n")
	b.WriteString(indent + "</table>\n")
	return b.String()
}

func emitHTMLRow(b *strings.Builder, row *RenderRow, tag, indent string) {
	b.WriteString(indent + "<tr>\n")
	for i := range row.Cells {
		rc := &row.Cells[i]
		switch {
		case rc.Continuation:
			// covered by an anchor declared earlier, emits nothing
		case rc.Empty():
			b.WriteString(indent + "  <" + tag + "></" + tag + ">\n")
		default:
			b.WriteString(indent + "  " + htmlCell(rc, tag) + "\n")
		}
	}
	b.WriteString(indent + "</tr>\n")
}

func htmlCell(rc *RenderCell, tag string) string {
	var attrs strings.Builder
	if rc.RowSpan > 1 {
		fmt.Fprintf(&attrs, ` rowspan="%d"`, rc.RowSpan)
	}
	if rc.ColSpan > 1 {
		fmt.Fprintf(&attrs, ` colspan="%d"`, rc.ColSpan)
	}
	if rc.Cell.Align != "" {
		fmt.Fprintf(&attrs, ` align="%s"`, rc.Cell.Align)
	}
	if rc.Cell.VAlign != "" {
		fmt.Fprintf(&attrs, ` valign="%s"`, rc.Cell.VAlign)
	}
	if style := cellStyle(rc.Cell); style != "" {
		fmt.Fprintf(&attrs, ` style="%s"`, style)
	}
	// content is an opaque pre-rendered fragment, emitted as is
	return "<" + tag + attrs.String() + ">" + rc.Cell.Content + "</" + tag + ">"
}

// cellStyle translates schema border and writing-mode attributes to inline
// CSS. Only deviations from the schema default (all borders solid,
// horizontal writing) are emitted.
func cellStyle(cell *SourceCell) string {
	var parts []string
	for _, edge := range []struct{ name, value string }{
		{"top", cell.BorderTop},
		{"bottom", cell.BorderBottom},
		{"left", cell.BorderLeft},
		{"right", cell.BorderRight},
	} {
		if edge.value != "" && edge.value != "solid" {
			parts = append(parts, "border-"+edge.name+":"+edge.value)
		}
	}
	if cell.Vertical {
		parts = append(parts, "writing-mode:vertical-rl")
	}
	return strings.Join(parts, ";")
}

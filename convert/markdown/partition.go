package markdown

// Header/body partitioning. The emitted table uses two disjoint sections and
// a cell cannot physically straddle them, so any rowspan anchored in the
// header that would run into the body is cut at the boundary. The body-side
// coordinates it covered become empty cells rather than inheriting the
// header content.

// RenderCell is one physical output coordinate. Cell is nil for both empty
// and continuation coordinates; only Continuation distinguishes them.
type RenderCell struct {
	Cell         *SourceCell
	RowSpan      int
	ColSpan      int
	Continuation bool
}

// Anchor reports whether this coordinate emits a cell.
func (c *RenderCell) Anchor() bool {
	return c.Cell != nil
}

// Empty reports an unclaimed coordinate, emitted as an empty cell.
func (c *RenderCell) Empty() bool {
	return c.Cell == nil && !c.Continuation
}

// RenderRow is one physical output row.
type RenderRow struct {
	Kind  RowKind
	Cells []RenderCell
}

// partitionGrid classifies grid rows into header and body sections and
// computes effective spans per anchor:
//   - spans are clipped to the physical end of the grid;
//   - header-anchored spans are clipped to the header/body boundary;
//   - continuations of a clipped header span inside the body turn into
//     empty cells;
//   - header-kind rows at or after the first body row are reclassified as
//     body, the header section can only be a prefix of the table and the
//     output never reorders rows.
func partitionGrid(g *Grid) []RenderRow {
	// boundary is the index of the first body row, set whenever a header
	// section exists at all. A table starting with a body row gets boundary 0
	// even when header rows are declared later: those rows stay in place as
	// body rows.
	boundary := -1
	haveHeader := false
	for _, kind := range g.Kinds {
		if kind == RowHeader {
			haveHeader = true
			break
		}
	}
	if haveHeader {
		for ri, kind := range g.Kinds {
			if kind == RowBody {
				boundary = ri
				break
			}
		}
	}

	rows := make([]RenderRow, 0, len(g.Rows))
	for ri, line := range g.Rows {
		kind := g.Kinds[ri]
		if boundary >= 0 && ri >= boundary {
			kind = RowBody
		}

		rr := RenderRow{Kind: kind, Cells: make([]RenderCell, 0, g.Width)}
		for _, gc := range line {
			if gc == nil {
				rr.Cells = append(rr.Cells, RenderCell{})
				continue
			}
			if !gc.anchor() {
				rc := RenderCell{Continuation: true}
				if boundary >= 0 && ri >= boundary && gc.anchorRow(ri) < boundary {
					// owner was truncated at the boundary, this coordinate is
					// no longer covered
					rc = RenderCell{}
				}
				rr.Cells = append(rr.Cells, rc)
				continue
			}

			rowSpan := gc.owner.RowSpan
			if ri+rowSpan > len(g.Rows) {
				rowSpan = len(g.Rows) - ri
			}
			if boundary >= 0 && ri < boundary && ri+rowSpan > boundary {
				rowSpan = boundary - ri
			}
			colSpan := gc.owner.ColSpan
			rr.Cells = append(rr.Cells, RenderCell{Cell: gc.owner, RowSpan: rowSpan, ColSpan: colSpan})
		}
		rows = append(rows, rr)
	}
	return rows
}

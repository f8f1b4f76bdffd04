package markdown

import "fmt"

// Table grid normalization. A declared table is a list of rows whose cells
// may span multiple rows and columns; cells never declare the columns they
// skip because of a span carried over from an earlier row. Before anything
// can be emitted the declaration is expanded into an explicit logical grid
// where every coordinate is either claimed by exactly one cell or empty.

// RowKind tags a source row as part of the table header or body.
type RowKind int

const (
	RowHeader RowKind = iota
	RowBody
)

func (k RowKind) String() string {
	if k == RowHeader {
		return "header"
	}
	return "body"
}

// SourceCell is one declared cell with pre-rendered content. The content
// renderer is external to the grid: by the time a cell reaches the builder
// its nested document content is already a single markup fragment.
type SourceCell struct {
	RowSpan      int // >= 1
	ColSpan      int // >= 1
	Align        string
	VAlign       string
	BorderTop    string
	BorderBottom string
	BorderLeft   string
	BorderRight  string
	Vertical     bool
	Content      string
}

// SourceRow is one declared table row in document order.
type SourceRow struct {
	Kind  RowKind
	Cells []SourceCell
}

// maxTableSpan bounds declared spans and the resulting grid width. Corrupt
// span values would otherwise make the expanded grid arbitrarily large.
const maxTableSpan = 1000

// TableError reports a malformed table declaration. Coordinates are
// zero-based logical grid positions.
type TableError struct {
	Table string
	Row   int
	Col   int
	Msg   string
}

func (e *TableError) Error() string {
	return fmt.Sprintf("table %s: %s at row %d, column %d", e.Table, e.Msg, e.Row, e.Col)
}

// gridCell is a cell's footprint at one grid coordinate. remRows and remCols
// hold the remaining vertical and horizontal extent as seen from this
// coordinate, the cell itself included; the coordinate is the owning cell's
// anchor exactly when both equal the declared spans.
type gridCell struct {
	owner   *SourceCell
	remRows int
	remCols int
}

func (c *gridCell) anchor() bool {
	return c.remRows == c.owner.RowSpan && c.remCols == c.owner.ColSpan
}

// anchorRow returns the grid row the owning cell is anchored at, given the
// row this footprint sits in.
func (c *gridCell) anchorRow(row int) int {
	return row - (c.owner.RowSpan - c.remRows)
}

// Grid is the fully expanded occupancy map. Rows are rectangular: every row
// has Width entries, nil meaning the coordinate is unclaimed.
type Grid struct {
	Rows  [][]*gridCell
	Kinds []RowKind
	Width int
}

// pendingSpan tracks a cell still spanning downward through the current row.
type pendingSpan struct {
	owner     *SourceCell
	anchorCol int
	left      int // rows remaining below the already processed ones
}

// buildGrid expands declared rows into the logical grid. Column collisions
// (a pending span and a declared cell claiming the same coordinate, or
// overlapping declared spans) are reported as *TableError, never repaired:
// there is no authoritative rule for choosing between colliding cells.
func buildGrid(table string, rows []SourceRow) (*Grid, error) {
	g := &Grid{}
	pending := make(map[int]*pendingSpan)

	for ri := range rows {
		row := &rows[ri]
		g.Kinds = append(g.Kinds, row.Kind)

		var line []*gridCell
		claim := func(col int, c *gridCell) error {
			if col >= maxTableSpan {
				return &TableError{Table: table, Row: ri, Col: col, Msg: "table width exceeds limit"}
			}
			for len(line) <= col {
				line = append(line, nil)
			}
			if line[col] != nil {
				return &TableError{Table: table, Row: ri, Col: col, Msg: "cell collision"}
			}
			line[col] = c
			return nil
		}

		col := 0
		for _, cell := range row.Cells {
			cell := cell // each declared cell gets a stable address
			if cell.RowSpan < 1 {
				cell.RowSpan = 1
			}
			if cell.ColSpan < 1 {
				cell.ColSpan = 1
			}
			if cell.RowSpan > maxTableSpan || cell.ColSpan > maxTableSpan {
				return nil, &TableError{Table: table, Row: ri, Col: col, Msg: "span exceeds limit"}
			}

			// skip over columns still owned by spans from earlier rows
			for {
				p, ok := pending[col]
				if !ok || p.left == 0 {
					break
				}
				if err := claim(col, &gridCell{
					owner:   p.owner,
					remRows: p.left,
					remCols: p.owner.ColSpan - (col - p.anchorCol),
				}); err != nil {
					return nil, err
				}
				p.left--
				if p.left == 0 {
					delete(pending, col)
				}
				col++
			}

			// anchor the declared cell and fill its horizontal extent
			for k := 0; k < cell.ColSpan; k++ {
				if p, ok := pending[col+k]; ok && p.left > 0 {
					return nil, &TableError{Table: table, Row: ri, Col: col + k, Msg: "cell collision"}
				}
				if err := claim(col+k, &gridCell{
					owner:   &cell,
					remRows: cell.RowSpan,
					remCols: cell.ColSpan - k,
				}); err != nil {
					return nil, err
				}
				if cell.RowSpan > 1 {
					pending[col+k] = &pendingSpan{owner: &cell, anchorCol: col, left: cell.RowSpan - 1}
				}
			}
			col += cell.ColSpan
		}

		// place continuations past the last declared cell; rows shorter than
		// the established width simply stay unclaimed at the tail
		for cc := col; cc < g.Width; cc++ {
			p, ok := pending[cc]
			if !ok || p.left == 0 {
				continue
			}
			if err := claim(cc, &gridCell{
				owner:   p.owner,
				remRows: p.left,
				remCols: p.owner.ColSpan - (cc - p.anchorCol),
			}); err != nil {
				return nil, err
			}
			p.left--
			if p.left == 0 {
				delete(pending, cc)
			}
		}

		if len(line) > g.Width {
			g.Width = len(line)
		}
		g.Rows = append(g.Rows, line)
	}

	// square the grid: pad every row to the final width
	for ri, line := range g.Rows {
		for len(line) < g.Width {
			line = append(line, nil)
		}
		g.Rows[ri] = line
	}
	return g, nil
}

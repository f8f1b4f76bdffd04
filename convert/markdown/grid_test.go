package markdown

import (
	"errors"
	"testing"
)

func cell(content string, rowSpan, colSpan int) SourceCell {
	return SourceCell{RowSpan: rowSpan, ColSpan: colSpan, Content: content}
}

func bodyRow(cells ...SourceCell) SourceRow {
	return SourceRow{Kind: RowBody, Cells: cells}
}

func headerRow(cells ...SourceCell) SourceRow {
	return SourceRow{Kind: RowHeader, Cells: cells}
}

// gridContent renders the expanded grid as anchor content strings, "+" for
// continuations and "" for unclaimed coordinates.
func gridContent(g *Grid) [][]string {
	out := make([][]string, len(g.Rows))
	for ri, line := range g.Rows {
		out[ri] = make([]string, len(line))
		for ci, gc := range line {
			switch {
			case gc == nil:
				out[ri][ci] = ""
			case gc.anchor():
				out[ri][ci] = gc.owner.Content
			default:
				out[ri][ci] = "+"
			}
		}
	}
	return out
}

func checkGrid(t *testing.T, got *Grid, want [][]string) {
	t.Helper()
	if len(got.Rows) != len(want) {
		t.Fatalf("rows: got %d, want %d", len(got.Rows), len(want))
	}
	content := gridContent(got)
	for ri := range want {
		if len(content[ri]) != len(want[ri]) {
			t.Fatalf("row %d width: got %d, want %d", ri, len(content[ri]), len(want[ri]))
		}
		for ci := range want[ri] {
			if content[ri][ci] != want[ri][ci] {
				t.Errorf("cell (%d,%d): got %q, want %q", ri, ci, content[ri][ci], want[ri][ci])
			}
		}
	}
}

func TestBuildGridIdentity(t *testing.T) {
	// spanless tables expand to themselves
	g, err := buildGrid("t", []SourceRow{
		bodyRow(cell("a", 1, 1), cell("b", 1, 1)),
		bodyRow(cell("c", 1, 1), cell("d", 1, 1)),
	})
	if err != nil {
		t.Fatal(err)
	}
	checkGrid(t, g, [][]string{
		{"a", "b"},
		{"c", "d"},
	})
}

func TestBuildGridRowSpan(t *testing.T) {
	g, err := buildGrid("t", []SourceRow{
		bodyRow(cell("a", 2, 1), cell("b", 1, 1)),
		bodyRow(cell("c", 1, 1)),
	})
	if err != nil {
		t.Fatal(err)
	}
	checkGrid(t, g, [][]string{
		{"a", "b"},
		{"+", "c"},
	})
}

func TestBuildGridColSpan(t *testing.T) {
	g, err := buildGrid("t", []SourceRow{
		bodyRow(cell("a", 1, 2), cell("b", 1, 1)),
		bodyRow(cell("c", 1, 1), cell("d", 1, 1), cell("e", 1, 1)),
	})
	if err != nil {
		t.Fatal(err)
	}
	checkGrid(t, g, [][]string{
		{"a", "+", "b"},
		{"c", "d", "e"},
	})
}

func TestBuildGridBlockSpan(t *testing.T) {
	// 2x2 block in the top-left corner
	g, err := buildGrid("t", []SourceRow{
		bodyRow(cell("a", 2, 2), cell("b", 1, 1)),
		bodyRow(cell("c", 1, 1)),
		bodyRow(cell("d", 1, 1), cell("e", 1, 1), cell("f", 1, 1)),
	})
	if err != nil {
		t.Fatal(err)
	}
	checkGrid(t, g, [][]string{
		{"a", "+", "b"},
		{"+", "+", "c"},
		{"d", "e", "f"},
	})
}

func TestBuildGridSpanGaps(t *testing.T) {
	// continuations in the middle of a row push declared cells right
	g, err := buildGrid("t", []SourceRow{
		bodyRow(cell("a", 1, 1), cell("b", 3, 1), cell("c", 1, 1)),
		bodyRow(cell("d", 1, 1), cell("e", 1, 1)),
		bodyRow(cell("f", 1, 1), cell("g", 1, 1)),
	})
	if err != nil {
		t.Fatal(err)
	}
	checkGrid(t, g, [][]string{
		{"a", "b", "c"},
		{"d", "+", "e"},
		{"f", "+", "g"},
	})
}

func TestBuildGridZeroCellRow(t *testing.T) {
	// a row with no declared cells still receives continuations
	g, err := buildGrid("t", []SourceRow{
		bodyRow(cell("a", 2, 2)),
		bodyRow(),
	})
	if err != nil {
		t.Fatal(err)
	}
	checkGrid(t, g, [][]string{
		{"a", "+"},
		{"+", "+"},
	})
}

func TestBuildGridShortRow(t *testing.T) {
	// declared rows shorter than the grid stay unclaimed at the tail
	g, err := buildGrid("t", []SourceRow{
		bodyRow(cell("a", 1, 1), cell("b", 1, 1), cell("c", 1, 1)),
		bodyRow(cell("d", 1, 1)),
	})
	if err != nil {
		t.Fatal(err)
	}
	checkGrid(t, g, [][]string{
		{"a", "b", "c"},
		{"d", "", ""},
	})
}

func TestBuildGridWidthExtension(t *testing.T) {
	// a later wider row extends every earlier row
	g, err := buildGrid("t", []SourceRow{
		bodyRow(cell("a", 1, 1)),
		bodyRow(cell("b", 1, 1), cell("c", 1, 1), cell("d", 1, 1)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if g.Width != 3 {
		t.Fatalf("width: got %d, want 3", g.Width)
	}
	checkGrid(t, g, [][]string{
		{"a", "", ""},
		{"b", "c", "d"},
	})
}

func TestBuildGridSpanPastEnd(t *testing.T) {
	// rowspan running past the last row is preserved in the grid; the
	// partitioner clips the rendered span
	g, err := buildGrid("t", []SourceRow{
		bodyRow(cell("a", 5, 1), cell("b", 1, 1)),
		bodyRow(cell("c", 1, 1)),
	})
	if err != nil {
		t.Fatal(err)
	}
	checkGrid(t, g, [][]string{
		{"a", "b"},
		{"+", "c"},
	})
}

func TestBuildGridNormalizesSpans(t *testing.T) {
	g, err := buildGrid("t", []SourceRow{
		bodyRow(cell("a", 0, -3), cell("b", 1, 1)),
	})
	if err != nil {
		t.Fatal(err)
	}
	checkGrid(t, g, [][]string{
		{"a", "b"},
	})
}

func TestBuildGridCollision(t *testing.T) {
	tests := []struct {
		name string
		rows []SourceRow
	}{
		{
			// declared colspan overlaps a pending rowspan column
			name: "colspan into pending",
			rows: []SourceRow{
				bodyRow(cell("a", 1, 1), cell("b", 2, 1)),
				bodyRow(cell("c", 1, 2)),
			},
		},
		{
			// colspan reaches a column owned two rows up
			name: "colspan into long rowspan",
			rows: []SourceRow{
				bodyRow(cell("a", 1, 1), cell("b", 3, 1)),
				bodyRow(cell("c", 1, 1)),
				bodyRow(cell("d", 1, 2)),
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := buildGrid("t", tc.rows)
			var terr *TableError
			if !errors.As(err, &terr) {
				t.Fatalf("got %v, want *TableError", err)
			}
			if terr.Msg != "cell collision" {
				t.Errorf("msg: got %q", terr.Msg)
			}
		})
	}
}

func TestBuildGridSpanLimit(t *testing.T) {
	_, err := buildGrid("t", []SourceRow{
		bodyRow(cell("a", 1, maxTableSpan+1)),
	})
	var terr *TableError
	if !errors.As(err, &terr) {
		t.Fatalf("got %v, want *TableError", err)
	}
}

func TestBuildGridRectangular(t *testing.T) {
	g, err := buildGrid("t", []SourceRow{
		bodyRow(cell("a", 1, 1)),
		bodyRow(cell("b", 1, 1), cell("c", 1, 1), cell("d", 1, 1), cell("e", 1, 1)),
		bodyRow(cell("f", 1, 2)),
	})
	if err != nil {
		t.Fatal(err)
	}
	for ri, line := range g.Rows {
		if len(line) != g.Width {
			t.Errorf("row %d: len %d, want %d", ri, len(line), g.Width)
		}
	}
}

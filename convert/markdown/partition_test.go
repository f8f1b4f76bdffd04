package markdown

import "testing"

func mustGrid(t *testing.T, rows []SourceRow) *Grid {
	t.Helper()
	g, err := buildGrid("t", rows)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestPartitionNoHeader(t *testing.T) {
	rows := partitionGrid(mustGrid(t, []SourceRow{
		bodyRow(cell("a", 1, 1)),
		bodyRow(cell("b", 1, 1)),
	}))
	for ri, row := range rows {
		if row.Kind != RowBody {
			t.Errorf("row %d: got %v, want body", ri, row.Kind)
		}
	}
}

func TestPartitionHeaderSpanWithinHeader(t *testing.T) {
	// rowspan fully contained in the header section survives untouched
	rows := partitionGrid(mustGrid(t, []SourceRow{
		headerRow(cell("a", 2, 1), cell("b", 1, 1)),
		headerRow(cell("c", 1, 1)),
		bodyRow(cell("d", 1, 1), cell("e", 1, 1)),
	}))
	if rows[0].Kind != RowHeader || rows[1].Kind != RowHeader || rows[2].Kind != RowBody {
		t.Fatalf("kinds: %v %v %v", rows[0].Kind, rows[1].Kind, rows[2].Kind)
	}
	a := rows[0].Cells[0]
	if !a.Anchor() || a.RowSpan != 2 {
		t.Errorf("a: anchor=%v rowspan=%d, want anchor rowspan 2", a.Anchor(), a.RowSpan)
	}
	if !rows[1].Cells[0].Continuation {
		t.Error("(1,0): want continuation")
	}
}

func TestPartitionHeaderSpanTruncated(t *testing.T) {
	// rowspan anchored in the header crossing into the body is cut at the
	// boundary; the body coordinate it covered becomes empty
	rows := partitionGrid(mustGrid(t, []SourceRow{
		headerRow(cell("a", 2, 1), cell("b", 1, 1)),
		bodyRow(cell("c", 1, 1)),
	}))
	a := rows[0].Cells[0]
	if a.RowSpan != 1 {
		t.Errorf("a rowspan: got %d, want 1", a.RowSpan)
	}
	freed := rows[1].Cells[0]
	if !freed.Empty() {
		t.Errorf("(1,0): empty=%v continuation=%v, want empty", freed.Empty(), freed.Continuation)
	}
}

func TestPartitionBodySpanUntouched(t *testing.T) {
	rows := partitionGrid(mustGrid(t, []SourceRow{
		headerRow(cell("h1", 1, 1), cell("h2", 1, 1)),
		bodyRow(cell("a", 2, 1), cell("b", 1, 1)),
		bodyRow(cell("c", 1, 1)),
	}))
	a := rows[1].Cells[0]
	if !a.Anchor() || a.RowSpan != 2 {
		t.Errorf("a: anchor=%v rowspan=%d, want anchor rowspan 2", a.Anchor(), a.RowSpan)
	}
	if !rows[2].Cells[0].Continuation {
		t.Error("(2,0): want continuation")
	}
}

func TestPartitionLateHeaderReclassified(t *testing.T) {
	// header rows after the first body row become body, a header section
	// cannot reopen
	rows := partitionGrid(mustGrid(t, []SourceRow{
		headerRow(cell("h", 1, 1)),
		bodyRow(cell("a", 1, 1)),
		headerRow(cell("x", 1, 1)),
	}))
	if rows[2].Kind != RowBody {
		t.Errorf("row 2: got %v, want body", rows[2].Kind)
	}
}

func TestPartitionHeaderAfterFirstBodyRow(t *testing.T) {
	// a header row declared after the table already started with body rows
	// becomes body too: the boundary is the first body row, not the first
	// body row following a header
	rows := partitionGrid(mustGrid(t, []SourceRow{
		bodyRow(cell("first", 1, 1)),
		headerRow(cell("late", 1, 1)),
		bodyRow(cell("second", 1, 1)),
	}))
	for ri, row := range rows {
		if row.Kind != RowBody {
			t.Errorf("row %d: got %v, want body", ri, row.Kind)
		}
	}
}

func TestPartitionHeaderAfterBodyKeepsSpans(t *testing.T) {
	// reclassified rows carry no boundary, a span across them stays whole
	rows := partitionGrid(mustGrid(t, []SourceRow{
		bodyRow(cell("a", 2, 1), cell("b", 1, 1)),
		headerRow(cell("c", 1, 1)),
	}))
	a := rows[0].Cells[0]
	if !a.Anchor() || a.RowSpan != 2 {
		t.Errorf("a: anchor=%v rowspan=%d, want anchor rowspan 2", a.Anchor(), a.RowSpan)
	}
	if !rows[1].Cells[0].Continuation {
		t.Error("(1,0): want continuation")
	}
}

func TestPartitionRowSpanClippedToGrid(t *testing.T) {
	// declared span runs past the last row, rendered span is clipped
	rows := partitionGrid(mustGrid(t, []SourceRow{
		bodyRow(cell("a", 5, 1), cell("b", 1, 1)),
		bodyRow(cell("c", 1, 1)),
	}))
	a := rows[0].Cells[0]
	if a.RowSpan != 2 {
		t.Errorf("a rowspan: got %d, want 2", a.RowSpan)
	}
}

func TestPartitionIdempotentKinds(t *testing.T) {
	// partitioning the same grid twice yields identical sections
	src := []SourceRow{
		headerRow(cell("h", 2, 1), cell("g", 1, 1)),
		bodyRow(cell("a", 1, 1)),
		bodyRow(cell("b", 1, 1), cell("c", 1, 1)),
	}
	first := partitionGrid(mustGrid(t, src))
	second := partitionGrid(mustGrid(t, src))
	if len(first) != len(second) {
		t.Fatalf("row count differs: %d vs %d", len(first), len(second))
	}
	for ri := range first {
		if first[ri].Kind != second[ri].Kind {
			t.Errorf("row %d kind differs", ri)
		}
		for ci := range first[ri].Cells {
			l, r := first[ri].Cells[ci], second[ri].Cells[ci]
			if l.RowSpan != r.RowSpan || l.ColSpan != r.ColSpan || l.Continuation != r.Continuation {
				t.Errorf("cell (%d,%d) differs", ri, ci)
			}
		}
	}
}

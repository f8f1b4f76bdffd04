package markdown

import (
	"strings"
	"testing"
)

func render(t *testing.T, rows []SourceRow) string {
	t.Helper()
	out, err := renderTable("t", rows, "", false)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestEmitPipeTable(t *testing.T) {
	out := render(t, []SourceRow{
		headerRow(cell("名称", 1, 1), cell("定義", 1, 1)),
		bodyRow(cell("甲", 1, 1), cell("乙", 1, 1)),
	})
	want := "| 名称 | 定義 |\n| --- | --- |\n| 甲 | 乙 |\n"
	if out != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestEmitPipeTableNoHeader(t *testing.T) {
	out := render(t, []SourceRow{
		bodyRow(cell("a", 1, 1), cell("b", 1, 1)),
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines: got %d, want 3 (synthetic header, separator, row)", len(lines))
	}
	if strings.ContainsAny(lines[0], "ab") {
		t.Errorf("synthetic header carries content: %q", lines[0])
	}
}

func TestEmitPipeTableAlignment(t *testing.T) {
	rows := []SourceRow{
		{Kind: RowHeader, Cells: []SourceCell{
			{RowSpan: 1, ColSpan: 1, Align: "left", Content: "l"},
			{RowSpan: 1, ColSpan: 1, Align: "center", Content: "c"},
			{RowSpan: 1, ColSpan: 1, Align: "right", Content: "r"},
		}},
		bodyRow(cell("1", 1, 1), cell("2", 1, 1), cell("3", 1, 1)),
	}
	out := render(t, rows)
	if !strings.Contains(out, "| :--- | :---: | ---: |") {
		t.Errorf("missing alignment separators:\n%s", out)
	}
}

func TestEmitPipeTableEscapesPipes(t *testing.T) {
	out := render(t, []SourceRow{
		bodyRow(cell("a|b", 1, 1)),
	})
	if !strings.Contains(out, `a\|b`) {
		t.Errorf("pipe not escaped:\n%s", out)
	}
}

func TestEmitHTMLOnSpans(t *testing.T) {
	out := render(t, []SourceRow{
		headerRow(cell("h", 1, 2)),
		bodyRow(cell("a", 2, 1), cell("b", 1, 1)),
		bodyRow(cell("c", 1, 1)),
	})
	for _, want := range []string{
		"<table>", "<thead>", `<th colspan="2">h</th>`,
		"<tbody>", `<td rowspan="2">a</td>`, "</table>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	// the continuation coordinate under a must not produce a cell
	if got := strings.Count(out, "<td"); got != 3 {
		t.Errorf("td count: got %d, want 3", got)
	}
}

func TestEmitHTMLHeaderAfterBodyKeepsOrder(t *testing.T) {
	// a header row declared mid-table must not be hoisted into a thead above
	// rows preceding it; it renders as a body row in document order
	out, err := renderTable("t", []SourceRow{
		bodyRow(cell("first", 1, 1)),
		headerRow(cell("late", 1, 1)),
		bodyRow(cell("second", 1, 1)),
	}, "", true)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "<thead>") || strings.Contains(out, "<th>") {
		t.Errorf("mid-table header row opened a header section:\n%s", out)
	}
	first := strings.Index(out, ">first<")
	late := strings.Index(out, ">late<")
	second := strings.Index(out, ">second<")
	if first < 0 || late < 0 || second < 0 || !(first < late && late < second) {
		t.Errorf("rows out of document order (%d, %d, %d):\n%s", first, late, second, out)
	}
}

func TestEmitHTMLNoTheadWithoutHeader(t *testing.T) {
	out := render(t, []SourceRow{
		bodyRow(cell("a", 2, 1), cell("b", 1, 1)),
		bodyRow(cell("c", 1, 1)),
	})
	if strings.Contains(out, "<thead>") {
		t.Errorf("unexpected thead:\n%s", out)
	}
	if !strings.Contains(out, "<tbody>") {
		t.Errorf("missing tbody:\n%s", out)
	}
}

func TestEmitHTMLTruncatedHeaderSpan(t *testing.T) {
	// the header cell spanning into the body is emitted without rowspan and
	// the freed body coordinate becomes an explicit empty cell
	out := render(t, []SourceRow{
		headerRow(cell("h", 2, 1), cell("g", 1, 2)),
		bodyRow(cell("a", 1, 1), cell("b", 1, 1)),
	})
	if strings.Contains(out, `rowspan`) {
		t.Errorf("truncated span still carries rowspan:\n%s", out)
	}
	if !strings.Contains(out, "<td></td>") {
		t.Errorf("freed coordinate not emitted as empty cell:\n%s", out)
	}
}

func TestEmitHTMLOnVerticalWriting(t *testing.T) {
	rows := []SourceRow{
		{Kind: RowBody, Cells: []SourceCell{
			{RowSpan: 1, ColSpan: 1, Vertical: true, Content: "縦"},
		}},
	}
	out := render(t, rows)
	if !strings.Contains(out, "writing-mode:vertical-rl") {
		t.Errorf("missing writing mode style:\n%s", out)
	}
}

func TestEmitHTMLBorderStyles(t *testing.T) {
	rows := []SourceRow{
		{Kind: RowBody, Cells: []SourceCell{
			{RowSpan: 1, ColSpan: 1, BorderTop: "none", BorderLeft: "dotted", Content: "x"},
			{RowSpan: 1, ColSpan: 1, BorderBottom: "solid", Content: "y"},
		}},
	}
	out := render(t, rows)
	if !strings.Contains(out, "border-top:none") || !strings.Contains(out, "border-left:dotted") {
		t.Errorf("missing border styles:\n%s", out)
	}
	// the schema default produces no style attribute
	if !strings.Contains(out, "<td>y</td>") {
		t.Errorf("solid border should not emit style:\n%s", out)
	}
}

func TestEmitIndent(t *testing.T) {
	indented, err := renderTable("t", []SourceRow{
		bodyRow(cell("a", 2, 1)),
		bodyRow(),
	}, "    ", false)
	if err != nil {
		t.Fatal(err)
	}
	for _, line := range strings.Split(strings.TrimRight(indented, "\n"), "\n") {
		if !strings.HasPrefix(line, "    ") {
			t.Errorf("line not indented: %q", line)
		}
	}
}

func TestEmitDeterministic(t *testing.T) {
	rows := []SourceRow{
		headerRow(cell("h", 1, 2)),
		bodyRow(cell("a", 2, 1), cell("b", 1, 1)),
		bodyRow(cell("c", 1, 1)),
	}
	if render(t, rows) != render(t, rows) {
		t.Error("output differs across runs")
	}
}

func TestEmitMultiHeaderForcesHTML(t *testing.T) {
	// a pipe table can carry only one header row, two header rows go HTML so
	// both stay inside thead
	out := render(t, []SourceRow{
		headerRow(cell("h1", 1, 1)),
		headerRow(cell("h2", 1, 1)),
		bodyRow(cell("a", 1, 1)),
	})
	if !strings.Contains(out, "<thead>") {
		t.Fatalf("multi header table did not emit HTML:\n%s", out)
	}
	if got := strings.Count(out, "<th>"); got != 2 {
		t.Errorf("th count: got %d, want 2", got)
	}
}

func TestEmitForceHTML(t *testing.T) {
	// even a trivial grid becomes an HTML fragment when forced
	out, err := renderTable("t", []SourceRow{
		bodyRow(cell("a", 1, 1), cell("b", 1, 1)),
	}, "", true)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "<table>") {
		t.Errorf("forced mode did not emit HTML:\n%s", out)
	}
}

func TestEmitMultilineContentForcesHTML(t *testing.T) {
	out := render(t, []SourceRow{
		bodyRow(cell("line1\nline2", 1, 1)),
	})
	if !strings.Contains(out, "<table>") {
		t.Errorf("multiline content must use HTML:\n%s", out)
	}
}

package lawxml

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
)

// XML parsing functions for the e-Gov standard law schema. We want exhaustive
// parsing: every element we render is mapped to a typed structure, unexpected
// tags are logged and either flattened to text or skipped, so schema drift is
// visible in debug output instead of silently changing the result.

// Parse walks the etree DOM and constructs the typed law representation. The
// document may be either a bare <Law> tree or the API envelope
// (<DataRoot><ApplData><LawFullText><Law>...).
func Parse(doc *etree.Document, log *zap.Logger) (*Law, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("document has no root element")
	}

	lawEl := root
	if root.Tag != "Law" {
		lawEl = root.FindElement("//Law")
		if lawEl == nil {
			return nil, fmt.Errorf("no Law element under root %q", root.Tag)
		}
	}

	law := &Law{
		Era:     lawEl.SelectAttrValue("Era", ""),
		Year:    lawEl.SelectAttrValue("Year", ""),
		Num:     lawEl.SelectAttrValue("Num", ""),
		LawType: lawEl.SelectAttrValue("LawType", ""),
	}

	for _, child := range lawEl.ChildElements() {
		switch child.Tag {
		case "LawNum":
			law.LawNum = NormalizeText(child.Text())
		case "LawBody":
			if err := parseLawBody(child, law, log); err != nil {
				return nil, fmt.Errorf("law body: %w", err)
			}
		default:
			log.Warn("Unexpected tag in Law, ignoring", zap.String("parent", lawEl.Tag), zap.String("tag", child.Tag))
		}
	}

	if law.Title == "" {
		return nil, fmt.Errorf("law has no title")
	}
	return law, nil
}

func parseLawBody(el *etree.Element, law *Law, log *zap.Logger) error {
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "LawTitle":
			law.Title = extractText(child)
		case "EnactStatement":
			law.Body.EnactStatements = append(law.Body.EnactStatements, extractText(child))
		case "TOC":
			// table of contents is rebuilt from structure, source TOC is ignored
		case "Preamble":
			law.Body.Preamble = parsePreamble(child, log)
		case "MainProvision":
			parseMainProvision(child, &law.Body.Main, log)
		case "SupplProvision":
			law.Body.SupplProvisions = append(law.Body.SupplProvisions, parseSupplProvision(child, log))
		case "AppdxTable":
			law.Body.AppdxTables = append(law.Body.AppdxTables, parseAppdxTable(child, log))
		case "AppdxStyle", "AppdxFig", "AppdxNote", "AppdxFormat", "Appdx":
			// appendix variants we do not render yet carry figures and styles
			// only; note them so the omission is visible
			log.Debug("Skipping appendix variant", zap.String("tag", child.Tag))
		default:
			log.Warn("Unexpected tag in LawBody, ignoring", zap.String("parent", el.Tag), zap.String("tag", child.Tag))
		}
	}
	return nil
}

func parsePreamble(el *etree.Element, log *zap.Logger) *Preamble {
	p := &Preamble{}
	for _, child := range el.ChildElements() {
		if child.Tag != "Paragraph" {
			log.Warn("Unexpected tag in Preamble, ignoring", zap.String("tag", child.Tag))
			continue
		}
		p.Paragraphs = append(p.Paragraphs, parseParagraph(child, log))
	}
	return p
}

var structureKinds = map[string]StructureKind{
	"Part":       StructurePart,
	"Chapter":    StructureChapter,
	"Section":    StructureSection,
	"Subsection": StructureSubsection,
	"Division":   StructureDivision,
}

func parseMainProvision(el *etree.Element, main *MainProvision, log *zap.Logger) {
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "Part", "Chapter", "Section":
			main.Structures = append(main.Structures, parseStructure(child, structureKinds[child.Tag], log))
		case "Article":
			main.Articles = append(main.Articles, parseArticle(child, log))
		case "Paragraph":
			main.Paragraphs = append(main.Paragraphs, parseParagraph(child, log))
		default:
			log.Warn("Unexpected tag in MainProvision, ignoring", zap.String("tag", child.Tag))
		}
	}
}

func parseStructure(el *etree.Element, kind StructureKind, log *zap.Logger) Structure {
	s := Structure{
		Kind: kind,
		Num:  el.SelectAttrValue("Num", ""),
	}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case kind.TitleTag():
			s.Title = extractText(child)
		case "Article":
			s.Articles = append(s.Articles, parseArticle(child, log))
		default:
			if nested, ok := structureKinds[child.Tag]; ok && nested > kind {
				s.Children = append(s.Children, parseStructure(child, nested, log))
				continue
			}
			log.Warn("Unexpected tag in structure element, ignoring",
				zap.String("parent", el.Tag), zap.String("tag", child.Tag))
		}
	}
	return s
}

func parseArticle(el *etree.Element, log *zap.Logger) Article {
	a := Article{Num: el.SelectAttrValue("Num", "")}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "ArticleTitle":
			a.Title = extractText(child)
		case "ArticleCaption":
			a.Caption = extractText(child)
		case "Paragraph":
			a.Paragraphs = append(a.Paragraphs, parseParagraph(child, log))
		case "SupplNote":
			// rendered as a trailing pseudo paragraph
			a.Paragraphs = append(a.Paragraphs, Paragraph{Sentence: parseInlines(child, log)})
		default:
			log.Warn("Unexpected tag in Article, ignoring", zap.String("tag", child.Tag))
		}
	}
	return a
}

func parseParagraph(el *etree.Element, log *zap.Logger) Paragraph {
	p := Paragraph{Num: el.SelectAttrValue("Num", "")}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "ParagraphCaption":
			p.Caption = extractText(child)
		case "ParagraphNum":
			// rendered number, attribute Num is authoritative; keep attribute
		case "ParagraphSentence":
			p.Sentence = append(p.Sentence, parseSentenceContainer(child, log)...)
		case "Item":
			p.Items = append(p.Items, parseItem(child, log))
		case "TableStruct":
			p.Tables = append(p.Tables, parseTableStruct(child, log))
		case "Table":
			p.Tables = append(p.Tables, TableStruct{Table: parseTable(child, log)})
		case "FigStruct":
			if fig := child.SelectElement("Fig"); fig != nil {
				p.Figs = append(p.Figs, Fig{Src: fig.SelectAttrValue("src", "")})
			}
		case "List":
			p.Lists = append(p.Lists, extractText(child))
		case "AmendProvision":
			// amendment provisions carry quoted law text
			p.Sentence = append(p.Sentence, parseInlines(child, log)...)
		default:
			log.Warn("Unexpected tag in Paragraph, ignoring", zap.String("tag", child.Tag))
		}
	}
	return p
}

func parseItem(el *etree.Element, log *zap.Logger) Item {
	it := Item{Num: el.SelectAttrValue("Num", "")}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "ItemTitle":
			it.Title = extractText(child)
		case "ItemSentence":
			columns := child.SelectElements("Column")
			if len(columns) > 0 {
				for _, col := range columns {
					it.Columns = append(it.Columns, parseSentenceContainer(col, log))
				}
			} else {
				it.Sentence = append(it.Sentence, parseSentenceContainer(child, log)...)
			}
		case "TableStruct":
			it.Tables = append(it.Tables, parseTableStruct(child, log))
		case "Table":
			it.Tables = append(it.Tables, TableStruct{Table: parseTable(child, log)})
		default:
			if level, ok := subitemLevel(child.Tag); ok {
				it.Subitems = append(it.Subitems, parseSubitem(child, level, log))
				continue
			}
			log.Warn("Unexpected tag in Item, ignoring", zap.String("tag", child.Tag))
		}
	}
	return it
}

// subitemLevel maps Subitem1..Subitem10 element names to their nesting level.
func subitemLevel(tag string) (int, bool) {
	raw, found := strings.CutPrefix(tag, "Subitem")
	if !found {
		return 0, false
	}
	level, err := strconv.Atoi(raw)
	if err != nil || level < 1 || level > 10 {
		return 0, false
	}
	return level, true
}

func parseSubitem(el *etree.Element, level int, log *zap.Logger) Subitem {
	prefix := el.Tag // SubitemN
	sub := Subitem{Level: level}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case prefix + "Title":
			sub.Title = extractText(child)
		case prefix + "Sentence":
			sub.Sentence = append(sub.Sentence, parseSentenceContainer(child, log)...)
		default:
			if nested, ok := subitemLevel(child.Tag); ok && nested == level+1 {
				sub.Children = append(sub.Children, parseSubitem(child, nested, log))
				continue
			}
			log.Warn("Unexpected tag in subitem, ignoring", zap.String("parent", el.Tag), zap.String("tag", child.Tag))
		}
	}
	return sub
}

func parseSupplProvision(el *etree.Element, log *zap.Logger) SupplProvision {
	sp := SupplProvision{
		AmendLawNum: el.SelectAttrValue("AmendLawNum", ""),
		Extract:     el.SelectAttrValue("Extract", "") == "true",
	}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "SupplProvisionLabel":
			sp.Label = extractText(child)
		case "Article":
			sp.Articles = append(sp.Articles, parseArticle(child, log))
		case "Paragraph":
			sp.Paragraphs = append(sp.Paragraphs, parseParagraph(child, log))
		case "Chapter":
			// flatten chapters inside supplementary provisions
			s := parseStructure(child, StructureChapter, log)
			sp.Articles = append(sp.Articles, s.Articles...)
		case "SupplProvisionAppdxTable", "SupplProvisionAppdxStyle", "SupplProvisionAppdx":
			log.Debug("Skipping supplementary appendix", zap.String("tag", child.Tag))
		default:
			log.Warn("Unexpected tag in SupplProvision, ignoring", zap.String("tag", child.Tag))
		}
	}
	return sp
}

func parseAppdxTable(el *etree.Element, log *zap.Logger) AppdxTable {
	at := AppdxTable{Num: el.SelectAttrValue("Num", "")}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "AppdxTableTitle":
			at.Title = extractText(child)
		case "RelatedArticleNum":
			at.RelatedArticleNum = extractText(child)
		case "TableStruct":
			at.Tables = append(at.Tables, parseTableStruct(child, log))
		case "Remarks":
			at.Remarks = append(at.Remarks, parseRemarks(child, log))
		case "Item":
			// some appendices carry items; flatten their sentences to remarks
			item := parseItem(child, log)
			at.Remarks = append(at.Remarks, Remarks{Lines: [][]Inline{item.Sentence}})
		default:
			log.Warn("Unexpected tag in AppdxTable, ignoring", zap.String("tag", child.Tag))
		}
	}
	return at
}

func parseTableStruct(el *etree.Element, log *zap.Logger) TableStruct {
	ts := TableStruct{}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "TableStructTitle":
			ts.Title = extractText(child)
		case "Table":
			ts.Table = parseTable(child, log)
		case "Remarks":
			ts.Remarks = append(ts.Remarks, parseRemarks(child, log))
		default:
			log.Warn("Unexpected tag in TableStruct, ignoring", zap.String("tag", child.Tag))
		}
	}
	return ts
}

func parseTable(el *etree.Element, log *zap.Logger) Table {
	t := Table{WritingMode: el.SelectAttrValue("WritingMode", "")}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "TableHeaderRow":
			t.Rows = append(t.Rows, parseTableRow(child, true, log))
		case "TableRow":
			t.Rows = append(t.Rows, parseTableRow(child, false, log))
		default:
			log.Warn("Unexpected tag in Table, ignoring", zap.String("tag", child.Tag))
		}
	}
	return t
}

func parseTableRow(el *etree.Element, header bool, log *zap.Logger) TableRow {
	row := TableRow{Header: header}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "TableColumn", "TableHeaderColumn":
			row.Cells = append(row.Cells, parseTableCell(child, log))
		default:
			log.Warn("Unexpected tag in table row, ignoring", zap.String("parent", el.Tag), zap.String("tag", child.Tag))
		}
	}
	return row
}

func parseTableCell(el *etree.Element, log *zap.Logger) TableCell {
	cell := TableCell{
		RowSpan:      spanAttr(el, "rowspan", log),
		ColSpan:      spanAttr(el, "colspan", log),
		Align:        el.SelectAttrValue("Align", ""),
		VAlign:       el.SelectAttrValue("Valign", ""),
		BorderTop:    el.SelectAttrValue("BorderTop", ""),
		BorderBottom: el.SelectAttrValue("BorderBottom", ""),
		BorderLeft:   el.SelectAttrValue("BorderLeft", ""),
		BorderRight:  el.SelectAttrValue("BorderRight", ""),
		Vertical:     el.SelectAttrValue("WritingMode", "") == "vertical",
	}
	cell.Content = parseCellContent(el, log)
	return cell
}

// spanAttr reads a rowspan/colspan attribute, normalizing missing or
// malformed values to 1. Values below 1 are degenerate in the schema and are
// treated the same way.
func spanAttr(el *etree.Element, name string, log *zap.Logger) int {
	raw := el.SelectAttrValue(name, "")
	if raw == "" {
		return 1
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		log.Warn("Malformed span attribute, assuming 1", zap.String("attr", name), zap.String("raw", raw))
		return 1
	}
	return v
}

// parseCellContent flattens cell children (sentences, nested parts, figures,
// remarks) into inline segments. Multiple sentences are joined in document
// order; remarks inside cells become plain text.
func parseCellContent(el *etree.Element, log *zap.Logger) []Inline {
	var segments []Inline
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "Sentence", "Column", "Part", "Chapter", "Section", "Division",
			"Article", "Paragraph", "Item", "Remarks", "Note", "NoteStruct":
			segments = append(segments, parseInlines(child, log)...)
		case "FigStruct":
			if fig := child.SelectElement("Fig"); fig != nil {
				segments = append(segments, Inline{Kind: InlineFig, Src: fig.SelectAttrValue("src", "")})
			}
		case "Fig":
			segments = append(segments, Inline{Kind: InlineFig, Src: child.SelectAttrValue("src", "")})
		default:
			segments = append(segments, parseInlines(child, log)...)
		}
	}
	if len(segments) == 0 {
		if text := NormalizeText(el.Text()); text != "" {
			segments = append(segments, Inline{Kind: InlineText, Text: text})
		}
	}
	return segments
}

func parseRemarks(el *etree.Element, log *zap.Logger) Remarks {
	r := Remarks{}
	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "RemarksLabel":
			r.Label = extractText(child)
		case "Sentence":
			r.Lines = append(r.Lines, parseInlines(child, log))
		case "Item":
			item := parseItem(child, log)
			line := item.Sentence
			for _, col := range item.Columns {
				line = append(line, col...)
			}
			r.Lines = append(r.Lines, line)
		default:
			log.Warn("Unexpected tag in Remarks, ignoring", zap.String("tag", child.Tag))
		}
	}
	return r
}

// parseSentenceContainer handles containers holding one or more <Sentence>
// children (ParagraphSentence, ItemSentence, Column and friends). Sentences
// are concatenated in document order.
func parseSentenceContainer(el *etree.Element, log *zap.Logger) []Inline {
	var segments []Inline
	for _, child := range el.ChildElements() {
		if child.Tag == "Sentence" {
			segments = append(segments, parseInlines(child, log)...)
			continue
		}
		segments = append(segments, parseInlines(child, log)...)
	}
	if len(segments) == 0 {
		if text := NormalizeText(el.Text()); text != "" {
			segments = append(segments, Inline{Kind: InlineText, Text: text})
		}
	}
	return segments
}

// parseInlines walks mixed content producing inline segments. Ruby keeps its
// reading, Sup/Sub/Line keep their text, figures keep the attachment src,
// anything else is flattened recursively.
func parseInlines(el *etree.Element, log *zap.Logger) []Inline {
	var segments []Inline
	appendText := func(text string) {
		if text == "" {
			return
		}
		if n := len(segments); n > 0 && segments[n-1].Kind == InlineText {
			segments[n-1].Text += text
			return
		}
		segments = append(segments, Inline{Kind: InlineText, Text: text})
	}

	for _, node := range el.Child {
		switch token := node.(type) {
		case *etree.CharData:
			appendText(token.Data)
		case *etree.Element:
			switch token.Tag {
			case "Ruby":
				base := token.Text()
				reading := ""
				if rt := token.SelectElement("Rt"); rt != nil {
					reading = rt.Text()
				}
				if reading != "" {
					segments = append(segments, Inline{Kind: InlineRuby, Text: base, Ruby: reading})
				} else {
					appendText(base)
				}
			case "Sup":
				segments = append(segments, Inline{Kind: InlineSup, Text: extractText(token)})
			case "Sub":
				segments = append(segments, Inline{Kind: InlineSub, Text: extractText(token)})
			case "Line":
				segments = append(segments, Inline{Kind: InlineLine, Text: extractText(token)})
			case "Fig":
				segments = append(segments, Inline{Kind: InlineFig, Src: token.SelectAttrValue("src", "")})
			case "QuoteStruct", "ArithFormula":
				// quoted structures and formulas are flattened to text
				appendText(extractText(token))
			default:
				segments = append(segments, parseInlines(token, log)...)
			}
		}
	}

	// trim pretty-printing whitespace from text segments
	out := segments[:0]
	for _, seg := range segments {
		if seg.Kind == InlineText {
			seg.Text = NormalizeText(seg.Text)
			if seg.Text == "" {
				continue
			}
		}
		out = append(out, seg)
	}
	return out
}

// extractText recursively extracts and normalizes all text content of an
// element, ruby readings excluded.
func extractText(el *etree.Element) string {
	var buf strings.Builder
	var walk func(e *etree.Element)
	walk = func(e *etree.Element) {
		for _, node := range e.Child {
			switch token := node.(type) {
			case *etree.CharData:
				buf.WriteString(token.Data)
			case *etree.Element:
				if token.Tag == "Rt" {
					continue
				}
				walk(token)
			}
		}
	}
	walk(el)
	return NormalizeText(buf.String())
}

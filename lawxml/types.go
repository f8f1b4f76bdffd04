package lawxml

import "strings"

// Type definitions for the e-Gov standard law XML schema. Only the subset of
// the schema we actually render is modeled; everything else is flattened to
// text during parsing.

// Law mirrors the root <Law> element.
type Law struct {
	Era     string
	Year    string
	Num     string
	LawType string
	LawNum  string // rendered law number, e.g. 昭和三十五年法律第百五号
	Title   string // <LawTitle> text
	Body    LawBody
}

// LawBody groups document parts extracted from <LawBody>.
type LawBody struct {
	Preamble        *Preamble
	Main            MainProvision
	SupplProvisions []SupplProvision
	AppdxTables     []AppdxTable
	EnactStatements []string
}

// Preamble corresponds to <Preamble>.
type Preamble struct {
	Paragraphs []Paragraph
}

// MainProvision corresponds to <MainProvision>. Top level content is either
// a structure hierarchy (parts/chapters/sections) or bare articles.
type MainProvision struct {
	Structures []Structure
	Articles   []Article
	Paragraphs []Paragraph // rare: provisions without articles
}

// StructureKind enumerates the nesting hierarchy of structural elements.
type StructureKind int

const (
	StructurePart StructureKind = iota
	StructureChapter
	StructureSection
	StructureSubsection
	StructureDivision
)

func (k StructureKind) String() string {
	switch k {
	case StructurePart:
		return "Part"
	case StructureChapter:
		return "Chapter"
	case StructureSection:
		return "Section"
	case StructureSubsection:
		return "Subsection"
	case StructureDivision:
		return "Division"
	default:
		// this should never happen
		panic("unsupported structure kind")
	}
}

// TitleTag returns the schema element name holding the structure title.
func (k StructureKind) TitleTag() string {
	return k.String() + "Title"
}

// Structure is one structural grouping element (編/章/節/款/目).
type Structure struct {
	Kind     StructureKind
	Num      string
	Title    string
	Children []Structure
	Articles []Article
}

// Article corresponds to <Article>.
type Article struct {
	Num        string // raw Num attribute, e.g. "38_3_2"
	Title      string // <ArticleTitle> text
	Caption    string // <ArticleCaption> text
	Paragraphs []Paragraph
}

// Paragraph corresponds to <Paragraph> (項).
type Paragraph struct {
	Num      string
	Caption  string
	Sentence []Inline // flattened <ParagraphSentence>
	Items    []Item
	Tables   []TableStruct
	Figs     []Fig
	Lists    []string
}

// Item corresponds to <Item> (号).
type Item struct {
	Num      string
	Title    string
	Columns  [][]Inline // ItemSentence columns, empty when plain sentence
	Sentence []Inline
	Tables   []TableStruct
	Subitems []Subitem
}

// Subitem corresponds to <Subitem1>..<Subitem10> (号の細分).
type Subitem struct {
	Level    int // 1..10
	Title    string
	Sentence []Inline
	Children []Subitem
}

// SupplProvision corresponds to <SupplProvision> (附則).
type SupplProvision struct {
	Label       string
	AmendLawNum string
	Extract     bool
	Articles    []Article
	Paragraphs  []Paragraph
}

// AppdxTable corresponds to <AppdxTable> (別表).
type AppdxTable struct {
	Num               string
	Title             string
	RelatedArticleNum string
	Tables            []TableStruct
	Remarks           []Remarks
}

// TableStruct corresponds to <TableStruct> and wraps a table with its title
// and any surrounding remarks.
type TableStruct struct {
	Title   string
	Table   Table
	Remarks []Remarks
}

// Table corresponds to <Table>. Header rows from <TableHeaderRow> are merged
// into Rows with the Header flag set, preserving document order.
type Table struct {
	WritingMode string
	Rows        []TableRow
}

// TableRow is one declared row, either <TableHeaderRow> or <TableRow>.
type TableRow struct {
	Header bool
	Cells  []TableCell
}

// TableCell corresponds to <TableColumn> / <TableHeaderColumn>. Missing span
// attributes are normalized to 1 during parsing.
type TableCell struct {
	RowSpan      int
	ColSpan      int
	Align        string // left|center|right|justify
	VAlign       string // top|middle|bottom
	BorderTop    string // solid|none|dotted|double, empty means schema default
	BorderBottom string
	BorderLeft   string
	BorderRight  string
	Vertical     bool // WritingMode="vertical"
	Content      []Inline
}

// Remarks corresponds to <Remarks> attached to tables and appendices.
type Remarks struct {
	Label string
	Lines [][]Inline
}

// Fig corresponds to <Fig> referencing an attachment by src.
type Fig struct {
	Src string
}

// InlineKind enumerates inline content variants inside sentences and cells.
type InlineKind int

const (
	InlineText InlineKind = iota
	InlineRuby
	InlineSup
	InlineSub
	InlineLine
	InlineFig
)

// Inline is a tagged inline segment. Exactly one of the payload fields is
// meaningful for a given Kind.
type Inline struct {
	Kind InlineKind
	Text string // InlineText, InlineSup, InlineSub, InlineLine; ruby base for InlineRuby
	Ruby string // reading for InlineRuby
	Src  string // attachment reference for InlineFig
}

// AsPlainText flattens inline segments to plain text, dropping figures.
func AsPlainText(segments []Inline) string {
	var buf strings.Builder
	for _, seg := range segments {
		switch seg.Kind {
		case InlineFig:
			continue
		default:
			buf.WriteString(seg.Text)
		}
	}
	return NormalizeText(buf.String())
}

// HasFigs reports whether any segment references an attachment.
func HasFigs(segments []Inline) bool {
	for _, seg := range segments {
		if seg.Kind == InlineFig {
			return true
		}
	}
	return false
}

// NormalizeText collapses interior whitespace runs (including newlines left
// over from XML pretty printing) and trims the result.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Package markdown renders parsed law documents as Markdown. Document
// structure (parts, chapters, articles, paragraphs, items) becomes headings
// and nested lists; tables go through grid normalization so merged cells
// survive the conversion.
package markdown

import (
	"fmt"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/Usuiensan/xml-markdown/lawxml"
)

// Options control text post-processing and figure link resolution.
type Options struct {
	// NormalizeNumerals rewrites kanji numerals to arabic in running text.
	NormalizeNumerals bool
	// NormalizeUnicode applies NFKC normalization (fullwidth ASCII folding).
	NormalizeUnicode bool
	// ForceHTMLTables writes every table as an HTML fragment, never a pipe
	// table.
	ForceHTMLTables bool
	// FigURL resolves a Fig src reference to a link target. When nil the raw
	// src is used.
	FigURL func(src string) string
}

// Generator converts one parsed law to Markdown. Not safe for concurrent
// use; conversion state is local to a single Generate call chain.
type Generator struct {
	opts Options
	log  *zap.Logger
}

func New(opts Options, log *zap.Logger) *Generator {
	return &Generator{opts: opts, log: log}
}

// Generate renders the whole law document. The result is deterministic for
// a given parsed document and options.
func (g *Generator) Generate(law *lawxml.Law) string {
	var b strings.Builder

	b.WriteString("# " + g.text(law.Title) + "\n\n")
	if law.LawNum != "" {
		b.WriteString(g.text(law.LawNum) + "\n\n")
	}
	for _, stmt := range law.Body.EnactStatements {
		b.WriteString(g.text(stmt) + "\n\n")
	}

	if law.Body.Preamble != nil {
		g.writePreamble(&b, law.Body.Preamble)
	}

	for i := range law.Body.Main.Structures {
		g.writeStructure(&b, &law.Body.Main.Structures[i], 2)
	}
	for i := range law.Body.Main.Articles {
		g.writeArticle(&b, &law.Body.Main.Articles[i], 2)
	}
	for i := range law.Body.Main.Paragraphs {
		g.writeParagraph(&b, &law.Body.Main.Paragraphs[i], len(law.Body.Main.Paragraphs), 0)
	}

	for i := range law.Body.SupplProvisions {
		g.writeSupplProvision(&b, &law.Body.SupplProvisions[i], i == 0)
	}

	g.writeAppdxTables(&b, law.Body.AppdxTables)

	return b.String()
}

func (g *Generator) writePreamble(b *strings.Builder, p *lawxml.Preamble) {
	b.WriteString("## 前文\n\n")
	for i := range p.Paragraphs {
		if text := g.renderInlines(p.Paragraphs[i].Sentence); text != "" {
			b.WriteString(text + "\n\n")
		}
	}
}

func (g *Generator) writeStructure(b *strings.Builder, s *lawxml.Structure, level int) {
	if s.Title != "" {
		b.WriteString(heading(level) + " " + g.text(s.Title) + "\n\n")
	}
	for i := range s.Children {
		g.writeStructure(b, &s.Children[i], level+1)
	}
	for i := range s.Articles {
		g.writeArticle(b, &s.Articles[i], level+1)
	}
}

func (g *Generator) writeArticle(b *strings.Builder, a *lawxml.Article, level int) {
	label := g.text(lawxml.ArticleLabel(a.Num))
	if label == "" {
		label = g.text(a.Title)
	}
	b.WriteString(heading(level) + " " + label + "\n")
	if caption := g.text(a.Caption); caption != "" {
		b.WriteString(caption + "\n")
	}

	for i := range a.Paragraphs {
		g.writeParagraph(b, &a.Paragraphs[i], len(a.Paragraphs), 0)
	}
	b.WriteString("\n")
}

func (g *Generator) writeParagraph(b *strings.Builder, p *lawxml.Paragraph, total, indentLevel int) {
	indent := strings.Repeat("    ", indentLevel)

	if caption := g.text(p.Caption); caption != "" {
		b.WriteString(indent + caption + "\n")
	}

	label := lawxml.ParagraphLabel(p.Num, total)
	if text := g.renderInlines(p.Sentence); text != "" {
		b.WriteString(listItem(indent, g.text(label), text))
	}

	for i := range p.Tables {
		b.WriteString("\n")
		g.writeTableStruct(b, &p.Tables[i], fmt.Sprintf("paragraph %s table %d", p.Num, i+1), indent)
	}

	for _, fig := range p.Figs {
		b.WriteString(indent + g.figLink(fig.Src) + "\n")
	}
	for _, list := range p.Lists {
		if text := g.text(list); text != "" {
			b.WriteString(indent + "- " + text + "\n")
		}
	}

	for i := range p.Items {
		g.writeItem(b, &p.Items[i], indentLevel+1)
	}
}

func (g *Generator) writeItem(b *strings.Builder, it *lawxml.Item, indentLevel int) {
	indent := strings.Repeat("    ", indentLevel)
	label := g.text(lawxml.ItemLabel(it.Num))
	if label == "" {
		label = g.text(it.Title)
	}

	if len(it.Columns) > 0 {
		// multi column items read as "term: definition"
		term := g.renderInlines(it.Columns[0])
		var defs []string
		for _, col := range it.Columns[1:] {
			if text := g.renderInlines(col); text != "" {
				defs = append(defs, text)
			}
		}
		definition := strings.Join(defs, " ")
		if term == "" {
			term = g.text(it.Title)
		}
		text := definition
		if term != "" && definition != "" {
			text = term + ": " + definition
		} else if term != "" {
			text = term
		}
		if text != "" || label != "" {
			b.WriteString(listItem(indent, label, text))
		}
	} else if text := g.renderInlines(it.Sentence); text != "" {
		b.WriteString(listItem(indent, label, text))
	}

	for i := range it.Tables {
		g.writeTableStruct(b, &it.Tables[i], fmt.Sprintf("item %s table %d", it.Num, i+1), indent)
	}

	for i := range it.Subitems {
		g.writeSubitem(b, &it.Subitems[i], indentLevel+1)
	}
}

func (g *Generator) writeSubitem(b *strings.Builder, sub *lawxml.Subitem, indentLevel int) {
	indent := strings.Repeat("    ", indentLevel)
	if text := g.renderInlines(sub.Sentence); text != "" {
		b.WriteString(listItem(indent, g.text(sub.Title), text))
	}
	for i := range sub.Children {
		g.writeSubitem(b, &sub.Children[i], indentLevel+1)
	}
}

func (g *Generator) writeSupplProvision(b *strings.Builder, sp *lawxml.SupplProvision, first bool) {
	if first {
		b.WriteString("# 附則\n\n")
	}

	label := g.text(sp.Label)
	if label == "" {
		label = "附則"
	}
	if sp.AmendLawNum != "" {
		label += "（" + g.text(sp.AmendLawNum) + "）"
	}
	if sp.Extract {
		label += " 抄"
	}
	b.WriteString("## " + label + "\n\n")

	for i := range sp.Articles {
		g.writeArticle(b, &sp.Articles[i], 3)
	}
	for i := range sp.Paragraphs {
		g.writeParagraph(b, &sp.Paragraphs[i], len(sp.Paragraphs), 0)
	}
	b.WriteString("\n")
}

// writeAppdxTables renders appendix tables in natural order of their Num
// attribute so 別表第2 sorts before 別表第10.
func (g *Generator) writeAppdxTables(b *strings.Builder, tables []lawxml.AppdxTable) {
	if len(tables) == 0 {
		return
	}

	ordered := make([]*lawxml.AppdxTable, len(tables))
	for i := range tables {
		ordered[i] = &tables[i]
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return natural.Less(ordered[i].Num, ordered[j].Num)
	})

	for _, at := range ordered {
		title := g.text(at.Title)
		if title == "" {
			title = "別表"
		}
		b.WriteString("## " + title + "\n\n")
		if rel := g.text(at.RelatedArticleNum); rel != "" {
			b.WriteString(rel + "\n\n")
		}
		for i := range at.Tables {
			g.writeTableStruct(b, &at.Tables[i], fmt.Sprintf("appendix %s table %d", at.Num, i+1), "")
		}
		for i := range at.Remarks {
			g.writeRemarks(b, &at.Remarks[i], "")
		}
	}
}

// renderInlines is the cell/sentence content renderer: flattens inline
// segments to a single line Markdown fragment.
func (g *Generator) renderInlines(segments []lawxml.Inline) string {
	var b strings.Builder
	for _, seg := range segments {
		switch seg.Kind {
		case lawxml.InlineRuby:
			b.WriteString("{" + seg.Text + "|" + seg.Ruby + "}")
		case lawxml.InlineFig:
			b.WriteString(g.figLink(seg.Src))
		default:
			b.WriteString(seg.Text)
		}
	}
	return g.text(lawxml.NormalizeText(b.String()))
}

func (g *Generator) figLink(src string) string {
	target := src
	if g.opts.FigURL != nil {
		target = g.opts.FigURL(src)
	}
	return "![図](" + target + ")"
}

// text applies configured post-processing to a rendered text fragment.
func (g *Generator) text(s string) string {
	if s == "" {
		return s
	}
	if g.opts.NormalizeUnicode {
		s = norm.NFKC.String(s)
	}
	if g.opts.NormalizeNumerals {
		s = lawxml.NormalizeNumerals(s)
	}
	return s
}

// listItem formats one list entry, dropping the bold wrapper entirely when
// there is no label.
func listItem(indent, label, text string) string {
	if label == "" {
		return indent + "- " + text + "\n"
	}
	return fmt.Sprintf("%s- **%s** %s\n", indent, label, text)
}

func heading(level int) string {
	if level > 6 {
		level = 6
	}
	return strings.Repeat("#", level)
}

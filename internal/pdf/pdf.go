// Package pdf renders a marketing plan as an A4 PDF document.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/comptoir-labs/comptoir/internal/plan"
	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

type rgb struct{ r, g, b int }

var (
	colorPrimary = rgb{74, 111, 165}
	colorHeading = rgb{50, 50, 50}
	colorBody    = rgb{30, 30, 30}
	colorMuted   = rgb{80, 80, 80}
	colorDate    = rgb{120, 120, 120}
	colorHeader  = rgb{100, 100, 100}
	colorFooter  = rgb{150, 150, 150}
)

const font = "Helvetica"

// Renderer lays out plans. The zero value is not usable; call New.
type Renderer struct {
	// Brand is printed in the footer of every page.
	Brand string
	// Stamp is written as the document's creation and modification date so
	// that output is byte-for-byte reproducible.
	Stamp time.Time

	md parser.Parser
}

// New creates a renderer with the default brand and a fixed stamp.
func New() *Renderer {
	return &Renderer{
		Brand: "le comptoir",
		Stamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		md:    goldmark.New().Parser(),
	}
}

// Bytes renders p and returns the PDF document.
func (r *Renderer) Bytes(p *plan.Plan) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render writes p as a PDF to w.
func (r *Renderer) Render(w io.Writer, p *plan.Plan) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCreationDate(r.Stamp)
	doc.SetModificationDate(r.Stamp)
	doc.SetCatalogSort(true)
	doc.SetTitle(p.Title, true)
	doc.SetAutoPageBreak(true, 25)

	tr := latin1(doc.UnicodeTranslatorFromDescriptor(""))

	doc.SetHeaderFunc(func() {
		doc.SetFont(font, "B", 10)
		setColor(doc, colorHeader)
		doc.CellFormat(0, 8, tr(p.Subtitle+"  |  "+p.Date), "", 0, "R", false, 0, "")
		doc.Ln(12)
	})
	doc.SetFooterFunc(func() {
		doc.SetY(-20)
		doc.SetFont(font, "I", 8)
		setColor(doc, colorFooter)
		footer := fmt.Sprintf("%s -- Page %d/{nb}", r.Brand, doc.PageNo())
		doc.CellFormat(0, 10, tr(footer), "", 0, "C", false, 0, "")
	})
	doc.AliasNbPages("")
	doc.AddPage()

	doc.SetFont(font, "B", 20)
	setColor(doc, colorPrimary)
	doc.CellFormat(0, 12, tr(p.Title), "", 1, "", false, 0, "")
	doc.Ln(2)

	doc.SetFont(font, "", 13)
	setColor(doc, colorMuted)
	doc.CellFormat(0, 8, tr(p.Subtitle), "", 1, "", false, 0, "")

	doc.SetFont(font, "I", 11)
	setColor(doc, colorDate)
	doc.CellFormat(0, 7, tr(p.Date), "", 1, "", false, 0, "")
	doc.Ln(8)

	for _, s := range p.Sections {
		doc.SetFont(font, "B", 14)
		setColor(doc, colorPrimary)
		doc.CellFormat(0, 10, tr(s.Heading), "", 1, "", false, 0, "")
		doc.Ln(2)

		r.renderBody(doc, tr, s.Body)
		doc.Ln(4)
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

// renderBody lays out a markdown-lite body: paragraphs that are entirely
// bold become sub-headings, list items become bullets, and inline emphasis
// is dropped.
func (r *Renderer) renderBody(doc *fpdf.Fpdf, tr func(string) string, body string) {
	src := []byte(body)
	root := r.md.Parse(text.NewReader(src))

	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Paragraph:
			if heading, ok := boldOnly(n, src); ok {
				doc.Ln(3)
				doc.SetFont(font, "B", 11)
				setColor(doc, colorHeading)
				doc.CellFormat(0, 6, tr(heading), "", 1, "", false, 0, "")
				doc.Ln(1)
				continue
			}
			doc.SetFont(font, "", 10)
			setColor(doc, colorBody)
			doc.MultiCell(0, 5, tr(plainText(n, src)), "", "", false)
			doc.Ln(2)
		case *ast.List:
			doc.SetFont(font, "", 10)
			setColor(doc, colorBody)
			for item := n.FirstChild(); item != nil; item = item.NextSibling() {
				doc.CellFormat(8, 5, "-", "", 0, "", false, 0, "")
				doc.MultiCell(0, 5, tr(plainText(item, src)), "", "", false)
			}
			doc.Ln(2)
		default:
			if t := plainText(n, src); t != "" {
				doc.SetFont(font, "", 10)
				setColor(doc, colorBody)
				doc.MultiCell(0, 5, tr(t), "", "", false)
				doc.Ln(2)
			}
		}
	}
}

// boldOnly reports whether paragraph p consists of a single strong span,
// ignoring blank text segments around it.
func boldOnly(p *ast.Paragraph, src []byte) (string, bool) {
	var strong *ast.Emphasis
	for c := p.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok && len(bytes.TrimSpace(t.Segment.Value(src))) == 0 {
			continue
		}
		em, ok := c.(*ast.Emphasis)
		if !ok || em.Level != 2 || strong != nil {
			return "", false
		}
		strong = em
	}
	if strong == nil {
		return "", false
	}
	return plainText(strong, src), true
}

// plainText concatenates the text under n, turning line breaks into spaces.
func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

var punctuation = strings.NewReplacer(
	"—", "--",
	"–", "-",
	"‘", "'",
	"’", "'",
	"“", `"`,
	"”", `"`,
	"…", "...",
	"«", `"`,
	"»", `"`,
	"•", "-",
)

// latin1 maps typographic punctuation to ASCII before the core-font
// translator encodes the rest.
func latin1(encode func(string) string) func(string) string {
	return func(s string) string {
		return encode(punctuation.Replace(s))
	}
}

func setColor(doc *fpdf.Fpdf, c rgb) {
	doc.SetTextColor(c.r, c.g, c.b)
}

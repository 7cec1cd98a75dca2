// Package export writes the paragraphs of a page view to office documents.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/fumiama/go-docx"
	"golang.org/x/net/html"

	"github.com/dgallion1/folio/internal/dom"
)

// Run is a piece of paragraph text. Emphasis marks text whose style differs
// from the paragraph's dominant style.
type Run struct {
	Text     string
	Emphasis bool
}

// Paragraph is the text content of one page paragraph.
type Paragraph struct {
	Runs []Run
}

// Text returns the paragraph text with runs joined.
func (p Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return strings.TrimSpace(sb.String())
}

// Paragraphs collects the non-empty paragraphs under root in document order.
// Whitespace inside runs is collapsed.
func Paragraphs(root *html.Node) []Paragraph {
	if root == nil {
		return nil
	}
	var out []Paragraph
	for _, p := range htmlquery.Find(root, "//p") {
		var para Paragraph
		collectRuns(p, false, &para)
		if para.Text() != "" {
			out = append(out, para)
		}
	}
	return out
}

func collectRuns(n *html.Node, emphasis bool, para *Paragraph) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if text := collapse(c.Data); text != "" {
				para.Runs = append(para.Runs, Run{Text: text, Emphasis: emphasis})
			}
		case html.ElementNode:
			collectRuns(c, emphasis || dom.IsElement(c, "span"), para)
		}
	}
}

// collapse squeezes whitespace runs to one space, keeping a single leading
// or trailing space so adjacent runs stay separated.
func collapse(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s != "" {
			return " "
		}
		return ""
	}
	out := strings.Join(fields, " ")
	if strings.TrimLeft(s[:1], " \t\r\n") == "" {
		out = " " + out
	}
	if strings.TrimRight(s[len(s)-1:], " \t\r\n") == "" {
		out += " "
	}
	return out
}

// WriteDOCX writes a document with title followed by the paragraphs under
// root and returns the number of paragraphs written.
func WriteDOCX(w io.Writer, title string, root *html.Node) (int, error) {
	doc := docx.New().WithDefaultTheme()
	if title != "" {
		doc.AddParagraph().AddText(title).Bold().Size("32")
	}

	paras := Paragraphs(root)
	for _, p := range paras {
		dp := doc.AddParagraph()
		for i, r := range p.Runs {
			text := r.Text
			if i == 0 {
				text = strings.TrimLeft(text, " ")
			}
			if i == len(p.Runs)-1 {
				text = strings.TrimRight(text, " ")
			}
			if text == "" {
				continue
			}
			run := dp.AddText(text)
			if r.Emphasis {
				run.Italic()
			}
		}
	}

	if _, err := doc.WriteTo(w); err != nil {
		return 0, fmt.Errorf("write docx: %w", err)
	}
	return len(paras), nil
}

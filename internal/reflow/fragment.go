// Package reflow rebuilds paragraph blocks from runs of absolutely
// positioned inline fragments.
package reflow

import (
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/dgallion1/folio/internal/dom"
)

// Fragment is one positioned inline text run before reconstruction.
type Fragment struct {
	Text       string // Trimmed inner markup of the run
	StyleClass string // Raw class attribute, compared as a whole
	Left       string // Inline `left`, compared as an opaque string
	Top        string // Inline `top`, compared as an opaque string
	Width      int    // Inline `width` in px, 0 when absent
	Height     int    // Inline `height` in px, 0 when absent
}

// ExtractFragments collects the span runs of container in document order,
// dropping runs whose trimmed content is empty. Spans nested inside another
// span of the same container are part of their outer run, not fragments of
// their own; this departs from a plain descendant query on purpose.
func ExtractFragments(container *html.Node) []Fragment {
	if container == nil {
		return nil
	}
	var frags []Fragment
	for _, span := range htmlquery.Find(container, ".//span") {
		if nestedSpan(container, span) {
			continue
		}
		text := strings.TrimSpace(dom.InnerHTML(span))
		if text == "" {
			continue
		}
		style := dom.StyleOf(span)
		width, _ := dom.Px(style.Get("width"))
		height, _ := dom.Px(style.Get("height"))
		frags = append(frags, Fragment{
			Text:       text,
			StyleClass: dom.Attr(span, "class"),
			Left:       style.Get("left"),
			Top:        style.Get("top"),
			Width:      width,
			Height:     height,
		})
	}
	return frags
}

func nestedSpan(container, span *html.Node) bool {
	for p := span.Parent; p != nil && p != container; p = p.Parent {
		if dom.IsElement(p, "span") {
			return true
		}
	}
	return false
}

package loader

import (
	"strconv"

	"golang.org/x/net/html"

	"github.com/dgallion1/folio/internal/dom"
)

// ApplyBounds sizes page to enclose its positioned children. Children whose
// position or size cannot be read do not contribute on that axis.
func ApplyBounds(page *html.Node) (width, height int) {
	if page == nil {
		return 0, 0
	}
	for c := page.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		style := dom.StyleOf(c)
		x, okX := dom.Px(style.Get("left"))
		w, okW := dom.Px(style.Get("width"))
		if okX && okW {
			width = max(width, x+w)
		}
		y, okY := dom.Px(style.Get("top"))
		h, okH := dom.Px(style.Get("height"))
		if okY && okH {
			height = max(height, y+h)
		}
	}
	dom.SetStyle(page,
		"width", strconv.Itoa(width)+"px",
		"height", strconv.Itoa(height)+"px")
	return width, height
}

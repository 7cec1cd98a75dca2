package selection

import (
	"math"

	"golang.org/x/net/html"

	"github.com/dgallion1/folio/internal/dom"
)

// Rect is an axis-aligned box in page pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// BoundingBox encloses the inline-positioned boxes of nodes, sized by
// dom.Extent. Minimums start at math.MaxInt and maximums at 0, so an empty
// list yields a box with a large negative width and height; callers check for
// an empty selection themselves.
// Coordinates that cannot be read are skipped.
func BoundingBox(nodes []*html.Node) Rect {
	minX, minY := math.MaxInt, math.MaxInt
	maxX, maxY := 0, 0

	for _, n := range nodes {
		style := dom.StyleOf(n)
		width, height := dom.Extent(n)

		if left, ok := dom.Px(style.Get("left")); ok {
			minX = min(minX, left)
			maxX = max(maxX, left+width)
		}
		if top, ok := dom.Px(style.Get("top")); ok {
			minY = min(minY, top)
			maxY = max(maxY, top+height)
		}
	}

	return Rect{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// Empty reports whether r is the degenerate box of an empty selection.
func (r Rect) Empty() bool {
	return r.Width < 0 || r.Height < 0
}

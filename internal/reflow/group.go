package reflow

import (
	"math"

	"github.com/dgallion1/folio/internal/dom"
)

// Group is a run of fragments sharing the same vertical position; it becomes
// one paragraph block.
type Group struct {
	Fragments     []Fragment
	DominantClass string
}

// Anchor returns the position of the group's first fragment.
func (g Group) Anchor() (left, top string) {
	if len(g.Fragments) == 0 {
		return "", ""
	}
	return g.Fragments[0].Left, g.Fragments[0].Top
}

// Partition splits frags into groups, starting a new group whenever a
// fragment's Top differs from the previous fragment's Top. Order is kept.
func Partition(frags []Fragment) []Group {
	var groups []Group
	for i, f := range frags {
		if i == 0 || f.Top != frags[i-1].Top {
			groups = append(groups, Group{})
		}
		g := &groups[len(groups)-1]
		g.Fragments = append(g.Fragments, f)
	}
	for i := range groups {
		groups[i].DominantClass = DominantClass(groups[i].Fragments)
	}
	return groups
}

// DominantClass returns the most frequent StyleClass. On ties the class that
// reached the winning count first wins.
func DominantClass(frags []Fragment) string {
	if len(frags) == 0 {
		return ""
	}
	counts := make(map[string]int)
	most := 0
	winner := frags[0].StyleClass
	for _, f := range frags {
		counts[f.StyleClass]++
		if counts[f.StyleClass] > most {
			most = counts[f.StyleClass]
			winner = f.StyleClass
		}
	}
	return winner
}

// Width returns the horizontal extent covered by the group's fragments,
// measured from the origin when every fragment starts right of it.
func (g Group) Width() int {
	minX, maxX := 0, 0
	for _, f := range g.Fragments {
		left, ok := dom.Px(f.Left)
		if !ok {
			continue
		}
		if end := left + f.Width; end > maxX {
			maxX = end
		}
		if left < minX {
			minX = left
		}
	}
	return maxX - minX
}

// Extent returns the size covered by the group's fragments: the width from
// the leftmost readable fragment to the furthest right edge, and the tallest
// fragment height.
func (g Group) Extent() (width, height int) {
	minX, maxX := math.MaxInt, 0
	for _, f := range g.Fragments {
		height = max(height, f.Height)
		left, ok := dom.Px(f.Left)
		if !ok {
			continue
		}
		minX = min(minX, left)
		maxX = max(maxX, left+f.Width)
	}
	if minX == math.MaxInt {
		return 0, height
	}
	return maxX - minX, height
}

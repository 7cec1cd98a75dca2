package selection

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// Tags configures which elements a click can select. Selectable tags are
// selected directly; a click on a Promoted tag selects its parent element.
type Tags struct {
	Selectable []string `yaml:"selectable" json:"selectable"`
	Promoted   []string `yaml:"promoted" json:"promoted"`
}

// DefaultTags selects paragraphs and images, and promotes text runs to their
// paragraph.
func DefaultTags() Tags {
	return Tags{
		Selectable: []string{"p", "img"},
		Promoted:   []string{"span"},
	}
}

// IsSelectable reports whether n is directly selectable.
func (t Tags) IsSelectable(n *html.Node) bool {
	return matchTag(t.Selectable, n)
}

// IsPromoted reports whether a click on n selects its parent instead.
func (t Tags) IsPromoted(n *html.Node) bool {
	return matchTag(t.Promoted, n)
}

func matchTag(tags []string, n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	return slices.ContainsFunc(tags, func(tag string) bool {
		return strings.EqualFold(tag, n.Data)
	})
}

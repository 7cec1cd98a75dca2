package dom

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// Classes returns the class tokens of n.
func Classes(n *html.Node) []string {
	return strings.Fields(Attr(n, "class"))
}

// HasClass reports whether n carries class name.
func HasClass(n *html.Node, name string) bool {
	return slices.Contains(Classes(n), name)
}

// AddClass appends the given class tokens, skipping ones already present.
func AddClass(n *html.Node, names ...string) {
	classes := Classes(n)
	changed := false
	for _, name := range names {
		for _, tok := range strings.Fields(name) {
			if !slices.Contains(classes, tok) {
				classes = append(classes, tok)
				changed = true
			}
		}
	}
	if changed {
		SetAttr(n, "class", strings.Join(classes, " "))
	}
}

// RemoveClass drops every occurrence of class name. The attribute itself is
// removed once no class remains.
func RemoveClass(n *html.Node, name string) {
	if !HasAttr(n, "class") {
		return
	}
	classes := slices.DeleteFunc(Classes(n), func(c string) bool { return c == name })
	if len(classes) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(classes, " "))
}

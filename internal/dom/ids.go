package dom

import (
	"strconv"

	"golang.org/x/net/html"
)

// IDAttr carries the stable identifier clients use to address elements.
const IDAttr = "data-node-id"

// Index maps stable element identifiers to nodes of one tree.
type Index struct {
	next  int
	nodes map[string]*html.Node
}

// NewIndex assigns identifiers to every element under root and indexes them.
func NewIndex(root *html.Node) *Index {
	ix := &Index{nodes: make(map[string]*html.Node)}
	ix.Refresh(root)
	return ix
}

// Refresh indexes elements added under root since the last call. Elements
// that already carry an identifier keep it.
func (ix *Index) Refresh(root *html.Node) {
	Walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		id := Attr(n, IDAttr)
		if id == "" || (ix.nodes[id] != nil && ix.nodes[id] != n) {
			for {
				ix.next++
				id = "n" + strconv.Itoa(ix.next)
				if ix.nodes[id] == nil {
					break
				}
			}
			SetAttr(n, IDAttr, id)
		}
		ix.nodes[id] = n
		return true
	})
}

// Lookup returns the node registered under id, or nil.
func (ix *Index) Lookup(id string) *html.Node {
	return ix.nodes[id]
}

// ID returns the identifier of n, or "" if n was never indexed.
func (ix *Index) ID(n *html.Node) string {
	return Attr(n, IDAttr)
}

// IDs maps nodes to their identifiers, preserving order and duplicates.
func (ix *Index) IDs(nodes []*html.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = ix.ID(n)
	}
	return out
}

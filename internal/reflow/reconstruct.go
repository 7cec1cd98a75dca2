package reflow

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	nethtml "golang.org/x/net/html"

	"github.com/dgallion1/folio/internal/dom"
)

// Options tunes paragraph materialisation.
type Options struct {
	// ConstrainWidth caps every block at the width its fragments covered and
	// lets the text wrap inside it.
	ConstrainWidth bool
}

// Stats summarises a ReconstructAll pass.
type Stats struct {
	Containers int `json:"containers"`
	Blocks     int `json:"blocks"`
	Removed    int `json:"removed"`
}

// Reconstruct replaces the inline fragments of container with one paragraph
// block per group. The container itself becomes the first block and the
// remaining blocks are inserted as its following siblings. A container
// without fragments is removed and no block is returned. Each block records
// the extent of its fragments in dom.WidthAttr and dom.HeightAttr.
func Reconstruct(container *nethtml.Node, opts Options) ([]*nethtml.Node, error) {
	if container == nil {
		return nil, nil
	}
	frags := ExtractFragments(container)
	dom.ClearChildren(container)
	if len(frags) == 0 {
		dom.Remove(container)
		return nil, nil
	}

	groups := Partition(frags)
	blocks := make([]*nethtml.Node, 0, len(groups))
	prev := container
	for i, g := range groups {
		block := container
		if i > 0 {
			block = dom.NewElement("p")
			dom.InsertAfter(prev, block)
		}
		if err := materialize(block, g, opts); err != nil {
			return blocks, err
		}
		blocks = append(blocks, block)
		prev = block
	}
	return blocks, nil
}

func materialize(block *nethtml.Node, g Group, opts Options) error {
	left, top := g.Anchor()
	dom.SetStyle(block, "top", top, "left", left, "position", "absolute")
	if width, height := g.Extent(); width > 0 || height > 0 {
		dom.SetAttr(block, dom.WidthAttr, strconv.Itoa(width))
		dom.SetAttr(block, dom.HeightAttr, strconv.Itoa(height))
	}
	if opts.ConstrainWidth {
		dom.SetStyle(block, "max-width", strconv.Itoa(g.Width())+"px", "white-space", "normal")
	}
	dom.AddClass(block, g.DominantClass)

	var sb strings.Builder
	for _, f := range g.Fragments {
		sb.WriteByte(' ')
		if f.StyleClass == g.DominantClass {
			sb.WriteString(f.Text)
			continue
		}
		sb.WriteString(`<span class="`)
		sb.WriteString(html.EscapeString(f.StyleClass))
		sb.WriteString(`">`)
		sb.WriteString(f.Text)
		sb.WriteString(`</span>`)
	}
	if err := dom.SetInnerHTML(block, sb.String()); err != nil {
		return fmt.Errorf("rebuild paragraph at top %s: %w", top, err)
	}
	dom.SetAttr(block, "contenteditable", "true")
	return nil
}

// ReconstructAll runs Reconstruct over every paragraph under root and marks
// each resulting paragraph editable.
func ReconstructAll(root *nethtml.Node, opts Options) (Stats, error) {
	var st Stats
	if root == nil {
		return st, nil
	}
	containers := htmlquery.Find(root, ".//p")
	for _, p := range containers {
		st.Containers++
		blocks, err := Reconstruct(p, opts)
		if err != nil {
			return st, err
		}
		if len(blocks) == 0 {
			st.Removed++
		}
		st.Blocks += len(blocks)
	}
	MakeEditable(root)
	return st, nil
}

// MakeEditable sets contenteditable on every paragraph under root.
func MakeEditable(root *nethtml.Node) {
	for _, p := range htmlquery.Find(root, ".//p") {
		dom.SetAttr(p, "contenteditable", "true")
	}
}

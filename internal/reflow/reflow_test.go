package reflow

import (
	"fmt"
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/dgallion1/folio/internal/dom"
)

func span(class, left, top, text string) string {
	return fmt.Sprintf(`<span class="%s" style="left: %s; top: %s; width: 10px">%s</span>`, class, left, top, text)
}

func parsePage(t *testing.T, body string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(`<html><body><div id="page">` + body + `</div></body></html>`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	page := htmlquery.FindOne(doc, `//div[@id="page"]`)
	if page == nil {
		t.Fatal("page div not found")
	}
	return page
}

func frags(tops ...string) []Fragment {
	out := make([]Fragment, len(tops))
	for i, top := range tops {
		out[i] = Fragment{Text: fmt.Sprintf("w%d", i), StyleClass: "c", Top: top, Left: "0px"}
	}
	return out
}

func TestPartition_RunsOfEqualTop(t *testing.T) {
	groups := Partition(frags("A", "A", "B", "B", "B", "A"))

	want := []int{2, 3, 1}
	if len(groups) != len(want) {
		t.Fatalf("expected %d groups, got %d", len(want), len(groups))
	}
	for i, n := range want {
		if len(groups[i].Fragments) != n {
			t.Errorf("group[%d]: expected %d fragments, got %d", i, n, len(groups[i].Fragments))
		}
	}
	// Order is preserved across groups.
	if groups[2].Fragments[0].Text != "w5" {
		t.Errorf("expected last group to hold w5, got %q", groups[2].Fragments[0].Text)
	}
}

func TestPartition_ExactStringComparison(t *testing.T) {
	// "10px" and "10.0px" are equal numerically but differ as strings.
	groups := Partition(frags("10px", "10.0px", "10.0px"))
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
}

func TestPartition_Empty(t *testing.T) {
	if groups := Partition(nil); len(groups) != 0 {
		t.Errorf("expected no groups, got %d", len(groups))
	}
}

func TestDominantClass_FirstToReachMaxWins(t *testing.T) {
	in := []Fragment{{StyleClass: "x"}, {StyleClass: "y"}, {StyleClass: "x"}, {StyleClass: "y"}}
	if got := DominantClass(in); got != "x" {
		t.Errorf("expected %q, got %q", "x", got)
	}

	in = []Fragment{{StyleClass: "y"}, {StyleClass: "x"}, {StyleClass: "x"}}
	if got := DominantClass(in); got != "x" {
		t.Errorf("expected %q, got %q", "x", got)
	}

	if got := DominantClass(nil); got != "" {
		t.Errorf("expected empty class for no fragments, got %q", got)
	}
}

func TestExtractFragments_DropsEmptyAndNested(t *testing.T) {
	page := parsePage(t, `<p>`+
		span("a", "1px", "2px", "one")+
		span("a", "3px", "2px", "   ")+
		`<span class="b" style="left: 5px; top: 2px">two <span class="c">inner</span></span>`+
		`</p>`)

	got := ExtractFragments(dom.FindFirst(page, "p"))
	if len(got) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(got))
	}
	if got[0].Text != "one" || got[0].Left != "1px" || got[0].Top != "2px" || got[0].Width != 10 {
		t.Errorf("unexpected first fragment %+v", got[0])
	}
	if got[1].Text != `two <span class="c">inner</span>` {
		t.Errorf("unexpected nested fragment text %q", got[1].Text)
	}
	if got[1].Width != 0 {
		t.Errorf("expected zero width without inline width, got %d", got[1].Width)
	}
}

func TestReconstruct_SingleGroup(t *testing.T) {
	page := parsePage(t, `<p class="orig">`+
		span("a", "10px", "5px", "Hello")+
		span("b", "40px", "5px", "world")+
		span("a", "80px", "5px", "again")+
		`</p>`)
	p := dom.FindFirst(page, "p")

	blocks, err := Reconstruct(p, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0] != p {
		t.Error("expected the container to be reused as the first block")
	}
	if p.NextSibling != nil {
		t.Error("expected no extra siblings for a single group")
	}
	if got := dom.Attr(p, "class"); got != "orig a" {
		t.Errorf("expected class %q, got %q", "orig a", got)
	}
	if got := dom.Attr(p, "style"); got != "top: 5px; left: 10px; position: absolute;" {
		t.Errorf("unexpected style %q", got)
	}
	if got := dom.InnerHTML(p); got != ` Hello <span class="b">world</span> again` {
		t.Errorf("unexpected content %q", got)
	}
	if got := dom.Attr(p, "contenteditable"); got != "true" {
		t.Errorf("expected contenteditable true, got %q", got)
	}
}

func TestReconstruct_SplitsOnTopChange(t *testing.T) {
	page := parsePage(t, `<p>`+
		span("a", "10px", "5px", "l1")+
		span("a", "20px", "5px", "l1b")+
		span("b", "10px", "25px", "l2")+
		span("a", "10px", "45px", "l3")+
		`</p><img src="after.png">`)
	p := dom.FindFirst(page, "p")

	blocks, err := Reconstruct(p, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}
	for i := 0; i < len(blocks)-1; i++ {
		if blocks[i].NextSibling != blocks[i+1] {
			t.Errorf("expected block %d to be followed by block %d", i, i+1)
		}
	}
	if next := blocks[2].NextSibling; !dom.IsElement(next, "img") {
		t.Errorf("expected original following sibling after the last block, got %v", next)
	}

	wantTops := []string{"5px", "25px", "45px"}
	for i, top := range wantTops {
		if got := dom.StyleValue(blocks[i], "top"); got != top {
			t.Errorf("block %d: expected top %q, got %q", i, top, got)
		}
		if got := dom.Attr(blocks[i], "contenteditable"); got != "true" {
			t.Errorf("block %d: expected contenteditable", i)
		}
	}
	if got := dom.InnerHTML(blocks[1]); got != " l2" {
		t.Errorf("expected dominant-class fragment as bare text, got %q", got)
	}
	if got := dom.Attr(blocks[1], "class"); got != "b" {
		t.Errorf("expected new block class %q, got %q", "b", got)
	}
}

func TestReconstruct_EmptyContainerRemoved(t *testing.T) {
	page := parsePage(t, `<p>`+span("a", "1px", "1px", "  ")+`</p>`)
	p := dom.FindFirst(page, "p")

	if blocks, _ := Reconstruct(p, Options{}); len(blocks) != 0 {
		t.Fatalf("expected no blocks, got %d", len(blocks))
	}
	if p.Parent != nil {
		t.Error("expected empty container to be removed")
	}
	if dom.FindFirst(page, "p") != nil {
		t.Error("expected no paragraph left in page")
	}
}

func TestReconstruct_NilContainer(t *testing.T) {
	if blocks, err := Reconstruct(nil, Options{}); blocks != nil || err != nil {
		t.Errorf("expected nil, got %v, %v", blocks, err)
	}
}

func TestReconstruct_ConstrainWidth(t *testing.T) {
	page := parsePage(t, `<p>`+
		span("a", "10px", "5px", "a")+
		span("a", "30px", "5px", "b")+
		`</p>`)
	p := dom.FindFirst(page, "p")

	if _, err := Reconstruct(p, Options{ConstrainWidth: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := dom.StyleValue(p, "max-width"); got != "40px" {
		t.Errorf("expected max-width %q, got %q", "40px", got)
	}
	if got := dom.StyleValue(p, "white-space"); got != "normal" {
		t.Errorf("expected white-space normal, got %q", got)
	}
}

func TestReconstructAll_Stats(t *testing.T) {
	page := parsePage(t,
		`<p>`+span("a", "1px", "1px", "x")+span("a", "1px", "9px", "y")+`</p>`+
			`<p><span> </span></p>`+
			`<p>`+span("a", "1px", "20px", "z")+`</p>`)

	st, err := ReconstructAll(page, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Containers != 3 {
		t.Errorf("expected 3 containers, got %d", st.Containers)
	}
	if st.Blocks != 3 {
		t.Errorf("expected 3 blocks, got %d", st.Blocks)
	}
	if st.Removed != 1 {
		t.Errorf("expected 1 removed container, got %d", st.Removed)
	}

	ps := htmlquery.Find(page, ".//p")
	if len(ps) != 3 {
		t.Fatalf("expected 3 paragraphs in page, got %d", len(ps))
	}
	for i, p := range ps {
		if dom.Attr(p, "contenteditable") != "true" {
			t.Errorf("paragraph %d not editable", i)
		}
	}
}

func TestGroupWidth(t *testing.T) {
	g := Group{Fragments: []Fragment{
		{Left: "10px", Width: 5},
		{Left: "30px", Width: 12},
		{Left: "bogus", Width: 100},
	}}
	if got := g.Width(); got != 42 {
		t.Errorf("expected width 42, got %d", got)
	}
}

func TestGroupExtent(t *testing.T) {
	g := Group{Fragments: []Fragment{
		{Left: "10px", Width: 5, Height: 12},
		{Left: "30px", Width: 12, Height: 14},
		{Left: "bogus", Width: 100, Height: 3},
	}}
	w, h := g.Extent()
	if w != 32 || h != 14 {
		t.Errorf("expected extent 32x14, got %dx%d", w, h)
	}

	if w, h := (Group{Fragments: []Fragment{{Left: "auto", Width: 9}}}).Extent(); w != 0 || h != 0 {
		t.Errorf("expected zero extent without readable lefts, got %dx%d", w, h)
	}
}

func TestReconstruct_RecordsExtent(t *testing.T) {
	page := parsePage(t, `<p>`+
		`<span class="a" style="left: 10px; top: 5px; width: 30px; height: 12px">one</span>`+
		`<span class="a" style="left: 50px; top: 5px; width: 20px; height: 14px">two</span>`+
		`</p>`)
	p := dom.FindFirst(page, "p")

	if _, err := Reconstruct(p, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := dom.Attr(p, dom.WidthAttr); got != "60" {
		t.Errorf("expected measured width 60, got %q", got)
	}
	if got := dom.Attr(p, dom.HeightAttr); got != "14" {
		t.Errorf("expected measured height 14, got %q", got)
	}
	if got := dom.StyleValue(p, "width"); got != "" {
		t.Errorf("expected no inline width, got %q", got)
	}
}

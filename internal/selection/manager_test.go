package selection

import (
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/dgallion1/folio/internal/dom"
)

const pageMarkup = `<html><body>
<div id="app">
  <p id="e" style="left: 10px; top: 10px; width: 5px; height: 5px"><span id="word">word</span></p>
  <p id="f" style="left: 20px; top: 0px; width: 5px; height: 5px">other</p>
  <img id="img" style="left: 0px; top: 40px; width: 30px; height: 20px">
  <div id="plain">not selectable</div>
</div>
<p id="outside">outside</p>
</body></html>`

type fixture struct {
	doc *html.Node
	mgr *Manager
	log [][]*html.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(pageMarkup))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := &fixture{doc: doc}
	f.mgr = New(f.byID(t, "app"), DefaultTags())
	f.mgr.Subscribe(func(sel []*html.Node) { f.log = append(f.log, sel) })
	return f
}

func (f *fixture) byID(t *testing.T, id string) *html.Node {
	t.Helper()
	n := htmlquery.FindOne(f.doc, `//*[@id="`+id+`"]`)
	if n == nil {
		t.Fatalf("element %q not found", id)
	}
	return n
}

func ids(nodes []*html.Node) string {
	var out []string
	for _, n := range nodes {
		out = append(out, dom.Attr(n, "id"))
	}
	return strings.Join(out, ",")
}

func TestClick_ReplacesSelection(t *testing.T) {
	f := newFixture(t)
	e, fe := f.byID(t, "e"), f.byID(t, "f")

	f.mgr.Click(fe, false)
	if !f.mgr.Click(e, false) {
		t.Fatal("expected click to change selection")
	}

	if got := ids(f.mgr.Selection()); got != "e" {
		t.Errorf("expected selection %q, got %q", "e", got)
	}
	if dom.HasClass(fe, SelectedClass) {
		t.Error("expected previously selected element to lose its marker")
	}
	if !dom.HasClass(e, SelectedClass) {
		t.Error("expected clicked element to be marked")
	}
}

func TestClick_ShiftAccumulates(t *testing.T) {
	f := newFixture(t)
	e, fe := f.byID(t, "e"), f.byID(t, "f")

	f.mgr.Click(fe, false)
	f.mgr.Click(e, true)
	if got := ids(f.mgr.Selection()); got != "f,e" {
		t.Fatalf("expected selection %q, got %q", "f,e", got)
	}

	// Re-adding an already selected element appends a duplicate entry.
	f.mgr.Click(e, true)
	if got := ids(f.mgr.Selection()); got != "f,e,e" {
		t.Errorf("expected selection %q, got %q", "f,e,e", got)
	}
	if got := dom.Attr(e, "class"); got != SelectedClass {
		t.Errorf("expected a single marker class, got %q", got)
	}
}

func TestClick_PromotesChildToParent(t *testing.T) {
	f := newFixture(t)

	f.mgr.Click(f.byID(t, "word"), false)
	if got := ids(f.mgr.Selection()); got != "e" {
		t.Errorf("expected containing paragraph to be selected, got %q", got)
	}
	if dom.HasClass(f.byID(t, "word"), SelectedClass) {
		t.Error("expected the promoted child to stay unmarked")
	}
}

func TestClick_PromotedWithoutParentSelectsItself(t *testing.T) {
	orphan := dom.NewElement("span")
	mgr := New(orphan, DefaultTags())

	mgr.Click(orphan, false)
	if sel := mgr.Selection(); len(sel) != 1 || sel[0] != orphan {
		t.Errorf("expected the orphan span itself to be selected, got %v", sel)
	}
}

func TestClick_IgnoredTargets(t *testing.T) {
	f := newFixture(t)
	f.mgr.Click(f.byID(t, "e"), false)
	published := len(f.log)

	if f.mgr.Click(f.byID(t, "outside"), false) {
		t.Error("expected click outside root to be ignored")
	}
	if f.mgr.Click(f.byID(t, "plain"), true) {
		t.Error("expected click on non-selectable element to be ignored")
	}
	if f.mgr.Click(nil, false) {
		t.Error("expected nil target to be ignored")
	}

	if got := ids(f.mgr.Selection()); got != "e" {
		t.Errorf("expected selection unchanged, got %q", got)
	}
	if len(f.log) != published {
		t.Errorf("expected no notifications for ignored clicks, got %d", len(f.log)-published)
	}
}

func TestClick_NilRootIsNoop(t *testing.T) {
	mgr := New(nil, DefaultTags())
	if mgr.Click(dom.NewElement("p"), false) {
		t.Error("expected no-op without a root")
	}
	if len(mgr.Selection()) != 0 {
		t.Error("expected empty selection")
	}
}

func TestClick_TagsAreCaseInsensitive(t *testing.T) {
	f := newFixture(t)
	mgr := New(f.byID(t, "app"), Tags{Selectable: []string{"IMG"}})

	if !mgr.Click(f.byID(t, "img"), false) {
		t.Error("expected upper-case configuration to match img")
	}
	if mgr.Click(f.byID(t, "e"), false) {
		t.Error("expected p to be ignored when not configured")
	}
}

func TestDelete_RemovesSelectedElements(t *testing.T) {
	f := newFixture(t)
	e, fe := f.byID(t, "e"), f.byID(t, "f")
	f.mgr.Click(e, false)
	f.mgr.Click(fe, true)

	removed := f.mgr.Delete()
	if len(removed) != 2 {
		t.Fatalf("expected 2 removed elements, got %d", len(removed))
	}
	if e.Parent != nil || fe.Parent != nil {
		t.Error("expected both elements to be detached")
	}
	if len(f.mgr.Selection()) != 0 {
		t.Error("expected selection to be empty after delete")
	}

	last := f.log[len(f.log)-1]
	if last == nil || len(last) != 0 {
		t.Errorf("expected a non-nil empty notification, got %v", last)
	}

	if box := f.mgr.BoundingBox(); !box.Empty() {
		t.Errorf("expected degenerate box for empty selection, got %+v", box)
	}
}

func TestNotifications_EveryChange(t *testing.T) {
	f := newFixture(t)

	f.mgr.Click(f.byID(t, "e"), false)
	f.mgr.Click(f.byID(t, "f"), true)
	f.mgr.Clear()

	if len(f.log) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(f.log))
	}
	if got := ids(f.log[1]); got != "e,f" {
		t.Errorf("expected second payload %q, got %q", "e,f", got)
	}
	if len(f.log[2]) != 0 {
		t.Errorf("expected empty payload after clear, got %d items", len(f.log[2]))
	}
}

func TestReset_ClearsAndPublishes(t *testing.T) {
	f := newFixture(t)
	f.mgr.Click(f.byID(t, "e"), false)

	newRoot := dom.NewElement("div")
	f.mgr.Reset(newRoot)

	if f.mgr.Root() != newRoot {
		t.Error("expected root to be replaced")
	}
	if len(f.mgr.Selection()) != 0 {
		t.Error("expected empty selection after reset")
	}
	if last := f.log[len(f.log)-1]; len(last) != 0 {
		t.Errorf("expected empty notification, got %v", last)
	}
}

type recordingMarker struct{ marked, unmarked int }

func (r *recordingMarker) Mark(*html.Node)   { r.marked++ }
func (r *recordingMarker) Unmark(*html.Node) { r.unmarked++ }

func TestWithMarker(t *testing.T) {
	f := newFixture(t)
	rec := &recordingMarker{}
	mgr := New(f.byID(t, "app"), DefaultTags(), WithMarker(rec))

	mgr.Click(f.byID(t, "e"), false)
	mgr.Click(f.byID(t, "f"), false)

	if rec.marked != 2 || rec.unmarked != 1 {
		t.Errorf("expected 2 marks and 1 unmark, got %d and %d", rec.marked, rec.unmarked)
	}
	if dom.HasClass(f.byID(t, "e"), SelectedClass) {
		t.Error("expected custom marker to replace the class marker")
	}
}

package view

import (
	"errors"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/dgallion1/folio/internal/blocks"
	"github.com/dgallion1/folio/internal/dom"
	"github.com/dgallion1/folio/internal/events"
	"github.com/dgallion1/folio/internal/render"
	"github.com/dgallion1/folio/internal/selection"
)

const pageHTML = `<div id="page" class="page" style="position: relative">` +
	`<p id="a" style="left: 10px; top: 10px; width: 5px; height: 5px"><span id="a-run">one</span></p>` +
	`<p id="b" style="left: 20px; top: 0px; width: 5px; height: 5px">two</p>` +
	`<div id="c">not selectable</div>` +
	`</div>`

func newView(t *testing.T) *View {
	t.Helper()
	v, err := New(&render.Result{Book: "B", Page: 0, HTML: pageHTML, Styles: []string{"p {}"}},
		selection.DefaultTags(), slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return v
}

// nodeID returns the node id of the element with the given html id.
func nodeID(t *testing.T, v *View, htmlID string) string {
	t.Helper()
	var id string
	_ = v.WithTree(func(root *html.Node) error {
		dom.Walk(root, func(n *html.Node) bool {
			if dom.Attr(n, "id") == htmlID {
				id = dom.Attr(n, dom.IDAttr)
			}
			return true
		})
		return nil
	})
	if id == "" {
		t.Fatalf("no element %q", htmlID)
	}
	return id
}

func TestView_ClickAndSelection(t *testing.T) {
	v := newView(t)
	a, b := nodeID(t, v, "a"), nodeID(t, v, "b")

	info, changed := v.Click(a, false)
	if !changed || !slices.Equal(info.IDs, []string{a}) {
		t.Fatalf("expected selection [%s], got %v", a, info.IDs)
	}

	info, _ = v.Click(b, true)
	if !slices.Equal(info.IDs, []string{a, b}) {
		t.Fatalf("expected selection [%s %s], got %v", a, b, info.IDs)
	}
	want := selection.Rect{X: 10, Y: 0, Width: 15, Height: 15}
	if info.Box != want || info.Empty {
		t.Errorf("expected box %+v, got %+v", want, info.Box)
	}

	info, _ = v.Click(b, false)
	if !slices.Equal(info.IDs, []string{b}) {
		t.Errorf("expected plain click to replace selection, got %v", info.IDs)
	}
}

func TestView_ClickPromotesRun(t *testing.T) {
	v := newView(t)
	info, _ := v.Click(nodeID(t, v, "a-run"), false)
	if !slices.Equal(info.IDs, []string{nodeID(t, v, "a")}) {
		t.Errorf("expected paragraph selected, got %v", info.IDs)
	}
}

func TestView_IgnoredClicks(t *testing.T) {
	v := newView(t)
	a := nodeID(t, v, "a")
	v.Click(a, false)

	for _, id := range []string{"missing", nodeID(t, v, "c")} {
		info, changed := v.Click(id, false)
		if changed || !slices.Equal(info.IDs, []string{a}) {
			t.Errorf("click on %q: expected selection unchanged, got %v", id, info.IDs)
		}
	}
}

func TestView_DeleteSelection(t *testing.T) {
	v := newView(t)
	a, b := nodeID(t, v, "a"), nodeID(t, v, "b")
	v.Click(a, false)
	v.Click(b, true)

	removed := v.DeleteSelection()
	if !slices.Equal(removed, []string{a, b}) {
		t.Errorf("expected removed [%s %s], got %v", a, b, removed)
	}
	info := v.Selection()
	if !info.Empty || len(info.IDs) != 0 {
		t.Errorf("expected empty selection, got %+v", info)
	}

	snap, err := v.Snapshot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(snap.HTML, "two") || strings.Contains(snap.HTML, "one") {
		t.Errorf("expected deleted paragraphs gone, got %q", snap.HTML)
	}

	if _, changed := v.Click(a, false); changed {
		t.Error("expected click on a deleted element to be ignored")
	}
}

func TestView_Events(t *testing.T) {
	v := newView(t)
	var got []Event
	v.Subscribe(func(e Event) { got = append(got, e) })

	a := nodeID(t, v, "a")
	v.Click(a, false)
	v.ClearSelection()
	v.ToggleBlockEditor()
	v.ToggleBlockEditor()

	want := []string{events.ContentSelect, events.ContentSelect, events.BlockSelectorEnabled, events.BlockSelectorDisabled}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %+v", len(want), got)
	}
	for i, topic := range want {
		if got[i].Topic != topic {
			t.Errorf("event %d: expected %q, got %q", i, topic, got[i].Topic)
		}
		if got[i].IDs == nil {
			t.Errorf("event %d: expected non-nil ids", i)
		}
	}
	if !slices.Equal(got[0].IDs, []string{a}) || len(got[1].IDs) != 0 {
		t.Errorf("unexpected selection payloads %v, %v", got[0].IDs, got[1].IDs)
	}
}

func TestView_CreateBlock(t *testing.T) {
	v := newView(t)
	if _, err := v.CreateBlock(); !errors.Is(err, blocks.ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}

	a, b := nodeID(t, v, "a"), nodeID(t, v, "b")
	v.Click(a, false)
	v.Click(b, true)

	block, err := v.CreateBlock()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if block.ID != "block-0" || block.NodeID == "" {
		t.Errorf("unexpected block ids %+v", block)
	}
	if block.Box != (selection.Rect{X: 10, Y: 0, Width: 15, Height: 15}) {
		t.Errorf("unexpected block box %+v", block.Box)
	}
	if !slices.Equal(block.Content, []string{a, b}) {
		t.Errorf("unexpected block content %v", block.Content)
	}

	snap, err := v.Snapshot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(snap.HTML, `id="block-0"`) {
		t.Errorf("expected block in page markup, got %q", snap.HTML)
	}
}

func TestView_Navigate(t *testing.T) {
	v := newView(t)
	v.Click(nodeID(t, v, "a"), false)
	v.ToggleBlockEditor()

	var topics []string
	v.Subscribe(func(e Event) { topics = append(topics, e.Topic) })

	next := &render.Result{Book: "B", Page: 1, HTML: `<div id="page"><p id="z">z</p></div>`}
	if err := v.Navigate(next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if book, page := v.Book(); book != "B" || page != 1 {
		t.Errorf("expected B page 1, got %s page %d", book, page)
	}
	if info := v.Selection(); !info.Empty {
		t.Errorf("expected empty selection after navigation, got %v", info.IDs)
	}
	want := []string{events.BlockSelectorDisabled, events.ContentSelect}
	if !slices.Equal(topics, want) {
		t.Errorf("expected events %v, got %v", want, topics)
	}

	if _, changed := v.Click(nodeID(t, v, "z"), false); !changed {
		t.Error("expected click on the new page to select")
	}
}

func TestStore(t *testing.T) {
	s := NewStore(time.Hour, 2)
	v1, v2, v3 := newView(t), newView(t), newView(t)

	s.Put(v1)
	time.Sleep(2 * time.Millisecond)
	s.Put(v2)
	time.Sleep(2 * time.Millisecond)
	v1.Selection() // touch v1 so v2 becomes least recently used

	if evicted := s.Put(v3); evicted != v2.ID {
		t.Errorf("expected %s evicted, got %q", v2.ID, evicted)
	}
	if _, err := s.Get(v2.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if got, err := s.Get(v1.ID); err != nil || got != v1 {
		t.Errorf("expected v1, got %v, %v", got, err)
	}

	if !s.Delete(v1.ID) || s.Delete(v1.ID) {
		t.Error("expected delete to succeed once")
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 view, got %d", s.Len())
	}
}

func TestStore_Cleanup(t *testing.T) {
	s := NewStore(20*time.Millisecond, 0)
	old := newView(t)
	s.Put(old)
	time.Sleep(40 * time.Millisecond)
	fresh := newView(t)
	s.Put(fresh)

	if n := s.Cleanup(); n != 1 {
		t.Errorf("expected 1 view removed, got %d", n)
	}
	if _, err := s.Get(fresh.ID); err != nil {
		t.Errorf("expected fresh view to survive, got %v", err)
	}
}

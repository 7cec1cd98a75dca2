// Package view holds page views: the per-client state of one displayed page.
// A view owns a private copy of the rendered page tree together with the
// selection manager and block editor bound to it. Every operation on a view
// is serialised behind its mutex.
package view

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/dgallion1/folio/internal/blocks"
	"github.com/dgallion1/folio/internal/dom"
	"github.com/dgallion1/folio/internal/events"
	"github.com/dgallion1/folio/internal/render"
	"github.com/dgallion1/folio/internal/selection"
)

// Event is a notification emitted by a view. Topic is one of the events
// topic names; IDs carries the selection for content-select and is never nil.
type Event struct {
	Topic string   `json:"topic"`
	IDs   []string `json:"ids"`
}

// SelectionInfo describes the current selection. Box is only meaningful
// when Empty is false.
type SelectionInfo struct {
	IDs   []string       `json:"ids"`
	Box   selection.Rect `json:"box"`
	Empty bool           `json:"empty"`
}

// BlockInfo describes a created block.
type BlockInfo struct {
	ID      string         `json:"id"`
	NodeID  string         `json:"node_id"`
	Box     selection.Rect `json:"box"`
	Content []string       `json:"content"`
}

// Snapshot is the serialisable state of a view.
type Snapshot struct {
	ID           string        `json:"view_id"`
	Book         string        `json:"book"`
	Page         int           `json:"page"`
	HTML         string        `json:"html"`
	Styles       []string      `json:"styles"`
	Scripts      []string      `json:"scripts"`
	Width        int           `json:"width"`
	Height       int           `json:"height"`
	Selection    SelectionInfo `json:"selection"`
	BlockEditing bool          `json:"block_editing"`
}

// View is one page being viewed and edited.
type View struct {
	ID string

	mu       sync.Mutex
	page     *render.Result
	root     *html.Node
	index    *dom.Index
	sel      *selection.Manager
	editor   *blocks.Editor
	unsubs   []func()
	events   *events.Topic[Event]
	lastUsed time.Time
	log      *slog.Logger
}

// New creates a view over a copy of a rendered page.
func New(page *render.Result, tags selection.Tags, log *slog.Logger) (*View, error) {
	v := &View{
		ID:       render.NewID(),
		events:   events.NewTopic[Event]("view"),
		lastUsed: time.Now(),
	}
	v.log = log.With("view_id", v.ID)
	v.sel = selection.New(nil, tags)
	v.sel.Subscribe(func(nodes []*html.Node) {
		v.events.Publish(Event{Topic: events.ContentSelect, IDs: v.index.IDs(nodes)})
	})
	if err := v.install(page); err != nil {
		return nil, err
	}
	return v, nil
}

// install binds the view to a fresh copy of page. Caller holds mu or owns v
// exclusively.
func (v *View) install(page *render.Result) error {
	root, err := dom.ParseElement(page.HTML)
	if err != nil {
		return fmt.Errorf("view %s: %w", v.ID, err)
	}

	if v.editor != nil && v.editor.Active() {
		v.editor.SetActive(false)
	}
	for _, unsub := range v.unsubs {
		unsub()
	}

	v.page = page
	v.root = root
	v.index = dom.NewIndex(root)
	v.editor = blocks.New(root, v.sel)
	v.unsubs = []func(){
		v.editor.OnEnabled(func() {
			v.events.Publish(Event{Topic: events.BlockSelectorEnabled, IDs: []string{}})
		}),
		v.editor.OnDisabled(func() {
			v.events.Publish(Event{Topic: events.BlockSelectorDisabled, IDs: []string{}})
		}),
	}
	v.sel.Reset(root)
	return nil
}

// Navigate replaces the page of the view. The selection is reset to empty
// and published; an active block editor is switched off.
func (v *View) Navigate(page *render.Result) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastUsed = time.Now()
	if err := v.install(page); err != nil {
		return err
	}
	v.log.Info("view navigated", "book", page.Book, "page", page.Page)
	return nil
}

// Subscribe registers fn for view events. Listeners run while the view is
// locked and must not call back into it.
func (v *View) Subscribe(fn func(Event)) (unsubscribe func()) {
	return v.events.Subscribe(fn)
}

// Click applies a click on the element with the given node id. Unknown ids
// behave like clicks outside the page and are ignored.
func (v *View) Click(nodeID string, shift bool) (SelectionInfo, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastUsed = time.Now()

	changed := v.sel.Click(v.index.Lookup(nodeID), shift)
	return v.selectionLocked(), changed
}

// Selection returns the current selection and its bounding box.
func (v *View) Selection() SelectionInfo {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastUsed = time.Now()
	return v.selectionLocked()
}

func (v *View) selectionLocked() SelectionInfo {
	nodes := v.sel.Selection()
	return SelectionInfo{
		IDs:   v.index.IDs(nodes),
		Box:   selection.BoundingBox(nodes),
		Empty: len(nodes) == 0,
	}
}

// ClearSelection empties the selection.
func (v *View) ClearSelection() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastUsed = time.Now()
	v.sel.Clear()
}

// DeleteSelection removes the selected elements from the page and returns
// their node ids.
func (v *View) DeleteSelection() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastUsed = time.Now()

	removed := v.index.IDs(v.sel.Delete())
	v.log.Info("selection deleted", "count", len(removed))
	return removed
}

// ToggleBlockEditor flips block creation mode and returns the new mode.
func (v *View) ToggleBlockEditor() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastUsed = time.Now()
	return v.editor.Toggle()
}

// CreateBlock turns the current selection into a positioned block.
func (v *View) CreateBlock() (BlockInfo, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastUsed = time.Now()

	b, err := v.editor.CreateFromSelection()
	if err != nil {
		return BlockInfo{}, err
	}
	v.index.Refresh(v.root)
	return BlockInfo{
		ID:      dom.Attr(b.Element, "id"),
		NodeID:  v.index.ID(b.Element),
		Box:     selection.BoundingBox(b.Content),
		Content: v.index.IDs(b.Content),
	}, nil
}

// Snapshot renders the current state of the view.
func (v *View) Snapshot() (Snapshot, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastUsed = time.Now()

	markup, err := dom.Render(v.root)
	if err != nil {
		return Snapshot{}, fmt.Errorf("render view %s: %w", v.ID, err)
	}
	return Snapshot{
		ID:           v.ID,
		Book:         v.page.Book,
		Page:         v.page.Page,
		HTML:         markup,
		Styles:       v.page.Styles,
		Scripts:      v.page.Scripts,
		Width:        v.page.Width,
		Height:       v.page.Height,
		Selection:    v.selectionLocked(),
		BlockEditing: v.editor.Active(),
	}, nil
}

// WithTree runs fn on the page tree while the view is locked. fn must not
// retain the tree.
func (v *View) WithTree(fn func(root *html.Node) error) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastUsed = time.Now()
	return fn(v.root)
}

// Book returns the book and page currently shown.
func (v *View) Book() (book string, page int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page.Book, v.page.Page
}

// LastUsed returns the time of the last operation on the view.
func (v *View) LastUsed() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastUsed
}

// Package selection tracks which elements of a page view are selected.
//
// The logical selection is an ordered list of nodes kept by the Manager. The
// visible "selected" marker is a projection of that list applied through a
// Marker on every change, and every change is published on a topic, including
// transitions to an empty selection.
package selection

import (
	"slices"

	"golang.org/x/net/html"

	"github.com/dgallion1/folio/internal/dom"
	"github.com/dgallion1/folio/internal/events"
)

// SelectedClass marks selected elements.
const SelectedClass = "selected"

// Marker projects selection membership onto the tree.
type Marker interface {
	Mark(n *html.Node)
	Unmark(n *html.Node)
}

// ClassMarker toggles a CSS class.
type ClassMarker struct {
	Class string
}

func (m ClassMarker) Mark(n *html.Node)   { dom.AddClass(n, m.Class) }
func (m ClassMarker) Unmark(n *html.Node) { dom.RemoveClass(n, m.Class) }

// State is the selection of one page root.
type State struct {
	Root  *html.Node
	Items []*html.Node
}

// Manager owns the selection state of a page view. It is not safe for
// concurrent use; callers serialise access the way a UI event loop would.
type Manager struct {
	tags    Tags
	marker  Marker
	state   State
	changed *events.Topic[[]*html.Node]
}

// Option configures a Manager.
type Option func(*Manager)

// WithMarker replaces the default class marker.
func WithMarker(m Marker) Option {
	return func(mgr *Manager) { mgr.marker = m }
}

// WithTopic publishes changes on an existing topic.
func WithTopic(t *events.Topic[[]*html.Node]) Option {
	return func(mgr *Manager) { mgr.changed = t }
}

// New creates a manager confined to root. A nil root turns every click into
// a no-op.
func New(root *html.Node, tags Tags, opts ...Option) *Manager {
	m := &Manager{
		tags:   tags,
		marker: ClassMarker{Class: SelectedClass},
		state:  State{Root: root},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.changed == nil {
		m.changed = events.NewTopic[[]*html.Node](events.ContentSelect)
	}
	return m
}

// Reset binds the manager to a new root with an empty selection and
// publishes the empty selection.
func (m *Manager) Reset(root *html.Node) {
	m.state = State{Root: root}
	m.changed.Publish([]*html.Node{})
}

// Root returns the element selection is confined to.
func (m *Manager) Root() *html.Node {
	return m.state.Root
}

// Subscribe registers fn for selection changes.
func (m *Manager) Subscribe(fn func([]*html.Node)) (unsubscribe func()) {
	return m.changed.Subscribe(fn)
}

// Click applies a pointer click on target. Without shift the selection
// becomes exactly the effective target; with shift the target is appended,
// even when it is already selected. Clicks outside the root or on elements
// that are neither selectable nor promoted are ignored. It reports whether
// the selection changed.
func (m *Manager) Click(target *html.Node, shift bool) bool {
	root := m.state.Root
	if root == nil || target == nil {
		return false
	}
	promoted := m.tags.IsPromoted(target)
	if !dom.Contains(root, target) || (!m.tags.IsSelectable(target) && !promoted) {
		return false
	}

	el := target
	if promoted {
		if parent := dom.ParentElement(target); parent != nil {
			el = parent
		}
	}

	if shift {
		m.Add(el)
	} else {
		m.Set([]*html.Node{el})
	}
	return true
}

// Add appends n to the selection.
func (m *Manager) Add(n *html.Node) {
	items := append(slices.Clone(m.state.Items), n)
	m.Set(items)
}

// Set replaces the selection with nodes.
func (m *Manager) Set(nodes []*html.Node) {
	for _, n := range m.state.Items {
		m.marker.Unmark(n)
	}
	for _, n := range nodes {
		m.marker.Mark(n)
	}
	m.state.Items = slices.Clone(nodes)
	m.changed.Publish(m.Selection())
}

// Clear empties the selection.
func (m *Manager) Clear() {
	m.Set(nil)
}

// Selection returns a copy of the current selection, in insertion order.
func (m *Manager) Selection() []*html.Node {
	out := make([]*html.Node, len(m.state.Items))
	copy(out, m.state.Items)
	return out
}

// Delete detaches every selected element from the tree and empties the
// selection. It returns the elements that were selected.
func (m *Manager) Delete() []*html.Node {
	removed := m.Selection()
	for _, n := range removed {
		dom.Remove(n)
	}
	m.Set(nil)
	return removed
}

// BoundingBox returns the bounding box of the current selection.
func (m *Manager) BoundingBox() Rect {
	return BoundingBox(m.state.Items)
}

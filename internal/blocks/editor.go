// Package blocks implements the block editor of a page view: a toggleable
// mode in which the current selection can be turned into a positioned block.
package blocks

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"golang.org/x/net/html"

	"github.com/dgallion1/folio/internal/dom"
	"github.com/dgallion1/folio/internal/events"
	"github.com/dgallion1/folio/internal/selection"
)

// ElementClass marks block elements.
const ElementClass = "block-element"

// ErrEmptySelection is returned when a block is requested without a selection.
var ErrEmptySelection = errors.New("selection is empty")

// Selector is the synchronous selection accessor the editor reads from.
type Selector interface {
	Selection() []*html.Node
}

// Block is a created block and the elements it was built from.
type Block struct {
	Element *html.Node
	Content []*html.Node
}

// Editor holds block editor state for one page root. Like the selection
// manager it is not safe for concurrent use.
type Editor struct {
	root     *html.Node
	selector Selector
	active   bool
	blocks   []Block

	enabled  *events.Topic[struct{}]
	disabled *events.Topic[struct{}]
}

// New creates an inactive editor that appends blocks to root.
func New(root *html.Node, selector Selector) *Editor {
	return &Editor{
		root:     root,
		selector: selector,
		enabled:  events.NewTopic[struct{}](events.BlockSelectorEnabled),
		disabled: events.NewTopic[struct{}](events.BlockSelectorDisabled),
	}
}

// OnEnabled registers fn for the block-selector-active notification.
func (e *Editor) OnEnabled(fn func()) (unsubscribe func()) {
	return e.enabled.Subscribe(func(struct{}) { fn() })
}

// OnDisabled registers fn for the block-selector-disabled notification.
func (e *Editor) OnDisabled(fn func()) (unsubscribe func()) {
	return e.disabled.Subscribe(func(struct{}) { fn() })
}

// Toggle flips the editor mode, notifies listeners and returns the new mode.
func (e *Editor) Toggle() bool {
	e.SetActive(!e.active)
	return e.active
}

// SetActive sets the editor mode. Listeners are notified even when the mode
// does not change.
func (e *Editor) SetActive(active bool) {
	e.active = active
	if active {
		e.enabled.Publish(struct{}{})
	} else {
		e.disabled.Publish(struct{}{})
	}
}

// Active reports whether block creation mode is on.
func (e *Editor) Active() bool {
	return e.active
}

// Blocks returns the blocks created so far.
func (e *Editor) Blocks() []Block {
	return slices.Clone(e.blocks)
}

// CreateFromSelection wraps the bounding box of the current selection in an
// absolutely positioned block-N element appended to the root. The selected
// elements are recorded as the block content and stay where they are.
func (e *Editor) CreateFromSelection() (Block, error) {
	if e.root == nil {
		return Block{}, errors.New("no page root")
	}
	content := e.selector.Selection()
	if len(content) == 0 {
		return Block{}, ErrEmptySelection
	}
	box := selection.BoundingBox(content)

	el := dom.NewElement("div")
	dom.SetAttr(el, "id", fmt.Sprintf("block-%d", len(e.blocks)))
	dom.AddClass(el, ElementClass)
	dom.SetStyle(el,
		"width", px(box.Width),
		"height", px(box.Height),
		"left", px(box.X),
		"top", px(box.Y),
		"position", "absolute")
	e.root.AppendChild(el)

	b := Block{Element: el, Content: content}
	e.blocks = append(e.blocks, b)
	return b, nil
}

func px(v int) string {
	return strconv.Itoa(v) + "px"
}

// Package events provides typed notification topics. A topic has a name and
// any number of listeners; every Publish reaches every listener registered at
// that moment, in registration order.
package events

import "sync"

// Names of the topics a page view exposes.
const (
	ContentSelect         = "content-select"
	BlockSelectorEnabled  = "block-selector-active"
	BlockSelectorDisabled = "block-selector-disabled"
)

// Topic delivers values of type T to registered listeners.
type Topic[T any] struct {
	name string

	mu        sync.Mutex
	nextID    int
	listeners []listener[T]
}

type listener[T any] struct {
	id int
	fn func(T)
}

// NewTopic creates an empty topic.
func NewTopic[T any](name string) *Topic[T] {
	return &Topic[T]{name: name}
}

// Name returns the topic name.
func (t *Topic[T]) Name() string {
	return t.name
}

// Subscribe registers fn and returns a function that removes it again.
func (t *Topic[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	id := t.nextID
	t.listeners = append(t.listeners, listener[T]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			for i, l := range t.listeners {
				if l.id == id {
					t.listeners = append(t.listeners[:i:i], t.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish calls every listener with v. Listeners run synchronously on the
// caller's goroutine, outside the topic lock.
func (t *Topic[T]) Publish(v T) {
	t.mu.Lock()
	fns := make([]func(T), len(t.listeners))
	for i, l := range t.listeners {
		fns[i] = l.fn
	}
	t.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Len returns the number of registered listeners.
func (t *Topic[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.listeners)
}

package resource

import (
	"reflect"
	"sync"
)

// Table maps native handles to the values that service them.
// All methods are safe for concurrent use; lookups on distinct handles
// only take the read lock.
type Table[T any] struct {
	entries   map[Handle]T
	observers []subscription
	nextSub   uint64
	mu        sync.RWMutex
	obsMu     sync.RWMutex
}

type subscription struct {
	obs Observer
	id  uint64
}

// NewTable creates an empty table.
func NewTable[T any]() *Table[T] {
	return &Table[T]{
		entries: make(map[Handle]T, 64),
	}
}

// Register associates value with handle, overwriting any stale entry left
// behind by a reused handle value. Returns false for the null handle.
func (t *Table[T]) Register(handle Handle, value T) bool {
	if handle == 0 {
		return false
	}

	t.mu.Lock()
	_, existed := t.entries[handle]
	t.entries[handle] = value
	t.mu.Unlock()

	evt := EventRegistered
	if existed {
		evt = EventReplaced
	}
	t.notify(Event{Type: evt, Handle: handle, Value: value})
	return true
}

// Lookup returns the value registered for handle.
// A miss is not an error: it means the handle belongs to the native API.
func (t *Table[T]) Lookup(handle Handle) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.entries[handle]
	return v, ok
}

// Contains reports whether handle is registered.
func (t *Table[T]) Contains(handle Handle) bool {
	_, ok := t.Lookup(handle)
	return ok
}

// Retire removes handle and returns ownership of its value.
func (t *Table[T]) Retire(handle Handle) (T, bool) {
	t.mu.Lock()
	v, ok := t.entries[handle]
	if ok {
		delete(t.entries, handle)
	}
	t.mu.Unlock()

	if ok {
		t.notify(Event{Type: EventRetired, Handle: handle, Value: v})
	}
	return v, ok
}

// Len returns the number of registered handles.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Each iterates over a snapshot of the registered handles.
func (t *Table[T]) Each(fn func(Handle, T) bool) {
	t.mu.RLock()
	snapshot := make(map[Handle]T, len(t.entries))
	for h, v := range t.entries {
		snapshot[h] = v
	}
	t.mu.RUnlock()

	for h, v := range snapshot {
		if !fn(h, v) {
			return
		}
	}
}

// Clear retires every handle.
func (t *Table[T]) Clear() {
	// Collect handles first to avoid holding lock during Retire
	var handles []Handle
	t.Each(func(h Handle, _ T) bool {
		handles = append(handles, h)
		return true
	})
	for _, h := range handles {
		t.Retire(h)
	}
}

// Subscribe adds an observer for lifecycle events. The returned cancel
// func removes exactly this subscription and may be called more than once.
func (t *Table[T]) Subscribe(o Observer) (cancel func()) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.nextSub++
	id := t.nextSub
	t.observers = append(t.observers, subscription{obs: o, id: id})
	return func() { t.remove(id) }
}

// Unsubscribe removes the first subscription of o. Observers whose
// dynamic type is not comparable, such as ObserverFunc, cannot be matched
// here and are left in place; use the cancel func from Subscribe instead.
func (t *Table[T]) Unsubscribe(o Observer) {
	if o == nil || !reflect.TypeOf(o).Comparable() {
		return
	}
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, s := range t.observers {
		if s.obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

func (t *Table[T]) remove(id uint64) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, s := range t.observers {
		if s.id == id {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

func (t *Table[T]) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, s := range t.observers {
		s.obs.OnResourceEvent(e)
	}
}

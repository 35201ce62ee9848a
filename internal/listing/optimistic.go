package listing

import "sync"

// Optimistic is a list whose local edits are provisional.  Apply changes
// the local copy at once; Reconcile replaces it with what the server
// returned, discarding any local edit the server does not reflect.
type Optimistic[T any, K comparable] struct {
	mu    sync.Mutex
	items []T
	key   func(T) K
	dirty bool
}

// NewOptimistic starts from a fetched list.  key identifies an item.
func NewOptimistic[T any, K comparable](items []T, key func(T) K) *Optimistic[T, K] {
	return &Optimistic[T, K]{items: append([]T(nil), items...), key: key}
}

// Items returns a copy of the current list.
func (o *Optimistic[T, K]) Items() []T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]T{}, o.items...)
}

// Provisional reports whether local edits are awaiting reconciliation.
func (o *Optimistic[T, K]) Provisional() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dirty
}

// Remove drops the item with key k.
func (o *Optimistic[T, K]) Remove(k K) {
	o.Apply(func(items []T) []T {
		out := items[:0]
		for _, it := range items {
			if o.key(it) != k {
				out = append(out, it)
			}
		}
		return out
	})
}

// Replace swaps the item with the same key as v, or appends v.
func (o *Optimistic[T, K]) Replace(v T) {
	o.Apply(func(items []T) []T {
		k := o.key(v)
		for i := range items {
			if o.key(items[i]) == k {
				items[i] = v
				return items
			}
		}
		return append(items, v)
	})
}

// Apply runs an arbitrary local mutation.
func (o *Optimistic[T, K]) Apply(mutate func([]T) []T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.items = mutate(o.items)
	o.dirty = true
}

// Reconcile installs the server list and reports whether the local copy
// had diverged from it (by keys and order).
func (o *Optimistic[T, K]) Reconcile(fetched []T) (diverged bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(fetched) != len(o.items) {
		diverged = true
	} else {
		for i := range fetched {
			if o.key(fetched[i]) != o.key(o.items[i]) {
				diverged = true
				break
			}
		}
	}
	o.items = append([]T{}, fetched...)
	o.dirty = false
	return diverged
}

// Package queue holds a small thread-safe FIFO used to batch viewer actions.
package queue

import (
	"sync"
)

// MergeFunc folds next into last when the two can be collapsed into a
// single item without changing the outcome of applying them in order.
// It reports false when they must stay separate.
type MergeFunc[T any] func(last, next T) (T, bool)

// Queue is a generic thread-safe queue with optional tail coalescing.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
	merge MergeFunc[T]
}

// New creates a new empty queue. merge may be nil.
func New[T any](merge MergeFunc[T]) *Queue[T] {
	return &Queue[T]{
		items: make([]T, 0),
		merge: merge,
	}
}

// Push appends items to the queue, coalescing each with the current tail
// when the merge function allows it.
func (q *Queue[T]) Push(items ...T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, it := range items {
		if n := len(q.items); n > 0 && q.merge != nil {
			if merged, ok := q.merge(q.items[n-1], it); ok {
				q.items[n-1] = merged
				continue
			}
		}
		q.items = append(q.items, it)
	}
}

// Empty returns true if the queue has no items.
func (q *Queue[T]) Empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) == 0
}

// Len returns the number of items in the queue.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain returns all items in push order and clears the queue.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	result := q.items
	q.items = make([]T, 0, cap(q.items))
	return result
}

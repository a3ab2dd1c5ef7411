package lfsdfs

import (
	"container/heap"
	"sort"
)

// intMinHeap implements a min-heap of freed handles.
type intMinHeap []int

func (h intMinHeap) Len() int           { return len(h) }
func (h intMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *intMinHeap) Push(x any) {
	*h = append(*h, x.(int))
}

func (h *intMinHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// HandleTable maps small integer handles to open objects. Allocate always
// hands out the smallest free handle, the way an engine with a fixed slot
// array would.
//
// HandleTable is not safe for concurrent use; engines guard it with their
// own lock.
type HandleTable[T any] struct {
	handles map[int]T
	free    intMinHeap
	next    int
}

// NewHandleTable returns an empty table.
func NewHandleTable[T any]() *HandleTable[T] {
	return &HandleTable[T]{handles: make(map[int]T)}
}

// Allocate stores v and returns its handle.
func (t *HandleTable[T]) Allocate(v T) int {
	var h int
	if t.free.Len() > 0 {
		h = heap.Pop(&t.free).(int)
	} else {
		h = t.next
		t.next++
	}
	t.handles[h] = v
	return h
}

// Get returns the object stored under h.
func (t *HandleTable[T]) Get(h int) (T, bool) {
	v, ok := t.handles[h]
	return v, ok
}

// Release removes h from the table and returns what was stored under it.
func (t *HandleTable[T]) Release(h int) (T, bool) {
	v, ok := t.handles[h]
	if !ok {
		return v, false
	}
	delete(t.handles, h)
	heap.Push(&t.free, h)
	return v, true
}

// Len returns the number of live handles.
func (t *HandleTable[T]) Len() int {
	return len(t.handles)
}

// Handles returns the live handles in ascending order.
func (t *HandleTable[T]) Handles() []int {
	hs := make([]int, 0, len(t.handles))
	for h := range t.handles {
		hs = append(hs, h)
	}
	sort.Ints(hs)
	return hs
}

// Reset drops every handle without touching the stored objects.
func (t *HandleTable[T]) Reset() {
	t.handles = make(map[int]T)
	t.free = nil
	t.next = 0
}

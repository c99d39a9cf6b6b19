// Package pqueue implements the ordered-by-cost set of pairs that the
// contraction loop drains, as an indexed binary heap: a container/heap
// slice plus a map from pair key to heap position, so Remove and the
// remove-then-reinsert key-mutation dance both run in O(log n) instead of
// O(n). Ties break on (V1, V2) so pop order is deterministic (P6).
package pqueue

import (
	"container/heap"

	"github.com/Faultbox/qslim/pkg/pair"
)

// Queue is an ordered set of pair.Pair, ordered ascending by cost with
// (V1, V2) as the deterministic tiebreaker.
type Queue struct {
	h indexedHeap
}

// New returns an empty queue.
func New() *Queue {
	q := &Queue{h: indexedHeap{index: make(map[pair.Key]int)}}
	heap.Init(&q.h)
	return q
}

// Len returns the number of pairs currently in the queue.
func (q *Queue) Len() int { return q.h.Len() }

// Contains reports whether k is currently resident in the queue.
func (q *Queue) Contains(k pair.Key) bool {
	_, ok := q.h.index[k]
	return ok
}

// Insert adds p to the queue. p must not already be resident (remove it
// first if its cost changed — costs are immutable while resident, the
// only way to preserve I5).
func (q *Queue) Insert(p pair.Pair) {
	heap.Push(&q.h, p)
}

// Remove deletes the pair with key k from the queue, if present.
func (q *Queue) Remove(k pair.Key) {
	i, ok := q.h.index[k]
	if !ok {
		return
	}
	heap.Remove(&q.h, i)
}

// PopMin removes and returns the minimum-cost pair, or false if the queue
// is empty.
func (q *Queue) PopMin() (pair.Pair, bool) {
	if q.h.Len() == 0 {
		return pair.Pair{}, false
	}
	return heap.Pop(&q.h).(pair.Pair), true
}

// indexedHeap is the container/heap.Interface implementation backing Queue.
type indexedHeap struct {
	items []pair.Pair
	index map[pair.Key]int
}

func (h indexedHeap) Len() int { return len(h.items) }

func (h indexedHeap) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if a.Cost != b.Cost {
		return a.Cost < b.Cost
	}
	if a.V1 != b.V1 {
		return a.V1 < b.V1
	}
	return a.V2 < b.V2
}

func (h indexedHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.index[h.items[i].Key] = i
	h.index[h.items[j].Key] = j
}

func (h *indexedHeap) Push(x any) {
	p := x.(pair.Pair)
	h.index[p.Key] = len(h.items)
	h.items = append(h.items, p)
}

func (h *indexedHeap) Pop() any {
	old := h.items
	n := len(old)
	p := old[n-1]
	h.items = old[:n-1]
	delete(h.index, p.Key)
	return p
}

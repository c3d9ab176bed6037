package scheduler

import "container/heap"

// TreeSorter is the "alternative complete binary tree sorter",
// grounded directly on taskstore/pqueue.go: a
// container/heap binary heap plus a side index for O(1) lookup by key,
// and the same nil-bubble trick for O(log n) removal from the middle of
// the heap. taskstore/pqueue.go indexes by a sparse externally-assigned
// task ID via a map; particle IDs here are dense (0..N), but a map is kept anyway
// since TreeSorter must tolerate Invalidate(id) for an id with no pending
// entry (already popped, or never predicted) without a bounds check.
type TreeSorter struct {
	heap treeHeapImpl
	index map[int]*treeEntry
}

// NewTreeSorter returns an empty TreeSorter.
func NewTreeSorter() *TreeSorter {
	return &TreeSorter{index: make(map[int]*treeEntry)}
}

func (t *TreeSorter) Push(id int, time float64) {
	e := &treeEntry{id: id, time: time}
	heap.Push(&t.heap, e)
	t.index[id] = e
}

func (t *TreeSorter) Pop() (int, bool) {
	if t.heap.Len() == 0 {
		return 0, false
	}
	e := heap.Pop(&t.heap).(*treeEntry)
	delete(t.index, e.id)
	return e.id, true
}

// Invalidate removes id's pending entry in O(log n), mirroring pqueue's
// PopAt: push a "deleted" sentinel onto the heap prefix up to id's index,
// which (being always smallest) bubbles straight to the root, then pop
// the root off the real heap.
func (t *TreeSorter) Invalidate(id int) {
	e, ok := t.index[id]
	if !ok {
		return
	}
	subheap := t.heap[:e.idx]
	heap.Push(&subheap, &treeEntry{deleted: true})
	heap.Pop(&t.heap)
	delete(t.index, id)
}

func (t *TreeSorter) Len() int { return t.heap.Len() }

type treeEntry struct {
	id int
	time float64
	idx int
	deleted bool
}

type treeHeapImpl []*treeEntry

func (h treeHeapImpl) Len() int { return len(h) }

func (h treeHeapImpl) Less(i, j int) bool {
	if h[i].deleted {
		return true
	}
	if h[j].deleted {
		return false
	}
	return h[i].time < h[j].time
}

func (h treeHeapImpl) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].idx = i
	h[j].idx = j
}

func (h *treeHeapImpl) Push(x interface{}) {
	e := x.(*treeEntry)
	e.idx = len(*h)
	*h = append(*h, e)
}

func (h *treeHeapImpl) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	e.idx = -1
	*h = old[:n-1]
	return e
}

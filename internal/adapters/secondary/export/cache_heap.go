package export

import (
	"time"
)

// heapEntry orders cached renders by last access
type heapEntry struct {
	key        string
	lastAccess time.Time
	index      int
}

// accessHeap is a min-heap on lastAccess, so the root is the eviction candidate
type accessHeap []*heapEntry

func (h accessHeap) Len() int { return len(h) }

func (h accessHeap) Less(i, j int) bool {
	return h[i].lastAccess.Before(h[j].lastAccess)
}

func (h accessHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *accessHeap) Push(x interface{}) {
	entry := x.(*heapEntry)
	entry.index = len(*h)
	*h = append(*h, entry)
}

func (h *accessHeap) Pop() interface{} {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	entry.index = -1
	*h = old[:n-1]
	return entry
}

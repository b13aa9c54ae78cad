package ledger

import (
	"container/heap"
	"time"
)

// expiry is one pending block expiration.  A seat that gets re-blocked
// leaves its older entries in the heap; the sweeper discards them by
// comparing against the live heldAt timestamp.
type expiry struct {
	showing string
	seat    string
	at      time.Time
}

// expiryHeap orders pending expirations by deadline, earliest first.
type expiryHeap struct {
	items []expiry
}

func (h *expiryHeap) Len() int           { return len(h.items) }
func (h *expiryHeap) Less(i, j int) bool { return h.items[i].at.Before(h.items[j].at) }
func (h *expiryHeap) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *expiryHeap) Push(x any)         { h.items = append(h.items, x.(expiry)) }
func (h *expiryHeap) Pop() any {
	old := h.items
	n := len(old)
	it := old[n-1]
	h.items = old[:n-1]
	return it
}

func (h *expiryHeap) push(e expiry) { heap.Push(h, e) }
func (h *expiryHeap) pop() expiry   { return heap.Pop(h).(expiry) }

// peek returns the earliest pending expiration without removing it.
func (h *expiryHeap) peek() (expiry, bool) {
	if len(h.items) == 0 {
		return expiry{}, false
	}
	return h.items[0], true
}

package median

import "container/heap"

// floatHeap is a binary heap of float64 ordered by less.
// Implements container/heap.Interface.
type floatHeap struct {
	values []float64
	less   func(a, b float64) bool
}

func (h floatHeap) Len() int           { return len(h.values) }
func (h floatHeap) Less(i, j int) bool { return h.less(h.values[i], h.values[j]) }
func (h floatHeap) Swap(i, j int)      { h.values[i], h.values[j] = h.values[j], h.values[i] }
func (h *floatHeap) Push(x any)        { h.values = append(h.values, x.(float64)) }
func (h *floatHeap) Pop() any {
	old := h.values
	v := old[len(old)-1]
	h.values = old[:len(old)-1]
	return v
}

func newMaxHeap() *floatHeap {
	return &floatHeap{less: func(a, b float64) bool { return a > b }}
}

func newMinHeap() *floatHeap {
	return &floatHeap{less: func(a, b float64) bool { return a < b }}
}

func (h *floatHeap) push(v float64) { heap.Push(h, v) }
func (h *floatHeap) pop() float64   { return heap.Pop(h).(float64) }

// root returns the top element. Caller must ensure Len() > 0.
func (h *floatHeap) root() float64 { return h.values[0] }

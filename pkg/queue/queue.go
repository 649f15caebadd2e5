/*
Copyright (c) automateprint authors.
Licensed under the MIT license.
*/

// Package queue implements the per-printer Bounded Priority Queue
// (C3): a thread-safe min-heap keyed (priority asc, enqueue-seq asc)
// with a hard length cap.
package queue

import (
	"container/heap"
	"sync"

	"github.com/Vishnuvikas56/automateprint/pkg/printtypes"
)

// ErrOverflow is returned by Push when the queue is already at its
// configured cap.
type ErrOverflow struct {
	PrinterID string
}

func (e *ErrOverflow) Error() string {
	return "queue overflow for printer " + e.PrinterID
}

type entry struct {
	job      printtypes.ReservedJob
	priority int
	seq      uint64
}

// innerHeap implements container/heap.Interface over entries, ordered
// by (priority asc, seq asc).
type innerHeap []*entry

func (h innerHeap) Len() int { return len(h) }
func (h innerHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}
func (h innerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *innerHeap) Push(x any)   { *h = append(*h, x.(*entry)) }
func (h *innerHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Queue is a bounded, thread-safe priority queue for one printer.
type Queue struct {
	mu         sync.Mutex
	printerID  string
	maxLen     int
	h          innerHeap
	nextSeq    uint64
	executing  string // order_id of the head job currently executing, if any
}

// New returns an empty queue capped at maxLen entries.
func New(printerID string, maxLen int) *Queue {
	q := &Queue{printerID: printerID, maxLen: maxLen}
	heap.Init(&q.h)
	return q
}

// Push reserves a slot for job at the given priority (1 = served
// first). Fails with ErrOverflow if the queue is at cap.
func (q *Queue) Push(job printtypes.ReservedJob, priority int) (printtypes.ReservedJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.h) >= q.maxLen {
		return printtypes.ReservedJob{}, &ErrOverflow{PrinterID: q.printerID}
	}

	seq := q.nextSeq
	q.nextSeq++
	stamped := job.WithEnqueueSeq(seq)
	heap.Push(&q.h, &entry{job: stamped, priority: priority, seq: seq})
	return stamped, nil
}

// Pop removes and returns the highest-priority (lowest value, then
// earliest-enqueued) job, or ok=false if the queue is empty.
func (q *Queue) Pop() (job printtypes.ReservedJob, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.h) == 0 {
		return printtypes.ReservedJob{}, false
	}
	e := heap.Pop(&q.h).(*entry)
	return e.job, true
}

// Peek returns the head job without removing it.
func (q *Queue) Peek() (job printtypes.ReservedJob, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.h) == 0 {
		return printtypes.ReservedJob{}, false
	}
	return q.h[0].job, true
}

// Size returns the current number of queued jobs.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.h)
}

// IsFull reports whether the queue is at its configured cap.
func (q *Queue) IsFull() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.h) >= q.maxLen
}

// ErrExecuting is returned by Remove when the matching job is the
// queue head and has been marked as currently executing by the
// external backend (§4.8): cancellation of in-flight work is refused.
type ErrExecuting struct {
	OrderID string
}

func (e *ErrExecuting) Error() string {
	return "order " + e.OrderID + " is already executing and cannot be cancelled"
}

// MarkExecuting flags orderID as currently executing, provided it is
// the current queue head. The façade calls this once the external
// execution backend reports a "printing" webhook for the job.
func (q *Queue) MarkExecuting(orderID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.h) == 0 || q.h[0].job.OrderID != orderID {
		return false
	}
	q.executing = orderID
	return true
}

// ClearExecuting clears the executing flag, e.g. once the backend
// reports completion/failure.
func (q *Queue) ClearExecuting() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.executing = ""
}

// Remove deletes the first queued job matching orderID (linear scan +
// re-heapify), used by order cancellation. Reports whether a job was
// removed; returns ErrExecuting if the matching job is the head and
// currently marked as executing.
func (q *Queue) Remove(orderID string) (printtypes.ReservedJob, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, e := range q.h {
		if e.job.OrderID == orderID {
			if i == 0 && q.executing == orderID {
				return printtypes.ReservedJob{}, false, &ErrExecuting{OrderID: orderID}
			}
			removed := heap.Remove(&q.h, i).(*entry)
			if q.executing == orderID {
				q.executing = ""
			}
			return removed.job, true, nil
		}
	}
	return printtypes.ReservedJob{}, false, nil
}

// MaxLen returns the queue's configured cap.
func (q *Queue) MaxLen() int { return q.maxLen }

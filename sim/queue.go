// Implements the ReleaseQueue, which holds all releases admitted but not yet released.
// Releases are enqueued on admission and leave only from the front.

package sim

import (
	"strings"
)

// ReleaseQueue represents the FIFO queue of in-flight releases.
// Admission order is release order: nothing may jump the queue.
type ReleaseQueue struct {
	queue []*Release // FIFO queue of releases
}

// Enqueue adds a release to the back of the queue.
func (rq *ReleaseQueue) Enqueue(r *Release) {
	if r == nil {
		panic("Enqueue: release must not be nil")
	}
	rq.queue = append(rq.queue, r)
}

func (rq *ReleaseQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, val := range rq.queue {
		sb.WriteString(val.Name)
		if i < len(rq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// Len returns the number of releases in the queue.
func (rq *ReleaseQueue) Len() int {
	return len(rq.queue)
}

// Peek returns the release at the front of the queue without removing it.
// Returns nil if the queue is empty.
func (rq *ReleaseQueue) Peek() *Release {
	if len(rq.queue) == 0 {
		return nil
	}
	return rq.queue[0]
}

// Items returns the queue contents for iteration.
// The returned slice is the queue's internal storage -- callers within the
// sim package may iterate over it but MUST NOT append to or reslice it.
func (rq *ReleaseQueue) Items() []*Release {
	return rq.queue
}

// Changesets returns the changesets of every queued release, front first.
func (rq *ReleaseQueue) Changesets() []Changeset {
	out := make([]Changeset, len(rq.queue))
	for i, r := range rq.queue {
		out[i] = r.Changeset
	}
	return out
}

// Dequeue removes and returns the release at the front of the queue.
// Panics on an empty queue: callers check Peek first.
func (rq *ReleaseQueue) Dequeue() *Release {
	if len(rq.queue) == 0 {
		panic("Dequeue: empty queue")
	}
	head := rq.queue[0]
	rq.queue[0] = nil
	rq.queue = rq.queue[1:]
	return head
}

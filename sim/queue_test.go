package sim

import (
	"testing"
)

func newTestRelease(name string) *Release {
	var cs Changeset
	return NewRelease(name, cs, cs, 0)
}

func TestReleaseQueue_Peek_NonEmpty_ReturnsFront(t *testing.T) {
	// GIVEN a queue with releases [A, B]
	rq := &ReleaseQueue{}
	relA := newTestRelease("A")
	relB := newTestRelease("B")
	rq.Enqueue(relA)
	rq.Enqueue(relB)

	// WHEN Peek() is called
	got := rq.Peek()

	// THEN it returns the front element without removing it
	if got != relA {
		t.Errorf("Peek: got release %v, want %v", got.Name, relA.Name)
	}
	if rq.Len() != 2 {
		t.Errorf("Peek modified queue length: got %d, want 2", rq.Len())
	}
}

func TestReleaseQueue_Peek_Empty_ReturnsNil(t *testing.T) {
	rq := &ReleaseQueue{}
	if got := rq.Peek(); got != nil {
		t.Errorf("Peek on empty queue: got %v, want nil", got)
	}
}

func TestReleaseQueue_Dequeue_FIFOOrder(t *testing.T) {
	// GIVEN a queue with releases [A, B, C]
	rq := &ReleaseQueue{}
	for _, name := range []string{"A", "B", "C"} {
		rq.Enqueue(newTestRelease(name))
	}

	// WHEN all are dequeued
	ids := make([]string, 0, 3)
	for rq.Len() > 0 {
		ids = append(ids, rq.Dequeue().Name)
	}

	// THEN they come out in admission order
	want := []string{"A", "B", "C"}
	for i, id := range ids {
		if id != want[i] {
			t.Errorf("Dequeue order[%d]: got %s, want %s", i, id, want[i])
		}
	}
}

func TestReleaseQueue_Dequeue_Empty_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Dequeue on empty queue did not panic")
		}
	}()
	rq := &ReleaseQueue{}
	rq.Dequeue()
}

func TestReleaseQueue_Enqueue_Nil_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Enqueue(nil) did not panic")
		}
	}()
	rq := &ReleaseQueue{}
	rq.Enqueue(nil)
}

func TestReleaseQueue_String_ListsNames(t *testing.T) {
	rq := &ReleaseQueue{}
	rq.Enqueue(newTestRelease("A"))
	rq.Enqueue(newTestRelease("B"))
	if got := rq.String(); got != "[A B]" {
		t.Errorf("String: got %q, want %q", got, "[A B]")
	}
}

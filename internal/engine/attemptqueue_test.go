package engine

import (
	"testing"

	"github.com/chanisolator/channel-isolator/internal/store"
)

func TestAttemptQueueFIFO(t *testing.T) {
	q := newAttemptQueue(4)
	for i := int64(1); i <= 3; i++ {
		q.push(store.Attempt{ID: i})
	}
	for i := int64(1); i <= 3; i++ {
		a, ok := q.pop()
		if !ok || a.ID != i {
			t.Fatalf("pop() = %+v, %v; want ID %d", a, ok, i)
		}
	}
}

func TestAttemptQueueDropsOldestOnOverflow(t *testing.T) {
	q := newAttemptQueue(2)
	q.push(store.Attempt{ID: 1})
	q.push(store.Attempt{ID: 2})
	q.push(store.Attempt{ID: 3}) // should drop ID 1

	if got := q.droppedCount(); got != 1 {
		t.Fatalf("droppedCount() = %d, want 1", got)
	}

	a, ok := q.pop()
	if !ok || a.ID != 2 {
		t.Fatalf("pop() = %+v, %v; want ID 2", a, ok)
	}
	a, ok = q.pop()
	if !ok || a.ID != 3 {
		t.Fatalf("pop() = %+v, %v; want ID 3", a, ok)
	}
}

func TestAttemptQueueCloseUnblocksPop(t *testing.T) {
	q := newAttemptQueue(2)
	done := make(chan struct{})
	go func() {
		_, ok := q.pop()
		if ok {
			t.Error("expected pop to report closed queue")
		}
		close(done)
	}()
	q.close()
	<-done
}

func TestAttemptQueuePushAfterCloseIsNoop(t *testing.T) {
	q := newAttemptQueue(2)
	q.close()
	q.push(store.Attempt{ID: 1})
	if _, ok := q.pop(); ok {
		t.Fatal("expected no attempts after close")
	}
}

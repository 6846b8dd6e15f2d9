package pool

import "testing"

func TestTaskQueueFIFO(t *testing.T) {
	var q taskQueue[int]

	if _, ok := q.pop(); ok {
		t.Fatal("pop on empty queue reported a value")
	}

	for i := 0; i < 5; i++ {
		q.push(i)
	}
	if q.len() != 5 {
		t.Fatalf("len = %d, want 5", q.len())
	}
	for i := 0; i < 5; i++ {
		v, ok := q.pop()
		if !ok || v != i {
			t.Fatalf("pop %d = (%d, %v), want (%d, true)", i, v, ok, i)
		}
	}
}

func TestTaskQueueGrowthPreservesOrder(t *testing.T) {
	var q taskQueue[int]

	// Interleave pushes and pops so the ring wraps before it grows.
	for i := 0; i < 10; i++ {
		q.push(i)
	}
	for i := 0; i < 7; i++ {
		q.pop()
	}
	for i := 10; i < 100; i++ {
		q.push(i)
	}

	for want := 7; want < 100; want++ {
		v, ok := q.pop()
		if !ok || v != want {
			t.Fatalf("pop = (%d, %v), want (%d, true)", v, ok, want)
		}
	}
	if q.len() != 0 {
		t.Fatalf("len = %d after draining, want 0", q.len())
	}
}

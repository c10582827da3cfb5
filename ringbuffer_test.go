package daw

import "testing"

func TestRingBufferPushPopOrder(t *testing.T) {
	rb := NewRingBuffer(8)
	for i := 0; i < 5; i++ {
		if !rb.TryPush(float32(i)) {
			t.Fatalf("push %d should have succeeded", i)
		}
	}
	for i := 0; i < 5; i++ {
		v, ok := rb.TryPop()
		if !ok {
			t.Fatalf("pop %d should have succeeded", i)
		}
		if v != float32(i) {
			t.Fatalf("expected %d, got %v", i, v)
		}
	}
	if _, ok := rb.TryPop(); ok {
		t.Fatalf("expected empty buffer")
	}
}

func TestRingBufferCapacityRoundsUpToPowerOfTwo(t *testing.T) {
	rb := NewRingBuffer(100)
	if rb.Capacity() != 128 {
		t.Fatalf("expected capacity 128, got %d", rb.Capacity())
	}
}

func TestRingBufferFullRejectsPush(t *testing.T) {
	rb := NewRingBuffer(4)
	for i := 0; i < 4; i++ {
		if !rb.TryPush(float32(i)) {
			t.Fatalf("push %d should have succeeded", i)
		}
	}
	if rb.TryPush(99) {
		t.Fatalf("expected push to a full buffer to fail")
	}
}

func TestRingBufferDrainAndClear(t *testing.T) {
	rb := NewRingBuffer(16)
	for i := 0; i < 10; i++ {
		rb.TryPush(float32(i))
	}
	n := rb.Drain(4)
	if n != 4 {
		t.Fatalf("expected to drain 4, drained %d", n)
	}
	if rb.OccupiedLen() != 6 {
		t.Fatalf("expected 6 remaining, got %d", rb.OccupiedLen())
	}
	rb.Clear()
	if rb.OccupiedLen() != 0 {
		t.Fatalf("expected empty after Clear, got %d", rb.OccupiedLen())
	}
}

func TestRingBufferOccupiedLenTracksPushPop(t *testing.T) {
	rb := NewRingBuffer(8)
	if rb.OccupiedLen() != 0 {
		t.Fatalf("expected empty at start")
	}
	rb.TryPush(1)
	rb.TryPush(2)
	if rb.OccupiedLen() != 2 {
		t.Fatalf("expected 2 occupied, got %d", rb.OccupiedLen())
	}
	rb.TryPop()
	if rb.OccupiedLen() != 1 {
		t.Fatalf("expected 1 occupied, got %d", rb.OccupiedLen())
	}
}

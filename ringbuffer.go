// ringbuffer.go - SPSC lock-free float32 ring buffer between decoder and audio threads

package daw

import (
	"sync/atomic"
	"time"
)

// ringBufferCapacity is sized for roughly 1.5s of stereo audio at 44.1kHz,
// rounded up to a power of two as required by the index-masking below.
const ringBufferCapacity = 1 << 17 // 131072

// RingBuffer is a single-producer/single-consumer lock-free queue of f32
// samples. The producer (a decoder worker) calls TryPush; the consumer (a
// Clip on the audio thread) calls TryPop/OccupiedLen. Capacity is fixed at
// construction and never reallocated, so neither side ever allocates once
// built.
type RingBuffer struct {
	buf   []float32
	mask  uint64
	head  atomic.Uint64 // next write index; owned by producer
	tail  atomic.Uint64 // next read index; owned by consumer
}

// NewRingBuffer constructs a ring buffer of the given capacity, rounded up
// to the next power of two. capacity <= 0 uses ringBufferCapacity.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = ringBufferCapacity
	}
	n := nextPowerOfTwo(capacity)
	return &RingBuffer{
		buf:  make([]float32, n),
		mask: uint64(n - 1),
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// TryPush attempts to write one sample. Returns false if the buffer is full.
// Called only from the producer (decoder) side.
func (r *RingBuffer) TryPush(v float32) bool {
	head := r.head.Load()
	tail := r.tail.Load() // acquire: see consumer's progress
	if head-tail >= uint64(len(r.buf)) {
		return false
	}
	r.buf[head&r.mask] = v
	r.head.Store(head + 1) // release: publish the write
	return true
}

// PushBlocking pushes v, parking the calling goroutine in short bursts while
// the ring is full. The decoder worker's run loop does not call it: it
// inlines the same wait so it can also watch for Stop.
func (r *RingBuffer) PushBlocking(v float32) {
	for !r.TryPush(v) {
		time.Sleep(200 * time.Microsecond)
	}
}

// TryPop attempts to read one sample. Returns (0, false) if empty. Called
// only from the consumer (audio thread / Clip) side.
func (r *RingBuffer) TryPop() (float32, bool) {
	tail := r.tail.Load()
	head := r.head.Load() // acquire: see producer's progress
	if tail >= head {
		return 0, false
	}
	v := r.buf[tail&r.mask]
	r.tail.Store(tail + 1) // release
	return v, true
}

// Drain discards up to n queued samples, returning the number actually
// discarded. Used to keep a muted clip's ring in step with the timeline.
func (r *RingBuffer) Drain(n int) int {
	count := 0
	for count < n {
		if _, ok := r.TryPop(); !ok {
			break
		}
		count++
	}
	return count
}

// Clear discards all currently queued samples.
func (r *RingBuffer) Clear() {
	for {
		if _, ok := r.TryPop(); !ok {
			return
		}
	}
}

// OccupiedLen returns the number of samples currently queued. Safe to call
// from either side; may be stale by the time it's read.
func (r *RingBuffer) OccupiedLen() int {
	head := r.head.Load()
	tail := r.tail.Load()
	return int(head - tail)
}

// Capacity returns the buffer's fixed capacity in samples.
func (r *RingBuffer) Capacity() int {
	return len(r.buf)
}

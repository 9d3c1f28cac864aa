package buffer

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// ErrCapacity is returned by NewRing for capacities that are not a
// positive power of two.
var ErrCapacity = errors.New("buffer: ring capacity must be a power of two")

// Ring is a fixed-capacity single-producer/single-consumer float32 queue.
//
// Exactly one goroutine may call Push and PushBlock and exactly one
// goroutine may call Pop and PopBlock. Len and Cap may be called from
// anywhere. Neither side blocks or allocates.
//
// When the queue is full the producer overwrites the oldest unread sample
// (drop-oldest). The consumer therefore claims every slot with a
// compare-and-swap on the read cursor and retries if the producer moved
// the cursor past it first.
type Ring struct {
	slots []atomic.Uint32 // float32 bit patterns
	mask  uint64

	_    cpu.CacheLinePad
	head atomic.Uint64 // next write position, producer only
	_    cpu.CacheLinePad
	tail atomic.Uint64 // next read position
	_    cpu.CacheLinePad
}

// NewRing allocates a ring holding up to capacity samples.
func NewRing(capacity int) (*Ring, error) {
	if capacity < 1 || capacity&(capacity-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrCapacity, capacity)
	}

	return &Ring{
		slots: make([]atomic.Uint32, capacity),
		mask:  uint64(capacity - 1),
	}, nil
}

// Cap returns the ring capacity.
func (r *Ring) Cap() int {
	return len(r.slots)
}

// Len returns the number of unread samples. Under concurrent use the
// value is a snapshot.
func (r *Ring) Len() int {
	t := r.tail.Load()
	h := r.head.Load()
	if h <= t {
		return 0
	}

	n := h - t
	if n > uint64(len(r.slots)) {
		n = uint64(len(r.slots))
	}

	return int(n)
}

// Push appends v. It reports whether the oldest unread sample had to be
// discarded to make room.
func (r *Ring) Push(v float32) (dropped bool) {
	h := r.head.Load()
	size := uint64(len(r.slots))

	for {
		t := r.tail.Load()
		if h-t < size {
			break
		}
		if r.tail.CompareAndSwap(t, t+1) {
			dropped = true
			break
		}
	}

	r.slots[h&r.mask].Store(math.Float32bits(v))
	r.head.Store(h + 1)

	return dropped
}

// PushBlock appends every sample of src in order and returns how many
// old samples were discarded.
func (r *Ring) PushBlock(src []float32) (dropped int) {
	for _, v := range src {
		if r.Push(v) {
			dropped++
		}
	}

	return dropped
}

// Pop removes and returns the oldest sample. ok is false when the ring is
// empty.
func (r *Ring) Pop() (v float32, ok bool) {
	for {
		t := r.tail.Load()
		if t == r.head.Load() {
			return 0, false
		}

		bits := r.slots[t&r.mask].Load()
		if r.tail.CompareAndSwap(t, t+1) {
			return math.Float32frombits(bits), true
		}
	}
}

// PopBlock fills dst with the oldest samples and returns how many were
// written. It stops early when the ring runs empty.
func (r *Ring) PopBlock(dst []float32) int {
	for i := range dst {
		v, ok := r.Pop()
		if !ok {
			return i
		}
		dst[i] = v
	}

	return len(dst)
}

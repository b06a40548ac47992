package transport

import (
	"sync"

	"github.com/stagelink/wdmxrx/protocol"
)

// CaptureCapacity is the number of raw frames the capture ring holds.
const CaptureCapacity = 2048

// CaptureRing mirrors raw frames for offline inspection. It is a bounded,
// overwrite-oldest queue: capture is a rolling diagnostic window, not an
// audit log, and losing old frames is by design.
//
// The ring is independent of the main data path; builds on tight memory
// budgets simply never enable capture and the ring is never allocated.
type CaptureRing struct {
	mu    sync.Mutex
	data  [CaptureCapacity]protocol.Frame
	head  int // next pop
	tail  int // next push
	count int
}

// Push appends a frame, evicting the oldest when full.
func (r *CaptureRing) Push(f protocol.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.count == CaptureCapacity {
		r.head = (r.head + 1) % CaptureCapacity
		r.count--
	}
	r.data[r.tail] = f
	r.tail = (r.tail + 1) % CaptureCapacity
	r.count++
}

// Pop removes and returns the oldest captured frame.
func (r *CaptureRing) Pop() (protocol.Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.count == 0 {
		return protocol.Frame{}, false
	}
	f := r.data[r.head]
	r.head = (r.head + 1) % CaptureCapacity
	r.count--
	return f, true
}

// Drain removes and returns all captured frames, oldest first. Draining an
// empty ring returns an empty slice.
func (r *CaptureRing) Drain() []protocol.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]protocol.Frame, r.count)
	i := r.head
	for n := 0; n < r.count; n++ {
		out[n] = r.data[i]
		i = (i + 1) % CaptureCapacity
	}
	r.head = 0
	r.tail = 0
	r.count = 0
	return out
}

// Len is the number of frames currently held.
func (r *CaptureRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Full reports whether the next push will evict the oldest frame.
func (r *CaptureRing) Full() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count == CaptureCapacity
}

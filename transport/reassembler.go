package transport

import (
	"sync/atomic"
	"time"

	"github.com/stagelink/wdmxrx/protocol"
)

// Reassembler rebuilds the 512-byte universe buffer from the 28-byte slices
// carried by individual frames. It runs inside the receive hot path: Ingest
// never blocks, never allocates, and never fails beyond the documented
// counter increments.
type Reassembler struct {
	universe *[protocol.UniverseSize]byte
	stats    *Stats

	// Capture mirror. The ring pointer is published before capturing is
	// set, so a true load always sees a non-nil ring.
	capture   *CaptureRing
	capturing *atomic.Bool

	havePrev bool
	prevID   byte
}

// NewReassembler wires a reassembler to the universe buffer and counters it
// maintains. capturing may be nil when the build omits capture entirely.
func NewReassembler(universe *[protocol.UniverseSize]byte, stats *Stats, capturing *atomic.Bool) *Reassembler {
	return &Reassembler{
		universe:  universe,
		stats:     stats,
		capturing: capturing,
	}
}

// SetCapture installs the ring Ingest mirrors frames into. Must be called
// before the capturing flag is raised.
func (a *Reassembler) SetCapture(r *CaptureRing) { a.capture = r }

// Reset clears the sequence-continuity state. Called at lock acquisition so
// the first frame after lock is never counted as a gap.
func (a *Reassembler) Reset() { a.havePrev = false }

// Ingest validates one frame and applies its payload to the universe buffer.
//
// Sequence gaps are diagnostic, not corrective: a frame with an unexpected
// payload ID still lands in the buffer, because best-effort data beats no
// data for live lighting. Only an unrecognised magic byte drops a frame.
func (a *Reassembler) Ingest(f *protocol.Frame) {
	if !f.Valid() {
		a.stats.rxInvalid.Add(1)
		return
	}

	if a.havePrev {
		if f.PayloadID == 0 {
			// Sequence wrap: payload 0 legitimately follows the last
			// payload of the universe, whose ID the frame itself
			// advertises via HighestChannel.
			if a.prevID != f.LastPayloadID() {
				a.stats.rxSeqErrors.Add(1)
			}
		} else if f.PayloadID != a.prevID+1 {
			a.stats.rxSeqErrors.Add(1)
		}
	}
	a.havePrev = true
	a.prevID = f.PayloadID

	// The transmitter does not bounds-check PayloadID against the universe
	// size, so the write is clamped here: whatever fits goes at the tail,
	// the remainder wraps to offset 0.
	off := f.Offset() % protocol.UniverseSize
	n := copy(a.universe[off:], f.DMXData[:])
	if n < len(f.DMXData) {
		copy(a.universe[:], f.DMXData[n:])
	}

	a.stats.rxCount.Add(1)
	a.stats.lastRx.Store(time.Now().UnixMilli())

	if a.capturing != nil && a.capturing.Load() {
		a.capture.Push(*f)
	}
}

package transport

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/stagelink/wdmxrx/protocol"
)

// Receiver recovers a DMX universe from a wireless DMX transmitter. It owns
// the acquisition scan, the receive loop, the universe buffer and the
// diagnostic counters.
//
// Concurrency contract: once Start returns, a dedicated receive goroutine is
// the sole writer of the universe buffer and counters. Counters and the
// liveness timestamp are atomic. The universe buffer itself is read without
// synchronisation: lighting data refreshes tens of times per second, a read
// racing a write yields at worst one stale channel value for one frame
// period, and blocking synchronisation on the receive path would risk FIFO
// overruns at the incoming frame cadence.
type Receiver struct {
	driver Driver
	log    *zap.Logger

	universe [protocol.UniverseSize]byte
	stats    Stats
	asm      *Reassembler

	// Fixed once locked; written before locked is raised.
	id      protocol.UnitID
	channel uint8
	locked  atomic.Bool

	mu        sync.Mutex // guards Start and capture setup
	started   bool
	capture   *CaptureRing
	capturing atomic.Bool
}

// NewReceiver wraps a transceiver driver. A nil logger disables logging.
func NewReceiver(d Driver, log *zap.Logger) *Receiver {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Receiver{
		driver: d,
		log:    log,
	}
	r.asm = NewReassembler(&r.universe, &r.stats, &r.capturing)
	return r
}

// Start initialises the radio, scans until a transmitter with the desired
// unit ID is found (any unit when id is UnitAuto), and launches the receive
// loop on its own goroutine. It blocks for the duration of the scan, which
// is unbounded: with no transmitter on air, Start never returns, by design,
// since the receiver has nothing useful to do without one.
//
// progress, when non-nil, is invoked synchronously once per scan step so the
// caller can drive status indication or yield between probes.
//
// The channel/unit lock is permanent for the receiver's lifetime. There is
// no re-scan on data loss and no way to stop the receive loop; persistent
// radio loss is observable through LastRx and the counters.
func (r *Receiver) Start(id protocol.UnitID, progress func()) error {
	if id != protocol.UnitAuto && !id.Valid() {
		return protocol.ErrInvalidUnitID
	}

	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return ErrAlreadyStarted
	}
	r.started = true
	r.mu.Unlock()

	// A failed Begin is logged, not fatal: the transport may still receive
	// fine even when an optional diagnostic query failed.
	if err := r.driver.Begin(ProtocolRadioConfig()); err != nil {
		r.log.Warn("radio init failed, scanning anyway", zap.Error(err))
	}

	scanner := NewScanner(r.driver, id, r.log)
	for !scanner.Step() {
		if progress != nil {
			progress()
		}
	}

	// Lock acquired. The universe starts from a known state; it is
	// overwritten in place from here on and never reallocated.
	for i := range r.universe {
		r.universe[i] = 0
	}
	r.asm.Reset()
	r.id = scanner.ID()
	r.channel = scanner.Channel()
	r.locked.Store(true)

	go r.receiveLoop()
	return nil
}

// receiveLoop services the radio forever. It has to keep up with the frame
// cadence (the transmitters send upwards of 500 frames per second), so the
// loop only polls, reads and ingests; everything else is off this path.
func (r *Receiver) receiveLoop() {
	var buf [protocol.PayloadSize]byte
	for {
		if r.driver.Overrun() {
			// At least one frame is gone. Nothing to recover; the gap
			// counter will usually flag it on the next valid frame.
			r.stats.rxOverruns.Add(1)
		}
		if !r.driver.Available() {
			time.Sleep(200 * time.Microsecond)
			continue
		}
		if err := r.driver.ReadPayload(buf[:]); err != nil {
			continue
		}
		frame, err := protocol.DecodeFrame(buf[:])
		if err != nil {
			r.stats.rxInvalid.Add(1)
			continue
		}
		r.asm.Ingest(&frame)
	}
}

// Value returns the current value of a DMX channel by its 1-based address
// (1..512). Out-of-range addresses read as 0.
func (r *Receiver) Value(address int) byte {
	if address < 1 || address > protocol.UniverseSize {
		return 0
	}
	return r.universe[address-1]
}

// Values copies consecutive channel values starting at the 1-based
// startAddress into dst, clamped to the end of the universe. It returns the
// number of values copied.
func (r *Receiver) Values(startAddress int, dst []byte) int {
	if startAddress < 1 || startAddress > protocol.UniverseSize {
		return 0
	}
	return copy(dst, r.universe[startAddress-1:])
}

// Locked reports whether the receiver has found a transmitter.
func (r *Receiver) Locked() bool { return r.locked.Load() }

// ID is the unit ID the receiver locked onto (meaningless before lock).
func (r *Receiver) ID() protocol.UnitID {
	if !r.locked.Load() {
		return protocol.UnitAuto
	}
	return r.id
}

// Channel is the RF channel the receiver locked onto (meaningless before
// lock).
func (r *Receiver) Channel() uint8 {
	if !r.locked.Load() {
		return 0
	}
	return r.channel
}

// Stats exposes the diagnostic counters.
func (r *Receiver) Stats() *Stats { return &r.stats }

// RxCount is the number of valid frames received since lock.
func (r *Receiver) RxCount() uint64 { return r.stats.RxCount() }

// RxInvalid is the number of frames dropped for a bad magic byte.
func (r *Receiver) RxInvalid() uint64 { return r.stats.RxInvalid() }

// RxOverruns counts hardware FIFO-full events.
func (r *Receiver) RxOverruns() uint64 { return r.stats.RxOverruns() }

// RxSeqErrors counts observed payload ID sequence gaps.
func (r *Receiver) RxSeqErrors() uint64 { return r.stats.RxSeqErrors() }

// LastRx is the reception time of the last valid frame.
func (r *Receiver) LastRx() time.Time { return r.stats.LastRx() }

// StartCapture begins mirroring raw frames into the capture ring, allocating
// it on first use. Capture is lossy: when the ring is full the oldest frame
// is evicted.
func (r *Receiver) StartCapture() {
	r.mu.Lock()
	if r.capture == nil {
		r.capture = &CaptureRing{}
		r.asm.SetCapture(r.capture)
	}
	r.mu.Unlock()
	r.capturing.Store(true)
}

// StopCapture stops mirroring frames. Already-captured frames stay drainable.
func (r *Receiver) StopCapture() {
	r.capturing.Store(false)
}

// CaptureFull reports whether the capture ring has wrapped.
func (r *Receiver) CaptureFull() bool {
	r.mu.Lock()
	ring := r.capture
	r.mu.Unlock()
	if ring == nil {
		return false
	}
	return ring.Full()
}

// DrainCapture removes and returns all captured frames, oldest first.
func (r *Receiver) DrainCapture() []protocol.Frame {
	r.mu.Lock()
	ring := r.capture
	r.mu.Unlock()
	if ring == nil {
		return nil
	}
	return ring.Drain()
}

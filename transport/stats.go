package transport

import (
	"sync/atomic"
	"time"
)

// Stats holds the receiver's diagnostic counters. All counters increase
// monotonically for the life of the receiver and are never reset.
//
// The receive goroutine is the sole writer; any goroutine may read. Atomics
// keep the reads race-free, but values are still only eventually consistent
// with each other (a snapshot across counters is not atomic).
type Stats struct {
	rxCount     atomic.Uint64
	rxInvalid   atomic.Uint64
	rxOverruns  atomic.Uint64
	rxSeqErrors atomic.Uint64
	lastRx      atomic.Int64 // unix milli, 0 until the first valid frame
}

// RxCount is the number of valid frames received since lock.
func (s *Stats) RxCount() uint64 { return s.rxCount.Load() }

// RxInvalid is the number of frames dropped for an unrecognised magic byte.
func (s *Stats) RxInvalid() uint64 { return s.rxInvalid.Load() }

// RxOverruns counts hardware FIFO-full events. Each one implies at least one
// frame was silently lost.
func (s *Stats) RxOverruns() uint64 { return s.rxOverruns.Load() }

// RxSeqErrors counts gaps observed in the payload ID sequence.
func (s *Stats) RxSeqErrors() uint64 { return s.rxSeqErrors.Load() }

// LastRx is the time the last valid frame was received, or the zero time if
// none has arrived yet. Liveness reporting only; the receiver never acts on
// it.
func (s *Stats) LastRx() time.Time {
	ms := s.lastRx.Load()
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

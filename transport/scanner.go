package transport

import (
	"time"

	"go.uber.org/zap"

	"github.com/stagelink/wdmxrx/protocol"
)

// DefaultProbeTimeout is how long a single scan step waits for a payload
// before moving to the next (channel, unit ID) coordinate. The transmitters
// send continuously at well over 500 frames per second, so 10ms is several
// frame periods.
const DefaultProbeTimeout = 10 * time.Millisecond

// Scanner walks the (RF channel x unit ID) space looking for a live
// transmitter. Channel occupancy and unit ID selection are unknown a priori
// and have to be discovered at runtime.
//
// The search is deliberately steppable rather than one blocking call: with
// the probe timeout dominating cost, a full sweep can take seconds, and the
// caller usually wants to interleave bookkeeping (status indication,
// cooperative yielding) between probes. Step is called repeatedly until it
// returns true; the scanner itself never gives up.
type Scanner struct {
	driver  Driver
	log     *zap.Logger
	timeout time.Duration

	configured protocol.UnitID // UnitAuto cycles IDs; anything else is fixed
	id         protocol.UnitID
	channel    uint8
	locked     bool
}

// NewScanner returns a scanner positioned at channel 0 and the first unit ID
// of the sweep: the configured ID, or UnitRed when configured is UnitAuto.
func NewScanner(d Driver, configured protocol.UnitID, log *zap.Logger) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	id := configured
	if configured == protocol.UnitAuto {
		id = protocol.UnitRed
	}
	return &Scanner{
		driver:     d,
		log:        log,
		timeout:    DefaultProbeTimeout,
		configured: configured,
		id:         id,
	}
}

// SetProbeTimeout overrides the per-step probe timeout. Tests use this to
// keep full sweeps fast.
func (s *Scanner) SetProbeTimeout(d time.Duration) { s.timeout = d }

// Locked reports whether a transmitter has been found.
func (s *Scanner) Locked() bool { return s.locked }

// Channel is the RF channel of the current probe, or of the lock.
func (s *Scanner) Channel() uint8 { return s.channel }

// ID is the unit ID of the current probe, or of the lock.
func (s *Scanner) ID() protocol.UnitID { return s.id }

// Step probes the current (channel, unit ID) coordinate and reports whether
// the scanner is now locked. A probe tunes the radio to the coordinate's
// derived address, waits up to the probe timeout for a payload, and inspects
// the magic byte. Timeouts and foreign payloads advance the cursor:
// channel-major, with the unit ID cycling only in auto mode.
func (s *Scanner) Step() bool {
	if s.locked {
		return true
	}

	s.driver.FlushRX()
	s.driver.SetAddress(protocol.Address(s.channel, s.id))
	s.driver.StartListening()
	if err := s.driver.SetChannel(s.channel); err != nil {
		s.log.Warn("scan: set channel failed",
			zap.Uint8("channel", s.channel), zap.Error(err))
		s.advance()
		return false
	}

	if !s.waitAvailable() {
		s.advance()
		return false
	}

	var buf [protocol.PayloadSize]byte
	if err := s.driver.ReadPayload(buf[:]); err != nil {
		s.advance()
		return false
	}
	frame, err := protocol.DecodeFrame(buf[:])
	if err != nil || !frame.Valid() {
		// Something transmits on this coordinate but it is not a wireless
		// DMX unit. Treated exactly like a timeout.
		s.log.Debug("scan: payload with invalid magic",
			zap.Uint8("channel", s.channel), zap.Stringer("unit", s.id))
		s.advance()
		return false
	}

	s.locked = true
	s.log.Info("scan: transmitter found",
		zap.Uint8("channel", s.channel), zap.Stringer("unit", s.id))
	return true
}

func (s *Scanner) waitAvailable() bool {
	deadline := time.Now().Add(s.timeout)
	for !s.driver.Available() {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(100 * time.Microsecond)
	}
	return true
}

func (s *Scanner) advance() {
	s.channel++
	if s.channel > protocol.MaxChannel {
		s.channel = 0
		if s.configured == protocol.UnitAuto {
			s.id = s.id.Next()
		}
	}
}

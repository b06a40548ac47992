// Package wdmxrx receives a 512-channel DMX universe broadcast by consumer
// "wireless DMX" transmitters built on the nRF24L01 transceiver. The
// transmitter side is a closed product; the protocol was reverse-engineered
// from its radio addressing scheme.
//
// The implementation is split across subpackages:
//   - protocol: address and frame codecs, unit IDs, wire constants
//   - transport: scanner, reassembler, capture ring, receive loop
//   - driver/sim: host-side simulated transceiver
package wdmxrx

import (
	"go.uber.org/zap"

	"github.com/stagelink/wdmxrx/driver/sim"
	"github.com/stagelink/wdmxrx/protocol"
	"github.com/stagelink/wdmxrx/transport"
)

// Re-export the types most callers need.
type (
	UnitID      = protocol.UnitID
	Frame       = protocol.Frame
	Driver      = transport.Driver
	RadioConfig = transport.RadioConfig
	Receiver    = transport.Receiver
)

// Unit IDs, named after the transmitter's indicator LED colour.
const (
	Auto    = protocol.UnitAuto
	Red     = protocol.UnitRed
	Green   = protocol.UnitGreen
	Yellow  = protocol.UnitYellow
	Blue    = protocol.UnitBlue
	Magenta = protocol.UnitMagenta
	Cyan    = protocol.UnitCyan
	White   = protocol.UnitWhite
)

// Errors exposed in the public API.
var (
	ErrInvalidChannel = protocol.ErrInvalidChannel
	ErrInvalidUnitID  = protocol.ErrInvalidUnitID
	ErrAlreadyStarted = transport.ErrAlreadyStarted
)

// NewReceiver wraps an integrator-supplied transceiver driver. A nil logger
// disables logging.
func NewReceiver(d transport.Driver, log *zap.Logger) *transport.Receiver {
	return transport.NewReceiver(d, log)
}

// NewSimReceiver builds a receiver over a simulated transmitter on the given
// channel and unit ID. Useful for development and demos without radio
// hardware.
func NewSimReceiver(channel uint8, id UnitID, log *zap.Logger) *transport.Receiver {
	return transport.NewReceiver(sim.New(channel, id), log)
}

package transport

// RadioConfig carries the transceiver parameters the wireless DMX
// transmitters are known to use. The receiver applies it once at startup.
type RadioConfig struct {
	DataRate    DataRate
	CRCLength   CRCLength
	PALevel     PALevel
	AutoAck     bool
	PayloadSize int
}

type DataRate uint8

const (
	DataRate1Mbps DataRate = iota
	DataRate2Mbps
	DataRate250Kbps
)

type CRCLength uint8

const (
	CRCDisabled CRCLength = iota
	CRC8Bit
	CRC16Bit
)

type PALevel uint8

const (
	PAMin PALevel = iota
	PALow
	PAHigh
	PAMax
)

// Driver is the interface that wraps the transceiver operations the receiver
// needs. Implementations sit on top of an nRF24L01-compatible chip (SPI,
// register access and pipe plumbing live below this interface).
type Driver interface {
	// Begin powers up the radio and applies cfg. A Begin error is not
	// necessarily fatal: the transport may still work even if an optional
	// diagnostic query failed, so callers log and proceed.
	Begin(cfg RadioConfig) error

	// SetChannel tunes the radio to an RF channel (0..125).
	SetChannel(channel uint8) error

	// SetAddress opens the single reading pipe on a 40-bit address.
	SetAddress(addr uint64)

	// StartListening puts the radio into receive mode.
	StartListening()

	// Available reports whether a payload is waiting in the RX FIFO.
	Available() bool

	// ReadPayload reads exactly one fixed-size payload into buf.
	ReadPayload(buf []byte) error

	// FlushRX drops anything pending in the RX FIFO.
	FlushRX()

	// Overrun reports and clears the hardware FIFO-full indicator. A true
	// return means at least one payload was silently lost.
	Overrun() bool
}

// ProtocolRadioConfig is the fixed radio configuration the wireless DMX
// transmitters use on air.
func ProtocolRadioConfig() RadioConfig {
	return RadioConfig{
		DataRate:    DataRate250Kbps,
		CRCLength:   CRC16Bit,
		PALevel:     PALow,
		AutoAck:     false,
		PayloadSize: 32,
	}
}

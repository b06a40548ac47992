package protocol

// Wire-format constants for the 2.4GHz "wireless DMX" protocol. All higher
// layers should depend on this file.
//
// The format was reverse-engineered from the transmitter's nRF24L01 radio
// addressing scheme, see
// https://juskihackery.wordpress.com/2021/01/31/how-the-cheap-wireless-dmx-boards-use-the-nrf24l01-protocol/
const (
	// UniverseSize is the number of channels in a full DMX universe.
	// Buffer index 0 holds DMX channel 1.
	UniverseSize = 512

	// Frame sizing
	// Layout:
	//   Magic (1 byte) | PayloadID (1) | HighestChannel (2, LE) | DMXData (28)
	PayloadSize = 32
	HeaderSize  = 4
	DMXDataSize = PayloadSize - HeaderSize

	// MagicData is carried by most frames. MagicKeyframe shows up roughly
	// every 14th frame, when the transmitter has latched a fresh DMX frame
	// from its wired input. Both are accepted; everything else is noise.
	MagicData     = 0x80
	MagicKeyframe = 0xA0

	// RF channel space of the nRF24L01 (2.400-2.525GHz in 1MHz steps).
	MaxChannel  = 125
	NumChannels = MaxChannel + 1
)

package protocol

// Address returns the 40-bit nRF24 pipe address a transmitter uses for a
// given (RF channel, unit ID) pair. Byte layout, packed little-endian into
// the low 40 bits:
//
//	+---------+--------+----------+-------+--------------+
//	| Channel | UnitID | ^Channel | ^UnitID | Channel+UnitID |
//	+---------+--------+----------+-------+--------------+
//
// The complement and sum bytes are redundancy the transmitter encodes as
// well; a pipe only matches when all five bytes agree, so chance radio noise
// on a probed channel does not produce a false lock.
//
// Address is pure and total over channel 0..125, id 1..7. There is no decode:
// the receiver only ever derives addresses, never parses them.
func Address(channel uint8, id UnitID) uint64 {
	return uint64(channel) |
		uint64(uint8(id))<<8 |
		uint64(^channel)<<16 |
		uint64(^uint8(id))<<24 |
		uint64(channel+uint8(id))<<32
}

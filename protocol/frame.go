package protocol

import "encoding/binary"

// Frame is one 32-byte on-air payload.
// Layout: Magic(1) | PayloadID(1) | HighestChannel(2, LE) | DMXData(28)
//
// PayloadID*28 is the byte offset of DMXData within the 512-byte universe.
// HighestChannel declares the logical last used channel of the universe being
// transmitted (HighestChannel+1 = channel count); the receiver uses it only
// to recognise the wrap of the payload sequence back to 0.
type Frame struct {
	Magic          byte
	PayloadID      byte
	HighestChannel uint16
	DMXData        [DMXDataSize]byte
}

// Valid reports whether the magic byte marks this as a wireless DMX frame.
func (f *Frame) Valid() bool {
	return f.Magic == MagicData || f.Magic == MagicKeyframe
}

// Offset is the universe byte offset this frame's DMX data starts at.
func (f *Frame) Offset() int {
	return int(f.PayloadID) * DMXDataSize
}

// LastPayloadID is the payload ID of the final frame in one universe
// transmission cycle, as advertised by this frame's HighestChannel.
func (f *Frame) LastPayloadID() byte {
	return byte(f.HighestChannel / DMXDataSize)
}

// DecodeFrame parses one raw radio payload. The only failure mode is a
// payload shorter than the fixed frame size; magic validation is left to the
// caller so that invalid frames can still be counted and captured.
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	if len(data) < PayloadSize {
		return f, ErrShortPayload
	}
	f.Magic = data[0]
	f.PayloadID = data[1]
	f.HighestChannel = binary.LittleEndian.Uint16(data[2:4])
	copy(f.DMXData[:], data[HeaderSize:PayloadSize])
	return f, nil
}

// EncodeFrame serialises a frame into on-air bytes. The receiver itself never
// transmits; this exists for simulated transmitters and tests.
func EncodeFrame(f *Frame) []byte {
	data := make([]byte, PayloadSize)
	data[0] = f.Magic
	data[1] = f.PayloadID
	binary.LittleEndian.PutUint16(data[2:4], f.HighestChannel)
	copy(data[HeaderSize:], f.DMXData[:])
	return data
}

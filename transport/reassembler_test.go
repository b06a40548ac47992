package transport

import (
	"bytes"
	"sync/atomic"
	"testing"

	"github.com/stagelink/wdmxrx/protocol"
)

func newTestReassembler() (*Reassembler, *[protocol.UniverseSize]byte, *Stats) {
	var universe [protocol.UniverseSize]byte
	stats := &Stats{}
	return NewReassembler(&universe, stats, nil), &universe, stats
}

func makeFrame(payloadID byte, highest uint16, data []byte) protocol.Frame {
	f := protocol.Frame{
		Magic:          protocol.MagicData,
		PayloadID:      payloadID,
		HighestChannel: highest,
	}
	copy(f.DMXData[:], data)
	return f
}

// One full transmission cycle of 19 payloads (532 bytes >= 512: the last
// payload spills past the end of the universe and wraps to offset 0). The
// universe must equal the concatenated payloads wrapped to 512 bytes, with
// no sequence gap counted, including on the wrap back to payload 0.
func TestReassemblerFullCycle(t *testing.T) {
	asm, universe, stats := newTestReassembler()

	const highest = 530 // 530/28 = 18, so payload IDs run 0..18
	concat := make([]byte, 19*protocol.DMXDataSize)
	for i := range concat {
		concat[i] = byte(i % 251)
	}

	for id := byte(0); id <= 18; id++ {
		off := int(id) * protocol.DMXDataSize
		f := makeFrame(id, highest, concat[off:off+protocol.DMXDataSize])
		asm.Ingest(&f)
	}

	var want [protocol.UniverseSize]byte
	copy(want[:], concat[:protocol.UniverseSize])
	copy(want[:], concat[protocol.UniverseSize:]) // payload 18's wrapped tail

	if !bytes.Equal(universe[:], want[:]) {
		t.Error("universe does not match concatenated payloads after one cycle")
	}
	if got := stats.RxSeqErrors(); got != 0 {
		t.Errorf("RxSeqErrors() = %d, want 0", got)
	}
	if got := stats.RxCount(); got != 19 {
		t.Errorf("RxCount() = %d, want 19", got)
	}

	// Wrap: payload 0 following payload 18 is in sequence.
	f := makeFrame(0, highest, concat[:protocol.DMXDataSize])
	asm.Ingest(&f)
	if got := stats.RxSeqErrors(); got != 0 {
		t.Errorf("RxSeqErrors() after wrap = %d, want 0", got)
	}
}

// Skipping a payload ID counts one gap but the frame is still applied:
// best-effort data beats no data for live lighting.
func TestReassemblerSequenceGap(t *testing.T) {
	asm, universe, stats := newTestReassembler()

	data := bytes.Repeat([]byte{0xAB}, protocol.DMXDataSize)

	f1 := makeFrame(1, 511, data)
	asm.Ingest(&f1)
	f3 := makeFrame(3, 511, data)
	asm.Ingest(&f3)

	if got := stats.RxSeqErrors(); got != 1 {
		t.Errorf("RxSeqErrors() = %d, want 1", got)
	}
	off := 3 * protocol.DMXDataSize
	if !bytes.Equal(universe[off:off+protocol.DMXDataSize], data) {
		t.Error("payload after gap not applied at its declared offset")
	}

	// Continuity resumes from the frame that was actually received.
	f4 := makeFrame(4, 511, data)
	asm.Ingest(&f4)
	if got := stats.RxSeqErrors(); got != 1 {
		t.Errorf("RxSeqErrors() after contiguous frame = %d, want 1", got)
	}
}

func TestReassemblerWrapMismatchCountsGap(t *testing.T) {
	asm, _, stats := newTestReassembler()

	f10 := makeFrame(10, 530, nil)
	asm.Ingest(&f10)
	f0 := makeFrame(0, 530, nil) // premature wrap: 10 is not the last payload
	asm.Ingest(&f0)

	if got := stats.RxSeqErrors(); got != 1 {
		t.Errorf("RxSeqErrors() = %d, want 1", got)
	}
	if got := stats.RxCount(); got != 2 {
		t.Errorf("RxCount() = %d, want 2 (frame still applied)", got)
	}
}

// An invalid magic byte must leave the universe, the received count and the
// sequence state untouched; only the invalid counter moves.
func TestReassemblerInvalidMagic(t *testing.T) {
	asm, universe, stats := newTestReassembler()

	f1 := makeFrame(1, 511, bytes.Repeat([]byte{0x11}, protocol.DMXDataSize))
	asm.Ingest(&f1)
	before := *universe
	countBefore := stats.RxCount()

	bad := makeFrame(2, 511, bytes.Repeat([]byte{0xFF}, protocol.DMXDataSize))
	bad.Magic = 0x13
	asm.Ingest(&bad)

	if *universe != before {
		t.Error("invalid frame modified the universe buffer")
	}
	if got := stats.RxCount(); got != countBefore {
		t.Errorf("RxCount() = %d, want %d", got, countBefore)
	}
	if got := stats.RxInvalid(); got != 1 {
		t.Errorf("RxInvalid() = %d, want 1", got)
	}

	// The dropped frame did not advance sequence state: payload 2 is still
	// the expected successor.
	f2 := makeFrame(2, 511, nil)
	asm.Ingest(&f2)
	if got := stats.RxSeqErrors(); got != 0 {
		t.Errorf("RxSeqErrors() = %d, want 0", got)
	}
}

func TestReassemblerFirstFrameNeverGaps(t *testing.T) {
	asm, _, stats := newTestReassembler()

	f := makeFrame(7, 511, nil)
	asm.Ingest(&f)
	if got := stats.RxSeqErrors(); got != 0 {
		t.Errorf("RxSeqErrors() = %d, want 0 for the first frame since lock", got)
	}

	// After a reset (new lock) the next frame is again exempt.
	asm.Reset()
	f2 := makeFrame(2, 511, nil)
	asm.Ingest(&f2)
	if got := stats.RxSeqErrors(); got != 0 {
		t.Errorf("RxSeqErrors() after Reset = %d, want 0", got)
	}
}

func TestReassemblerOffsetClamping(t *testing.T) {
	tests := []struct {
		name      string
		payloadID byte
		wantStart int // first byte offset written
		wantWrap  int // bytes wrapped to the front
	}{
		{name: "fits exactly before split", payloadID: 17, wantStart: 476, wantWrap: 0},
		{name: "straddles the end", payloadID: 18, wantStart: 504, wantWrap: 20},
		{name: "offset past the end", payloadID: 19, wantStart: 20, wantWrap: 0}, // 532 mod 512
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asm, universe, _ := newTestReassembler()

			data := bytes.Repeat([]byte{0xEE}, protocol.DMXDataSize)
			f := makeFrame(tt.payloadID, 530, data)
			asm.Ingest(&f)

			tail := protocol.DMXDataSize - tt.wantWrap
			for i := 0; i < tail; i++ {
				if universe[tt.wantStart+i] != 0xEE {
					t.Fatalf("byte %d = %#x, want 0xEE", tt.wantStart+i, universe[tt.wantStart+i])
				}
			}
			for i := 0; i < tt.wantWrap; i++ {
				if universe[i] != 0xEE {
					t.Fatalf("wrapped byte %d = %#x, want 0xEE", i, universe[i])
				}
			}
		})
	}
}

func TestReassemblerCaptureMirror(t *testing.T) {
	var universe [protocol.UniverseSize]byte
	var capturing atomic.Bool
	stats := &Stats{}
	ring := &CaptureRing{}

	asm := NewReassembler(&universe, stats, &capturing)
	asm.SetCapture(ring)

	// Capture off: nothing mirrored.
	f := makeFrame(0, 511, nil)
	asm.Ingest(&f)
	if ring.Len() != 0 {
		t.Errorf("ring.Len() = %d with capture off, want 0", ring.Len())
	}

	capturing.Store(true)
	f1 := makeFrame(1, 511, nil)
	asm.Ingest(&f1)
	bad := makeFrame(2, 511, nil)
	bad.Magic = 0x00
	asm.Ingest(&bad)

	if ring.Len() != 1 {
		t.Errorf("ring.Len() = %d, want 1 (invalid frames are not captured)", ring.Len())
	}
}

// rxCount tracks valid frames only, no matter how invalid ones interleave.
func TestReassemblerRxCountIgnoresInvalid(t *testing.T) {
	asm, _, stats := newTestReassembler()

	for i := 0; i < 5; i++ {
		f := makeFrame(byte(i), 511, nil)
		asm.Ingest(&f)

		bad := makeFrame(byte(i), 511, nil)
		bad.Magic = 0x42
		asm.Ingest(&bad)
	}

	if got := stats.RxCount(); got != 5 {
		t.Errorf("RxCount() = %d, want 5", got)
	}
	if got := stats.RxInvalid(); got != 5 {
		t.Errorf("RxInvalid() = %d, want 5", got)
	}
}

func TestReassemblerUpdatesLastRx(t *testing.T) {
	asm, _, stats := newTestReassembler()

	if !stats.LastRx().IsZero() {
		t.Error("LastRx() non-zero before any frame")
	}
	f := makeFrame(0, 511, nil)
	asm.Ingest(&f)
	if stats.LastRx().IsZero() {
		t.Error("LastRx() still zero after a valid frame")
	}
}

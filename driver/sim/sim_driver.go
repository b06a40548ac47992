// Package sim provides a transceiver driver with a single simulated wireless
// DMX transmitter on air. It backs host-side tests, the usage example and the
// daemon's sim mode; real deployments implement transport.Driver over their
// SPI/GPIO stack instead.
package sim

import (
	"errors"
	"sync"
	"time"

	"github.com/stagelink/wdmxrx/protocol"
	"github.com/stagelink/wdmxrx/transport"
)

var errBadPayloadSize = errors.New("sim: unsupported payload size")

// keyframeEvery matches the cadence at which real transmitters emit the
// keyframe magic instead of the plain data magic.
const keyframeEvery = 14

// Driver implements transport.Driver. The simulated transmitter sits on a
// fixed (channel, unit ID) coordinate and continuously cycles through the
// payloads of its universe; a payload is available only while the receiver is
// listening on exactly that coordinate's channel and derived address.
type Driver struct {
	mu sync.Mutex

	// Simulated transmitter.
	txChannel uint8
	txID      protocol.UnitID
	highest   uint16
	data      []byte // (lastPayloadID+1)*28 bytes, zero padded

	// Receiver-side radio state.
	began     bool
	channel   uint8
	addr      uint64
	listening bool

	next     byte // next payload ID to send
	sent     uint64
	interval time.Duration // min spacing between payloads, 0 = no pacing
	lastRead time.Time
	overrun  bool
	injected [][]byte // raw payloads delivered ahead of generated frames
}

// New places a simulated transmitter on the given RF channel with the given
// unit ID, transmitting a full zeroed 512-channel universe.
func New(channel uint8, id protocol.UnitID) *Driver {
	d := &Driver{
		txChannel: channel,
		txID:      id,
	}
	d.SetUniverse(make([]byte, protocol.UniverseSize), protocol.UniverseSize-1)
	return d
}

// SetUniverse replaces the data the simulated transmitter sends. highest is
// the advertised highest channel ID; the payload cycle covers
// highest/28 + 1 payloads, zero padded past len(values).
func (d *Driver) SetUniverse(values []byte, highest uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	last := int(highest) / protocol.DMXDataSize
	d.data = make([]byte, (last+1)*protocol.DMXDataSize)
	copy(d.data, values)
	d.highest = highest
	d.next = 0
}

// SetFrameInterval paces payload generation to one frame per interval,
// mimicking the on-air cadence. Zero (the default) makes a payload available
// on every poll, which is what tests want.
func (d *Driver) SetFrameInterval(interval time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.interval = interval
}

// Inject queues one raw payload, delivered before generated frames whenever
// the receiver is listening, regardless of tuning. Tests use it to model
// foreign traffic and corrupted frames.
func (d *Driver) Inject(payload []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := make([]byte, len(payload))
	copy(cp, payload)
	d.injected = append(d.injected, cp)
}

// SetOverrun latches the FIFO-full indicator for the next Overrun poll.
func (d *Driver) SetOverrun() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.overrun = true
}

func (d *Driver) Begin(cfg transport.RadioConfig) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if cfg.PayloadSize != protocol.PayloadSize {
		return errBadPayloadSize
	}
	d.began = true
	return nil
}

func (d *Driver) SetChannel(channel uint8) error {
	if channel > protocol.MaxChannel {
		return protocol.ErrInvalidChannel
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.channel = channel
	return nil
}

func (d *Driver) SetAddress(addr uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addr = addr
}

func (d *Driver) StartListening() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listening = true
}

func (d *Driver) Available() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.listening {
		return false
	}
	if len(d.injected) > 0 {
		return true
	}
	if !d.tuned() {
		return false
	}
	if d.interval > 0 && time.Since(d.lastRead) < d.interval {
		return false
	}
	return true
}

func (d *Driver) ReadPayload(buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(buf) < protocol.PayloadSize {
		return protocol.ErrShortPayload
	}
	if len(d.injected) > 0 {
		copy(buf[:protocol.PayloadSize], d.injected[0])
		d.injected = d.injected[1:]
		return nil
	}
	frame := d.nextFrame()
	copy(buf, protocol.EncodeFrame(&frame))
	d.lastRead = time.Now()
	return nil
}

func (d *Driver) FlushRX() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.injected = nil
}

func (d *Driver) Overrun() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	o := d.overrun
	d.overrun = false
	return o
}

func (d *Driver) tuned() bool {
	return d.channel == d.txChannel && d.addr == protocol.Address(d.txChannel, d.txID)
}

func (d *Driver) nextFrame() protocol.Frame {
	f := protocol.Frame{
		Magic:          protocol.MagicData,
		PayloadID:      d.next,
		HighestChannel: d.highest,
	}
	d.sent++
	if d.sent%keyframeEvery == 0 {
		f.Magic = protocol.MagicKeyframe
	}
	off := int(d.next) * protocol.DMXDataSize
	copy(f.DMXData[:], d.data[off:off+protocol.DMXDataSize])

	last := byte(d.highest / protocol.DMXDataSize)
	if d.next >= last {
		d.next = 0
	} else {
		d.next++
	}
	return f
}

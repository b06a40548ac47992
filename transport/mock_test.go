package transport

import (
	"errors"
	"sync"

	"github.com/stagelink/wdmxrx/protocol"
)

var errNoPayload = errors.New("no payload available")

// MockDriver implements Driver for testing: a simulated transmitter parked on
// a single (channel, unit ID) coordinate, with hooks for injecting raw
// payloads, latching overruns and limiting how many frames are served.
type MockDriver struct {
	mu sync.Mutex

	txChannel uint8
	txID      protocol.UnitID
	data      []byte
	highest   uint16
	next      byte

	began     bool
	beginErr  error
	channel   uint8
	addr      uint64
	listening bool
	overrun   bool
	injected  [][]byte

	served int
	limit  int // 0 = unlimited

	probes []MockProbe
}

// MockProbe records the coordinates of one scanner probe.
type MockProbe struct {
	Channel uint8
	Addr    uint64
}

func NewMockDriver(txChannel uint8, txID protocol.UnitID) *MockDriver {
	d := &MockDriver{
		txChannel: txChannel,
		txID:      txID,
	}
	d.SetUniverse(make([]byte, protocol.UniverseSize), protocol.UniverseSize-1)
	return d
}

// SetUniverse replaces the transmitted data and advertised highest channel.
func (d *MockDriver) SetUniverse(values []byte, highest uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	last := int(highest) / protocol.DMXDataSize
	d.data = make([]byte, (last+1)*protocol.DMXDataSize)
	copy(d.data, values)
	d.highest = highest
	d.next = 0
}

// SetFrameLimit stops serving generated frames after n reads, so tests can
// wait for a known frame count and then inspect state without racing the
// receive loop.
func (d *MockDriver) SetFrameLimit(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.limit = n
}

// Inject queues a raw payload served ahead of generated frames whenever the
// radio is listening, regardless of tuning.
func (d *MockDriver) Inject(payload []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := make([]byte, len(payload))
	copy(cp, payload)
	d.injected = append(d.injected, cp)
}

// SetBeginError makes the next Begin call fail.
func (d *MockDriver) SetBeginError(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.beginErr = err
}

// SetOverrun latches the FIFO-full indicator.
func (d *MockDriver) SetOverrun() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.overrun = true
}

// Probes returns the coordinates probed so far, in order.
func (d *MockDriver) Probes() []MockProbe {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]MockProbe, len(d.probes))
	copy(out, d.probes)
	return out
}

func (d *MockDriver) Begin(cfg RadioConfig) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.began = true
	return d.beginErr
}

func (d *MockDriver) SetChannel(channel uint8) error {
	if channel > protocol.MaxChannel {
		return protocol.ErrInvalidChannel
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.channel = channel
	// The scanner sets the address before the channel, so this sees the
	// final coordinates of a probe.
	d.probes = append(d.probes, MockProbe{Channel: channel, Addr: d.addr})
	return nil
}

func (d *MockDriver) SetAddress(addr uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.addr = addr
}

func (d *MockDriver) StartListening() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listening = true
}

func (d *MockDriver) Available() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.listening {
		return false
	}
	if len(d.injected) > 0 {
		return true
	}
	if d.limit > 0 && d.served >= d.limit {
		return false
	}
	return d.tuned()
}

func (d *MockDriver) ReadPayload(buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.injected) > 0 {
		copy(buf[:protocol.PayloadSize], d.injected[0])
		d.injected = d.injected[1:]
		return nil
	}
	if !d.tuned() {
		return errNoPayload
	}
	if d.limit > 0 && d.served >= d.limit {
		return errNoPayload
	}
	f := protocol.Frame{
		Magic:          protocol.MagicData,
		PayloadID:      d.next,
		HighestChannel: d.highest,
	}
	off := int(d.next) * protocol.DMXDataSize
	copy(f.DMXData[:], d.data[off:off+protocol.DMXDataSize])
	if d.next >= byte(int(d.highest)/protocol.DMXDataSize) {
		d.next = 0
	} else {
		d.next++
	}
	d.served++
	copy(buf, protocol.EncodeFrame(&f))
	return nil
}

// FlushRX is a no-op: injected payloads model traffic arriving after the
// scanner's flush.
func (d *MockDriver) FlushRX() {}

func (d *MockDriver) Overrun() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	o := d.overrun
	d.overrun = false
	return o
}

func (d *MockDriver) tuned() bool {
	return d.channel == d.txChannel && d.addr == protocol.Address(d.txChannel, d.txID)
}

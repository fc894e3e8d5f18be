package transport

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/neuroplastio/neio-keycore/hidreport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingHandler struct {
	mu   sync.Mutex
	raw  [][]byte
	leds []uint8
}

func (h *recordingHandler) OnRawReceive(buf []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.raw = append(h.raw, buf)
}

func (h *recordingHandler) OnLEDs(leds uint8) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leds = append(h.leds, leds)
}

func (h *recordingHandler) counts() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.raw), len(h.leds)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	assert.Equal(t, []string{"log", "memory", "uhid"}, r.Names())

	tr, err := r.New("memory", json.RawMessage(`{"buffer": 2}`))
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, tr)

	_, err = r.New("memory", json.RawMessage(`{"buffer": "x"}`))
	assert.Error(t, err)

	tr, err = r.New("log", nil)
	require.NoError(t, err)
	assert.NoError(t, tr.SendRaw(hidreport.AckPacket()))
}

func TestSendersRecordReports(t *testing.T) {
	m := NewMemory(4)
	senders := Senders(zap.NewNop(), m)

	kb := hidreport.KeyboardReport{Mods: 0x02, Keys: [6]uint8{0x04}}
	senders.Keyboard(kb)
	nkro := hidreport.NewNKROReport()
	nkro.SetKey(0x05)
	senders.NKRO(nkro)
	senders.Extra(hidreport.ExtraReport{ReportID: hidreport.ReportIDConsumer, Usage: 0xE9})
	senders.Raw(hidreport.ControlPacket(hidreport.ArmByte))

	assert.Equal(t, []hidreport.KeyboardReport{kb}, m.KeyboardReports())
	assert.Equal(t, []hidreport.NKROReport{nkro}, m.NKROReports())
	assert.Len(t, m.ExtraReports(), 1)
	assert.Len(t, m.RawPackets(), 1)

	m.Reset()
	assert.Empty(t, m.KeyboardReports())
	assert.Empty(t, m.RawPackets())
}

func TestMemoryRunDeliversHostOutput(t *testing.T) {
	m := NewMemory(4)
	h := &recordingHandler{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- m.Run(ctx, h)
	}()

	m.HostRaw([]byte{hidreport.ArmByte})
	m.HostLEDs(hidreport.LEDScrollLock)
	assert.Eventually(t, func() bool {
		raw, leds := h.counts()
		return raw == 1 && leds == 1
	}, time.Second, time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []byte{hidreport.ArmByte}, h.raw[0])
	assert.Equal(t, uint8(hidreport.LEDScrollLock), h.leds[0])
}

func TestOutputReport(t *testing.T) {
	req := make([]byte, uhidOutputSize)
	req[0] = hidreport.ReportIDKeyboard
	req[1] = hidreport.LEDCapsLock
	binary.LittleEndian.PutUint16(req[uhidDataMax:], 2)
	assert.Equal(t, []byte{hidreport.ReportIDKeyboard, hidreport.LEDCapsLock}, outputReport(req))

	short := []byte{hidreport.DisarmByte}
	assert.Equal(t, short, outputReport(short))
}

package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/neuroplastio/neio-keycore/hidreport"
)

// Memory records sent reports and lets callers inject host output. It is
// used by tests and by the firmware dry run.
type Memory struct {
	mu       sync.Mutex
	keyboard []hidreport.KeyboardReport
	nkro     []hidreport.NKROReport
	extra    []hidreport.ExtraReport
	raw      []hidreport.RawPacket

	output chan output
}

type output struct {
	raw  []byte
	leds *uint8
}

type memoryConfig struct {
	Buffer int `json:"buffer"`
}

func newMemoryTransport(config json.RawMessage, _ Provider) (Transport, error) {
	cfg := memoryConfig{Buffer: 16}
	if config != nil {
		if err := json.Unmarshal(config, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse memory config: %w", err)
		}
	}
	return NewMemory(cfg.Buffer), nil
}

func NewMemory(buffer int) *Memory {
	return &Memory{output: make(chan output, buffer)}
}

func (m *Memory) SendKeyboard(report hidreport.KeyboardReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keyboard = append(m.keyboard, report)
	return nil
}

func (m *Memory) SendNKRO(report hidreport.NKROReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nkro = append(m.nkro, report)
	return nil
}

func (m *Memory) SendExtra(report hidreport.ExtraReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extra = append(m.extra, report)
	return nil
}

func (m *Memory) SendRaw(packet hidreport.RawPacket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = append(m.raw, packet)
	return nil
}

// HostRaw queues a raw OUT transfer from the host.
func (m *Memory) HostRaw(buf []byte) {
	m.output <- output{raw: append([]byte(nil), buf...)}
}

// HostLEDs queues a keyboard LED output report from the host.
func (m *Memory) HostLEDs(leds uint8) {
	m.output <- output{leds: &leds}
}

func (m *Memory) Run(ctx context.Context, h Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case out := <-m.output:
			if out.leds != nil {
				h.OnLEDs(*out.leds)
				continue
			}
			h.OnRawReceive(out.raw)
		}
	}
}

func (m *Memory) Close() error {
	return nil
}

func (m *Memory) KeyboardReports() []hidreport.KeyboardReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]hidreport.KeyboardReport(nil), m.keyboard...)
}

func (m *Memory) NKROReports() []hidreport.NKROReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]hidreport.NKROReport(nil), m.nkro...)
}

func (m *Memory) ExtraReports() []hidreport.ExtraReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]hidreport.ExtraReport(nil), m.extra...)
}

func (m *Memory) RawPackets() []hidreport.RawPacket {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]hidreport.RawPacket(nil), m.raw...)
}

// Reset drops everything recorded so far.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keyboard = nil
	m.nkro = nil
	m.extra = nil
	m.raw = nil
}

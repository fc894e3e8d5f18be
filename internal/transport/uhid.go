package transport

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/neuroplastio/neio-keycore/hidreport"
	"github.com/psanford/uhid"
	"go.uber.org/zap"
)

type UhidConfig struct {
	Name      string `json:"name"`
	VendorID  uint32 `json:"vendorId"`
	ProductID uint32 `json:"productId"`
}

var defaultUhidConfig = UhidConfig{
	Name:      "neio-keycore",
	VendorID:  0x4E50,
	ProductID: 0x4B43,
}

// uhidTransport exposes two virtual devices: the keyboard interface and the
// vendor defined raw interface.
type uhidTransport struct {
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc

	keyboard *uhid.Device
	raw      *uhid.Device

	keyboardEvents chan uhid.Event
	rawEvents      chan uhid.Event

	keyboardMu sync.Mutex
	rawMu      sync.Mutex
}

func newUhidTransport(config json.RawMessage, p Provider) (Transport, error) {
	cfg := defaultUhidConfig
	if config != nil {
		if err := json.Unmarshal(config, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse uhid config: %w", err)
		}
	}
	t := &uhidTransport{
		log: p.Log.Named("transport.uhid"),
	}
	t.ctx, t.cancel = context.WithCancel(context.Background())

	var err error
	t.keyboard, t.keyboardEvents, err = t.open(cfg, cfg.Name, hidreport.KeyboardDescriptor)
	if err != nil {
		t.cancel()
		return nil, err
	}
	t.raw, t.rawEvents, err = t.open(cfg, cfg.Name+" raw", hidreport.RawDescriptor)
	if err != nil {
		t.cancel()
		t.keyboard.Close()
		return nil, err
	}
	t.log.Info("Virtual devices created", zap.String("name", cfg.Name))
	return t, nil
}

func (t *uhidTransport) open(cfg UhidConfig, name string, descriptor []byte) (*uhid.Device, chan uhid.Event, error) {
	dev, err := uhid.NewDevice(name, descriptor)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create uhid device: %w", err)
	}
	dev.Data.Bus = 0x03
	dev.Data.VendorID = cfg.VendorID
	dev.Data.ProductID = cfg.ProductID

	events, err := dev.Open(t.ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open uhid device: %w", err)
	}
	return dev, events, nil
}

func (t *uhidTransport) inject(mu *sync.Mutex, dev *uhid.Device, buf []byte) error {
	mu.Lock()
	defer mu.Unlock()
	return dev.InjectEvent(buf)
}

func (t *uhidTransport) SendKeyboard(report hidreport.KeyboardReport) error {
	return t.inject(&t.keyboardMu, t.keyboard, append([]byte{hidreport.ReportIDKeyboard}, report.Bytes()...))
}

func (t *uhidTransport) SendNKRO(report hidreport.NKROReport) error {
	return t.inject(&t.keyboardMu, t.keyboard, report.Bytes())
}

func (t *uhidTransport) SendExtra(report hidreport.ExtraReport) error {
	return t.inject(&t.keyboardMu, t.keyboard, report.Bytes())
}

func (t *uhidTransport) SendRaw(packet hidreport.RawPacket) error {
	return t.inject(&t.rawMu, t.raw, packet[:])
}

func (t *uhidTransport) Run(ctx context.Context, h Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.ctx.Done():
			return nil
		case event, ok := <-t.keyboardEvents:
			if !ok {
				return fmt.Errorf("keyboard device closed")
			}
			if event.Type != uhid.Output {
				continue
			}
			report := outputReport(event.Data)
			if len(report) >= 2 && report[0] == hidreport.ReportIDKeyboard {
				h.OnLEDs(report[1])
			}
		case event, ok := <-t.rawEvents:
			if !ok {
				return fmt.Errorf("raw device closed")
			}
			if event.Type != uhid.Output {
				continue
			}
			h.OnRawReceive(outputReport(event.Data))
		}
	}
}

func (t *uhidTransport) Close() error {
	t.cancel()
	kbErr := t.keyboard.Close()
	rawErr := t.raw.Close()
	if kbErr != nil {
		return fmt.Errorf("failed to close keyboard device: %w", kbErr)
	}
	if rawErr != nil {
		return fmt.Errorf("failed to close raw device: %w", rawErr)
	}
	return nil
}

const (
	uhidDataMax    = 4096
	uhidOutputSize = uhidDataMax + 3
)

// outputReport extracts the report from a UHID_OUTPUT request, laid out as
// data[4096], size uint16, rtype uint8.
func outputReport(data []byte) []byte {
	if len(data) < uhidOutputSize {
		return data
	}
	size := int(binary.LittleEndian.Uint16(data[uhidDataMax:]))
	if size > uhidDataMax {
		size = uhidDataMax
	}
	return data[:size]
}

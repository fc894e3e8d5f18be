package matrix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/neuroplastio/neio-keycore/hidreport"
	"github.com/neuroplastio/neio-keycore/keycode"
	"github.com/sstallion/go-hid"
	"go.uber.org/zap"
)

type hidrawConfig struct {
	Path      string `json:"path"`
	VendorID  uint16 `json:"vendorId"`
	ProductID uint16 `json:"productId"`
	// ReportID is stripped from every input report when non-zero.
	ReportID uint8 `json:"reportId"`
}

// Hidraw turns the boot reports of an attached keyboard into matrix events,
// so that any keyboard can drive the firmware through the keymap.
type Hidraw struct {
	log      *zap.Logger
	dev      *hid.Device
	keys     KeyLocator
	reportID uint8
}

const hidrawPollInterval = 100 * time.Millisecond

func newHidrawSource(config json.RawMessage, p Provider) (Source, error) {
	var cfg hidrawConfig
	if config != nil {
		if err := json.Unmarshal(config, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse hidraw config: %w", err)
		}
	}
	if p.Keys == nil {
		return nil, fmt.Errorf("hidraw source needs a keymap")
	}
	if err := hid.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize hidapi: %w", err)
	}
	path := cfg.Path
	if path == "" {
		var err error
		path, err = findKeyboard(cfg.VendorID, cfg.ProductID)
		if err != nil {
			return nil, err
		}
	}
	dev, err := hid.OpenPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	log := p.Log.Named("matrix.hidraw")
	log.Info("Opened keyboard", zap.String("path", path))
	return &Hidraw{
		log:      log,
		dev:      dev,
		keys:     p.Keys,
		reportID: cfg.ReportID,
	}, nil
}

var errStopEnumerate = errors.New("found")

func findKeyboard(vendorID, productID uint16) (string, error) {
	var path string
	// Zero IDs match hid.VendorIDAny and hid.ProductIDAny.
	err := hid.Enumerate(vendorID, productID, func(info *hid.DeviceInfo) error {
		// Generic Desktop / Keyboard
		if info.UsagePage == 0x01 && info.Usage == 0x06 {
			path = info.Path
			return errStopEnumerate
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopEnumerate) {
		return "", fmt.Errorf("failed to enumerate devices: %w", err)
	}
	if path == "" {
		return "", fmt.Errorf("no keyboard found")
	}
	return path, nil
}

func (h *Hidraw) Run(ctx context.Context, events chan<- Event) error {
	buf := make([]byte, 64)
	var prev hidreport.KeyboardReport
	for {
		if ctx.Err() != nil {
			return nil
		}
		n, err := h.dev.ReadWithTimeout(buf, hidrawPollInterval)
		if errors.Is(err, hid.ErrTimeout) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read report: %w", err)
		}
		data := buf[:n]
		if h.reportID != 0 {
			if len(data) == 0 || data[0] != h.reportID {
				continue
			}
			data = data[1:]
		}
		next, ok := parseBootReport(data)
		if !ok {
			continue
		}
		for _, change := range diffBootReports(prev, next) {
			row, col, ok := h.keys.Find(change.code)
			if !ok {
				h.log.Debug("Key not in keymap", zap.Stringer("keycode", change.code))
				continue
			}
			if err := send(ctx, events, Event{Row: row, Col: col, Pressed: change.pressed}); err != nil {
				return nil
			}
		}
		prev = next
	}
}

func (h *Hidraw) Close() error {
	return h.dev.Close()
}

func parseBootReport(data []byte) (hidreport.KeyboardReport, bool) {
	var r hidreport.KeyboardReport
	if len(data) < hidreport.KeyboardReportSize {
		return r, false
	}
	r.Mods = data[0]
	copy(r.Keys[:], data[2:hidreport.KeyboardReportSize])
	return r, true
}

type keyChange struct {
	code    keycode.Keycode
	pressed bool
}

// diffBootReports lists releases before presses so that a key moving
// between array slots produces no events.
func diffBootReports(prev, next hidreport.KeyboardReport) []keyChange {
	var changes []keyChange
	for i := uint8(0); i < 8; i++ {
		bit := uint8(1) << i
		if prev.Mods&bit != 0 && next.Mods&bit == 0 {
			changes = append(changes, keyChange{code: keycode.KC_LCTL + keycode.Keycode(i)})
		}
	}
	for _, k := range prev.Keys {
		if isUsage(k) && !next.HasKey(k) {
			changes = append(changes, keyChange{code: keycode.Keycode(k)})
		}
	}
	for i := uint8(0); i < 8; i++ {
		bit := uint8(1) << i
		if prev.Mods&bit == 0 && next.Mods&bit != 0 {
			changes = append(changes, keyChange{code: keycode.KC_LCTL + keycode.Keycode(i), pressed: true})
		}
	}
	for _, k := range next.Keys {
		if isUsage(k) && !prev.HasKey(k) {
			changes = append(changes, keyChange{code: keycode.Keycode(k), pressed: true})
		}
	}
	return changes
}

// isUsage filters empty slots and the ErrorRollOver/POSTFail/ErrorUndefined
// phantom states.
func isUsage(k uint8) bool {
	return k > 0x03
}

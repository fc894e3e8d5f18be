package monitor

import (
	"fmt"
	"time"

	"github.com/jochenvg/go-udev"
	"github.com/sstallion/go-hid"
)

// Device is a hidraw node as reported by udev.
type Device struct {
	Path      string `json:"path"`
	Syspath   string `json:"syspath"`
	Name      string `json:"name"`
	Bus       uint16 `json:"bus"`
	VendorID  uint16 `json:"vendorId"`
	ProductID uint16 `json:"productId"`
	// Raw is set on side channel interfaces.
	Raw bool `json:"raw"`

	FirstSeenAt time.Time `json:"firstSeenAt,omitempty"`
	LastSeenAt  time.Time `json:"lastSeenAt,omitempty"`
}

// ListDevices enumerates the hidraw nodes and marks the side channel
// interfaces among them.
func ListDevices() ([]Device, error) {
	if err := hid.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize hidapi: %w", err)
	}
	rawPaths, err := RawInterfaces()
	if err != nil {
		return nil, err
	}
	raw := make(map[string]bool, len(rawPaths))
	for _, path := range rawPaths {
		raw[path] = true
	}

	u := &udev.Udev{}
	e := u.NewEnumerate()
	if err := e.AddMatchSubsystem("hidraw"); err != nil {
		return nil, fmt.Errorf("failed to match hidraw subsystem: %w", err)
	}
	nodes, err := e.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate hidraw devices: %w", err)
	}
	devices := make([]Device, 0, len(nodes))
	for _, node := range nodes {
		dev := Device{
			Path:    node.Devnode(),
			Syspath: node.Syspath(),
		}
		if parent := node.Parent(); parent != nil {
			dev.Name = parent.PropertyValue("HID_NAME")
			dev.Bus, dev.VendorID, dev.ProductID, _ = parseHIDID(parent.PropertyValue("HID_ID"))
		}
		dev.Raw = raw[dev.Path]
		devices = append(devices, dev)
	}
	return devices, nil
}

// parseHIDID parses the HID_ID udev property, "0003:00004E50:00004B43".
func parseHIDID(id string) (bus, vendorID, productID uint16, err error) {
	var b, v, p uint32
	if _, err := fmt.Sscanf(id, "%x:%x:%x", &b, &v, &p); err != nil {
		return 0, 0, 0, fmt.Errorf("failed to parse HID_ID %q: %w", id, err)
	}
	if b > 0xFFFF || v > 0xFFFF || p > 0xFFFF {
		return 0, 0, 0, fmt.Errorf("HID_ID %q out of range", id)
	}
	return uint16(b), uint16(v), uint16(p), nil
}

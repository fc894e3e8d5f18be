package engine

import (
	"encoding/json"
	"fmt"
	"time"
)

// Config holds the engine timing and layer policy. It is loaded from YAML
// through the config service and can be swapped between scan cycles.
type Config struct {
	// OneShotHoldTimeout clears a one-shot latch while its key is still held.
	OneShotHoldTimeout Duration `json:"oneShotHoldTimeout"`
	// OneShotTimeout clears a released one-shot latch that was never used.
	OneShotTimeout Duration `json:"oneShotTimeout"`
	// HeartbeatTimeout disarms the side channel when the consumer goes quiet.
	HeartbeatTimeout Duration `json:"heartbeatTimeout"`
	// ExtendLayer is mirrored to the scroll lock indicator.
	ExtendLayer uint8 `json:"extendLayer"`
	// ExtendLockIndicator enables the scroll lock mirroring.
	ExtendLockIndicator bool `json:"extendLockIndicator"`
	// MaintenanceInterval is how often the host should call OnMaintenanceTick.
	MaintenanceInterval Duration `json:"maintenanceInterval"`
}

const (
	LayerBase   uint8 = 0
	LayerNum    uint8 = 1
	LayerSym    uint8 = 2
	LayerFnc    uint8 = 3
	LayerExtend uint8 = 4
	LayerMouse  uint8 = 5
)

func DefaultConfig() Config {
	return Config{
		OneShotHoldTimeout:  Duration(500 * time.Millisecond),
		OneShotTimeout:      Duration(5000 * time.Millisecond),
		HeartbeatTimeout:    Duration(1500 * time.Millisecond),
		ExtendLayer:         LayerExtend,
		ExtendLockIndicator: true,
		MaintenanceInterval: Duration(10 * time.Millisecond),
	}
}

func (c Config) Validate() error {
	if c.OneShotHoldTimeout <= 0 || c.OneShotTimeout <= 0 || c.HeartbeatTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.MaintenanceInterval <= 0 {
		return fmt.Errorf("maintenance interval must be positive")
	}
	if time.Duration(c.MaintenanceInterval) >= time.Duration(c.OneShotHoldTimeout) {
		return fmt.Errorf("maintenance interval %s must be shorter than the one-shot hold timeout %s",
			c.MaintenanceInterval, c.OneShotHoldTimeout)
	}
	return nil
}

// Duration accepts either a Go duration string ("500ms") or integer
// nanoseconds.
type Duration time.Duration

func (d Duration) String() string {
	return time.Duration(d).String()
}

// Millis returns the duration in clock ticks.
func (d Duration) Millis() uint32 {
	return uint32(time.Duration(d) / time.Millisecond)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("failed to parse duration %q: %w", value, err)
		}
		*d = Duration(parsed)
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(data))
	}
}

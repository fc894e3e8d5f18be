package agent

import (
	"encoding/json"
	"path/filepath"
)

// Config points the agent at its files and picks the firmware endpoints.
// Only the engine config and the keymap are live reloaded.
type Config struct {
	DataDir string `json:"dataDir"`
	// EngineConfig is created with defaults when missing.
	EngineConfig string `json:"engineConfig"`
	// Keymap is a Markdown or YAML keymap. Empty selects the built-in one.
	Keymap string `json:"keymap"`

	Transport       string          `json:"transport"`
	TransportConfig json.RawMessage `json:"transportConfig,omitempty"`
	Source          string          `json:"source"`
	SourceConfig    json.RawMessage `json:"sourceConfig,omitempty"`
	NKRO            bool            `json:"nkro"`
}

func DefaultConfig(configDir string) Config {
	return Config{
		DataDir:      filepath.Join(configDir, "data"),
		EngineConfig: filepath.Join(configDir, "engine.yml"),
		Transport:    "uhid",
		Source:       "script",
	}
}

package agent

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ghodss/yaml"
	"github.com/neuroplastio/neio-keycore/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) Config {
	dir := t.TempDir()
	config := DefaultConfig(dir)
	config.Transport = "memory"
	return config
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig("/etc/neio")
	assert.Equal(t, "/etc/neio/data", config.DataDir)
	assert.Equal(t, "/etc/neio/engine.yml", config.EngineConfig)
	assert.Equal(t, "uhid", config.Transport)
	assert.Empty(t, config.Keymap)
}

func TestRunScriptSeedsEngineConfig(t *testing.T) {
	config := testConfig(t)
	script := filepath.Join(t.TempDir(), "keys.txt")
	require.NoError(t, os.WriteFile(script, []byte("tap 1 1\n"), 0o644))
	sourceConfig, err := json.Marshal(map[string]string{"path": script})
	require.NoError(t, err)
	config.SourceConfig = sourceConfig

	a, err := NewAgent(config, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, a.Run(ctx))

	data, err := os.ReadFile(config.EngineConfig)
	require.NoError(t, err)
	var seeded engine.Config
	require.NoError(t, yaml.Unmarshal(data, &seeded))
	assert.Equal(t, engine.DefaultConfig(), seeded)
}

func TestRunRejectsInvalidEngineConfig(t *testing.T) {
	config := testConfig(t)
	require.NoError(t, os.WriteFile(config.EngineConfig, []byte("heartbeatTimeout: 0s\n"), 0o644))

	a, err := NewAgent(config, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.Error(t, a.Run(ctx))
}

func TestUnknownTransport(t *testing.T) {
	config := testConfig(t)
	config.Transport = "usb"
	a, err := NewAgent(config, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	defer a.Close()

	err = a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "component not found: usb")
}

func TestKeymap(t *testing.T) {
	config := testConfig(t)
	a, err := NewAgent(config, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	km, err := a.Keymap()
	require.NoError(t, err)
	assert.Equal(t, "cantor", km.Name)

	config.Keymap = filepath.Join(t.TempDir(), "missing.md")
	a, err = NewAgent(config, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	_, err = a.Keymap()
	assert.Error(t, err)
}

func TestCapturesEmpty(t *testing.T) {
	a, err := NewAgent(testConfig(t), WithLogger(zap.NewNop()))
	require.NoError(t, err)
	defer a.Close()

	captures, err := a.Captures(10)
	require.NoError(t, err)
	assert.Empty(t, captures)
	n, err := a.ClearCaptures()
	require.NoError(t, err)
	assert.Zero(t, n)
}

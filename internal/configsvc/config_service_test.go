package configsvc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testConfig struct {
	Transport string `json:"transport"`
	Depth     int    `json:"depth"`
}

func (c testConfig) Validate() error {
	if c.Depth < 0 {
		return fmt.Errorf("depth must not be negative")
	}
	return nil
}

func startService(t *testing.T) *Service {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	svc := New(zap.NewNop())
	svc.SetDebounce(20 * time.Millisecond)
	go func() {
		_ = svc.Start(ctx)
	}()
	<-svc.Ready()
	return svc
}

func TestRegisterWriteableSeedsDefault(t *testing.T) {
	svc := startService(t)
	path := filepath.Join(t.TempDir(), "nested", "engine.yaml")
	def := testConfig{Transport: "uhid", Depth: 4}

	config, err := RegisterWriteable(svc, path, def, func(testConfig, error) {})
	require.NoError(t, err)
	assert.Equal(t, def, config)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "depth: 4\ntransport: uhid\n", string(data))
}

func TestRegisterReloads(t *testing.T) {
	svc := startService(t)
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("transport: log\n"), 0o644))

	updates := make(chan testConfig, 4)
	failures := make(chan error, 4)
	config, err := Register(svc, path, testConfig{Depth: 1}, func(c testConfig, err error) {
		if err != nil {
			failures <- err
			return
		}
		updates <- c
	})
	require.NoError(t, err)
	assert.Equal(t, testConfig{Transport: "log", Depth: 1}, config, "missing fields keep defaults")

	require.NoError(t, os.WriteFile(path, []byte("transport: memory\ndepth: 9\n"), 0o644))
	select {
	case c := <-updates:
		assert.Equal(t, testConfig{Transport: "memory", Depth: 9}, c)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "no reload")
	}

	require.NoError(t, os.WriteFile(path, []byte("depth: -1\n"), 0o644))
	select {
	case err := <-failures:
		assert.ErrorContains(t, err, "invalid config")
	case <-time.After(2 * time.Second):
		require.FailNow(t, "no validation error")
	}
}

func TestWatchRawFile(t *testing.T) {
	svc := startService(t)
	path := filepath.Join(t.TempDir(), "keymap.md")
	require.NoError(t, os.WriteFile(path, []byte("## Base\n"), 0o644))

	changes := make(chan string, 4)
	data, err := svc.Watch(path, func(data []byte, err error) {
		if err == nil {
			changes <- string(data)
		}
	})
	require.NoError(t, err)
	assert.Equal(t, "## Base\n", string(data))

	require.NoError(t, os.WriteFile(path, []byte("## Upper\n"), 0o644))
	select {
	case got := <-changes:
		assert.Equal(t, "## Upper\n", got)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "no change")
	}

	_, err = svc.Watch(filepath.Join(t.TempDir(), "missing.md"), func([]byte, error) {})
	assert.Error(t, err)
}

func TestRegisterRejectsInvalidFile(t *testing.T) {
	svc := startService(t)
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("depth: [\n"), 0o644))
	_, err := Register(svc, path, testConfig{}, func(testConfig, error) {})
	assert.Error(t, err)
}

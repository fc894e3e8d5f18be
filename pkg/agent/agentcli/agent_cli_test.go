package agentcli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, configDir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd(configDir)
	cmd.SetArgs(args)
	cmd.SetIn(bytes.NewReader(nil))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestKeymapCommand(t *testing.T) {
	out, err := execute(t, t.TempDir(), "keymap")
	require.NoError(t, err)
	assert.Contains(t, out, "name: cantor")
	assert.Contains(t, out, "| --- |")
}

func TestRunCommandWithScript(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "keys.txt")
	require.NoError(t, os.WriteFile(script, []byte("tap 1 1 5\n"), 0o644))

	_, err := execute(t, dir, "run", "--transport", "memory", "--script", script)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "engine.yml"))
}

func TestCapturesCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, dir, "captures", "--clear")
	require.NoError(t, err)
	assert.Equal(t, "Deleted 0 captures\n", out)

	out, err = execute(t, dir, "captures")
	require.NoError(t, err)
	assert.Equal(t, "null\n", out)
}

func TestUnknownSource(t *testing.T) {
	_, err := execute(t, t.TempDir(), "run", "--transport", "memory", "--source", "serial")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "component not found: serial")
}

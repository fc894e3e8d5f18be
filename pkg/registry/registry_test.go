package registry

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sink struct {
	name  string
	depth int
}

func newTestRegistry() *Registry[*sink, string] {
	r := NewRegistry[*sink, string]("prefix")
	r.Register("memory", func(config json.RawMessage, provider string) (*sink, error) {
		s := &sink{name: provider + ".memory", depth: 8}
		if config != nil {
			if err := json.Unmarshal(config, &s.depth); err != nil {
				return nil, err
			}
		}
		return s, nil
	})
	r.Register("broken", func(config json.RawMessage, provider string) (*sink, error) {
		return nil, fmt.Errorf("no device")
	})
	return r
}

func TestRegistryNew(t *testing.T) {
	r := newTestRegistry()

	s, err := r.New("memory", nil)
	require.NoError(t, err)
	assert.Equal(t, &sink{name: "prefix.memory", depth: 8}, s)

	s, err = r.New("memory", json.RawMessage("32"))
	require.NoError(t, err)
	assert.Equal(t, 32, s.depth)

	_, err = r.New("broken", nil)
	assert.ErrorContains(t, err, "failed to create broken")

	_, err = r.New("uhid", nil)
	assert.ErrorContains(t, err, "component not found: uhid")
}

func TestRegistryNames(t *testing.T) {
	r := newTestRegistry()
	assert.Equal(t, []string{"broken", "memory"}, r.Names())
	assert.True(t, r.Has("memory"))
	assert.False(t, r.Has("log"))
	assert.Panics(t, func() {
		r.Register("memory", nil)
	})
}

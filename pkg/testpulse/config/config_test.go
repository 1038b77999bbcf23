package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("nil map", func(t *testing.T) {
		cfg := New(nil)
		assert.NotNil(t, cfg.Raw())
		assert.Empty(t, cfg.Raw())
	})

	t.Run("with data", func(t *testing.T) {
		cfg := New(map[string]any{"name": "alice"})
		assert.Equal(t, "alice", cfg.String("name", ""))
	})
}

func TestString(t *testing.T) {
	tests := []struct {
		name       string
		data       map[string]any
		key        string
		defaultVal string
		want       string
	}{
		{"present", map[string]any{"name": "alice"}, "name", "dflt", "alice"},
		{"missing", map[string]any{}, "name", "dflt", "dflt"},
		{"wrong type", map[string]any{"name": 42}, "name", "dflt", "dflt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.data).String(tt.key, tt.defaultVal)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInt(t *testing.T) {
	tests := []struct {
		name       string
		data       map[string]any
		key        string
		defaultVal int
		want       int
	}{
		{"int", map[string]any{"n": 8}, "n", 1, 8},
		{"int64", map[string]any{"n": int64(8)}, "n", 1, 8},
		{"whole float", map[string]any{"n": 8.0}, "n", 1, 8},
		{"fractional float", map[string]any{"n": 8.5}, "n", 1, 1},
		{"missing", map[string]any{}, "n", 1, 1},
		{"wrong type", map[string]any{"n": "eight"}, "n", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.data).Int(tt.key, tt.defaultVal)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		name       string
		data       map[string]any
		key        string
		defaultVal time.Duration
		want       time.Duration
	}{
		{"string", map[string]any{"d": "30s"}, "d", time.Second, 30 * time.Second},
		{"int seconds", map[string]any{"d": 30}, "d", time.Second, 30 * time.Second},
		{"float seconds", map[string]any{"d": 1.5}, "d", time.Second, 1500 * time.Millisecond},
		{"duration", map[string]any{"d": 5 * time.Second}, "d", time.Second, 5 * time.Second},
		{"bad string", map[string]any{"d": "soon"}, "d", time.Second, time.Second},
		{"missing", map[string]any{}, "d", time.Second, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.data).Duration(tt.key, tt.defaultVal)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBool(t *testing.T) {
	cfg := New(map[string]any{"enabled": true, "count": 1})
	assert.True(t, cfg.Bool("enabled", false))
	assert.False(t, cfg.Bool("missing", false))
	assert.True(t, cfg.Bool("count", true), "non-bool falls back to default")
}

func TestSub(t *testing.T) {
	cfg := New(map[string]any{
		"bus": map[string]any{
			"max_concurrent_handlers": 4,
		},
		"flag": true,
	})

	assert.Equal(t, 4, cfg.Sub("bus").Int("max_concurrent_handlers", 0))
	assert.Empty(t, cfg.Sub("missing").Raw())
	assert.Empty(t, cfg.Sub("flag").Raw(), "non-map yields empty section")
}

func TestHas(t *testing.T) {
	cfg := New(map[string]any{"name": "alice"})
	assert.True(t, cfg.Has("name"))
	assert.False(t, cfg.Has("missing"))
}

func TestFromYAML(t *testing.T) {
	data := []byte(`
bus:
  max_concurrent_handlers: 4
  handler_timeout: 10s
monitor:
  max_samples_per_key: 500
`)
	cfg, err := FromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Sub("bus").Int("max_concurrent_handlers", 0))
	assert.Equal(t, 10*time.Second, cfg.Sub("bus").Duration("handler_timeout", 0))
	assert.Equal(t, 500, cfg.Sub("monitor").Int("max_samples_per_key", 0))
}

func TestFromYAMLInvalid(t *testing.T) {
	_, err := FromYAML([]byte("{not yaml"))
	assert.Error(t, err)
}

func TestFromJSON(t *testing.T) {
	data := []byte(`{"bus": {"max_concurrent_handlers": 4}}`)
	cfg, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Sub("bus").Int("max_concurrent_handlers", 0))
}

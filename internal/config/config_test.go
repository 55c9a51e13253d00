package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	cfg, err := New(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.GetPort())
	assert.Equal(t, ":4000", cfg.GetAddr())
	assert.Equal(t, "/graphql", cfg.GetRelayPath())
	assert.False(t, cfg.GetPassThroughArgs())
	assert.Equal(t, 5*time.Second, cfg.GetMessageInterval())
	assert.Equal(t, 7*time.Second, cfg.GetStatusInterval())
	assert.Equal(t, 9*time.Second, cfg.GetSettingsInterval())
	assert.Equal(t, 100, cfg.GetHistoryLimit())
	assert.Equal(t, "text", cfg.GetLogFormat())
	assert.True(t, cfg.GetBusMirror())
	assert.False(t, cfg.GetTracingEnabled())
}

func TestNew_Environment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("RELAY_PASSTHROUGH_ARGS", "true")
	t.Setenv("MESSAGE_INTERVAL", "250ms")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := New(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.GetPort())
	assert.True(t, cfg.GetPassThroughArgs())
	assert.Equal(t, 250*time.Millisecond, cfg.GetMessageInterval())
	assert.Equal(t, "json", cfg.GetLogFormat())
}

func TestNew_OverridesTakePrecedence(t *testing.T) {
	t.Setenv("PORT", "8080")

	v := viper.New()
	v.Set(KeyPort, 9090)

	cfg, err := New(v)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.GetPort())
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{name: "port out of range", key: KeyPort, val: 70000},
		{name: "relative path", key: KeyRelayPath, val: "graphql"},
		{name: "zero interval", key: KeyStatusInterval, val: "0s"},
		{name: "unknown log format", key: KeyLogFormat, val: "xml"},
		{name: "unknown log level", key: KeyLogLevel, val: "trace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.val)
			_, err := New(v)
			assert.Error(t, err)
		})
	}
}

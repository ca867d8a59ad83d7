package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWhenFileMissing(t *testing.T) {
	viper.Reset()

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "localhost:9000", cfg.Server.TCPAddress)
	assert.Equal(t, "", cfg.Server.WSAddress)
	assert.Equal(t, "localhost:9001", cfg.Server.RPCAddress)
	assert.Equal(t, "localhost:9100", cfg.Server.MonitorAddress)
	assert.Equal(t, 4, cfg.Game.RoomCount)
	assert.Equal(t, 15*time.Second, cfg.Game.TurnTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Game.IdleTimeout)
	assert.Equal(t, 64*1024, cfg.Game.MaxFrameSize)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	viper.Reset()

	dir := t.TempDir()
	yaml := []byte(`server:
  tcp_address: ":7777"
  ws_address: ":7778"
game:
  room_count: 2
  turn_timeout: 3s
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":7777", cfg.Server.TCPAddress)
	assert.Equal(t, ":7778", cfg.Server.WSAddress)
	assert.Equal(t, 2, cfg.Game.RoomCount)
	assert.Equal(t, 3*time.Second, cfg.Game.TurnTimeout)
	// Untouched keys keep their defaults.
	assert.Equal(t, "localhost:9001", cfg.Server.RPCAddress)
	assert.Equal(t, 5*time.Minute, cfg.Game.IdleTimeout)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	viper.Reset()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: ["), 0o644))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

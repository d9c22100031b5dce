package mazduino

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Nil(t, cfg.Forwarder)
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(`
[display]
driver = "memory"
splash_hold = "500ms"

[store]
backend = "sqlite"
path = "/tmp/settings.db"

[telemetry]
source = "ecu"
ecu_port = "/dev/ttyUSB0"

[forwarder]
server = "10.0.0.2"
port = 9000
`))
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Display.Driver)
	assert.Equal(t, 500*time.Millisecond, cfg.Display.SplashHold)
	assert.Equal(t, "GPIO24", cfg.Display.DCPin, "unset keys keep defaults")
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, 512, cfg.Store.Size)
	assert.Equal(t, "ecu", cfg.Telemetry.Source)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Telemetry.ECUPort)
	if assert.NotNil(t, cfg.Forwarder) {
		assert.Equal(t, "10.0.0.2", cfg.Forwarder.Server)
		assert.Equal(t, 9000, cfg.Forwarder.Port)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(strings.NewReader("[display\n"))
	assert.Error(t, err)

	_, err = LoadConfig(strings.NewReader("[store]\nsize = 2\n"))
	assert.Error(t, err)
}

func TestLoadConfigFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "mazduino.toml")
	require.NoError(t, os.WriteFile(name, []byte("[hotspot]\nlisten = \":8080\"\n"), 0644))

	cfg, err := LoadConfigFile(name)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Hotspot.Listen)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestSetupLogging(t *testing.T) {
	orig := log.GetLevel()
	defer log.SetLevel(orig)

	require.NoError(t, SetupLogging(LogConfig{Level: "debug"}))
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	assert.Error(t, SetupLogging(LogConfig{Level: "chatty"}))
}

package mazduino

import (
	"path/filepath"
	"testing"

	"github.com/amrikarisma/mazduino-display-speeduino/eeprom"
	"github.com/amrikarisma/mazduino-display-speeduino/hotspot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCells(t *testing.T) {
	cells, err := OpenCells(StoreConfig{Backend: "memory", Size: 16})
	require.NoError(t, err)
	assert.IsType(t, &eeprom.Memory{}, cells)
	assert.Equal(t, 16, cells.Size())

	path := filepath.Join(t.TempDir(), "sub", "eeprom.bin")
	cells, err = OpenCells(StoreConfig{Backend: "file", Path: path, Size: 16})
	require.NoError(t, err)
	assert.IsType(t, &eeprom.File{}, cells)
	assert.NoError(t, cells.Close())

	_, err = OpenCells(StoreConfig{Backend: "flash"})
	assert.Error(t, err)
}

func TestOpenPanel(t *testing.T) {
	p, err := OpenPanel(DisplayConfig{Driver: "memory"})
	require.NoError(t, err)
	w, h := p.Size()
	assert.Equal(t, int16(480), w)
	assert.Equal(t, int16(320), h)

	_, err = OpenPanel(DisplayConfig{Driver: "vga"})
	assert.Error(t, err)
}

func TestOpenPanelRejectsPortrait(t *testing.T) {
	for _, rotation := range []int{0, 2} {
		_, err := OpenPanel(DisplayConfig{Driver: "ili9488", Port: "/dev/null", Rotation: rotation})
		if assert.Error(t, err, "rotation %d", rotation) {
			assert.Contains(t, err.Error(), "320x480")
		}
	}
}

func TestNewSource(t *testing.T) {
	for _, tc := range []struct {
		source   string
		testMode bool
		name     string
	}{
		{"canbus", false, "canbus"},
		{"ecu", false, "ecu"},
		{"simulated", false, "simulated"},
		{"canbus", true, "simulated"},
	} {
		src, err := NewSource(TelemetryConfig{Source: tc.source}, tc.testMode)
		require.NoError(t, err)
		assert.Equal(t, tc.name, src.Name())
	}

	_, err := NewSource(TelemetryConfig{Source: "obd2"}, false)
	assert.Error(t, err)
}

func TestNewAccessPoint(t *testing.T) {
	ap, err := NewAccessPoint(HotspotConfig{Driver: "hostapd", Interface: "wlan1"})
	require.NoError(t, err)
	if assert.IsType(t, &hotspot.Hostapd{}, ap) {
		assert.Equal(t, "wlan1", ap.(*hotspot.Hostapd).Interface)
	}

	ap, err = NewAccessPoint(HotspotConfig{Driver: "simulated"})
	require.NoError(t, err)
	assert.IsType(t, &hotspot.Simulated{}, ap)

	_, err = NewAccessPoint(HotspotConfig{Driver: "bluetooth"})
	assert.Error(t, err)
}

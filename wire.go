package mazduino

import (
	"os"
	"path/filepath"

	"github.com/amrikarisma/mazduino-display-speeduino/display"
	"github.com/amrikarisma/mazduino-display-speeduino/eeprom"
	"github.com/amrikarisma/mazduino-display-speeduino/hotspot"
	"github.com/amrikarisma/mazduino-display-speeduino/ili9488"
	"github.com/pkg/errors"
)

// Panel resolution in the landscape rotations the gauge layout is drawn for.
const (
	screenWidth  = 480
	screenHeight = 320
)

// OpenCells opens the configured settings backend.
func OpenCells(cfg StoreConfig) (eeprom.Cells, error) {
	switch cfg.Backend {
	case "memory":
		return eeprom.NewMemory(cfg.Size), nil
	case "file", "sqlite":
	default:
		return nil, errors.Errorf("unknown store backend %q", cfg.Backend)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, errors.Wrap(err, "unable to create store directory")
	}
	if cfg.Backend == "sqlite" {
		return eeprom.OpenSQLite(cfg.Path, cfg.Size)
	}
	return eeprom.OpenFile(cfg.Path, cfg.Size)
}

// OpenPanel opens the configured display.
func OpenPanel(cfg DisplayConfig) (display.Panel, error) {
	switch cfg.Driver {
	case "memory":
		return display.NewMemory(screenWidth, screenHeight), nil
	case "ili9488":
		if w, h := ili9488.Dimensions(cfg.Rotation); w != screenWidth || h != screenHeight {
			return nil, errors.Errorf("rotation %d gives a %dx%d panel, the gauges need %dx%d",
				cfg.Rotation, w, h, screenWidth, screenHeight)
		}
		return ili9488.Open(ili9488.Config{
			Port:     cfg.Port,
			DCPin:    cfg.DCPin,
			ResetPin: cfg.ResetPin,
			Rotation: cfg.Rotation,
		})
	}
	return nil, errors.Errorf("unknown display driver %q", cfg.Driver)
}

// NewSource returns the configured telemetry source; testMode forces the
// simulated one.
func NewSource(cfg TelemetryConfig, testMode bool) (Source, error) {
	if testMode {
		return NewSimulatedSource(), nil
	}
	switch cfg.Source {
	case "canbus":
		return NewCANSource(cfg.Interface), nil
	case "ecu":
		return NewECUSource(cfg.ECUPort), nil
	case "simulated":
		return NewSimulatedSource(), nil
	}
	return nil, errors.Errorf("unknown telemetry source %q", cfg.Source)
}

// NewAccessPoint returns the configured radio driver.
func NewAccessPoint(cfg HotspotConfig) (hotspot.AccessPoint, error) {
	switch cfg.Driver {
	case "hostapd":
		return &hotspot.Hostapd{Interface: cfg.Interface, RunDir: cfg.RunDir}, nil
	case "simulated":
		return &hotspot.Simulated{}, nil
	}
	return nil, errors.Errorf("unknown hotspot driver %q", cfg.Driver)
}

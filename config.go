package mazduino

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/amrikarisma/mazduino-display-speeduino/forwarder"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type DisplayConfig struct {
	// Driver is "ili9488" or "memory".
	Driver   string `toml:"driver"`
	Port     string `toml:"port"`
	DCPin    string `toml:"dc_pin"`
	ResetPin string `toml:"reset_pin"`
	Rotation int    `toml:"rotation"`
	// Snapshot is where the memory driver writes a PNG of the screen on exit.
	Snapshot   string        `toml:"snapshot"`
	SplashHold time.Duration `toml:"splash_hold"`
	// Idle is the pause between loop iterations.
	Idle time.Duration `toml:"idle"`
}

type StoreConfig struct {
	// Backend is "file", "sqlite" or "memory".
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
	Size    int    `toml:"size"`
}

type TelemetryConfig struct {
	// Source is "canbus", "ecu" or "simulated".
	Source    string `toml:"source"`
	ECUPort   string `toml:"ecu_port"`
	Interface string `toml:"interface"`
}

type HotspotConfig struct {
	// Driver is "hostapd" or "simulated".
	Driver    string `toml:"driver"`
	Interface string `toml:"interface"`
	RunDir    string `toml:"run_dir"`
	Listen    string `toml:"listen"`
}

type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

type FirmwareConfig struct {
	// Target is the installed binary replaced by uploads. Empty means the
	// running executable.
	Target string `toml:"target"`
}

type Config struct {
	Display   DisplayConfig         `toml:"display"`
	Store     StoreConfig           `toml:"store"`
	Telemetry TelemetryConfig       `toml:"telemetry"`
	Hotspot   HotspotConfig         `toml:"hotspot"`
	Forwarder *forwarder.UDPConfig `toml:"forwarder"`
	Log       LogConfig             `toml:"log"`
	Firmware  FirmwareConfig        `toml:"firmware"`
}

func DefaultConfig() Config {
	return Config{
		Display: DisplayConfig{
			Driver:     "ili9488",
			Port:       "/dev/spidev0.0",
			DCPin:      "GPIO24",
			ResetPin:   "GPIO25",
			Rotation:   3,
			SplashHold: 3 * time.Second,
			Idle:       time.Millisecond,
		},
		Store: StoreConfig{
			Backend: "file",
			Path:    "/var/lib/mazduino/eeprom.bin",
			Size:    512,
		},
		Telemetry: TelemetryConfig{
			Source:    "canbus",
			ECUPort:   "/dev/obd",
			Interface: "can0",
		},
		Hotspot: HotspotConfig{
			Driver:    "hostapd",
			Interface: "wlan0",
			RunDir:    "/run/mazduino",
			Listen:    ":80",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  5,
			MaxBackups: 3,
		},
	}
}

// LoadConfig decodes TOML from r over the defaults.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return cfg, errors.Wrap(err, "unable to load configuration")
	}
	if cfg.Store.Size < 3 {
		return cfg, errors.Errorf("store size %d too small", cfg.Store.Size)
	}
	return cfg, nil
}

// LoadConfigFile reads fileName. A relative name is resolved next to the
// binary, the way the device image ships it.
func LoadConfigFile(fileName string) (Config, error) {
	if !filepath.IsAbs(fileName) {
		dir, err := filepath.Abs(filepath.Dir(os.Args[0]))
		if err != nil {
			return Config{}, errors.Wrapf(err, "unable to determine binary location")
		}
		fileName = filepath.Join(dir, fileName)
	}
	file, err := os.Open(fileName)
	if err != nil {
		return Config{}, errors.Wrapf(err, "unable to open file %s", fileName)
	}
	defer file.Close()
	return LoadConfig(file)
}

// SetupLogging applies the level and, when a file is configured, sends
// output to a rotating log.
func SetupLogging(cfg LogConfig) error {
	level := log.InfoLevel
	if cfg.Level != "" {
		l, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return errors.Wrapf(err, "invalid log level %q", cfg.Level)
		}
		level = l
	}
	log.SetLevel(level)
	if cfg.File != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		})
		log.SetFormatter(&log.TextFormatter{DisableColors: true, FullTimestamp: true})
	}
	return nil
}

// Package settings keeps the display preferences in a byte-addressable
// store. Stored values that are out of range are coerced to defaults and
// never reported as errors.
package settings

import (
	"github.com/amrikarisma/mazduino-display-speeduino/eeprom"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Cell layout.
const (
	AddrDisplayMode = 0
	AddrSplash      = 1
	AddrMarker      = 2

	// Marker is written to AddrMarker once defaults have been stored.
	Marker byte = 0xAA

	// MinSize is the smallest store that holds every cell.
	MinSize = AddrMarker + 1
)

type DisplayMode uint8

const (
	ShowFuelPressure DisplayMode = 0
	ShowRefreshRate  DisplayMode = 1

	DefaultDisplayMode = ShowRefreshRate
)

func (m DisplayMode) String() string {
	if m == ShowRefreshRate {
		return "FPS"
	}
	return "FP"
}

// SplashID identifies one of the known startup images.
type SplashID uint8

const (
	SplashZetTech SplashID = iota
	SplashMazduino
	SplashSpeeduino

	SplashCount = 3

	DefaultSplash = SplashZetTech
)

func (id SplashID) Valid() bool {
	return id < SplashCount
}

type Store struct {
	cells eeprom.Cells
}

// Open writes the defaults and the marker on first boot and leaves a
// previously initialised store untouched, apart from repairing an invalid
// splash cell.
func Open(cells eeprom.Cells) (*Store, error) {
	if cells.Size() < MinSize {
		return nil, errors.Errorf("store too small: %d cells, need %d", cells.Size(), MinSize)
	}
	s := &Store{cells: cells}

	marker, err := cells.Get(AddrMarker)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read initialization marker")
	}
	if marker != Marker {
		log.WithField("marker", marker).Info("first boot, writing default settings")
		if err := s.put(AddrDisplayMode, byte(DefaultDisplayMode)); err != nil {
			return nil, err
		}
		if err := s.put(AddrSplash, byte(DefaultSplash)); err != nil {
			return nil, err
		}
		if err := s.put(AddrMarker, Marker); err != nil {
			return nil, err
		}
		return s, nil
	}

	raw, err := cells.Get(AddrSplash)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read splash selection")
	}
	if !SplashID(raw).Valid() {
		log.WithField("splash", raw).Warn("stored splash selection out of range, resetting")
		if err := s.put(AddrSplash, byte(DefaultSplash)); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) put(addr int, v byte) error {
	if err := s.cells.Put(addr, v); err != nil {
		return errors.Wrapf(err, "unable to persist cell %d", addr)
	}
	return nil
}

// get returns the cell value, or ok=false when the store cannot be read.
func (s *Store) get(addr int) (byte, bool) {
	v, err := s.cells.Get(addr)
	if err != nil {
		log.WithField("err", err).WithField("addr", addr).Warn("unable to read setting")
		return 0, false
	}
	return v, true
}

func (s *Store) Initialized() bool {
	v, ok := s.get(AddrMarker)
	return ok && v == Marker
}

func (s *Store) DisplayMode() DisplayMode {
	v, ok := s.get(AddrDisplayMode)
	if !ok {
		return DefaultDisplayMode
	}
	switch DisplayMode(v) {
	case ShowFuelPressure, ShowRefreshRate:
		return DisplayMode(v)
	}
	return DefaultDisplayMode
}

func (s *Store) SetDisplayMode(m DisplayMode) error {
	if m != ShowFuelPressure && m != ShowRefreshRate {
		return errors.Errorf("invalid display mode %d", m)
	}
	return s.put(AddrDisplayMode, byte(m))
}

// ToggleDisplayMode flips between the two modes and returns the new one.
func (s *Store) ToggleDisplayMode() (DisplayMode, error) {
	next := ShowRefreshRate
	if s.DisplayMode() == ShowRefreshRate {
		next = ShowFuelPressure
	}
	return next, s.SetDisplayMode(next)
}

func (s *Store) SplashSelection() SplashID {
	v, ok := s.get(AddrSplash)
	if !ok || !SplashID(v).Valid() {
		return DefaultSplash
	}
	return SplashID(v)
}

func (s *Store) SetSplashSelection(id SplashID) error {
	if !id.Valid() {
		return errors.Errorf("invalid splash selection %d", id)
	}
	return s.put(AddrSplash, byte(id))
}

// CycleSplashSelection advances to the next splash, persists it and
// returns it.
func (s *Store) CycleSplashSelection() (SplashID, error) {
	next := (s.SplashSelection() + 1) % SplashCount
	if err := s.SetSplashSelection(next); err != nil {
		return s.SplashSelection(), err
	}
	return next, nil
}

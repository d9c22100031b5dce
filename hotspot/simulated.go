package hotspot

import (
	"github.com/pkg/errors"
)

// Simulated is an in-process access point for test mode and desktop runs.
// Stations only count while the radio is up.
type Simulated struct {
	Stations int
	up       bool
	cfg      APConfig
	// Fail makes Up return an error, for exercising retries.
	Fail bool
}

func (s *Simulated) Up(cfg APConfig) error {
	if s.Fail {
		return errors.New("simulated radio failure")
	}
	s.up = true
	s.cfg = cfg
	return nil
}

func (s *Simulated) Down() error {
	s.up = false
	return nil
}

func (s *Simulated) StationCount() (int, error) {
	if !s.up {
		return 0, nil
	}
	return s.Stations, nil
}

func (s *Simulated) IsUp() bool {
	return s.up
}

// Config is the identity of the last successful Up.
func (s *Simulated) Config() APConfig {
	return s.cfg
}

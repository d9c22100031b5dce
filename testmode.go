package mazduino

import (
	"context"
	"sync"

	"github.com/amrikarisma/mazduino-display-speeduino/telemetry"
)

// simSource generates test data. Every Request advances the generator by
// one step and publishes the result.
type simSource struct {
	mu       sync.Mutex
	sendChan chan<- Sample
	data     Sample
	step     int
	rpmDown  bool
	cltDown  bool
}

func NewSimulatedSource() Source {
	return &simSource{
		data: Sample{
			Fields: HasRPM | HasMAP | HasThrottle | HasAdvance | HasFuelPressure |
				HasIntakeAirTemp | HasCoolantTemp | HasBattery | HasAFR | HasFlags,
			Values: telemetry.Snapshot{
				MAP:            30,
				FuelPressure:   43,
				IntakeAirTemp:  25,
				CoolantTemp:    20,
				BatteryVoltage: 12.6,
				AirFuelRatio:   14.7,
			},
		},
	}
}

func (s *simSource) Name() string {
	return "simulated"
}

// Run only registers the output channel; samples are produced by Request.
func (s *simSource) Run(ctx context.Context, out chan<- Sample) error {
	s.mu.Lock()
	s.sendChan = out
	s.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (s *simSource) Request() error {
	s.mu.Lock()
	out := s.sendChan
	s.mu.Unlock()
	if out == nil {
		return nil
	}
	s.advance()
	select {
	case out <- s.data:
	default:
	}
	return nil
}

func (s *simSource) advance() {
	s.step++
	v := &s.data.Values

	if s.rpmDown {
		v.RPM -= 50
	} else {
		v.RPM += 50
	}
	if v.RPM >= 6500 {
		s.rpmDown = true
	} else if v.RPM == 0 {
		s.rpmDown = false
	}
	v.MAP = 30 + int(v.RPM)/50
	v.ThrottlePosition = int(v.RPM) / 65
	v.IgnitionAdvance = 10 + int(v.RPM)/250
	v.AirFuelRatio = 12.0 + float64(s.step%40)/10

	if s.step%50 == 0 {
		if s.cltDown {
			v.CoolantTemp--
		} else {
			v.CoolantTemp++
		}
		if v.CoolantTemp >= 105 {
			s.cltDown = true
		} else if v.CoolantTemp <= 20 {
			s.cltDown = false
		}
		v.IntakeAirTemp = 25 + v.CoolantTemp/10
		v.BatteryVoltage = 13.0 + float64(s.step%20)/10
	}

	f := &v.Flags
	f.Sync = v.RPM > 0
	f.AfterStartEnrich = v.RPM > 0 && v.RPM < 1500
	f.WarmUpEnrich = v.CoolantTemp < 60
	f.Fan = v.CoolantTemp > 95
	f.RevLimit = v.RPM >= 6000
	f.Launch = s.step%200 < 20
	f.AirCon = s.step%400 >= 200
	f.DecelFuelCutoff = s.rpmDown && v.RPM > 2000
}

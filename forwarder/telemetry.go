package forwarder

import (
	"github.com/amrikarisma/mazduino-display-speeduino/telemetry"
)

type Header struct {
	Type uint8
}

const (
	TypeTelemetry = 1
)

// Flag bits in Telemetry.Flags.
const (
	FlagSync uint8 = 1 << iota
	FlagFan
	FlagAfterStartEnrich
	FlagWarmUpEnrich
	FlagRevLimit
	FlagLaunch
	FlagAirCon
	FlagDecelFuelCutoff
)

// Telemetry is the fixed-size wire form of a rendered snapshot.
type Telemetry struct {
	RPM              uint16
	MAP              int16
	ThrottlePosition int16
	IgnitionAdvance  int16
	FuelPressure     int16
	IntakeAirTemp    int16
	CoolantTemp      int16
	BatteryVoltage   float32
	AirFuelRatio     float32
	RefreshRate      uint16
	Flags            uint8
}

func FromSnapshot(s *telemetry.Snapshot) Telemetry {
	var flags uint8
	for _, f := range []struct {
		set bool
		bit uint8
	}{
		{s.Flags.Sync, FlagSync},
		{s.Flags.Fan, FlagFan},
		{s.Flags.AfterStartEnrich, FlagAfterStartEnrich},
		{s.Flags.WarmUpEnrich, FlagWarmUpEnrich},
		{s.Flags.RevLimit, FlagRevLimit},
		{s.Flags.Launch, FlagLaunch},
		{s.Flags.AirCon, FlagAirCon},
		{s.Flags.DecelFuelCutoff, FlagDecelFuelCutoff},
	} {
		if f.set {
			flags |= f.bit
		}
	}
	return Telemetry{
		RPM:              uint16(s.RPM),
		MAP:              int16(s.MAP),
		ThrottlePosition: int16(s.ThrottlePosition),
		IgnitionAdvance:  int16(s.IgnitionAdvance),
		FuelPressure:     int16(s.FuelPressure),
		IntakeAirTemp:    int16(s.IntakeAirTemp),
		CoolantTemp:      int16(s.CoolantTemp),
		BatteryVoltage:   float32(s.BatteryVoltage),
		AirFuelRatio:     float32(s.AirFuelRatio),
		RefreshRate:      uint16(s.RefreshRate),
		Flags:            flags,
	}
}

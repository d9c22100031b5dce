package mazduino

import (
	"github.com/amrikarisma/mazduino-display-speeduino/telemetry"
)

// Field is a bit set naming the snapshot fields a sample carries.
type Field uint16

const (
	HasRPM Field = 1 << iota
	HasMAP
	HasThrottle
	HasAdvance
	HasFuelPressure
	HasIntakeAirTemp
	HasCoolantTemp
	HasBattery
	HasAFR
	HasFlags
)

// slowFields change slowly and are only sampled while the lazy render pass
// is stale or the engine is stopped.
const slowFields = HasIntakeAirTemp | HasCoolantTemp | HasBattery

// Sample is the latest decoded state of one source. Values whose bit is not
// set in Fields are left untouched in the frame.
type Sample struct {
	Fields Field
	Values telemetry.Snapshot
}

func (s *Sample) Has(f Field) bool {
	return s.Fields&f != 0
}

// applyTo copies the carried fields into dst. Slow fields are skipped
// unless slow is set.
func (s *Sample) applyTo(dst *telemetry.Snapshot, slow bool) {
	v := &s.Values
	if s.Has(HasRPM) {
		dst.RPM = v.RPM
	}
	if s.Has(HasMAP) {
		dst.MAP = v.MAP
	}
	if s.Has(HasThrottle) {
		dst.ThrottlePosition = v.ThrottlePosition
	}
	if s.Has(HasAdvance) {
		dst.IgnitionAdvance = v.IgnitionAdvance
	}
	if s.Has(HasFuelPressure) {
		dst.FuelPressure = v.FuelPressure
	}
	if s.Has(HasAFR) {
		dst.AirFuelRatio = v.AirFuelRatio
	}
	if s.Has(HasFlags) {
		dst.Flags = v.Flags
	}
	if !slow {
		return
	}
	if s.Has(HasIntakeAirTemp) {
		dst.IntakeAirTemp = v.IntakeAirTemp
	}
	if s.Has(HasCoolantTemp) {
		dst.CoolantTemp = v.CoolantTemp
	}
	if s.Has(HasBattery) {
		dst.BatteryVoltage = v.BatteryVoltage
	}
}

package gauge

import (
	"image/color"

	"github.com/amrikarisma/mazduino-display-speeduino/display"
	"github.com/amrikarisma/mazduino-display-speeduino/settings"
	"github.com/amrikarisma/mazduino-display-speeduino/telemetry"
)

type Cadence uint8

const (
	// Fast fields are compared on every render.
	Fast Cadence = iota
	// Lazy fields are compared at most once per LazyInterval.
	Lazy
)

type FieldID uint8

const (
	FieldAFR FieldID = iota
	FieldTPS
	FieldAdvance
	FieldMAP
	FieldIAT
	FieldCoolant
	FieldBattery
	// FieldAux shows fuel pressure or refresh rate depending on the mode.
	FieldAux
)

// Field describes one data box. Value reads the fixed-point integer shown
// on screen, limited to [Min, Max] so it always fits Region; Commit copies
// the rendered source value from cur into prev.
type Field struct {
	ID       FieldID
	Cadence  Cadence
	Region   Region
	Decimal  int
	Min, Max int
	Label   func(m settings.DisplayMode) string
	Value   func(s *telemetry.Snapshot, m settings.DisplayMode) int
	Color   func(v int) color.RGBA
	Commit  func(prev, cur *telemetry.Snapshot, m settings.DisplayMode)
}

func label(s string) func(settings.DisplayMode) string {
	return func(settings.DisplayMode) string { return s }
}

// Fields is the static screen layout, Fast fields first.
var Fields = []Field{
	{
		ID: FieldAFR, Cadence: Fast, Region: box(5, 190), Decimal: 1, Min: 0, Max: 999,
		Label: label("AFR"),
		Value: func(s *telemetry.Snapshot, _ settings.DisplayMode) int { return tenths(s.AirFuelRatio) },
		Color: AFRColor,
		Commit: func(prev, cur *telemetry.Snapshot, _ settings.DisplayMode) {
			prev.AirFuelRatio = cur.AirFuelRatio
		},
	},
	{
		ID: FieldTPS, Cadence: Fast, Region: box(360, 190), Min: 0, Max: 100,
		Label: label("TPS"),
		Value: func(s *telemetry.Snapshot, _ settings.DisplayMode) int { return s.ThrottlePosition },
		Color: constColor(display.White),
		Commit: func(prev, cur *telemetry.Snapshot, _ settings.DisplayMode) {
			prev.ThrottlePosition = cur.ThrottlePosition
		},
	},
	{
		ID: FieldAdvance, Cadence: Fast, Region: box(120, 190), Min: -99, Max: 99,
		Label: label("ADV"),
		Value: func(s *telemetry.Snapshot, _ settings.DisplayMode) int { return s.IgnitionAdvance },
		Color: constColor(display.Red),
		Commit: func(prev, cur *telemetry.Snapshot, _ settings.DisplayMode) {
			prev.IgnitionAdvance = cur.IgnitionAdvance
		},
	},
	{
		ID: FieldMAP, Cadence: Fast, Region: box(360, 10), Min: 0, Max: 999,
		Label: label("MAP"),
		Value: func(s *telemetry.Snapshot, _ settings.DisplayMode) int { return s.MAP },
		Color: constColor(display.White),
		Commit: func(prev, cur *telemetry.Snapshot, _ settings.DisplayMode) {
			prev.MAP = cur.MAP
		},
	},
	{
		ID: FieldIAT, Cadence: Lazy, Region: box(5, 10), Min: -99, Max: 999,
		Label: label("IAT"),
		Value: func(s *telemetry.Snapshot, _ settings.DisplayMode) int { return s.IntakeAirTemp },
		Color: constColor(display.White),
		Commit: func(prev, cur *telemetry.Snapshot, _ settings.DisplayMode) {
			prev.IntakeAirTemp = cur.IntakeAirTemp
		},
	},
	{
		ID: FieldCoolant, Cadence: Lazy, Region: box(5, 100), Min: -99, Max: 999,
		Label: label("Coolant"),
		Value: func(s *telemetry.Snapshot, _ settings.DisplayMode) int { return s.CoolantTemp },
		Color: CoolantColor,
		Commit: func(prev, cur *telemetry.Snapshot, _ settings.DisplayMode) {
			prev.CoolantTemp = cur.CoolantTemp
		},
	},
	{
		ID: FieldBattery, Cadence: Lazy, Region: box(360, 100), Decimal: 1, Min: 0, Max: 999,
		Label: label("Voltage"),
		Value: func(s *telemetry.Snapshot, _ settings.DisplayMode) int { return tenths(s.BatteryVoltage) },
		Color: BatteryColor,
		Commit: func(prev, cur *telemetry.Snapshot, _ settings.DisplayMode) {
			prev.BatteryVoltage = cur.BatteryVoltage
		},
	},
	{
		ID: FieldAux, Cadence: Lazy, Region: box(240, 190), Min: 0, Max: 9999,
		Label: func(m settings.DisplayMode) string { return m.String() },
		Value: func(s *telemetry.Snapshot, m settings.DisplayMode) int {
			if m == settings.ShowRefreshRate {
				return s.RefreshRate
			}
			return s.FuelPressure
		},
		Color: constColor(display.White),
		Commit: func(prev, cur *telemetry.Snapshot, m settings.DisplayMode) {
			if m == settings.ShowRefreshRate {
				prev.RefreshRate = cur.RefreshRate
			} else {
				prev.FuelPressure = cur.FuelPressure
			}
		},
	},
}

// shown is the value drawn for s.
func (f *Field) shown(s *telemetry.Snapshot, m settings.DisplayMode) int {
	v := f.Value(s, m)
	if v < f.Min {
		return f.Min
	}
	if v > f.Max {
		return f.Max
	}
	return v
}

// FieldByID returns the layout entry for id.
func FieldByID(id FieldID) (Field, bool) {
	for _, f := range Fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// indicator is one of the boolean status widgets on the bottom row.
type indicator struct {
	label  string
	active color.RGBA
	value  func(f *telemetry.Flags) bool
}

var indicators = [indicatorsPerRow]indicator{
	{"SYNC", display.Green, func(f *telemetry.Flags) bool { return f.Sync }},
	{"FAN", display.Green, func(f *telemetry.Flags) bool { return f.Fan }},
	{"ASE", display.Green, func(f *telemetry.Flags) bool { return f.AfterStartEnrich }},
	{"WUE", display.Green, func(f *telemetry.Flags) bool { return f.WarmUpEnrich }},
	{"REV", display.Red, func(f *telemetry.Flags) bool { return f.RevLimit }},
	{"LCH", display.Red, func(f *telemetry.Flags) bool { return f.Launch }},
	{"AC", display.Green, func(f *telemetry.Flags) bool { return f.AirCon }},
	{"DFCO", display.Green, func(f *telemetry.Flags) bool { return f.DecelFuelCutoff }},
}

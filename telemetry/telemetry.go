package telemetry

// Flags are the engine status bits shown as indicator widgets.
type Flags struct {
	Sync             bool
	Fan              bool
	AfterStartEnrich bool
	WarmUpEnrich     bool
	RevLimit         bool
	Launch           bool
	AirCon           bool
	DecelFuelCutoff  bool
}

// Snapshot holds one decoded value for every rendered field.
type Snapshot struct {
	RPM              uint
	MAP              int
	ThrottlePosition int
	IgnitionAdvance  int
	FuelPressure     int
	IntakeAirTemp    int
	CoolantTemp      int
	BatteryVoltage   float64
	AirFuelRatio     float64

	// loop iterations per second, measured by the scheduler
	RefreshRate int

	Flags Flags
}

// Frame pairs the latest sampled values with the values last drawn on
// screen. Previous is only ever written by the renderer.
type Frame struct {
	Current  Snapshot
	Previous Snapshot
}

// NewFrame returns a frame whose Previous snapshot can never equal a
// sampled value, so the first render draws every field.
func NewFrame() *Frame {
	return &Frame{
		Previous: Snapshot{
			RPM:              ^uint(0),
			MAP:              -1,
			ThrottlePosition: -1,
			IgnitionAdvance:  -1 << 16,
			FuelPressure:     -1,
			IntakeAirTemp:    -1 << 16,
			CoolantTemp:      -1 << 16,
			BatteryVoltage:   -1,
			AirFuelRatio:     -1,
			RefreshRate:      -1,
		},
	}
}

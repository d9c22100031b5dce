package mazduino

import (
	"context"
	"sync"

	"github.com/amrikarisma/mazduino-display-speeduino/lemoncan"
	"github.com/amrikarisma/mazduino-display-speeduino/telemetry"
	"github.com/pkg/errors"
)

var canBusConnect = func(p string) (CANBus, error) {
	return lemoncan.Connect(p)
}

// canBus decodes the ECU's CAN broadcast. Request polls the ECU for the
// next set of frames.
type canBus struct {
	iface string

	mu       sync.Mutex
	c        CANBus
	sendChan chan<- Sample
	data     Sample
}

func NewCANSource(iface string) Source {
	return &canBus{iface: iface}
}

func (bus *canBus) Name() string {
	return "canbus"
}

func (bus *canBus) Run(ctx context.Context, out chan<- Sample) error {
	bus.sendChan = out
	return retry(ctx, bus)
}

func (bus *canBus) Request() error {
	bus.mu.Lock()
	c := bus.c
	bus.mu.Unlock()
	if c == nil {
		return errors.New("canbus not connected")
	}
	return c.RequestData()
}

func (bus *canBus) Open() error {
	c, err := canBusConnect(bus.iface)
	if err != nil {
		return err
	}
	bus.mu.Lock()
	bus.c = c
	bus.mu.Unlock()
	return nil
}

func (bus *canBus) Close() error {
	bus.mu.Lock()
	c := bus.c
	bus.c = nil
	bus.mu.Unlock()
	if c == nil {
		return nil
	}
	return c.Close()
}

func (bus *canBus) Start(ctx context.Context) error {
	bus.mu.Lock()
	c := bus.c
	bus.mu.Unlock()
	return c.Start(ctx, lemoncan.Callbacks{
		RPM: bus.intField(HasRPM, func(v *telemetry.Snapshot, n int) {
			v.RPM = uint(n)
		}),
		MAP: bus.intField(HasMAP, func(v *telemetry.Snapshot, n int) {
			v.MAP = n
		}),
		TPS: bus.intField(HasThrottle, func(v *telemetry.Snapshot, n int) {
			v.ThrottlePosition = n
		}),
		Advance: bus.intField(HasAdvance, func(v *telemetry.Snapshot, n int) {
			v.IgnitionAdvance = n
		}),
		FuelPressure: bus.intField(HasFuelPressure, func(v *telemetry.Snapshot, n int) {
			v.FuelPressure = n
		}),
		AFR: bus.intField(HasAFR, func(v *telemetry.Snapshot, n int) {
			v.AirFuelRatio = float64(n) / 10
		}),
		IAT: bus.intField(HasIntakeAirTemp, func(v *telemetry.Snapshot, n int) {
			v.IntakeAirTemp = n
		}),
		Coolant: bus.intField(HasCoolantTemp, func(v *telemetry.Snapshot, n int) {
			v.CoolantTemp = n
		}),
		Battery: bus.intField(HasBattery, func(v *telemetry.Snapshot, n int) {
			v.BatteryVoltage = float64(n) / 10
		}),
		Status: func(f telemetry.Flags) {
			bus.data.Values.Flags = f
			bus.data.Fields |= HasFlags
			bus.send()
		},
	})
}

func (bus *canBus) intField(f Field, set func(*telemetry.Snapshot, int)) lemoncan.IntResultFn {
	return func(n int) {
		set(&bus.data.Values, n)
		bus.data.Fields |= f
		bus.send()
	}
}

func (bus *canBus) send() {
	select {
	case bus.sendChan <- bus.data:
	default:
	}
}

package lemoncan

import (
	"context"
	"encoding/binary"

	"github.com/amrikarisma/mazduino-display-speeduino/telemetry"
	"github.com/brutella/can"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Broadcast frames sent by the ECU. Multi-byte values are little endian;
// temperatures and advance are signed.
const (
	frameRPM          uint32 = 0x100
	frameMAP                 = 0x101
	frameTPS                 = 0x102
	frameAdvance             = 0x103
	frameFuelPressure        = 0x104
	frameAFR                 = 0x105
	frameIAT                 = 0x106
	frameCoolant             = 0x107
	frameBattery             = 0x108
	frameStatus              = 0x109

	// frameRequest asks the ECU for a fresh broadcast of every frame.
	frameRequest uint32 = 0x7E0
)

type IntResultFn func(v int)

// Callbacks receive decoded values. AFR and Battery are in tenths.
type Callbacks struct {
	RPM          IntResultFn
	MAP          IntResultFn
	TPS          IntResultFn
	Advance      IntResultFn
	FuelPressure IntResultFn
	AFR          IntResultFn
	IAT          IntResultFn
	Coolant      IntResultFn
	Battery      IntResultFn
	Status       func(telemetry.Flags)
}

type CANBus interface {
	SubscribeFunc(can.HandlerFunc)
	ConnectAndPublish() error
	Disconnect() error
	Publish(can.Frame) error
}

var newBus = func(name string) (CANBus, error) {
	return can.NewBusForInterfaceWithName(name)
}

type Connection struct {
	bus CANBus
	cb  *Callbacks
}

func Connect(portName string) (*Connection, error) {
	bus, err := newBus(portName)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open can interface %s", portName)
	}

	c := &Connection{
		bus: bus,
	}
	return c, nil
}

func (c *Connection) Start(ctx context.Context, cb Callbacks) error {
	c.cb = &cb
	c.bus.SubscribeFunc(c.handleFrame)
	log.Info("CAN bus opened and subscribed")

	go func() {
		<-ctx.Done()
		log.WithField("err", ctx.Err()).Info("stopping can bus")
		if err := c.bus.Disconnect(); err != nil {
			log.WithField("err", err).Warn("unable to disconnect canbus after context")
		}
	}()

	return c.bus.ConnectAndPublish()
}

func (c *Connection) Close() error {
	if c.bus == nil {
		return errors.New("can bus not connected")
	}
	return c.bus.Disconnect()
}

// RequestData polls the ECU for a new set of frames.
func (c *Connection) RequestData() error {
	if c.bus == nil {
		return errors.New("can bus not connected")
	}
	return c.bus.Publish(can.Frame{
		ID:     frameRequest,
		Length: 1,
		Data:   [8]uint8{'A'},
	})
}

func (c *Connection) handleFrame(frame can.Frame) {
	log.WithField("canID", frame.ID).
		WithField("length", frame.Length).
		Debug("received canbus frame")

	if c.cb == nil {
		return
	}

	if frame.ID == frameStatus {
		if frame.Length != 1 {
			log.WithField("length", frame.Length).Warn("incorrect status frame size")
			return
		}
		if c.cb.Status != nil {
			c.cb.Status(statusFlags(frame.Data[0]))
		}
		return
	}

	var cb IntResultFn
	signed := false
	switch frame.ID {
	case frameRPM:
		cb = c.cb.RPM
	case frameMAP:
		cb = c.cb.MAP
	case frameTPS:
		cb = c.cb.TPS
	case frameAdvance:
		cb, signed = c.cb.Advance, true
	case frameFuelPressure:
		cb = c.cb.FuelPressure
	case frameAFR:
		cb = c.cb.AFR
	case frameIAT:
		cb, signed = c.cb.IAT, true
	case frameCoolant:
		cb, signed = c.cb.Coolant, true
	case frameBattery:
		cb = c.cb.Battery
	default:
		log.WithField("canID", frame.ID).Debug("ignoring canID")
		return
	}

	if cb == nil {
		log.WithField("canID", frame.ID).Debug("no callback registered")
		return
	}

	v, err := uint16Result(frame)
	if err != nil {
		log.WithField("err", err).Warn("unable to convert to uint16")
		return
	}
	if signed {
		v = int(int16(v))
	}
	cb(v)
}

func statusFlags(b byte) telemetry.Flags {
	bit := func(n uint) bool { return b&(1<<n) != 0 }
	return telemetry.Flags{
		Sync:             bit(0),
		Fan:              bit(1),
		AfterStartEnrich: bit(2),
		WarmUpEnrich:     bit(3),
		RevLimit:         bit(4),
		Launch:           bit(5),
		AirCon:           bit(6),
		DecelFuelCutoff:  bit(7),
	}
}

func uint16Result(frame can.Frame) (int, error) {
	if frame.Length != 2 {
		return 0, errors.Errorf("incorrect frame size for uint16: %v", frame.Length)
	}
	return int(binary.LittleEndian.Uint16(frame.Data[0:2])), nil
}

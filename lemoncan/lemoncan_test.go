package lemoncan

import (
	"context"
	"encoding/binary"
	"sync"
	"testing"

	"github.com/amrikarisma/mazduino-display-speeduino/telemetry"
	"github.com/brutella/can"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type busStub struct {
	disconnected bool
	subscribed   bool
	stopChan     chan struct{}
	startedChan  chan struct{}
	publishChan  chan *can.Frame
}

func (bus *busStub) SubscribeFunc(can.HandlerFunc) {
	bus.subscribed = true
}

func (bus *busStub) ConnectAndPublish() error {
	bus.startedChan <- struct{}{}
	<-bus.stopChan
	return nil
}

func (bus *busStub) Disconnect() error {
	bus.disconnected = true
	bus.stopChan <- struct{}{}
	return nil
}

func (bus *busStub) Publish(f can.Frame) error {
	bus.publishChan <- &f
	return nil
}

func TestConnect(t *testing.T) {
	origNewBus := newBus
	bus := &busStub{
		stopChan: make(chan struct{}, 1),
	}
	newBus = func(string) (CANBus, error) {
		return bus, nil
	}
	defer func() {
		newBus = origNewBus
	}()

	c, err := Connect("fakeport")
	assert.NotNil(t, c)
	assert.NoError(t, err)
	assert.IsType(t, &busStub{}, c.bus)

	assert.NoError(t, c.Close())
	assert.True(t, bus.disconnected)
}

func TestConnectError(t *testing.T) {
	origNewBus := newBus
	newBus = func(string) (CANBus, error) {
		return nil, errors.New("no such device")
	}
	defer func() {
		newBus = origNewBus
	}()

	c, err := Connect("can9")
	assert.Nil(t, c)
	assert.Error(t, err)
}

func TestStart(t *testing.T) {
	bus := &busStub{
		stopChan:    make(chan struct{}),
		startedChan: make(chan struct{}),
	}

	c := &Connection{
		bus: bus,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cb := Callbacks{}
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		assert.NoError(t, c.Start(ctx, cb))
		wg.Done()
	}()
	<-bus.startedChan
	assert.True(t, bus.subscribed)
	assert.NotNil(t, c.cb)
	cancel()
	wg.Wait()
}

func TestRequestData(t *testing.T) {
	bus := &busStub{
		publishChan: make(chan *can.Frame, 1),
	}

	c := &Connection{
		bus: bus,
	}

	assert.NoError(t, c.RequestData())
	f := <-bus.publishChan
	assert.Equal(t, frameRequest, f.ID)
	assert.Equal(t, uint8('A'), f.Data[0])

	assert.Error(t, (&Connection{}).RequestData())
}

func u16Frame(id uint32, v uint16) can.Frame {
	buf := [8]byte{}
	binary.LittleEndian.PutUint16(buf[0:2], v)
	return can.Frame{
		ID:     id,
		Length: 2,
		Data:   buf,
	}
}

func TestHandleFrame(t *testing.T) {
	data := struct {
		RPM     int
		MAP     int
		AFR     int
		Advance int
		Coolant int
		Flags   telemetry.Flags
	}{}

	c := &Connection{
		cb: &Callbacks{
			RPM: func(v int) {
				data.RPM = v
			},
			MAP: func(v int) {
				data.MAP = v
			},
			AFR: func(v int) {
				data.AFR = v
			},
			Advance: func(v int) {
				data.Advance = v
			},
			Coolant: func(v int) {
				data.Coolant = v
			},
			Status: func(f telemetry.Flags) {
				data.Flags = f
			},
		},
	}
	expectedData := data

	c.handleFrame(u16Frame(frameRPM, 3250))
	expectedData.RPM = 3250
	assert.Equal(t, expectedData, data)

	c.handleFrame(u16Frame(frameMAP, 101))
	expectedData.MAP = 101
	assert.Equal(t, expectedData, data)

	c.handleFrame(u16Frame(frameAFR, 147))
	expectedData.AFR = 147
	assert.Equal(t, expectedData, data)

	// signed values
	c.handleFrame(u16Frame(frameAdvance, uint16(0xFFFB)))
	expectedData.Advance = -5
	assert.Equal(t, expectedData, data)

	c.handleFrame(u16Frame(frameCoolant, uint16(0xFFF6)))
	expectedData.Coolant = -10
	assert.Equal(t, expectedData, data)

	c.handleFrame(can.Frame{
		ID:     frameStatus,
		Length: 1,
		Data:   [8]uint8{0x91},
	})
	expectedData.Flags = telemetry.Flags{Sync: true, RevLimit: true, DecelFuelCutoff: true}
	assert.Equal(t, expectedData, data)

	// send unknown CAN frame
	c.handleFrame(can.Frame{
		ID: 400,
	})
	// no change to data
	assert.Equal(t, expectedData, data)

	// send too short a frame
	c.handleFrame(can.Frame{
		ID: frameRPM,
	})
	// no change to data
	assert.Equal(t, expectedData, data)

	// no callback registered for TPS
	c.handleFrame(u16Frame(frameTPS, 50))
	assert.Equal(t, expectedData, data)
}

func TestHandleFrameBeforeStart(t *testing.T) {
	c := &Connection{}
	assert.NotPanics(t, func() {
		c.handleFrame(u16Frame(frameRPM, 1000))
	})
}

func TestUint16Result(t *testing.T) {
	_, err := uint16Result(can.Frame{})
	assert.Error(t, err)
	_, err = uint16Result(can.Frame{
		Length: 3,
	})
	assert.Error(t, err)

	buf := [8]byte{}
	binary.LittleEndian.PutUint16(buf[0:2], 300)
	n, err := uint16Result(can.Frame{
		Length: 2,
		Data:   buf,
	})
	assert.NoError(t, err)
	assert.Equal(t, 300, n)
}

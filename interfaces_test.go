package mazduino

import (
	"context"

	"github.com/amrikarisma/mazduino-display-speeduino/lemoncan"
	"github.com/amrikarisma/mazduino-display-speeduino/telemetry"
	"github.com/jd3nn1s/kw1281"
)

type sensorStub struct {
	startChan chan struct{}
	errChan   chan error
	fnChan    chan func()
}

type kw1281Stub struct {
	sensorStub
	callbacks kw1281.Callbacks
}

type canBusStub struct {
	sensorStub
	requestCount int
	requestErr   error
	callbacks    lemoncan.Callbacks
}

func createSensorStub() *sensorStub {
	ret := sensorStub{
		startChan: make(chan struct{}),
		errChan:   make(chan error),
		fnChan:    make(chan func()),
	}
	return &ret
}

func (s *sensorStub) Close() error {
	return nil
}

func (s *sensorStub) start(ctx context.Context) error {
	select {
	case s.startChan <- struct{}{}:
	default:
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-s.errChan:
			return err
		case fn := <-s.fnChan:
			fn()
		}
	}
}

func createECUStub() *kw1281Stub {
	return &kw1281Stub{
		sensorStub: *createSensorStub(),
	}
}

func (k *kw1281Stub) Start(ctx context.Context, callbacks kw1281.Callbacks) error {
	k.callbacks = callbacks
	return k.sensorStub.start(ctx)
}

func createCANBusStub() *canBusStub {
	return &canBusStub{
		sensorStub: *createSensorStub(),
	}
}

func (c *canBusStub) Start(ctx context.Context, callbacks lemoncan.Callbacks) error {
	c.callbacks = callbacks
	return c.sensorStub.start(ctx)
}

func (c *canBusStub) RequestData() error {
	c.requestCount++
	return c.requestErr
}

// sourceStub hands out its channel so tests can push samples directly.
type sourceStub struct {
	name       string
	out        chan<- Sample
	ready      chan struct{}
	requests   int
	requestErr error
}

func createSourceStub(name string) *sourceStub {
	return &sourceStub{
		name:  name,
		ready: make(chan struct{}),
	}
}

func (s *sourceStub) Name() string {
	return s.name
}

func (s *sourceStub) Run(ctx context.Context, out chan<- Sample) error {
	s.out = out
	close(s.ready)
	<-ctx.Done()
	return ctx.Err()
}

func (s *sourceStub) Request() error {
	s.requests++
	return s.requestErr
}

type forwarderStub struct {
	telemetry []telemetry.Snapshot
}

func (fwd *forwarderStub) Forward(s *telemetry.Snapshot) {
	fwd.telemetry = append(fwd.telemetry, *s)
}

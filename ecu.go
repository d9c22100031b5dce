package mazduino

import (
	"context"

	"github.com/jd3nn1s/kw1281"
	log "github.com/sirupsen/logrus"
)

// to allow testing
var ecuConnect = func(p string) (KW1281, error) {
	return kw1281.Connect(p)
}

// ecuSource reads measurement groups from a KW1281 diagnostic link. The
// link streams on its own, so Request does nothing.
type ecuSource struct {
	port string

	c        KW1281
	sendChan chan<- Sample
	data     Sample
}

func NewECUSource(port string) Source {
	return &ecuSource{port: port}
}

func (e *ecuSource) Name() string {
	return "ecu"
}

func (e *ecuSource) Request() error {
	return nil
}

func (e *ecuSource) Run(ctx context.Context, out chan<- Sample) error {
	e.sendChan = out
	return retry(ctx, e)
}

func (e *ecuSource) Open() error {
	c, err := ecuConnect(e.port)
	e.c = c
	return err
}

func (e *ecuSource) Close() error {
	if e.c == nil {
		return nil
	}
	return e.c.Close()
}

func (e *ecuSource) Start(ctx context.Context) error {
	return e.c.Start(ctx, kw1281.Callbacks{
		ECUDetails: func(details *kw1281.ECUDetails) {
			log.WithField("partNumber", details.PartNumber).Info("ecu connected")
			for _, line := range details.Details {
				log.Infof("ECU: %s", line)
			}
		},
		Measurement: func(group kw1281.MeasurementGroup, measurements []*kw1281.Measurement) {
			for _, m := range measurements {
				if m.MeasurementValue == nil {
					continue
				}
				e.measurement(m)
			}
			select {
			case e.sendChan <- e.data:
			default:
			}
		},
	})
}

func (e *ecuSource) measurement(m *kw1281.Measurement) {
	v := &e.data.Values
	switch m.Metric {
	case kw1281.MetricRPM:
		v.RPM = uint(toFloat(m.Value))
		e.data.Fields |= HasRPM
	case kw1281.MetricBatteryVoltage:
		v.BatteryVoltage = toFloat(m.Value)
		e.data.Fields |= HasBattery
	case kw1281.MetricThrottleAngle:
		v.ThrottlePosition = int(toFloat(m.Value))
		e.data.Fields |= HasThrottle
	case kw1281.MetricAirIntakeTemp:
		v.IntakeAirTemp = int(toFloat(m.Value))
		e.data.Fields |= HasIntakeAirTemp
	case kw1281.MetricCoolantTemp:
		v.CoolantTemp = int(toFloat(m.Value))
		e.data.Fields |= HasCoolantTemp
	}
}

func toFloat(val interface{}) float64 {
	switch v := val.(type) {
	case int:
		return float64(v)
	case float32:
		return float64(v)
	case float64:
		return v
	}
	return 0
}

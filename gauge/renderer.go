// Package gauge draws the instrument screen, redrawing only the regions
// whose values differ from what is currently shown.
package gauge

import (
	"time"

	"github.com/amrikarisma/mazduino-display-speeduino/display"
	"github.com/amrikarisma/mazduino-display-speeduino/settings"
	"github.com/amrikarisma/mazduino-display-speeduino/telemetry"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// LazyInterval is the minimum time between two passes over Lazy fields.
const LazyInterval = time.Second

// ModeSource reports the persisted display mode.
type ModeSource interface {
	DisplayMode() settings.DisplayMode
}

type Renderer struct {
	panel display.Panel
	modes ModeSource
	clock clockwork.Clock

	lastLazy time.Time
	// set by ForceField so the next Render runs the lazy pass
	lazyDue bool
}

func NewRenderer(panel display.Panel, modes ModeSource, clock clockwork.Clock) *Renderer {
	return &Renderer{
		panel:    panel,
		modes:    modes,
		clock:    clock,
		lastLazy: clock.Now(),
	}
}

// Render brings the screen up to date with frame.Current. A field is drawn
// when its value differs from frame.Previous, or unconditionally with its
// label when forceAll is set. frame.Previous is updated only for fields
// that were drawn successfully. Indicators are always drawn.
func (r *Renderer) Render(frame *telemetry.Frame, forceAll bool) error {
	var firstErr error
	keep := func(err error) {
		if err == nil {
			return
		}
		log.WithField("err", err).Warn("render failed")
		if firstErr == nil {
			firstErr = err
		}
	}

	if forceAll || frame.Current.RPM != frame.Previous.RPM {
		if err := r.drawRPM(frame.Current.RPM); err != nil {
			keep(err)
		} else {
			frame.Previous.RPM = frame.Current.RPM
		}
	}

	mode := r.modes.DisplayMode()
	for _, f := range Fields {
		if f.Cadence == Fast {
			keep(r.drawField(f, frame, mode, forceAll))
		}
	}

	now := r.clock.Now()
	if forceAll || r.lazyDue || now.Sub(r.lastLazy) >= LazyInterval {
		for _, f := range Fields {
			if f.Cadence == Lazy {
				keep(r.drawField(f, frame, mode, forceAll))
			}
		}
		r.lastLazy = now
		r.lazyDue = false
	}

	if err := r.drawIndicators(&frame.Current.Flags); err != nil {
		keep(err)
	} else {
		frame.Previous.Flags = frame.Current.Flags
	}
	return firstErr
}

// LastLazy is when the lazy fields were last compared.
func (r *Renderer) LastLazy() time.Time {
	return r.lastLazy
}

// ForceField erases a field's box and redraws its label and value even if
// the value is unchanged, e.g. after the field's meaning was switched.
func (r *Renderer) ForceField(frame *telemetry.Frame, id FieldID) error {
	f, ok := FieldByID(id)
	if !ok {
		return errors.Errorf("unknown field %d", id)
	}
	reg := f.Region
	if err := r.panel.FillRect(reg.X, reg.Y, reg.W, reg.H, display.Black); err != nil {
		return errors.Wrap(err, "unable to clear field")
	}
	r.lazyDue = true
	return r.drawField(f, frame, r.modes.DisplayMode(), true)
}

func (r *Renderer) drawField(f Field, frame *telemetry.Frame, mode settings.DisplayMode, force bool) error {
	if !force && f.Value(&frame.Current, mode) == f.Value(&frame.Previous, mode) {
		return nil
	}
	cur := f.shown(&frame.Current, mode)
	c := f.Color(cur)
	if force {
		lr := f.Region.label()
		s := display.NewSurface(lr.W, lr.H)
		s.Text(display.Small, lr.W/2, 5, f.Label(mode), c, display.AlignCenter)
		if err := r.panel.Blit(lr.X, lr.Y, s); err != nil {
			return errors.Wrapf(err, "unable to draw label of field %d", f.ID)
		}
	}
	vr := f.Region.value()
	s := display.NewSurface(vr.W, vr.H)
	s.Text(display.Large, vr.W/2, 2, FormatValue(cur, f.Decimal), c, display.AlignCenter)
	if err := r.panel.Blit(vr.X, vr.Y, s); err != nil {
		return errors.Wrapf(err, "unable to draw value of field %d", f.ID)
	}
	f.Commit(&frame.Previous, &frame.Current, mode)
	return nil
}

// Sweep animates the RPM area from `from` down to zero, as shown once at
// boot. The frame records zero as the rendered RPM afterwards.
func (r *Renderer) Sweep(frame *telemetry.Frame, from uint, step uint) error {
	if step == 0 {
		step = 250
	}
	v := from
	for {
		if err := r.drawRPM(v); err != nil {
			return err
		}
		if v < step {
			break
		}
		v -= step
	}
	if v != 0 {
		if err := r.drawRPM(0); err != nil {
			return err
		}
	}
	frame.Previous.RPM = 0
	return nil
}

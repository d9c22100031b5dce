package gauge

import (
	"strconv"

	"github.com/amrikarisma/mazduino-display-speeduino/display"
	"github.com/amrikarisma/mazduino-display-speeduino/telemetry"
	"github.com/pkg/errors"
)

// drawRPM redraws the bar graph, the caption and the number.
func (r *Renderer) drawRPM(rpm uint) error {
	bar := display.NewSurface(BarRegion.W, BarRegion.H)
	lit := BarBlocks(rpm)
	for i := 0; i < barBlocks; i++ {
		c := display.Black
		if i < lit {
			c = blockColor(i)
		}
		x := int16(i) * (barBlockWidth + barSpacing)
		top := barTops[i] - BarRegion.Y
		bar.FillRect(x, top, barBlockWidth, BarRegion.H-top, c)
	}
	if err := r.panel.Blit(BarRegion.X, BarRegion.Y, bar); err != nil {
		return errors.Wrap(err, "unable to draw rpm bar")
	}

	caption := display.NewSurface(RPMLabelRegion.W, RPMLabelRegion.H)
	caption.Text(display.Small, RPMLabelRegion.W/2, 2, "RPM", display.White, display.AlignCenter)
	if err := r.panel.Blit(RPMLabelRegion.X, RPMLabelRegion.Y, caption); err != nil {
		return errors.Wrap(err, "unable to draw rpm caption")
	}

	shown := rpm
	if shown > MaxRPMShown {
		shown = MaxRPMShown
	}
	num := display.NewSurface(RPMValueRegion.W, RPMValueRegion.H)
	num.Text(display.Large, RPMValueRegion.W, 5, strconv.FormatUint(uint64(shown), 10), display.White, display.AlignRight)
	if err := r.panel.Blit(RPMValueRegion.X, RPMValueRegion.Y, num); err != nil {
		return errors.Wrap(err, "unable to draw rpm value")
	}
	return nil
}

func (r *Renderer) drawIndicators(flags *telemetry.Flags) error {
	for i, ind := range indicators {
		c := display.White
		if ind.value(flags) {
			c = ind.active
		}
		reg := IndicatorRegion(i)
		s := display.NewSurface(reg.W, reg.H)
		s.StrokeRoundRect(0, 0, reg.W, reg.H, indicatorRadius, c)
		s.Text(display.Tiny, reg.W/2, (reg.H-display.Tiny.Ascent)/2, ind.label, c, display.AlignCenter)
		if err := r.panel.Blit(reg.X, reg.Y, s); err != nil {
			return errors.Wrapf(err, "unable to draw indicator %s", ind.label)
		}
	}
	return nil
}

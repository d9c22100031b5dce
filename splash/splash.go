// Package splash maps each startup image identity to its display name and
// its draw routine.
package splash

import (
	"image/color"

	"github.com/amrikarisma/mazduino-display-speeduino/display"
	"github.com/amrikarisma/mazduino-display-speeduino/settings"
	"github.com/pkg/errors"
)

const Unknown = "Unknown"

type DrawFunc func(p display.Panel, fg, bg color.RGBA) error

type entry struct {
	name string
	draw DrawFunc
}

var registry = [settings.SplashCount]entry{
	settings.SplashZetTech:   {name: "ZetTech ECU", draw: wordmark("ZETTECH", "ENGINE MANAGEMENT")},
	settings.SplashMazduino:  {name: "Mazduino ECU", draw: wordmark("MAZDUINO", "OPEN SOURCE ECU")},
	settings.SplashSpeeduino: {name: "Speeduino ECU", draw: wordmark("SPEEDUINO", "OPEN SOURCE ECU")},
}

func Name(id settings.SplashID) string {
	if !id.Valid() {
		return Unknown
	}
	return registry[id].name
}

// Draw renders the identity over the whole panel. Unknown identities draw
// nothing.
func Draw(id settings.SplashID, p display.Panel, fg, bg color.RGBA) error {
	if !id.Valid() {
		return nil
	}
	return registry[id].draw(p, fg, bg)
}

// wordmark stands in for a logo bitmap: a framed title with a subtitle.
func wordmark(title, subtitle string) DrawFunc {
	return func(p display.Panel, fg, bg color.RGBA) error {
		w, h := p.Size()
		if err := p.FillRect(0, 0, w, h, bg); err != nil {
			return errors.Wrap(err, "unable to clear splash background")
		}
		const boxH = 110
		boxW := w - 40
		s := display.NewSurface(boxW, boxH)
		s.Fill(bg)
		s.StrokeRoundRect(0, 0, boxW, boxH, 12, fg)
		s.StrokeRoundRect(3, 3, boxW-6, boxH-6, 10, fg)
		s.Text(display.Large, boxW/2, 18, title, fg, display.AlignCenter)
		s.Text(display.Small, boxW/2, 72, subtitle, fg, display.AlignCenter)
		return p.Blit(20, (h-boxH)/2, s)
	}
}

// Selector ties the registry to the persisted selection.
type Selector struct {
	store *settings.Store
}

func NewSelector(store *settings.Store) *Selector {
	return &Selector{store: store}
}

func (s *Selector) Current() settings.SplashID {
	return s.store.SplashSelection()
}

func (s *Selector) CurrentName() string {
	return Name(s.Current())
}

// Next advances the persisted selection and returns the new identity.
func (s *Selector) Next() (settings.SplashID, error) {
	return s.store.CycleSplashSelection()
}

func (s *Selector) DrawCurrent(p display.Panel, fg, bg color.RGBA) error {
	return Draw(s.Current(), p, fg, bg)
}

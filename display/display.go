// Package display defines the panel the gauges are drawn on and the
// off-screen surfaces used to composite a region before it is sent.
package display

import (
	"image/color"
)

// Panel is the physical screen. Implementations own the transport.
type Panel interface {
	Size() (w, h int16)
	FillRect(x, y, w, h int16, c color.RGBA) error
	// Blit copies a whole surface with its top-left corner at x, y.
	Blit(x, y int16, s *Surface) error
}

var (
	Black  = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}
	White  = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	Red    = color.RGBA{R: 0xff, G: 0x00, B: 0x00, A: 0xff}
	Green  = color.RGBA{R: 0x00, G: 0xff, B: 0x00, A: 0xff}
	Yellow = color.RGBA{R: 0xff, G: 0xff, B: 0x00, A: 0xff}
	Orange = color.RGBA{R: 0xff, G: 0xb4, B: 0x00, A: 0xff}
	Cyan   = color.RGBA{R: 0x00, G: 0xff, B: 0xff, A: 0xff}
)

// RGB565 packs c into the panel's native 16 bit format.
func RGB565(c color.RGBA) uint16 {
	return uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
}

// RGBA expands a 16 bit pixel, replicating the high bits into the low ones.
func RGBA(p uint16) color.RGBA {
	r := uint8(p>>11) & 0x1f
	g := uint8(p>>5) & 0x3f
	b := uint8(p) & 0x1f
	return color.RGBA{
		R: r<<3 | r>>2,
		G: g<<2 | g>>4,
		B: b<<3 | b>>2,
		A: 0xff,
	}
}

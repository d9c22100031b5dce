package display

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
)

var _ drivers.Displayer = (*Surface)(nil)

// Surface is an off-screen RGB565 buffer for one screen region. Values are
// laid out on a surface and the finished surface is blitted in one go, so
// the panel never shows a half drawn region.
type Surface struct {
	w, h int16
	pix  []uint16
}

func NewSurface(w, h int16) *Surface {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Surface{w: w, h: h, pix: make([]uint16, int(w)*int(h))}
}

func (s *Surface) Size() (x, y int16) {
	return s.w, s.h
}

func (s *Surface) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return
	}
	s.pix[int(y)*int(s.w)+int(x)] = RGB565(c)
}

// Display is a no-op; surfaces are shown with Panel.Blit.
func (s *Surface) Display() error {
	return nil
}

// Pix exposes the raw RGB565 pixels in row-major order.
func (s *Surface) Pix() []uint16 {
	return s.pix
}

func (s *Surface) At(x, y int16) color.RGBA {
	if x < 0 || y < 0 || x >= s.w || y >= s.h {
		return Black
	}
	return RGBA(s.pix[int(y)*int(s.w)+int(x)])
}

func (s *Surface) Fill(c color.RGBA) {
	p := RGB565(c)
	for i := range s.pix {
		s.pix[i] = p
	}
}

func (s *Surface) FillRect(x, y, w, h int16, c color.RGBA) {
	x0, y0 := clamp(x, 0, s.w), clamp(y, 0, s.h)
	x1, y1 := clamp(x+w, 0, s.w), clamp(y+h, 0, s.h)
	p := RGB565(c)
	for py := y0; py < y1; py++ {
		row := int(py) * int(s.w)
		for px := x0; px < x1; px++ {
			s.pix[row+int(px)] = p
		}
	}
}

// StrokeRoundRect draws a one pixel outline with corners of radius r.
func (s *Surface) StrokeRoundRect(x, y, w, h, r int16, c color.RGBA) {
	if w <= 0 || h <= 0 {
		return
	}
	if r > w/2 {
		r = w / 2
	}
	if r > h/2 {
		r = h / 2
	}
	for px := x + r; px < x+w-r; px++ {
		s.SetPixel(px, y, c)
		s.SetPixel(px, y+h-1, c)
	}
	for py := y + r; py < y+h-r; py++ {
		s.SetPixel(x, py, c)
		s.SetPixel(x+w-1, py, c)
	}
	if r == 0 {
		return
	}
	// midpoint circle, one octant mirrored into the four corners
	cx0, cy0 := x+r, y+r
	cx1, cy1 := x+w-1-r, y+h-1-r
	dx, dy := r, int16(0)
	err := 1 - r
	for dx >= dy {
		for _, p := range [][2]int16{
			{cx1 + dx, cy1 + dy}, {cx1 + dy, cy1 + dx},
			{cx0 - dx, cy1 + dy}, {cx0 - dy, cy1 + dx},
			{cx0 - dx, cy0 - dy}, {cx0 - dy, cy0 - dx},
			{cx1 + dx, cy0 - dy}, {cx1 + dy, cy0 - dx},
		} {
			s.SetPixel(p[0], p[1], c)
		}
		dy++
		if err < 0 {
			err += 2*dy + 1
		} else {
			dx--
			err += 2*(dy-dx) + 1
		}
	}
}

// Text draws s with its top edge at y. x is the left edge, center or right
// edge of the text depending on align.
func (s *Surface) Text(f Font, x, y int16, str string, c color.RGBA, align Align) {
	switch align {
	case AlignCenter:
		x -= f.Width(str) / 2
	case AlignRight:
		x -= f.Width(str)
	}
	tinyfont.WriteLine(s, f.Face, x, y+f.Ascent, str, c)
}

func clamp(v, lo, hi int16) int16 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package display

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/pkg/errors"
)

// OpKind tells fills and blits apart in a Memory panel's log.
type OpKind uint8

const (
	OpFill OpKind = iota
	OpBlit
)

type Op struct {
	Kind OpKind
	Rect image.Rectangle
}

// Memory is a panel backed by an RGBA image. It records every operation so
// callers can see which regions were touched.
type Memory struct {
	img *image.RGBA
	ops []Op
}

func NewMemory(w, h int) *Memory {
	return &Memory{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (m *Memory) Size() (w, h int16) {
	b := m.img.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

func (m *Memory) FillRect(x, y, w, h int16, c color.RGBA) error {
	r := image.Rect(int(x), int(y), int(x)+int(w), int(y)+int(h))
	draw.Draw(m.img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
	m.ops = append(m.ops, Op{Kind: OpFill, Rect: r})
	return nil
}

func (m *Memory) Blit(x, y int16, s *Surface) error {
	if s == nil {
		return errors.New("nil surface")
	}
	w, h := s.Size()
	bounds := m.img.Bounds()
	for sy := int16(0); sy < h; sy++ {
		for sx := int16(0); sx < w; sx++ {
			p := image.Pt(int(x+sx), int(y+sy))
			if !p.In(bounds) {
				continue
			}
			m.img.SetRGBA(p.X, p.Y, s.At(sx, sy))
		}
	}
	m.ops = append(m.ops, Op{Kind: OpBlit, Rect: image.Rect(int(x), int(y), int(x+w), int(y+h))})
	return nil
}

func (m *Memory) Image() *image.RGBA {
	return m.img
}

func (m *Memory) Ops() []Op {
	return m.ops
}

// ResetOps clears the operation log without touching the image.
func (m *Memory) ResetOps() {
	m.ops = nil
}

// Touched reports whether any logged operation overlaps r.
func (m *Memory) Touched(r image.Rectangle) bool {
	for _, op := range m.ops {
		if op.Rect.Overlaps(r) {
			return true
		}
	}
	return false
}

func (m *Memory) WritePNG(w io.Writer) error {
	return errors.Wrap(png.Encode(w, m.img), "unable to encode panel snapshot")
}

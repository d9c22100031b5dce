// Package ili9488 drives an ILI9488 480x320 TFT over a 4-wire SPI bus.
// The controller only accepts 18 bit pixels over SPI, so RGB565 surfaces are
// expanded on the way out.
package ili9488

import (
	"image/color"
	"time"

	"github.com/amrikarisma/mazduino-display-speeduino/display"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const (
	cmdSoftReset   = 0x01
	cmdSleepOut    = 0x11
	cmdDisplayOn   = 0x29
	cmdColumnAddr  = 0x2A
	cmdPageAddr    = 0x2B
	cmdMemoryWrite = 0x2C
	cmdMemAccess   = 0x36
	cmdPixelFormat = 0x3A

	pixelFormat18 = 0x66

	// MADCTL bits
	madMY  = 0x80
	madMX  = 0x40
	madMV  = 0x20
	madBGR = 0x08

	nativeWidth  = 320
	nativeHeight = 480

	// spidev rejects single transfers above this size
	maxChunk = 4096
)

type Config struct {
	Port     string
	DCPin    string
	ResetPin string
	// Rotation in quarter turns, 0-3.
	Rotation  int
	Frequency physic.Frequency
}

type Panel struct {
	conn  spi.Conn
	port  spi.PortCloser
	dc    gpio.PinOut
	reset gpio.PinOut

	width, height int16
}

var _ display.Panel = (*Panel)(nil)

func Open(cfg Config) (*Panel, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "periph host init failed")
	}
	port, err := spireg.Open(cfg.Port)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open spi port %q", cfg.Port)
	}
	freq := cfg.Frequency
	if freq == 0 {
		freq = 40 * physic.MegaHertz
	}
	conn, err := port.Connect(freq, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, errors.Wrap(err, "unable to connect spi")
	}
	dc := gpioreg.ByName(cfg.DCPin)
	if dc == nil {
		port.Close()
		return nil, errors.Errorf("gpio %s not found", cfg.DCPin)
	}
	p := &Panel{conn: conn, port: port, dc: dc}
	if cfg.ResetPin != "" {
		if p.reset = gpioreg.ByName(cfg.ResetPin); p.reset == nil {
			port.Close()
			return nil, errors.Errorf("gpio %s not found", cfg.ResetPin)
		}
	}
	if err := p.init(cfg.Rotation); err != nil {
		port.Close()
		return nil, err
	}
	log.WithField("port", cfg.Port).
		WithField("width", p.width).
		WithField("height", p.height).
		Info("ili9488 panel ready")
	return p, nil
}

func (p *Panel) init(rotation int) error {
	if p.reset != nil {
		for _, l := range []gpio.Level{gpio.High, gpio.Low, gpio.High} {
			if err := p.reset.Out(l); err != nil {
				return errors.Wrap(err, "unable to toggle reset")
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
	if err := p.command(cmdSoftReset); err != nil {
		return err
	}
	time.Sleep(120 * time.Millisecond)
	if err := p.command(cmdSleepOut); err != nil {
		return err
	}
	time.Sleep(120 * time.Millisecond)
	if err := p.command(cmdPixelFormat, pixelFormat18); err != nil {
		return err
	}
	mad, w, h := madctl(rotation)
	if err := p.command(cmdMemAccess, mad); err != nil {
		return err
	}
	p.width, p.height = w, h
	return p.command(cmdDisplayOn)
}

// Dimensions is the panel size in pixels for a rotation.
func Dimensions(rotation int) (w, h int16) {
	_, w, h = madctl(rotation)
	return w, h
}

func madctl(rotation int) (byte, int16, int16) {
	switch rotation & 3 {
	case 1:
		return madMV | madBGR, nativeHeight, nativeWidth
	case 2:
		return madMY | madBGR, nativeWidth, nativeHeight
	case 3:
		return madMX | madMY | madMV | madBGR, nativeHeight, nativeWidth
	}
	return madMX | madBGR, nativeWidth, nativeHeight
}

func (p *Panel) command(cmd byte, data ...byte) error {
	if err := p.dc.Out(gpio.Low); err != nil {
		return errors.Wrap(err, "unable to select command mode")
	}
	if err := p.conn.Tx([]byte{cmd}, nil); err != nil {
		return errors.Wrapf(err, "unable to send command 0x%02x", cmd)
	}
	if len(data) == 0 {
		return nil
	}
	return p.data(data)
}

func (p *Panel) data(b []byte) error {
	if err := p.dc.Out(gpio.High); err != nil {
		return errors.Wrap(err, "unable to select data mode")
	}
	for len(b) > 0 {
		n := len(b)
		if n > maxChunk {
			n = maxChunk
		}
		if err := p.conn.Tx(b[:n], nil); err != nil {
			return errors.Wrap(err, "unable to send pixel data")
		}
		b = b[n:]
	}
	return nil
}

func (p *Panel) window(x, y, w, h int16) error {
	x1, y1 := x+w-1, y+h-1
	if err := p.command(cmdColumnAddr, byte(x>>8), byte(x), byte(x1>>8), byte(x1)); err != nil {
		return err
	}
	if err := p.command(cmdPageAddr, byte(y>>8), byte(y), byte(y1>>8), byte(y1)); err != nil {
		return err
	}
	return p.command(cmdMemoryWrite)
}

func (p *Panel) Size() (w, h int16) {
	return p.width, p.height
}

func (p *Panel) FillRect(x, y, w, h int16, c color.RGBA) error {
	x, y, w, h = p.clip(x, y, w, h)
	if w <= 0 || h <= 0 {
		return nil
	}
	if err := p.window(x, y, w, h); err != nil {
		return err
	}
	row := make([]byte, int(w)*3)
	for i := 0; i < len(row); i += 3 {
		row[i], row[i+1], row[i+2] = c.R, c.G, c.B
	}
	buf := make([]byte, 0, len(row)*int(h))
	for i := int16(0); i < h; i++ {
		buf = append(buf, row...)
	}
	return p.data(buf)
}

// Blit expects the surface to lie fully on screen; partially visible
// surfaces are rejected rather than cropped.
func (p *Panel) Blit(x, y int16, s *display.Surface) error {
	w, h := s.Size()
	if x < 0 || y < 0 || x+w > p.width || y+h > p.height {
		return errors.Errorf("surface %dx%d at %d,%d is off screen", w, h, x, y)
	}
	if err := p.window(x, y, w, h); err != nil {
		return err
	}
	pix := s.Pix()
	buf := make([]byte, 0, len(pix)*3)
	for _, v := range pix {
		c := display.RGBA(v)
		buf = append(buf, c.R, c.G, c.B)
	}
	return p.data(buf)
}

func (p *Panel) clip(x, y, w, h int16) (int16, int16, int16, int16) {
	if x < 0 {
		w += x
		x = 0
	}
	if y < 0 {
		h += y
		y = 0
	}
	if x+w > p.width {
		w = p.width - x
	}
	if y+h > p.height {
		h = p.height - y
	}
	return x, y, w, h
}

func (p *Panel) Close() error {
	return p.port.Close()
}

package display

import (
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freesans"
	"tinygo.org/x/tinyfont/proggy"
)

// Font couples a tinyfont face with the distance from the top of a text
// line to its baseline, so text can be anchored by its top edge.
type Font struct {
	Face   tinyfont.Fonter
	Ascent int16
}

var (
	Tiny  = Font{Face: &proggy.TinySZ8pt7b, Ascent: 10}
	Small = Font{Face: &freesans.Bold9pt7b, Ascent: 14}
	Large = Font{Face: &freesans.Bold24pt7b, Ascent: 35}
)

// Width is the advance width of s in pixels.
func (f Font) Width(s string) int16 {
	_, outbox := tinyfont.LineWidth(f.Face, s)
	return int16(outbox)
}

type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

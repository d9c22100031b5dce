package gauge

import (
	"image"
)

// Region is a fixed screen rectangle. Sizes are chosen for the widest value
// a field can show, so a redraw never has to clear a wider previous value.
type Region struct {
	X, Y, W, H int16
}

func (r Region) Rect() image.Rectangle {
	return image.Rect(int(r.X), int(r.Y), int(r.X+r.W), int(r.Y+r.H))
}

// Data box geometry: a label strip on top of a value strip. Four Large
// digits are 104px wide.
const (
	boxWidth    = 110
	boxHeight   = 80
	labelHeight = 25
	valueHeight = 40
)

func box(x, y int16) Region {
	return Region{X: x, Y: y, W: boxWidth, H: boxHeight}
}

func (r Region) label() Region {
	return Region{X: r.X, Y: r.Y, W: r.W, H: labelHeight}
}

func (r Region) value() Region {
	return Region{X: r.X, Y: r.Y + labelHeight, W: r.W, H: valueHeight}
}

// RPM area.
var (
	// stepped top edge of the bar graph, one entry per block
	barTops = [barBlocks]int16{
		70, 66, 62, 58, 54, 51, 48, 45, 43, 42,
		41, 40, 40, 40, 40, 40, 40, 40, 40, 40,
		40, 40, 40, 40, 40, 40, 40, 40, 40, 40,
	}

	BarRegion      = Region{X: 120, Y: 40, W: barBlocks * (barBlockWidth + barSpacing), H: 70}
	RPMLabelRegion = Region{X: 210, Y: 114, W: 60, H: 20}
	RPMValueRegion = Region{X: 180, Y: 136, W: 120, H: 50}
)

const (
	barBlocks     = 30
	barBlockWidth = 6
	barSpacing    = 2
	// RPM at which every block is lit
	BarFullScale = 6000
	// largest number the RPM value region holds
	MaxRPMShown = 9999
)

// Indicator row.
const (
	indicatorX       = 10
	indicatorY       = 285
	indicatorPitch   = 60
	indicatorWidth   = 50
	indicatorHeight  = 30
	indicatorRadius  = 5
	indicatorsPerRow = 8
)

func IndicatorRegion(i int) Region {
	return Region{
		X: indicatorX + int16(i)*indicatorPitch,
		Y: indicatorY,
		W: indicatorWidth,
		H: indicatorHeight,
	}
}

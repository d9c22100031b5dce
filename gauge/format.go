package gauge

import (
	"image/color"
	"math"
	"strconv"

	"github.com/amrikarisma/mazduino-display-speeduino/display"
)

// FormatValue renders a fixed-point value. With decimal > 0 the integer
// carries one implied decimal digit and is shown divided by ten.
func FormatValue(v int, decimal int) string {
	if decimal <= 0 {
		return strconv.Itoa(v)
	}
	return strconv.FormatFloat(float64(v)/10, 'f', decimal, 64)
}

// tenths converts a physical value to the fixed-point form used on screen.
func tenths(v float64) int {
	return int(math.Round(v * 10))
}

// Color thresholds, in the fixed-point units of each field.
const (
	afrRich     = 130
	afrLean     = 147
	coolantHot  = 95
	batteryLow  = 115
	batteryHigh = 145
)

func AFRColor(v int) color.RGBA {
	switch {
	case v < afrRich:
		return display.Orange
	case v > afrLean:
		return display.Red
	}
	return display.Green
}

func CoolantColor(v int) color.RGBA {
	if v > coolantHot {
		return display.Red
	}
	return display.White
}

func BatteryColor(v int) color.RGBA {
	if v < batteryLow || v > batteryHigh {
		return display.Orange
	}
	return display.Green
}

func constColor(c color.RGBA) func(int) color.RGBA {
	return func(int) color.RGBA { return c }
}

// BarBlocks is the number of lit blocks for rpm.
func BarBlocks(rpm uint) int {
	n := int(rpm * barBlocks / BarFullScale)
	if n > barBlocks {
		return barBlocks
	}
	return n
}

func blockColor(i int) color.RGBA {
	switch {
	case i < barBlocks*6/10:
		return display.Green
	case i < barBlocks*8/10:
		return display.Yellow
	}
	return display.Red
}

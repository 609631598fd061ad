package cli

import (
	"fmt"
	imgcolor "image/color"
	"io"

	"github.com/boombuler/barcode"
	"github.com/fatih/color"
)

var (
	qrDark  = color.New(color.BgBlack)
	qrLight = color.New(color.BgWhite)
)

// quietZone is the light border around the matrix; scanners need it to
// lock on.
const quietZone = 1

// renderQR prints the matrix as background-colored double-width cells so
// modules come out roughly square in a terminal.
func renderQR(w io.Writer, code barcode.Barcode) {
	bounds := code.Bounds()

	for y := bounds.Min.Y - quietZone; y < bounds.Max.Y+quietZone; y++ {
		for x := bounds.Min.X - quietZone; x < bounds.Max.X+quietZone; x++ {
			cell := qrLight
			if x >= bounds.Min.X && x < bounds.Max.X &&
				y >= bounds.Min.Y && y < bounds.Max.Y && isDark(code.At(x, y)) {
				cell = qrDark
			}
			cell.Fprint(w, "  ")
		}
		fmt.Fprintln(w)
	}
}

func isDark(c imgcolor.Color) bool {
	gray := imgcolor.GrayModel.Convert(c).(imgcolor.Gray)
	return gray.Y < 128
}

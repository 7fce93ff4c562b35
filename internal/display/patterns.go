package display

import "github.com/fkcurrie/omega-matrix-golang/pkg/shiftmatrix"

// Static always shows f
func Static(f shiftmatrix.Frame) Source {
	return SourceFunc(func(int) shiftmatrix.Frame { return f })
}

// Fill lights every pixel, or none
func Fill(on bool) Source {
	var f shiftmatrix.Frame
	f.Fill(on)
	return Static(f)
}

// Checkerboard draws cell×cell squares that invert every eight ticks
func Checkerboard(cell int) Source {
	if cell <= 0 {
		cell = 1
	}
	return SourceFunc(func(tick int) shiftmatrix.Frame {
		var f shiftmatrix.Frame
		for y := 0; y < shiftmatrix.Height; y++ {
			for x := 0; x < shiftmatrix.Width; x++ {
				f.Set(x, y, (x/cell+y/cell+tick/8)%2 == 0)
			}
		}
		return f
	})
}

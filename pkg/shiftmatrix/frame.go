package shiftmatrix

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Panel geometry. The panel is Width×Height pixels, shifted out as Halves
// blocks of Rows×Columns cells each.
const (
	Halves    = 2
	Rows      = 16
	Columns   = 8
	CellCount = Halves * Rows * Columns

	Width  = Halves * Columns
	Height = Rows
)

// ErrFrameSize is returned when raw frame data is not exactly CellCount bytes.
var ErrFrameSize = errors.New("shiftmatrix: frame must be 256 cells")

// Frame is one full snapshot of the panel, one byte per cell. A zero cell
// is off, anything else is on. Cells are stored row-major over the full
// panel width, see Index.
type Frame [CellCount]byte

// Index maps a (half, row, column) scan position to its cell. Half 0 is the
// left eight columns of the panel, half 1 the right eight.
func Index(half, row, col int) int {
	return row*Width + half*Columns + col
}

// FrameFromBytes copies raw cell data into a Frame.
func FrameFromBytes(b []byte) (Frame, error) {
	var f Frame
	if len(b) != CellCount {
		return f, fmt.Errorf("%w: got %d", ErrFrameSize, len(b))
	}
	copy(f[:], b)
	return f, nil
}

// FrameFromImage scales img to the panel and turns on every pixel whose
// luminance is at least half scale.
func FrameFromImage(img image.Image) Frame {
	dst := image.NewGray(image.Rect(0, 0, Width, Height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	var f Frame
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			f.Set(x, y, dst.GrayAt(x, y).Y >= 0x80)
		}
	}
	return f
}

// At reports whether the pixel at x, y is on. Out of range pixels are off.
func (f *Frame) At(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	return f[y*Width+x] != 0
}

// Set turns the pixel at x, y on or off. Out of range pixels are ignored.
func (f *Frame) Set(x, y int, on bool) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}
	var v byte
	if on {
		v = 1
	}
	f[y*Width+x] = v
}

// Fill sets every cell.
func (f *Frame) Fill(on bool) {
	var v byte
	if on {
		v = 1
	}
	for i := range f {
		f[i] = v
	}
}

// Image renders the frame as a grayscale image, on pixels white.
func (f *Frame) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, Width, Height))
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if f.At(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0xff})
			}
		}
	}
	return img
}

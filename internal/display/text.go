package display

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/fkcurrie/omega-matrix-golang/pkg/shiftmatrix"
)

// ScrollText scrolls text from right to left, one pixel per tick, wrapping
// once it has fully left the panel
func ScrollText(text string) Source {
	face := basicfont.Face7x13
	textWidth := font.MeasureString(face, text).Ceil()
	// vertically centred baseline
	metrics := face.Metrics()
	height := metrics.Height.Ceil()
	baseline := (shiftmatrix.Height-height)/2 + metrics.Ascent.Ceil()

	return SourceFunc(func(tick int) shiftmatrix.Frame {
		img := image.NewGray(image.Rect(0, 0, shiftmatrix.Width, shiftmatrix.Height))
		d := font.Drawer{
			Dst:  img,
			Src:  image.White,
			Face: face,
			Dot:  fixed.P(shiftmatrix.Width-tick%(textWidth+shiftmatrix.Width), baseline),
		}
		d.DrawString(text)
		return shiftmatrix.FrameFromImage(img)
	})
}

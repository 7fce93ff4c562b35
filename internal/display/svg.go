package display

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/fkcurrie/omega-matrix-golang/pkg/shiftmatrix"
)

// SVGFrame rasterises an SVG document to the panel size. Pixels covered by
// at least half opacity are lit, whatever their colour.
func SVGFrame(r io.Reader) (shiftmatrix.Frame, error) {
	icon, err := oksvg.ReadIconStream(r)
	if err != nil {
		return shiftmatrix.Frame{}, fmt.Errorf("failed to parse svg: %w", err)
	}

	w, h := shiftmatrix.Width, shiftmatrix.Height
	icon.SetTarget(0, 0, float64(w), float64(h))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)
	icon.Draw(raster, 1.0)

	var f shiftmatrix.Frame
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.Set(x, y, img.RGBAAt(x, y).A >= 0x80)
		}
	}
	return f, nil
}

// LoadSVG reads an SVG file into a static source
func LoadSVG(path string) (Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	f, err := SVGFrame(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return Static(f), nil
}

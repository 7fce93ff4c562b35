package display

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fkcurrie/omega-matrix-golang/pkg/shiftmatrix"
)

type recorder struct {
	mu     sync.Mutex
	frames []shiftmatrix.Frame
}

func (r *recorder) Render(f *shiftmatrix.Frame) {
	r.mu.Lock()
	r.frames = append(r.frames, *f)
	r.mu.Unlock()
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func lit(f shiftmatrix.Frame) int {
	n := 0
	for _, c := range f {
		if c != 0 {
			n++
		}
	}
	return n
}

func TestPatterns(t *testing.T) {
	tests := []struct {
		name    string
		source  Source
		tick    int
		wantLit int
	}{
		{name: "fill on", source: Fill(true), wantLit: shiftmatrix.CellCount},
		{name: "fill off", source: Fill(false), wantLit: 0},
		{name: "checkerboard", source: Checkerboard(4), wantLit: shiftmatrix.CellCount / 2},
		{name: "checkerboard inverted", source: Checkerboard(4), tick: 8, wantLit: shiftmatrix.CellCount / 2},
		{name: "checkerboard bad cell", source: Checkerboard(0), wantLit: shiftmatrix.CellCount / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := lit(tt.source.Frame(tt.tick)); got != tt.wantLit {
				t.Errorf("lit = %d, want %d", got, tt.wantLit)
			}
		})
	}

	a, b := Checkerboard(4).Frame(0), Checkerboard(4).Frame(8)
	if a.At(0, 0) == b.At(0, 0) {
		t.Error("checkerboard did not invert after eight ticks")
	}
}

func TestScrollText(t *testing.T) {
	src := ScrollText("I")

	if got := lit(src.Frame(0)); got != 0 {
		t.Errorf("tick 0 lit = %d, want text off panel", got)
	}

	f := src.Frame(shiftmatrix.Width)
	if lit(f) == 0 {
		t.Fatal("text not drawn when scrolled to the left edge")
	}
	for y := 0; y < shiftmatrix.Height; y++ {
		for x := 7; x < shiftmatrix.Width; x++ {
			if f.At(x, y) {
				t.Fatalf("pixel (%d, %d) lit outside the glyph", x, y)
			}
		}
	}
}

func TestSVGFrame(t *testing.T) {
	doc := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 16 16" width="16" height="16">
  <rect x="0" y="0" width="8" height="16" fill="#000"/>
</svg>`

	f, err := SVGFrame(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("SVGFrame() error = %v", err)
	}
	for y := 1; y < shiftmatrix.Height-1; y++ {
		if !f.At(2, y) {
			t.Errorf("pixel (2, %d) inside the rect is off", y)
		}
		if f.At(12, y) {
			t.Errorf("pixel (12, %d) outside the rect is on", y)
		}
	}

	if _, err := SVGFrame(strings.NewReader(`<svg xmlns="http://www.w3.org/2000/svg"><rect`)); err == nil {
		t.Error("SVGFrame() on garbage did not return error")
	}
	if _, err := LoadSVG("does-not-exist.svg"); err == nil {
		t.Error("LoadSVG() on missing file did not return error")
	}
}

func TestPlayerPlaylist(t *testing.T) {
	rec := &recorder{}
	p := NewPlayer(rec, time.Hour, nil, Fill(true), Fill(false))

	p.Step()
	p.Next()
	p.Step()
	p.Prev()
	p.Prev()
	if p.Current() != 1 {
		t.Errorf("Current() = %d after wrapping back, want 1", p.Current())
	}

	if len(rec.frames) != 2 {
		t.Fatalf("rendered %d frames, want 2", len(rec.frames))
	}
	if lit(rec.frames[0]) != shiftmatrix.CellCount || lit(rec.frames[1]) != 0 {
		t.Error("frames do not follow the playlist")
	}

	empty := NewPlayer(rec, time.Hour, nil)
	empty.Step()
	empty.Next()
	if len(rec.frames) != 2 {
		t.Error("empty player rendered a frame")
	}
}

func TestPlayerStart(t *testing.T) {
	rec := &recorder{}
	p := NewPlayer(rec, time.Millisecond, nil, Checkerboard(2))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Start(ctx) }()

	deadline := time.Now().Add(time.Second)
	for rec.count() < 5 {
		if time.Now().After(deadline) {
			t.Fatal("player did not render frames")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Start() error = %v", err)
	}
}

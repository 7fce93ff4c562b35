package display

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fkcurrie/omega-matrix-golang/pkg/shiftmatrix"
)

// Target receives frames, normally a *shiftmatrix.Renderer
type Target interface {
	Render(f *shiftmatrix.Frame)
}

// Source produces the frame for an animation tick
type Source interface {
	Frame(tick int) shiftmatrix.Frame
}

// SourceFunc adapts a function to Source
type SourceFunc func(tick int) shiftmatrix.Frame

func (fn SourceFunc) Frame(tick int) shiftmatrix.Frame { return fn(tick) }

// Player submits frames from a playlist of sources at a fixed interval
type Player struct {
	target   Target
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	sources []Source
	current int
	tick    int
}

// NewPlayer creates a new player cycling through sources
func NewPlayer(target Target, interval time.Duration, logger *zap.Logger, sources ...Source) *Player {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Player{
		target:   target,
		interval: interval,
		logger:   logger,
		sources:  sources,
	}
}

// Start renders a frame every interval until ctx is done
func (p *Player) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Step()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.Step()
		}
	}
}

// Step renders the current source's next frame
func (p *Player) Step() {
	p.mu.Lock()
	if len(p.sources) == 0 {
		p.mu.Unlock()
		return
	}
	src := p.sources[p.current]
	tick := p.tick
	p.tick++
	p.mu.Unlock()

	f := src.Frame(tick)
	p.target.Render(&f)
}

// Next switches to the next source and restarts its animation
func (p *Player) Next() {
	p.skip(1)
}

// Prev switches to the previous source and restarts its animation
func (p *Player) Prev() {
	p.skip(-1)
}

// Current returns the playlist position
func (p *Player) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Player) skip(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.sources) == 0 {
		return
	}
	p.current = ((p.current+n)%len(p.sources) + len(p.sources)) % len(p.sources)
	p.tick = 0
	p.logger.Debug("switched source", zap.Int("index", p.current))
}

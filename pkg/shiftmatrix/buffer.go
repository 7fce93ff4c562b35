package shiftmatrix

import "sync"

// FrameBuffer hands frames from any number of producers to the single scan
// worker. Producers copy into a back slot under a short lock; the reader
// promotes the back slot to the front slot when it begins a view, so a
// producer never waits for a scan pass and the reader never sees a frame
// half written.
type FrameBuffer struct {
	// view is held by the reader from Acquire to Release.
	view  sync.Mutex
	front Frame

	mu    sync.Mutex
	back  Frame
	dirty bool
}

// Submit replaces the current frame with a copy of f. A nil f submits an
// all-off frame.
func (b *FrameBuffer) Submit(f *Frame) {
	if f == nil {
		b.Clear()
		return
	}
	b.mu.Lock()
	b.back = *f
	b.dirty = true
	b.mu.Unlock()
}

// Clear replaces the current frame with an all-off frame.
func (b *FrameBuffer) Clear() {
	b.mu.Lock()
	b.back = Frame{}
	b.dirty = true
	b.mu.Unlock()
}

// Acquire returns the most recently submitted frame. The frame stays valid
// and unchanged until Release; callers must not modify it.
func (b *FrameBuffer) Acquire() *Frame {
	b.view.Lock()

	b.mu.Lock()
	if b.dirty {
		b.front = b.back
		b.dirty = false
	}
	b.mu.Unlock()

	return &b.front
}

// Release ends the view opened by Acquire.
func (b *FrameBuffer) Release() {
	b.view.Unlock()
}

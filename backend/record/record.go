// Package record provides a facegraph backend that draws nothing and records every draw call, for tests and headless
// runs.
package record

import (
	"sync"

	"github.com/openhuman/facegraph"
)

// Call is one recorded draw.
type Call struct {
	Drawable *facegraph.Drawable
	Name     string
	Path     string // Path of the drawable's node from its root
	Program  any
	Uniforms facegraph.UniformBlock
}

// Frame holds the draws recorded between one BeginFrame and EndFrame.
type Frame struct {
	Scene  *facegraph.Scene
	Camera *facegraph.Camera
	Calls  []Call
	Ended  bool
}

// Names returns the names of the frame's drawables in draw order.
func (frame *Frame) Names() []string {
	names := make([]string, len(frame.Calls))
	for i, c := range frame.Calls {
		names[i] = c.Name
	}
	return names
}

// Backend records draw calls. It implements facegraph.FrameBackend. FailOn, if set, makes Draw return its error for
// drawables with that name.
type Backend struct {
	mu        sync.Mutex
	frames    []*Frame
	MaxFrames int // Oldest frames are discarded beyond this count; 0 keeps everything

	FailOn  string
	FailErr error
}

// New returns a Backend that keeps the last maxFrames frames.
func New(maxFrames int) *Backend {
	return &Backend{MaxFrames: maxFrames}
}

func (b *Backend) BeginFrame(scene *facegraph.Scene, camera *facegraph.Camera) error {

	b.mu.Lock()
	defer b.mu.Unlock()

	b.frames = append(b.frames, &Frame{Scene: scene, Camera: camera})
	if b.MaxFrames > 0 && len(b.frames) > b.MaxFrames {
		b.frames = b.frames[len(b.frames)-b.MaxFrames:]
	}

	return nil

}

func (b *Backend) Draw(call facegraph.DrawCall) error {

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.frames) == 0 {
		b.frames = append(b.frames, &Frame{})
	}

	if b.FailOn != "" && call.Drawable != nil && call.Drawable.Name == b.FailOn {
		return b.FailErr
	}

	rec := Call{
		Drawable: call.Drawable,
		Program:  call.Program,
		Uniforms: *call.Uniforms,
	}

	if call.Drawable != nil {
		rec.Name = call.Drawable.Name
		if node := call.Drawable.Node(); node != nil {
			rec.Path = node.Path()
		}
	}

	frame := b.frames[len(b.frames)-1]
	frame.Calls = append(frame.Calls, rec)

	return nil

}

func (b *Backend) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.frames) > 0 {
		b.frames[len(b.frames)-1].Ended = true
	}
	return nil
}

// Frames returns the recorded frames, oldest first.
func (b *Backend) Frames() []*Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Frame(nil), b.frames...)
}

// Last returns the most recent frame, or nil.
func (b *Backend) Last() *Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.frames) == 0 {
		return nil
	}
	return b.frames[len(b.frames)-1]
}

// Reset discards every recorded frame.
func (b *Backend) Reset() {
	b.mu.Lock()
	b.frames = nil
	b.mu.Unlock()
}

// Package recorder is an in-memory draw surface. It keeps the last
// completed frame so the host bridge can hand it over on request.
package recorder

import (
	"sync"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/pkg/core"
)

// Panel is a recorded backdrop call.
type Panel struct {
	Bounds   core.Box2D `json:"bounds"`
	Backdrop core.Color `json:"backdrop"`
}

// Point is a recorded point call.
type Point struct {
	Position core.Point2D `json:"position"`
	Color    core.Color   `json:"color"`
	Size     int          `json:"size"`
}

// Frame is everything drawn between BeginFrame and EndFrame.
type Frame struct {
	Panels []Panel `json:"panels"`
	Points []Point `json:"points"`
}

// Recorder records draw calls. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	current Frame
	last    Frame
	frames  int
}

func New() *Recorder {
	return &Recorder{}
}

func (r *Recorder) BeginFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = Frame{}
}

func (r *Recorder) DrawPanel(bounds core.Box2D, backdrop core.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current.Panels = append(r.current.Panels, Panel{Bounds: bounds, Backdrop: backdrop})
}

func (r *Recorder) DrawPoint(pos core.Point2D, color core.Color, size int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current.Points = append(r.current.Points, Point{Position: pos, Color: color, Size: size})
}

func (r *Recorder) EndFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = r.current
	r.current = Frame{}
	r.frames++
}

// Last returns the last completed frame.
func (r *Recorder) Last() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Frames returns how many frames were completed.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

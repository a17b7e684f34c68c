// Package surface holds the radar draw surfaces. Subpackages implement a
// single destination each; Multi combines them.
package surface

import (
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/render"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/pkg/core"
)

var _ render.FrameSurface = (*Multi)(nil)

// Multi fans out draw calls to multiple surfaces.
// All surfaces receive every call in the order they were given.
type Multi struct {
	surfaces []render.Surface
}

// NewMulti creates a surface that draws onto all provided surfaces.
func NewMulti(surfaces ...render.Surface) *Multi {
	// Filter out nil surfaces
	valid := make([]render.Surface, 0, len(surfaces))
	for _, s := range surfaces {
		if s != nil {
			valid = append(valid, s)
		}
	}
	return &Multi{surfaces: valid}
}

// Len returns the number of surfaces drawn to.
func (m *Multi) Len() int {
	return len(m.surfaces)
}

// BeginFrame is forwarded to surfaces that track frames.
func (m *Multi) BeginFrame() {
	for _, s := range m.surfaces {
		if fs, ok := s.(render.FrameSurface); ok {
			fs.BeginFrame()
		}
	}
}

func (m *Multi) DrawPanel(bounds core.Box2D, backdrop core.Color) {
	for _, s := range m.surfaces {
		s.DrawPanel(bounds, backdrop)
	}
}

func (m *Multi) DrawPoint(pos core.Point2D, color core.Color, size int) {
	for _, s := range m.surfaces {
		s.DrawPoint(pos, color, size)
	}
}

// EndFrame is forwarded to surfaces that track frames.
func (m *Multi) EndFrame() {
	for _, s := range m.surfaces {
		if fs, ok := s.(render.FrameSurface); ok {
			fs.EndFrame()
		}
	}
}

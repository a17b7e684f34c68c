package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/surface/recorder"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/pkg/core"
)

// pointCounter is a plain Surface without frame tracking.
type pointCounter struct {
	panels, points int
}

func (p *pointCounter) DrawPanel(core.Box2D, core.Color)        { p.panels++ }
func (p *pointCounter) DrawPoint(core.Point2D, core.Color, int) { p.points++ }

func TestMulti_FansOut(t *testing.T) {
	a, b := recorder.New(), recorder.New()
	plain := &pointCounter{}
	m := NewMulti(a, nil, b, plain)
	require.Equal(t, 3, m.Len())

	m.BeginFrame()
	m.DrawPanel(core.NewBox2D(core.Pt(0, 12), 65, 65), core.Black)
	m.DrawPoint(core.Pt(3, 4), core.Red, 3)
	m.DrawPoint(core.Pt(5, 6), core.Green, 3)
	m.EndFrame()

	for _, r := range []*recorder.Recorder{a, b} {
		assert.Equal(t, 1, r.Frames())
		assert.Len(t, r.Last().Panels, 1)
		assert.Len(t, r.Last().Points, 2)
	}
	assert.Equal(t, 1, plain.panels)
	assert.Equal(t, 2, plain.points)
}

func TestMulti_Empty(t *testing.T) {
	m := NewMulti()
	m.BeginFrame()
	m.DrawPoint(core.Pt(0, 0), core.White, 1)
	m.EndFrame()
	assert.Zero(t, m.Len())
}

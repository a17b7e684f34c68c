package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoint2D_Add(t *testing.T) {
	p := Pt(1.5, -2).Add(Pt(3, 4))
	assert.Equal(t, Pt(4.5, 2), p)
}

func TestPoint2D_Len(t *testing.T) {
	assert.InDelta(t, 5.0, Pt(3, 4).Len(), 1e-9)
	assert.InDelta(t, 5.0, Pt(4, 1).Sub(Pt(1, 5)).Len(), 1e-9)
}

func TestBox2D_Derived(t *testing.T) {
	b := NewBox2D(Pt(0, 12), 65, 65)

	assert.Equal(t, Pt(0, 12), b.TopLeft())
	assert.Equal(t, Pt(65, 77), b.BottomRight())
	assert.Equal(t, Pt(32.5, 44.5), b.Center())
	assert.Equal(t, 65.0, b.Width())
	assert.Equal(t, 65.0, b.Height())
}

func TestBox2D_SetTopLeftRecomputesBottomRight(t *testing.T) {
	tests := []struct {
		name string
		w, h float64
		p    Point2D
	}{
		{"origin", 10, 20, Pt(0, 0)},
		{"negative", 3, 3, Pt(-7, -1)},
		{"fractional", 0.5, 81, Pt(12.25, 4.75)},
		{"zero size", 0, 0, Pt(9, 9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBox2D(Pt(100, 100), tt.w, tt.h)
			b.SetTopLeft(tt.p)

			assert.Equal(t, tt.p.Add(Pt(tt.w, tt.h)), b.BottomRight())
			assert.Equal(t, tt.w, b.Width(), "width must not change")
			assert.Equal(t, tt.h, b.Height(), "height must not change")
		})
	}
}

func TestBox2D_Contains(t *testing.T) {
	b := NewBox2D(Pt(0, 0), 10, 10)

	assert.True(t, b.Contains(Pt(0, 0)))
	assert.True(t, b.Contains(Pt(9.99, 5)))
	assert.False(t, b.Contains(Pt(10, 5)))
	assert.False(t, b.Contains(Pt(-0.01, 5)))
}

func TestRotation_YawRadians(t *testing.T) {
	assert.InDelta(t, math.Pi/2, Rotation{Yaw: 90}.YawRadians(), 1e-6)
	assert.InDelta(t, -math.Pi, Rotation{Yaw: -180}.YawRadians(), 1e-6)
}

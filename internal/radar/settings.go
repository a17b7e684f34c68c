package radar

import (
	"maps"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/pkg/core"
)

const (
	MinScale         = 1
	MaxScale         = 8
	DefaultScale     = 4
	DefaultPointSize = 3
	MaxPointSize     = 5
	DefaultX         = 0
	DefaultY         = 12
)

// DefaultColors are the per-category colors of a fresh radar.
var DefaultColors = map[core.Category]core.Color{
	core.CategoryPlayer:      core.Cyan,
	core.CategoryHostileMob:  core.Red,
	core.CategoryPeacefulMob: core.Green,
	core.CategoryItem:        core.Gold,
	core.CategoryWaypoint:    core.Magenta,
}

// Settings is a plain copy of every persisted radar field.
type Settings struct {
	X                int                          `json:"x"`
	Y                int                          `json:"y"`
	Size             int                          `json:"size"`
	Scale            int                          `json:"scale"`
	PointSize        int                          `json:"pointSize"`
	Colors           map[core.Category]core.Color `json:"colors"`
	Visible          map[core.Category]bool       `json:"visible"`
	UseWaypointColor bool                         `json:"useWaypointColor"`
}

// SizeForScale returns the panel size in pixels for a zoom level.
func SizeForScale(scale int) int {
	return 16*scale + 1
}

// DefaultSettings returns the settings of a fresh radar.
func DefaultSettings() Settings {
	s := Settings{
		X:                DefaultX,
		Y:                DefaultY,
		Scale:            DefaultScale,
		Size:             SizeForScale(DefaultScale),
		PointSize:        DefaultPointSize,
		Colors:           maps.Clone(DefaultColors),
		Visible:          make(map[core.Category]bool, len(core.Categories)),
		UseWaypointColor: true,
	}
	for _, c := range core.Categories {
		s.Visible[c] = true
	}
	return s
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	s.Colors = maps.Clone(s.Colors)
	s.Visible = maps.Clone(s.Visible)
	return s
}

// Normalize returns a copy with out-of-range values repaired: scale is
// clamped into range, size follows scale, an unknown point size falls back
// to the default and missing categories take their defaults.
func (s Settings) Normalize() Settings {
	out := s.Clone()
	switch {
	case out.Scale < MinScale:
		out.Scale = MinScale
	case out.Scale > MaxScale:
		out.Scale = MaxScale
	}
	out.Size = SizeForScale(out.Scale)

	switch out.PointSize {
	case 1, 3, 5:
	default:
		out.PointSize = DefaultPointSize
	}

	if out.Colors == nil {
		out.Colors = make(map[core.Category]core.Color, len(DefaultColors))
	}
	if out.Visible == nil {
		out.Visible = make(map[core.Category]bool, len(core.Categories))
	}
	for _, c := range core.Categories {
		if _, ok := out.Colors[c]; !ok {
			out.Colors[c] = DefaultColors[c]
		}
		if _, ok := out.Visible[c]; !ok {
			out.Visible[c] = true
		}
	}
	return out
}

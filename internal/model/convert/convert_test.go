package convert

import (
	"testing"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/model"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/radar"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/waypoint"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/pkg/core"
)

func TestSettingsRow(t *testing.T) {
	s := radar.DefaultSettings()
	s.Scale = 6
	s.Size = radar.SizeForScale(6)
	s.Colors[core.CategoryItem] = core.Purple
	s.Visible[core.CategoryHostileMob] = false
	s.UseWaypointColor = false

	row, err := SettingsToRow("world:overworld", s)
	require.NoError(t, err)
	assert.Equal(t, "world:overworld", row.SessionKey)
	assert.Equal(t, 97, row.Size)
	assert.Contains(t, string(row.Colors), `"item":"#800080FF"`)
	assert.Contains(t, string(row.Visible), `"hostile":false`)

	back, err := RowToSettings(row)
	require.NoError(t, err)
	assert.Equal(t, s, back)
}

func TestRowToSettings_BadJSON(t *testing.T) {
	_, err := RowToSettings(model.RadarSettings{Colors: []byte(`{"item":"nope"}`)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding colors")
}

func TestWaypointRow(t *testing.T) {
	w := waypoint.Named(10, 64, -5, "base", core.Orange)
	w.Toggle()

	row, err := WaypointToRow("k", 2, w)
	require.NoError(t, err)
	assert.Equal(t, 2, row.Seq)
	assert.Equal(t, "#FF8000FF", row.Color)

	coords, ok := row.Position.Coordinates()
	require.True(t, ok)
	assert.Equal(t, 10.0, coords.XY.X)
	assert.Equal(t, -5.0, coords.XY.Y)
	assert.Equal(t, 64.0, coords.Z)
	assert.Equal(t, geom.DimXYZ, coords.Type)

	back := RowToWaypoint(row)
	assert.Equal(t, w, back)
}

func TestRowToWaypoint_BadColor(t *testing.T) {
	w := RowToWaypoint(model.Waypoint{X: 1, Y: 2, Z: 3, Color: "purple"})
	assert.Equal(t, waypoint.DefaultColor, w.Color())
	assert.False(t, w.Enabled())
}

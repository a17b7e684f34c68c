// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/model"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/radar"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/waypoint"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/pkg/core"
)

// blockToPoint stores a waypoint block as an XYZ point
func blockToPoint(x, y, z int32) (geom.Point, error) {
	coords := geom.Coordinates{
		XY:   geom.XY{X: float64(x), Y: float64(z)},
		Z:    float64(y),
		Type: geom.DimXYZ,
	}
	return geom.NewPoint(coords)
}

// SettingsToRow converts radar settings to a GORM row.
func SettingsToRow(key string, s radar.Settings) (model.RadarSettings, error) {
	colors, err := json.Marshal(s.Colors)
	if err != nil {
		return model.RadarSettings{}, fmt.Errorf("encoding colors: %w", err)
	}
	visible, err := json.Marshal(s.Visible)
	if err != nil {
		return model.RadarSettings{}, fmt.Errorf("encoding visibility: %w", err)
	}
	return model.RadarSettings{
		SessionKey:       key,
		X:                s.X,
		Y:                s.Y,
		Size:             s.Size,
		Scale:            s.Scale,
		PointSize:        s.PointSize,
		Colors:           datatypes.JSON(colors),
		Visible:          datatypes.JSON(visible),
		UseWaypointColor: s.UseWaypointColor,
	}, nil
}

// RowToSettings converts a GORM row back to radar settings.
func RowToSettings(row model.RadarSettings) (radar.Settings, error) {
	s := radar.Settings{
		X:                row.X,
		Y:                row.Y,
		Size:             row.Size,
		Scale:            row.Scale,
		PointSize:        row.PointSize,
		UseWaypointColor: row.UseWaypointColor,
	}
	if len(row.Colors) > 0 {
		if err := json.Unmarshal(row.Colors, &s.Colors); err != nil {
			return radar.Settings{}, fmt.Errorf("decoding colors: %w", err)
		}
	}
	if len(row.Visible) > 0 {
		if err := json.Unmarshal(row.Visible, &s.Visible); err != nil {
			return radar.Settings{}, fmt.Errorf("decoding visibility: %w", err)
		}
	}
	return s, nil
}

// WaypointToRow converts a waypoint at list position seq to a GORM row.
func WaypointToRow(key string, seq int, w waypoint.Waypoint) (model.Waypoint, error) {
	pos, err := blockToPoint(w.X(), w.Y(), w.Z())
	if err != nil {
		return model.Waypoint{}, fmt.Errorf("encoding position of %d,%d,%d: %w", w.X(), w.Y(), w.Z(), err)
	}
	return model.Waypoint{
		SessionKey: key,
		Seq:        seq,
		X:          w.X(),
		Y:          w.Y(),
		Z:          w.Z(),
		Enabled:    w.Enabled(),
		Name:       w.Name(),
		Color:      w.Color().Hex(),
		Position:   pos,
	}, nil
}

// RowToWaypoint converts a GORM row back to a waypoint. An unreadable color
// falls back to the default waypoint color.
func RowToWaypoint(row model.Waypoint) waypoint.Waypoint {
	color, err := core.ParseHex(row.Color)
	if err != nil {
		color = waypoint.DefaultColor
	}
	w := waypoint.Named(row.X, row.Y, row.Z, row.Name, color)
	w.SetEnabled(row.Enabled)
	return w
}

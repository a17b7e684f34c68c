package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&SchemaInfo{},
	&RadarSettings{},
	&Waypoint{},
}

// SchemaInfo records which schema version wrote the database.
type SchemaInfo struct {
	ID            uint      `gorm:"primarykey"`
	SchemaVersion int       `json:"schemaVersion"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (*SchemaInfo) TableName() string {
	return "schema_info"
}

// RadarSettings is one persisted radar configuration, keyed by session.
type RadarSettings struct {
	SessionKey       string         `json:"sessionKey" gorm:"primaryKey;size:191"`
	X                int            `json:"x"`
	Y                int            `json:"y"`
	Size             int            `json:"size"`
	Scale            int            `json:"scale"`
	PointSize        int            `json:"pointSize"`
	Colors           datatypes.JSON `json:"colors"`
	Visible          datatypes.JSON `json:"visible"`
	UseWaypointColor bool           `json:"useWaypointColor"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

func (*RadarSettings) TableName() string {
	return "radar_settings"
}

// Waypoint is one saved waypoint. Seq keeps the list order within a session.
type Waypoint struct {
	ID         uint       `json:"id" gorm:"primarykey;autoIncrement"`
	SessionKey string     `json:"sessionKey" gorm:"size:191;index:idx_waypoint_session"`
	Seq        int        `json:"seq"`
	X          int32      `json:"x"`
	Y          int32      `json:"y"`
	Z          int32      `json:"z"`
	Enabled    bool       `json:"enabled"`
	Name       string     `json:"name" gorm:"size:127"`
	Color      string     `json:"color" gorm:"size:9"`
	Position   geom.Point `json:"position"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (*Waypoint) TableName() string {
	return "waypoints"
}

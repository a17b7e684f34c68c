// Package gormstorage implements the storage.Backend interface on a GORM
// connection. The SQLite and Postgres backends differ only in how the
// connection is opened.
package gormstorage

import (
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/database"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/model"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/model/convert"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/radar"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/waypoint"
)

// Connector opens the database for a Backend.
type Connector func(m *database.Manager) error

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	Manager *database.Manager
	Connect Connector
	Logger  *slog.Logger
	Dialect string
}

// Backend implements storage.Backend using GORM.
type Backend struct {
	deps Dependencies
	db   *gorm.DB
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Backend{deps: deps}
}

func (b *Backend) Name() string { return b.deps.Dialect }

// Init connects and migrates the schema.
func (b *Backend) Init() error {
	m := b.deps.Manager
	if m.DB == nil {
		if b.deps.Connect == nil {
			return fmt.Errorf("no database connection configured")
		}
		if err := b.deps.Connect(m); err != nil {
			return err
		}
	}
	if err := m.Setup(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	b.db = m.DB
	b.deps.Logger.Info("storage ready", "backend", b.deps.Dialect)
	return nil
}

// Close closes the connection pool.
func (b *Backend) Close() error {
	return b.deps.Manager.Close()
}

func (b *Backend) LoadSettings(key string) (radar.Settings, bool, error) {
	if b.db == nil {
		return radar.Settings{}, false, errNotReady
	}

	var row model.RadarSettings
	err := b.db.Where("session_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return radar.Settings{}, false, nil
	}
	if err != nil {
		return radar.Settings{}, false, fmt.Errorf("loading settings for %s: %w", key, err)
	}

	s, err := convert.RowToSettings(row)
	if err != nil {
		return radar.Settings{}, false, err
	}
	return s, true, nil
}

func (b *Backend) SaveSettings(key string, s radar.Settings) error {
	if b.db == nil {
		return errNotReady
	}

	row, err := convert.SettingsToRow(key, s)
	if err != nil {
		return err
	}
	err = b.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_key"}},
		DoUpdates: clause.AssignmentColumns(settingsColumns),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("saving settings for %s: %w", key, err)
	}
	return nil
}

func (b *Backend) LoadWaypoints(key string) ([]waypoint.Waypoint, error) {
	if b.db == nil {
		return nil, errNotReady
	}

	var rows []model.Waypoint
	if err := b.db.Where("session_key = ?", key).Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading waypoints for %s: %w", key, err)
	}

	items := make([]waypoint.Waypoint, 0, len(rows))
	for _, row := range rows {
		items = append(items, convert.RowToWaypoint(row))
	}
	return items, nil
}

// SaveWaypoints replaces the stored list for key in one transaction.
func (b *Backend) SaveWaypoints(key string, items []waypoint.Waypoint) error {
	if b.db == nil {
		return errNotReady
	}

	rows := make([]model.Waypoint, 0, len(items))
	for i, w := range items {
		row, err := convert.WaypointToRow(key, i, w)
		if err != nil {
			return fmt.Errorf("saving waypoints for %s: %w", key, err)
		}
		rows = append(rows, row)
	}

	err := b.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_key = ?", key).Delete(&model.Waypoint{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("saving waypoints for %s: %w", key, err)
	}
	return nil
}

var errNotReady = errors.New("storage not initialized")

// settingsColumns are rewritten when a session's settings row already exists.
var settingsColumns = []string{
	"x", "y", "size", "scale", "point_size",
	"colors", "visible", "use_waypoint_color", "updated_at",
}

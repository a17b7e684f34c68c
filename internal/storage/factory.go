package storage

import (
	"fmt"
	"log/slog"

	"github.com/rs/zerolog"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/config"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/database"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/storage/file"
	gormstorage "github.com/gavinsmod/gavinsextensiblemod-sub001/internal/storage/gorm"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/storage/memory"
)

// NewBackend creates a storage backend based on configuration. The backend
// is not initialized yet.
func NewBackend(cfg config.StorageConfig, log *slog.Logger, dbLog zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		return gormstorage.New(gormstorage.Dependencies{
			Manager: database.NewManager(dbLog),
			Connect: func(m *database.Manager) error { return m.ConnectPostgres(cfg.DB) },
			Logger:  log,
			Dialect: "postgres",
		}), nil
	case "sqlite":
		return gormstorage.New(gormstorage.Dependencies{
			Manager: database.NewManager(dbLog),
			Connect: func(m *database.Manager) error { return m.ConnectSqlite(cfg.SQLite.Path) },
			Logger:  log,
			Dialect: "sqlite",
		}), nil
	case "file":
		return file.New(file.Config{Dir: cfg.File.Dir}), nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// Package file implements the storage.Backend interface as one JSON document
// per session key, written through viper.
package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/radar"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/waypoint"
)

const (
	settingsKey  = "settings"
	waypointsKey = "waypoints"
)

// Config holds configuration for the file storage backend.
type Config struct {
	Dir string
}

// Backend stores <dir>/<key>.json documents with a settings and a
// waypoints section.
type Backend struct {
	cfg Config
	mu  sync.Mutex
}

// New creates a new file storage backend.
func New(cfg Config) *Backend {
	return &Backend{cfg: cfg}
}

func (b *Backend) Name() string { return "file" }

// Init creates the storage directory.
func (b *Backend) Init() error {
	if err := os.MkdirAll(b.cfg.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create storage dir: %w", err)
	}
	return nil
}

func (b *Backend) Close() error { return nil }

func (b *Backend) LoadSettings(key string) (radar.Settings, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	v, exists, err := b.read(key)
	if err != nil || !exists || !v.IsSet(settingsKey) {
		return radar.Settings{}, false, err
	}

	var s radar.Settings
	if err := decode(v.Get(settingsKey), &s); err != nil {
		return radar.Settings{}, false, fmt.Errorf("decoding settings for %s: %w", key, err)
	}
	return s, true, nil
}

func (b *Backend) SaveSettings(key string, s radar.Settings) error {
	return b.write(key, settingsKey, s)
}

func (b *Backend) LoadWaypoints(key string) ([]waypoint.Waypoint, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := []waypoint.Waypoint{}
	v, exists, err := b.read(key)
	if err != nil || !exists || !v.IsSet(waypointsKey) {
		return items, err
	}
	if err := decode(v.Get(waypointsKey), &items); err != nil {
		return nil, fmt.Errorf("decoding waypoints for %s: %w", key, err)
	}
	return items, nil
}

func (b *Backend) SaveWaypoints(key string, items []waypoint.Waypoint) error {
	if items == nil {
		items = []waypoint.Waypoint{}
	}
	return b.write(key, waypointsKey, items)
}

// Path returns the document path for key.
func (b *Backend) Path(key string) string {
	return filepath.Join(b.cfg.Dir, sanitize(key)+".json")
}

func (b *Backend) read(key string) (*viper.Viper, bool, error) {
	path := b.Path(key)
	v := viper.New()
	v.SetConfigType("json")
	v.SetConfigFile(path)

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return v, false, nil
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, false, fmt.Errorf("error reading %s: %w", path, err)
	}
	return v, true, nil
}

// write replaces one section and keeps the other as it is on disk.
func (b *Backend) write(key, section string, value any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	v, _, err := b.read(key)
	if err != nil {
		return err
	}

	// round-trip through JSON so the document holds plain values
	var plain any
	if err := decode(value, &plain); err != nil {
		return fmt.Errorf("encoding %s for %s: %w", section, key, err)
	}
	v.Set(section, plain)

	tmp := filepath.Join(b.cfg.Dir, sanitize(key)+".tmp.json")
	if err := v.WriteConfigAs(tmp); err != nil {
		return fmt.Errorf("error writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, b.Path(key)); err != nil {
		return fmt.Errorf("error replacing %s: %w", b.Path(key), err)
	}
	return nil
}

// decode converts src into dst through its JSON form. Viper lowercases
// keys; encoding/json matches field names case-insensitively, so the
// tagged camelCase fields still line up.
func decode(src, dst any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func sanitize(key string) string {
	if key == "" {
		return "default"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, key)
}

// Package radar holds the radar panel configuration: placement, zoom,
// per-category colors and visibility.
package radar

import (
	"sync"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/pkg/core"
)

// ChangeFunc receives a full settings snapshot after every mutation.
type ChangeFunc func(Settings)

// Option configures a Config.
type Option func(*Config)

// WithSettings starts the config from s instead of the defaults.
func WithSettings(s Settings) Option {
	return func(c *Config) {
		c.s = s.Normalize()
	}
}

// WithListener registers a change listener at construction.
func WithListener(fn ChangeFunc) Option {
	return func(c *Config) {
		c.listeners = append(c.listeners, fn)
	}
}

// Config is the live radar configuration. It is safe for concurrent use.
// Each setter publishes the new settings to the listeners before it returns.
type Config struct {
	mu        sync.RWMutex
	s         Settings
	listeners []ChangeFunc
}

// New creates a radar config with default settings.
func New(opts ...Option) *Config {
	c := &Config{s: DefaultSettings()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnChange registers a listener. Listeners run outside the config lock.
func (c *Config) OnChange(fn ChangeFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// X returns the panel's left edge in screen pixels.
func (c *Config) X() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.s.X
}

// Y returns the panel's top edge in screen pixels.
func (c *Config) Y() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.s.Y
}

// Size returns the panel side length, always 16*scale+1.
func (c *Config) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.s.Size
}

// Scale returns the zoom step, 1 through 8.
func (c *Config) Scale() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.s.Scale
}

// PointSize returns the drawn point diameter, 1, 3 or 5.
func (c *Config) PointSize() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.s.PointSize
}

// Color returns the configured color of a category.
func (c *Config) Color(cat core.Category) core.Color {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.s.Colors[cat]
}

// Visible reports whether a category is drawn.
func (c *Config) Visible(cat core.Category) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.s.Visible[cat]
}

// UseWaypointColor reports whether waypoints share the configured waypoint color.
func (c *Config) UseWaypointColor() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.s.UseWaypointColor
}

// Bounds returns the panel rectangle.
func (c *Config) Bounds() core.Box2D {
	c.mu.RLock()
	defer c.mu.RUnlock()
	size := float64(c.s.Size)
	return core.NewBox2D(core.Pt(float64(c.s.X), float64(c.s.Y)), size, size)
}

// Settings returns a snapshot of every field.
func (c *Config) Settings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.s.Clone()
}

// IncreaseScale zooms out one step, wrapping from the max back to 1.
func (c *Config) IncreaseScale() {
	c.update(func(s *Settings) {
		s.Scale++
		if s.Scale > MaxScale {
			s.Scale = MinScale
		}
		s.Size = SizeForScale(s.Scale)
	})
}

// CyclePointSize steps the point size through 1, 3, 5.
func (c *Config) CyclePointSize() {
	c.update(func(s *Settings) {
		if s.PointSize+2 > MaxPointSize {
			s.PointSize = 1
		} else {
			s.PointSize += 2
		}
	})
}

// SetPosition moves the panel.
func (c *Config) SetPosition(x, y int) {
	c.update(func(s *Settings) {
		s.X, s.Y = x, y
	})
}

// SetX moves the panel horizontally.
func (c *Config) SetX(x int) {
	c.update(func(s *Settings) { s.X = x })
}

// SetY moves the panel vertically.
func (c *Config) SetY(y int) {
	c.update(func(s *Settings) { s.Y = y })
}

// SetColor changes the color a category is drawn with.
func (c *Config) SetColor(cat core.Category, color core.Color) {
	c.update(func(s *Settings) { s.Colors[cat] = color })
}

// SetVisible shows or hides a category.
func (c *Config) SetVisible(cat core.Category, visible bool) {
	c.update(func(s *Settings) { s.Visible[cat] = visible })
}

// SetUseWaypointColor picks between the shared waypoint color and each waypoint's own.
func (c *Config) SetUseWaypointColor(use bool) {
	c.update(func(s *Settings) { s.UseWaypointColor = use })
}

// Reset restores the defaults.
func (c *Config) Reset() {
	c.update(func(s *Settings) { *s = DefaultSettings() })
}

// Restore loads persisted settings without notifying listeners.
func (c *Config) Restore(s Settings) {
	norm := s.Normalize()
	c.mu.Lock()
	c.s = norm
	c.mu.Unlock()
}

func (c *Config) update(fn func(*Settings)) {
	c.mu.Lock()
	fn(&c.s)
	snap := c.s.Clone()
	listeners := append([]ChangeFunc(nil), c.listeners...)
	c.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

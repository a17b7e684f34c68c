package session

import (
	"log/slog"
	"strings"
	"sync"
)

// NoWorld is the world name before the host reports one.
const NoWorld = "No world loaded"

// DefaultKey is the storage key used when no world is loaded.
const DefaultKey = "default"

// Context holds the world the player is currently in. The world name
// selects which radar layout and waypoint list are loaded.
type Context struct {
	mu      sync.RWMutex
	world   string
	storage string
}

// NewContext creates a new Context with default values
func NewContext(storageName string) *Context {
	return &Context{
		world:   NoWorld,
		storage: storageName,
	}
}

// World returns the current world name.
func (c *Context) World() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.world
}

// Key returns the storage key for the current world.
func (c *Context) Key() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return KeyFor(c.world)
}

// SetWorld switches the current world and returns the previous one.
func (c *Context) SetWorld(world string) (previous string) {
	world = strings.TrimSpace(world)
	if world == "" {
		world = NoWorld
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	previous, c.world = c.world, world
	return previous
}

// Attrs returns the attributes injected into every log record.
func (c *Context) Attrs() []slog.Attr {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return []slog.Attr{
		slog.String("world", c.world),
		slog.String("storage", c.storage),
	}
}

// KeyFor maps a world name to its storage key. Names are case-folded so
// "Survival" and "survival" share waypoints.
func KeyFor(world string) string {
	world = strings.ToLower(strings.TrimSpace(world))
	if world == "" || world == strings.ToLower(NoWorld) {
		return DefaultKey
	}
	return world
}

// Package handlers implements the commands the host sends to the radar
// extension. Each command is a dispatcher handler; Service owns the state
// the handlers act on.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/cache"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/dispatcher"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/monitor"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/parser"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/radar"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/render"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/session"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/storage"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/surface/recorder"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/waypoint"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/pkg/core"
)

var (
	// ErrWaypointExists is returned when a coordinate already holds a waypoint.
	ErrWaypointExists = errors.New("waypoint already exists")
	// ErrWaypointNotFound is returned when no waypoint sits at a coordinate.
	ErrWaypointNotFound = errors.New("waypoint not found")
	// ErrStatusUnavailable is returned by :STATUS: without a status source.
	ErrStatusUnavailable = errors.New("status unavailable")
)

const (
	// DefaultTickBuffer is the :RADAR:TICK: queue size when none is set.
	DefaultTickBuffer = 64
	// flushTimeout bounds how long a session switch waits for pending saves.
	flushTimeout = 5 * time.Second
)

// Persister queues radar state for saving.
type Persister interface {
	SaveSettings(session string, s radar.Settings)
	SaveWaypoints(session string, items []waypoint.Waypoint)
	Flush(ctx context.Context) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Radar     *radar.Config
	Waypoints *waypoint.Store
	World     *cache.World
	Engine    *render.Engine
	Session   *session.Context
	Backend   storage.Backend
	Saver     Persister

	// Surface receives every rendered frame. Defaults to a recorder.
	Surface render.Surface
	// Status backs :STATUS:.
	Status func() monitor.Status

	Logger     *slog.Logger
	Version    string
	TickBuffer int
}

// SessionResult is returned by :SESSION:.
type SessionResult struct {
	World     string `json:"world"`
	Key       string `json:"key"`
	Restored  bool   `json:"restored"`
	Waypoints int    `json:"waypoints"`
}

// Service provides handler methods for processing radar commands
type Service struct {
	deps   Dependencies
	frames cache.SafeCounter

	// mutating commands hold the read side; a session switch holds the
	// write side so no edit lands between flush and reload.
	sessionMu sync.RWMutex
}

// NewService creates a new handler service. When a Saver is given every
// settings and waypoint change is queued for the current session.
func NewService(deps Dependencies) (*Service, error) {
	switch {
	case deps.Radar == nil:
		return nil, errors.New("handlers: radar config is required")
	case deps.Waypoints == nil:
		return nil, errors.New("handlers: waypoint store is required")
	case deps.World == nil:
		return nil, errors.New("handlers: world cache is required")
	case deps.Engine == nil:
		return nil, errors.New("handlers: render engine is required")
	case deps.Session == nil:
		return nil, errors.New("handlers: session context is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Surface == nil {
		deps.Surface = recorder.New()
	}
	if deps.TickBuffer <= 0 {
		deps.TickBuffer = DefaultTickBuffer
	}

	s := &Service{deps: deps}

	if deps.Saver != nil {
		deps.Radar.OnChange(func(st radar.Settings) {
			deps.Saver.SaveSettings(deps.Session.Key(), st)
		})
		deps.Waypoints.OnChange(func(items []waypoint.Waypoint) {
			deps.Saver.SaveWaypoints(deps.Session.Key(), items)
		})
	}
	return s, nil
}

// Frames returns how many frames :RADAR:FRAME: rendered.
func (s *Service) Frames() int {
	return s.frames.Value()
}

// RegisterHandlers registers every radar command with the dispatcher.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register(":VERSION:", s.handleVersion)
	d.Register(":STATUS:", s.handleStatus)

	d.Register(":RADAR:SCALE:UP:", s.handleScaleUp)
	d.Register(":RADAR:POINTSIZE:CYCLE:", s.handlePointSizeCycle)
	d.Register(":RADAR:RESET:", s.handleReset)
	d.Register(":RADAR:POSITION:", s.handlePosition)
	d.Register(":RADAR:SHOW:", s.handleShow)
	d.Register(":RADAR:COLOR:", s.handleColor)
	d.Register(":RADAR:WAYPOINT:COLOR:", s.handleWaypointColor)
	d.Register(":RADAR:GET:", s.handleGet)
	d.Register(":RADAR:TICK:", s.handleTick, dispatcher.Buffered(s.deps.TickBuffer), dispatcher.Logged())
	d.Register(":RADAR:FRAME:", s.handleFrame)

	d.Register(":WAYPOINT:ADD:", s.handleWaypointAdd, dispatcher.Logged())
	d.Register(":WAYPOINT:REMOVE:", s.handleWaypointRemove, dispatcher.Logged())
	d.Register(":WAYPOINT:TOGGLE:", s.handleWaypointToggle)
	d.Register(":WAYPOINT:MOVE:", s.handleWaypointMove, dispatcher.Logged())
	d.Register(":WAYPOINT:LIST:", s.handleWaypointList)

	d.Register(":SESSION:", s.handleSession, dispatcher.Logged())
}

func (s *Service) handleVersion(e dispatcher.Event) (any, error) {
	return s.deps.Version, nil
}

func (s *Service) handleStatus(e dispatcher.Event) (any, error) {
	if s.deps.Status == nil {
		return nil, ErrStatusUnavailable
	}
	return s.deps.Status(), nil
}

// mutate runs fn under the session read lock and returns the new settings.
func (s *Service) mutate(fn func(*radar.Config)) radar.Settings {
	s.sessionMu.RLock()
	defer s.sessionMu.RUnlock()
	fn(s.deps.Radar)
	return s.deps.Radar.Settings()
}

func (s *Service) handleScaleUp(e dispatcher.Event) (any, error) {
	return s.mutate((*radar.Config).IncreaseScale), nil
}

func (s *Service) handlePointSizeCycle(e dispatcher.Event) (any, error) {
	return s.mutate((*radar.Config).CyclePointSize), nil
}

func (s *Service) handleReset(e dispatcher.Event) (any, error) {
	return s.mutate((*radar.Config).Reset), nil
}

func (s *Service) handlePosition(e dispatcher.Event) (any, error) {
	if err := parser.Expect(e.Args, 2); err != nil {
		return nil, err
	}
	x, err := parser.Int(e.Args[0])
	if err != nil {
		return nil, fmt.Errorf("x: %w", err)
	}
	y, err := parser.Int(e.Args[1])
	if err != nil {
		return nil, fmt.Errorf("y: %w", err)
	}
	return s.mutate(func(c *radar.Config) { c.SetPosition(x, y) }), nil
}

func (s *Service) handleShow(e dispatcher.Event) (any, error) {
	if err := parser.Expect(e.Args, 2); err != nil {
		return nil, err
	}
	cat, err := parser.Category(e.Args[0])
	if err != nil {
		return nil, err
	}
	visible, err := parser.Bool(e.Args[1])
	if err != nil {
		return nil, err
	}
	return s.mutate(func(c *radar.Config) { c.SetVisible(cat, visible) }), nil
}

func (s *Service) handleColor(e dispatcher.Event) (any, error) {
	if err := parser.Expect(e.Args, 2); err != nil {
		return nil, err
	}
	cat, err := parser.Category(e.Args[0])
	if err != nil {
		return nil, err
	}
	color, err := parser.Color(e.Args[1])
	if err != nil {
		return nil, err
	}
	return s.mutate(func(c *radar.Config) { c.SetColor(cat, color) }), nil
}

func (s *Service) handleWaypointColor(e dispatcher.Event) (any, error) {
	if err := parser.Expect(e.Args, 1); err != nil {
		return nil, err
	}
	use, err := parser.Bool(e.Args[0])
	if err != nil {
		return nil, err
	}
	return s.mutate(func(c *radar.Config) { c.SetUseWaypointColor(use) }), nil
}

func (s *Service) handleGet(e dispatcher.Event) (any, error) {
	return s.deps.Radar.Settings(), nil
}

// handleTick replaces the cached world. Args: player JSON, entities JSON
// and an optional tick number.
func (s *Service) handleTick(e dispatcher.Event) (any, error) {
	if err := parser.ExpectBetween(e.Args, 2, 3); err != nil {
		return nil, err
	}
	player, err := parser.Player(e.Args[0])
	if err != nil {
		return nil, err
	}
	entities, err := parser.Entities(e.Args[1])
	if err != nil {
		return nil, err
	}
	snap := core.WorldSnapshot{
		Player:    player,
		Entities:  entities,
		UpdatedAt: e.Timestamp,
	}
	if len(e.Args) == 3 {
		tick, err := parser.Int(e.Args[2])
		if err != nil {
			return nil, fmt.Errorf("tick: %w", err)
		}
		if tick < 0 {
			return nil, fmt.Errorf("%w: negative tick %d", parser.ErrInvalidArgs, tick)
		}
		snap.Tick = uint64(tick)
	}
	s.deps.World.Update(snap)
	return nil, nil
}

func (s *Service) handleFrame(e dispatcher.Event) (any, error) {
	frame := s.deps.Engine.Render(context.Background(), s.deps.World, s.deps.Surface)
	s.frames.Inc()
	return frame, nil
}

// handleWaypointAdd args: x, y, z, optional name, optional color.
func (s *Service) handleWaypointAdd(e dispatcher.Event) (any, error) {
	if err := parser.ExpectBetween(e.Args, 3, 5); err != nil {
		return nil, err
	}
	b, err := parser.Block(e.Args)
	if err != nil {
		return nil, err
	}
	name := ""
	if len(e.Args) > 3 {
		name = parser.String(e.Args[3])
	}
	color := waypoint.DefaultColor
	if len(e.Args) > 4 {
		if color, err = parser.Color(e.Args[4]); err != nil {
			return nil, err
		}
	}

	w := waypoint.Named(b[0], b[1], b[2], name, color)

	s.sessionMu.RLock()
	defer s.sessionMu.RUnlock()
	if !s.deps.Waypoints.Add(w) {
		return nil, fmt.Errorf("%w at %d, %d, %d", ErrWaypointExists, b[0], b[1], b[2])
	}
	return w, nil
}

func (s *Service) handleWaypointRemove(e dispatcher.Event) (any, error) {
	if err := parser.Expect(e.Args, 3); err != nil {
		return nil, err
	}
	b, err := parser.Block(e.Args)
	if err != nil {
		return nil, err
	}

	s.sessionMu.RLock()
	defer s.sessionMu.RUnlock()
	if !s.deps.Waypoints.Remove(b[0], b[1], b[2]) {
		return nil, fmt.Errorf("%w at %d, %d, %d", ErrWaypointNotFound, b[0], b[1], b[2])
	}
	return s.deps.Waypoints.Len(), nil
}

func (s *Service) handleWaypointToggle(e dispatcher.Event) (any, error) {
	if err := parser.Expect(e.Args, 3); err != nil {
		return nil, err
	}
	b, err := parser.Block(e.Args)
	if err != nil {
		return nil, err
	}

	s.sessionMu.RLock()
	defer s.sessionMu.RUnlock()
	if _, ok := s.deps.Waypoints.Toggle(b[0], b[1], b[2]); !ok {
		return nil, fmt.Errorf("%w at %d, %d, %d", ErrWaypointNotFound, b[0], b[1], b[2])
	}
	w, _ := s.deps.Waypoints.Get(b[0], b[1], b[2])
	return w, nil
}

// handleWaypointMove args: x, y, z of the waypoint then its new x, y, z.
func (s *Service) handleWaypointMove(e dispatcher.Event) (any, error) {
	if err := parser.Expect(e.Args, 6); err != nil {
		return nil, err
	}
	from, err := parser.Block(e.Args[:3])
	if err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	to, err := parser.Block(e.Args[3:])
	if err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}

	s.sessionMu.RLock()
	defer s.sessionMu.RUnlock()
	if _, ok := s.deps.Waypoints.Get(from[0], from[1], from[2]); !ok {
		return nil, fmt.Errorf("%w at %d, %d, %d", ErrWaypointNotFound, from[0], from[1], from[2])
	}
	if !s.deps.Waypoints.Move(from, to) {
		return nil, fmt.Errorf("%w at %d, %d, %d", ErrWaypointExists, to[0], to[1], to[2])
	}
	w, _ := s.deps.Waypoints.Get(to[0], to[1], to[2])
	return w, nil
}

func (s *Service) handleWaypointList(e dispatcher.Event) (any, error) {
	return s.deps.Waypoints.All(), nil
}

// handleSession switches to another world: pending saves for the old world
// are flushed, then the new world's settings and waypoints are loaded.
// A world with nothing saved starts from the defaults. If loading fails the
// current world stays active and nothing in memory changes.
func (s *Service) handleSession(e dispatcher.Event) (any, error) {
	if err := parser.Expect(e.Args, 1); err != nil {
		return nil, err
	}
	world := parser.String(e.Args[0])
	key := session.KeyFor(world)

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	if s.deps.Saver != nil {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		err := s.deps.Saver.Flush(ctx)
		cancel()
		if err != nil {
			s.deps.Logger.Warn("Pending saves not flushed before session switch", "error", err)
		}
	}

	settings, items, found, err := s.load(key)
	if err != nil {
		s.deps.Logger.Error("Session not switched", "world", world, "key", key, "error", err)
		return nil, err
	}

	previous := s.deps.Session.SetWorld(world)
	s.deps.World.Reset()
	s.deps.Radar.Restore(settings)
	s.deps.Waypoints.Replace(items)

	result := SessionResult{
		World:     s.deps.Session.World(),
		Key:       key,
		Restored:  found,
		Waypoints: s.deps.Waypoints.Len(),
	}

	s.deps.Logger.Info("Session switched",
		"from", previous,
		"to", result.World,
		"key", key,
		"restored", found,
		"waypoints", result.Waypoints)
	return result, nil
}

// load reads the settings and waypoints saved under key. Without a backend
// every world starts from the defaults.
func (s *Service) load(key string) (radar.Settings, []waypoint.Waypoint, bool, error) {
	if s.deps.Backend == nil {
		return radar.DefaultSettings(), nil, false, nil
	}
	settings, found, err := s.deps.Backend.LoadSettings(key)
	if err != nil {
		return radar.Settings{}, nil, false, fmt.Errorf("load settings for %s: %w", key, err)
	}
	if !found {
		settings = radar.DefaultSettings()
	}
	items, err := s.deps.Backend.LoadWaypoints(key)
	if err != nil {
		return radar.Settings{}, nil, false, fmt.Errorf("load waypoints for %s: %w", key, err)
	}
	return settings, items, found, nil
}

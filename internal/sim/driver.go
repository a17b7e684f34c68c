package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Caller is the host call surface.
type Caller interface {
	CallArgs(command string, args []string) string
}

// Config controls a Driver.
type Config struct {
	World         string
	TickInterval  time.Duration
	FrameInterval time.Duration
}

// Driver ticks the generator into the extension and requests frames at a
// separate cadence.
type Driver struct {
	host   Caller
	gen    *Generator
	cfg    Config
	logger *slog.Logger

	ticks  atomic.Uint64
	frames atomic.Uint64
	errors atomic.Uint64
}

// NewDriver creates a driver. Zero intervals default to 50ms ticks and
// 60 frames per second.
func NewDriver(host Caller, gen *Generator, cfg Config, logger *slog.Logger) *Driver {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 50 * time.Millisecond
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = time.Second / 60
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{host: host, gen: gen, cfg: cfg, logger: logger}
}

// Run switches to the configured world and then ticks and renders until ctx
// is done. A rejected session switch stops the run.
func (d *Driver) Run(ctx context.Context) error {
	if d.cfg.World != "" {
		if resp := d.host.CallArgs(":SESSION:", []string{d.cfg.World}); isError(resp) {
			return fmt.Errorf("switching session to %s: %s", d.cfg.World, resp)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return d.loop(gctx, d.cfg.TickInterval, d.tick)
	})

	g.Go(func() error {
		return d.loop(gctx, d.cfg.FrameInterval, d.frame)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("sim error: %w", err)
	}
	return nil
}

func (d *Driver) loop(ctx context.Context, every time.Duration, step func() error) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := step(); err != nil {
				return err
			}
		}
	}
}

func (d *Driver) tick() error {
	snap := d.gen.Next()
	player, err := json.Marshal(snap.Player)
	if err != nil {
		return fmt.Errorf("encoding player: %w", err)
	}
	entities, err := json.Marshal(snap.Entities)
	if err != nil {
		return fmt.Errorf("encoding entities: %w", err)
	}

	resp := d.host.CallArgs(":RADAR:TICK:", []string{
		string(player),
		string(entities),
		strconv.FormatUint(snap.Tick, 10),
	})
	if isError(resp) {
		// a full tick queue drops the tick; the next one replaces it anyway
		d.errors.Add(1)
		d.logger.Debug("Tick rejected", "tick", snap.Tick, "response", resp)
		return nil
	}
	d.ticks.Add(1)
	return nil
}

func (d *Driver) frame() error {
	if resp := d.host.CallArgs(":RADAR:FRAME:", nil); isError(resp) {
		d.errors.Add(1)
		d.logger.Warn("Frame failed", "response", resp)
		return nil
	}
	d.frames.Add(1)
	return nil
}

// Counts returns accepted ticks, rendered frames and rejected calls.
func (d *Driver) Counts() (ticks, frames, errors uint64) {
	return d.ticks.Load(), d.frames.Load(), d.errors.Load()
}

func isError(resp string) bool {
	return strings.HasPrefix(resp, `["error"`)
}

// Command gem_radarsim runs the radar extension against a generated world,
// with the configured storage and surfaces, so the whole pipeline can be
// exercised without the game. Point an overlay client at the websocket
// surface to watch it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/app"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/sim"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/pkg/hostapi"
)

var version = "0.0.1-sim"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, os.Args[1:]); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("gem_radarsim", flag.ContinueOnError)
	var (
		configDir = fs.String("config", ".", "directory holding gem_radar.cfg.json")
		world     = fs.String("world", "sim", "world name used as the session key")
		duration  = fs.Duration("duration", 30*time.Second, "how long to run, 0 runs until interrupted")
		tick      = fs.Duration("tick", 50*time.Millisecond, "world tick interval")
		fps       = fs.Int("fps", 30, "frames rendered per second")
		entities  = fs.Int("entities", sim.DefaultEntities, "generated entities")
		radius    = fs.Float64("radius", sim.DefaultRadius, "radius entities roam within")
		seed      = fs.Uint64("seed", 1, "world generator seed")
		stdout    = fs.Bool("stdout", true, "log to stdout instead of the logs directory")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", *fps)
	}

	a, err := app.New(ctx, app.Options{
		ConfigDir:   *configDir,
		Version:     version,
		LogToStdout: *stdout,
	})
	if err != nil {
		return fmt.Errorf("starting extension: %w", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer closeCancel()
		if err := a.Close(closeCtx); err != nil {
			slog.Error("shutdown", "err", err)
		}
	}()

	host := hostapi.New(version, a.Dispatcher)

	runCtx := ctx
	if *duration > 0 {
		var runCancel context.CancelFunc
		runCtx, runCancel = context.WithTimeout(ctx, *duration)
		defer runCancel()
	}

	driver := sim.NewDriver(host, sim.NewGenerator(*seed, *entities, *radius), sim.Config{
		World:         *world,
		TickInterval:  *tick,
		FrameInterval: time.Second / time.Duration(*fps),
	}, a.Logger.With("component", "sim"))

	a.Logger.Info("Simulation starting", "world", *world, "duration", *duration, "entities", *entities)
	if err := driver.Run(runCtx); err != nil {
		return err
	}

	ticks, frames, rejected := driver.Counts()
	a.Logger.Info("Simulation finished", "ticks", ticks, "frames", frames, "rejected", rejected)
	fmt.Println(host.CallArgs(":STATUS:", nil))
	return nil
}

// Package app wires the radar extension together from configuration: logging,
// storage, the background saver, the render engine and its surfaces, the
// status monitor and the command dispatcher.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/cache"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/config"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/dispatcher"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/handlers"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/influx"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/logging"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/monitor"
	intOtel "github.com/gavinsmod/gavinsextensiblemod-sub001/internal/otel"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/radar"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/render"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/session"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/storage"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/storage/memory"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/surface"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/surface/recorder"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/surface/websocket"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/waypoint"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/worker"
)

// ExtensionName prefixes log files.
const ExtensionName = "gem_radar"

// influxBackupName is the line protocol fallback inside the logs directory.
const influxBackupName = "radar_frames.lp.gz"

// Options controls how New builds the App.
type Options struct {
	// ConfigDir holds gem_radar.cfg.json. Relative paths in the config are
	// resolved against it.
	ConfigDir string
	Version   string
	// LogToStdout skips the log file.
	LogToStdout bool
}

// App owns every long-lived component.
type App struct {
	Logger      *slog.Logger
	SlogManager *logging.SlogManager
	OTel        *intOtel.Provider

	Session   *session.Context
	Backend   storage.Backend
	Saver     *worker.Saver
	Radar     *radar.Config
	Waypoints *waypoint.Store
	World     *cache.World
	Engine    *render.Engine
	Recorder  *recorder.Recorder
	Stream    *websocket.Surface
	Influx    *influx.Sink
	Monitor   *monitor.Service

	Handlers   *handlers.Service
	Dispatcher *dispatcher.Dispatcher

	LogFilePath string
	StartedAt   time.Time

	logFile *os.File
	gelf    io.Closer
}

// New loads configuration from opts.ConfigDir and starts every component.
// Optional sinks (Graylog, OTel, InfluxDB, the overlay stream) that fail to
// start are logged and skipped.
func New(ctx context.Context, opts Options) (*App, error) {
	a := &App{StartedAt: time.Now()}

	cfgErr := config.Load(opts.ConfigDir)

	storageCfg := config.GetStorageConfig()
	a.Session = session.NewContext(storageCfg.Type)

	if err := a.setupLogging(opts); err != nil {
		return nil, err
	}
	if cfgErr != nil {
		a.Logger.Warn("Failed to load config, using defaults!", "error", cfgErr)
	} else {
		a.Logger.Info("Loaded config", "dir", opts.ConfigDir)
	}

	if err := a.setupStorage(opts.ConfigDir, storageCfg); err != nil {
		a.closeLogging()
		return nil, err
	}

	var err error
	a.Saver, err = worker.NewSaver(a.Backend, config.GetWorkerConfig(), a.Logger.With("component", "saver"))
	if err != nil {
		a.closeLogging()
		return nil, fmt.Errorf("creating saver: %w", err)
	}

	a.Radar = radar.New()
	a.Waypoints = waypoint.NewStore()
	a.World = cache.NewWorld()
	a.restore()

	var engineOpts []render.Option
	engineOpts = append(engineOpts, render.WithWaypoints(a.Waypoints))
	if sink := a.setupInflux(ctx); sink != nil {
		engineOpts = append(engineOpts, render.WithStatsSink(sink))
	}
	a.Engine, err = render.NewEngine(a.Radar, engineOpts...)
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("creating render engine: %w", err)
	}

	a.Recorder = recorder.New()
	surfaces := []render.Surface{a.Recorder}
	if a.setupStream(opts.Version) {
		surfaces = append(surfaces, a.Stream)
	}

	a.Dispatcher, err = dispatcher.New(logging.NewDispatcherLogger(a.Logger))
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("creating dispatcher: %w", err)
	}

	a.Handlers, err = handlers.NewService(handlers.Dependencies{
		Radar:     a.Radar,
		Waypoints: a.Waypoints,
		World:     a.World,
		Engine:    a.Engine,
		Session:   a.Session,
		Backend:   a.Backend,
		Saver:     a.Saver,
		Surface:   surface.NewMulti(surfaces...),
		Status:    func() monitor.Status { return a.Monitor.Status() },
		Logger:    a.Logger.With("component", "handlers"),
		Version:   opts.Version,
	})
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("creating handlers: %w", err)
	}
	a.Handlers.RegisterHandlers(a.Dispatcher)
	a.registerLifecycleHandlers()

	a.setupMonitor()

	a.Logger.Info("Radar extension initialized",
		"version", opts.Version,
		"storage", storage.Name(a.Backend),
		"commands", len(a.Dispatcher.Commands()))
	return a, nil
}

func (a *App) setupLogging(opts Options) error {
	logCfg := config.GetLoggingConfig()
	a.SlogManager = logging.NewSlogManager()

	var out io.Writer
	if !opts.LogToStdout {
		dir := resolve(opts.ConfigDir, logCfg.Dir)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating logs dir: %w", err)
		}
		a.LogFilePath = logging.LogFilePath(dir, ExtensionName, a.StartedAt)
		f, err := os.OpenFile(a.LogFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		a.logFile = f
		out = f
	}

	var setupOpts []logging.Option
	setupOpts = append(setupOpts, logging.WithContext(a.Session))

	var gelfErr error
	if logCfg.GraylogEnabled {
		w, err := logging.NewGraylogWriter(logCfg.GraylogAddress)
		if err != nil {
			gelfErr = err
		} else {
			a.gelf = w
			setupOpts = append(setupOpts, logging.WithGELF(w))
		}
	}

	otelCfg := config.GetOTelConfig()
	var otelErr error
	var otelLogProvider *sdklog.LoggerProvider
	if otelCfg.Enabled {
		var logWriter io.Writer = os.Stdout
		if a.logFile != nil {
			logWriter = a.logFile
		}
		provider, err := intOtel.New(intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			LogWriter:    logWriter,
			MetricWriter: logWriter,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
		})
		if err != nil {
			otelErr = err
		} else {
			a.OTel = provider
			otelLogProvider = provider.LoggerProvider()
		}
	}

	a.SlogManager.Setup(out, logCfg.Level, otelLogProvider, setupOpts...)
	a.Logger = a.SlogManager.Logger()

	if a.LogFilePath != "" {
		a.Logger.Info("Logging to file", "path", a.LogFilePath)
	}
	if gelfErr != nil {
		a.Logger.Error("Failed to connect to Graylog", "error", gelfErr)
	}
	if otelErr != nil {
		a.Logger.Error("Failed to initialize OTel provider", "error", otelErr)
	} else if a.OTel != nil {
		a.Logger.Info("OTel provider initialized", "endpoint", otelCfg.Endpoint)
	}
	return nil
}

// zerologger feeds the gorm manager and the InfluxDB sink, which log through
// zerolog.
func (a *App) zerologger(component string) zerolog.Logger {
	var w io.Writer = os.Stdout
	if a.logFile != nil {
		w = a.logFile
	}
	return zerolog.New(w).With().Timestamp().Str("component", component).Logger()
}

func (a *App) setupStorage(configDir string, cfg config.StorageConfig) error {
	cfg.File.Dir = resolve(configDir, cfg.File.Dir)
	cfg.SQLite.Path = resolve(configDir, cfg.SQLite.Path)

	backend, err := storage.NewBackend(cfg, a.Logger.With("component", "storage"), a.zerologger("database"))
	if err != nil {
		return fmt.Errorf("creating storage backend: %w", err)
	}
	if err := backend.Init(); err != nil {
		a.Logger.Error("Failed to initialize storage backend, falling back to memory",
			"type", cfg.Type, "error", err)
		backend = memory.New()
	}
	a.Backend = backend
	a.Logger.Info("Storage backend initialized", "storage", storage.Name(backend))
	return nil
}

// restore loads the settings and waypoints of the current session.
func (a *App) restore() {
	key := a.Session.Key()
	settings, found, err := a.Backend.LoadSettings(key)
	switch {
	case err != nil:
		a.Logger.Error("Failed to load radar settings", "key", key, "error", err)
	case found:
		a.Radar.Restore(settings)
	}
	items, err := a.Backend.LoadWaypoints(key)
	if err != nil {
		a.Logger.Error("Failed to load waypoints", "key", key, "error", err)
		return
	}
	a.Waypoints.Replace(items)
}

func (a *App) setupInflux(ctx context.Context) render.StatsSink {
	cfg := config.GetInfluxConfig()
	if !cfg.Enabled {
		return nil
	}
	backup := filepath.Join(filepath.Dir(a.LogFilePath), influxBackupName)
	if a.LogFilePath == "" {
		backup = filepath.Join(os.TempDir(), influxBackupName)
	}

	sink := influx.New(cfg, backup, a.Session.World, a.zerologger("influx"))
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sink.Connect(connectCtx); err != nil {
		a.Logger.Error("Failed to set up InfluxDB frame stats", "error", err)
		return nil
	}
	a.Influx = sink
	return sink
}

func (a *App) setupStream(version string) bool {
	cfg := config.GetSurfaceConfig()
	if !cfg.WebsocketEnabled {
		return false
	}
	stream := websocket.New(websocket.Config{
		URL:     cfg.WebsocketURL,
		Secret:  cfg.Secret,
		Buffer:  cfg.FrameBuffer,
		Version: version,
	}, a.Logger.With("component", "stream"))
	if err := stream.Connect(a.Session.Key()); err != nil {
		a.Logger.Error("Failed to connect overlay stream", "url", cfg.WebsocketURL, "error", err)
		return false
	}
	a.Stream = stream
	return true
}

func (a *App) setupMonitor() {
	deps := monitor.Dependencies{
		Logger:    a.Logger.With("component", "monitor"),
		World:     a.Session.World,
		Storage:   storage.Name(a.Backend),
		Saver:     a.Saver.Stats,
		Queues:    a.Dispatcher.QueueLengths,
		Ticks:     a.World.Ticks,
		Frames:    a.Handlers.Frames,
		Dir:       filepath.Dir(a.LogFilePath),
		Interval:  config.GetMonitorInterval(),
		StartedAt: a.StartedAt,
	}
	if a.Stream != nil {
		deps.Stream = a.Stream
	}
	a.Monitor = monitor.NewService(deps)

	if a.LogFilePath == "" {
		return
	}
	if err := a.Monitor.Start(); err != nil {
		a.Logger.Warn("Status monitor not started", "error", err)
	}
}

// registerLifecycleHandlers registers commands that act on the whole extension.
func (a *App) registerLifecycleHandlers() {
	a.Dispatcher.Register(":GETDIR:LOG:", func(e dispatcher.Event) (any, error) {
		return a.LogFilePath, nil
	})

	a.Dispatcher.Register(":SAVE:", func(e dispatcher.Event) (any, error) {
		a.Logger.Info("Received :SAVE: command, flushing pending writes")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Flush(ctx); err != nil {
			return nil, err
		}
		return "ok", nil
	}, dispatcher.Logged())
}

// Flush writes pending saves and telemetry.
func (a *App) Flush(ctx context.Context) error {
	var errs []error
	if a.Saver != nil {
		if err := a.Saver.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flushing saver: %w", err))
		}
	}
	if a.OTel != nil {
		if err := a.OTel.Flush(ctx); err != nil {
			a.Logger.Warn("Failed to flush OTel data", "error", err)
		}
	}
	if a.Monitor != nil && a.LogFilePath != "" {
		if err := a.Monitor.WriteStatus(); err != nil {
			a.Logger.Warn("Failed to write status file", "error", err)
		}
	}
	return errors.Join(errs...)
}

// Close stops every component, draining queued commands and saves first.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Monitor != nil {
		a.Monitor.Stop()
	}
	if a.Dispatcher != nil {
		a.Dispatcher.Close()
	}
	if a.Saver != nil {
		if err := a.Saver.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("closing saver: %w", err))
		}
	}
	if a.Stream != nil {
		if err := a.Stream.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing stream: %w", err))
		}
	}
	if a.Influx != nil {
		if err := a.Influx.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing influx: %w", err))
		}
	}
	if a.Backend != nil {
		if err := a.Backend.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing storage: %w", err))
		}
	}
	if a.OTel != nil {
		if err := a.OTel.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutting down otel: %w", err))
		}
	}
	a.Logger.Info("Radar extension stopped", "uptime", time.Since(a.StartedAt).Truncate(time.Second))
	a.closeLogging()
	return errors.Join(errs...)
}

func (a *App) closeLogging() {
	if a.gelf != nil {
		_ = a.gelf.Close()
		a.gelf = nil
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
	}
}

// resolve makes p relative to dir unless it is already absolute.
func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) || dir == "" {
		return p
	}
	return filepath.Join(dir, p)
}

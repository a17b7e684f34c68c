// Package worker persists radar state in the background. Every change
// notification becomes a save job; jobs for the same session and kind
// coalesce so a burst of edits turns into a single write.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/config"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/queue"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/radar"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/storage"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/waypoint"
)

// ErrClosed is returned by Flush after Close.
var ErrClosed = errors.New("saver closed")

type jobKind string

const (
	settingsJob  jobKind = "settings"
	waypointsJob jobKind = "waypoints"
)

type jobKey struct {
	kind    jobKind
	session string
}

type job struct {
	settings  radar.Settings
	waypoints []waypoint.Waypoint
}

// Stats is a point-in-time view of the saver.
type Stats struct {
	Pending   int           `json:"pending"`
	Saved     uint64        `json:"saved"`
	Failed    uint64        `json:"failed"`
	Blocked   int           `json:"blocked"`
	Waited    uint64        `json:"waited"`
	Dropped   uint64        `json:"dropped"`
	LastWrite time.Duration `json:"lastWrite"`
}

// Saver writes queued jobs to a storage backend on one goroutine.
type Saver struct {
	backend    storage.Backend
	queue      *queue.Queue[jobKey, job]
	logger     *slog.Logger
	retryDelay time.Duration
	maxRetries int

	flushCh chan chan struct{}
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
	ctx     context.Context
	cancel  context.CancelFunc

	saved     atomic.Uint64
	failed    atomic.Uint64
	waited    atomic.Uint64
	dropped   atomic.Uint64
	lastWrite atomic.Int64

	savedCounter  metric.Int64Counter
	failedCounter metric.Int64Counter
}

// NewSaver starts a saver for backend. The backend must already be
// initialized.
func NewSaver(backend storage.Backend, cfg config.WorkerConfig, logger *slog.Logger) (*Saver, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Saver{
		backend:    backend,
		queue:      queue.New[jobKey, job](cfg.QueueSize),
		logger:     logger,
		retryDelay: cfg.RetryDelay,
		maxRetries: max(cfg.MaxRetries, 0),
		flushCh:    make(chan chan struct{}),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	m := meter()
	var err error
	s.savedCounter, err = m.Int64Counter(
		"radar.saves.completed",
		metric.WithDescription("Save jobs written to storage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating saved counter: %w", err)
	}
	s.failedCounter, err = m.Int64Counter(
		"radar.saves.failed",
		metric.WithDescription("Save jobs abandoned after all retries"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}

	go s.run()
	return s, nil
}

// SaveSettings queues a settings write for session.
func (s *Saver) SaveSettings(session string, settings radar.Settings) {
	s.push(jobKey{settingsJob, session}, job{settings: settings.Clone()})
}

// SaveWaypoints queues a waypoint list write for session.
func (s *Saver) SaveWaypoints(session string, items []waypoint.Waypoint) {
	s.push(jobKey{waypointsJob, session}, job{waypoints: append([]waypoint.Waypoint(nil), items...)})
}

// push waits for room when the queue is full so no change is thrown away.
// Only a closed saver drops jobs.
func (s *Saver) push(k jobKey, j job) {
	select {
	case <-s.done:
		s.drop(k, ErrClosed)
		return
	default:
	}
	waited, err := s.queue.PushWait(s.ctx, k, j)
	if waited {
		s.waited.Add(1)
	}
	if err != nil {
		s.drop(k, ErrClosed)
	}
}

func (s *Saver) drop(k jobKey, err error) {
	s.dropped.Add(1)
	s.logger.Error("Save dropped", "kind", k.kind, "session", k.session, "error", err)
}

// Flush blocks until every job queued before the call has been attempted.
func (s *Saver) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case s.flushCh <- ack:
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes what is still queued and stops the saver. It does not
// close the backend.
func (s *Saver) Close(ctx context.Context) error {
	s.once.Do(func() { close(s.stop) })
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns the current counters.
func (s *Saver) Stats() Stats {
	return Stats{
		Pending:   s.queue.Len(),
		Saved:     s.saved.Load(),
		Failed:    s.failed.Load(),
		Blocked:   s.queue.Waiters(),
		Waited:    s.waited.Load(),
		Dropped:   s.dropped.Load(),
		LastWrite: time.Duration(s.lastWrite.Load()),
	}
}

func (s *Saver) run() {
	defer close(s.done)
	defer s.cancel()
	for {
		select {
		case <-s.stop:
			s.drain()
			return
		case <-s.queue.Ready():
			s.drain()
		case ack := <-s.flushCh:
			s.drain()
			close(ack)
		}
	}
}

func (s *Saver) drain() {
	for {
		k, j, ok := s.queue.Pop()
		if !ok {
			return
		}
		s.process(k, j)
	}
}

func (s *Saver) process(k jobKey, j job) {
	attrs := metric.WithAttributes(attribute.String("kind", string(k.kind)))
	var err error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(s.retryDelay):
			case <-s.stop:
			}
		}

		start := time.Now()
		err = s.write(k, j)
		s.lastWrite.Store(int64(time.Since(start)))
		if err == nil {
			s.saved.Add(1)
			s.savedCounter.Add(context.Background(), 1, attrs)
			return
		}
		s.logger.Warn("Save failed", "kind", k.kind, "session", k.session, "attempt", attempt+1, "error", err)
	}

	s.failed.Add(1)
	s.failedCounter.Add(context.Background(), 1, attrs)
	s.logger.Error("Save abandoned", "kind", k.kind, "session", k.session, "error", err)
}

func (s *Saver) write(k jobKey, j job) error {
	switch k.kind {
	case settingsJob:
		return s.backend.SaveSettings(k.session, j.settings)
	case waypointsJob:
		return s.backend.SaveWaypoints(k.session, j.waypoints)
	default:
		return fmt.Errorf("unknown job kind: %s", k.kind)
	}
}

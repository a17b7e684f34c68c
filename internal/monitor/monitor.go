// Package monitor assembles the extension status and periodically writes
// it to a status file next to the logs.
package monitor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/worker"
)

// StatusFileName is written inside Dependencies.Dir.
const StatusFileName = "status.json"

// Streamer is implemented by surfaces that report delivery counters.
type Streamer interface {
	Sent() uint64
	Dropped() uint64
}

// Dependencies holds everything the status is read from. Nil fields are
// left out of the status.
type Dependencies struct {
	Logger    *slog.Logger
	World     func() string
	Storage   string
	Saver     func() worker.Stats
	Queues    func() map[string]int
	Ticks     func() int
	Frames    func() int
	Stream    Streamer
	Dir       string
	Interval  time.Duration
	StartedAt time.Time
}

// StreamStatus reports overlay delivery.
type StreamStatus struct {
	Sent    uint64 `json:"sent"`
	Dropped uint64 `json:"dropped"`
}

// Status is a point-in-time view of the extension.
type Status struct {
	Time    time.Time      `json:"time"`
	Uptime  string         `json:"uptime"`
	World   string         `json:"world"`
	Storage string         `json:"storage"`
	Ticks   int            `json:"ticks"`
	Frames  int            `json:"frames"`
	Saves   *worker.Stats  `json:"saves,omitempty"`
	Queues  map[string]int `json:"queues,omitempty"`
	Stream  *StreamStatus  `json:"stream,omitempty"`
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	doneChan  chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.StartedAt.IsZero() {
		deps.StartedAt = time.Now()
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Status collects the current status.
func (s *Service) Status() Status {
	now := time.Now()
	st := Status{
		Time:    now.UTC(),
		Uptime:  now.Sub(s.deps.StartedAt).Truncate(time.Second).String(),
		Storage: s.deps.Storage,
	}
	if s.deps.World != nil {
		st.World = s.deps.World()
	}
	if s.deps.Ticks != nil {
		st.Ticks = s.deps.Ticks()
	}
	if s.deps.Frames != nil {
		st.Frames = s.deps.Frames()
	}
	if s.deps.Saver != nil {
		saves := s.deps.Saver()
		st.Saves = &saves
	}
	if s.deps.Queues != nil {
		st.Queues = s.deps.Queues()
	}
	if s.deps.Stream != nil {
		st.Stream = &StreamStatus{Sent: s.deps.Stream.Sent(), Dropped: s.deps.Stream.Dropped()}
	}
	return st
}

// WriteStatus replaces the status file with the current status.
func (s *Service) WriteStatus() error {
	data, err := json.MarshalIndent(s.Status(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	path := filepath.Join(s.deps.Dir, StatusFileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write status file: %w", err)
	}
	return os.Rename(tmp, path)
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	if s.deps.Interval <= 0 {
		return fmt.Errorf("monitor interval must be positive, got %s", s.deps.Interval)
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	stop, done := s.stopChan, s.doneChan
	s.mu.Unlock()

	go func() {
		defer close(done)

		s.deps.Logger.Debug("Starting status monitor", "interval", s.deps.Interval)
		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := s.WriteStatus(); err != nil {
					s.deps.Logger.Error("Error writing status file", "error", err)
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and waits for it to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	done := s.doneChan
	s.mu.Unlock()
	<-done
}

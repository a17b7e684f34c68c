// Package websocket streams rendered radar frames to an external overlay.
package websocket

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/pkg/core"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/pkg/streaming"
)

// Config holds overlay connection settings.
type Config struct {
	URL    string
	Secret string
	// Buffer is the number of frames queued before new ones are dropped.
	Buffer  int
	Version string
}

// Surface is a draw surface that ships each completed frame to the overlay.
// Frames are sent without blocking the render path.
type Surface struct {
	conn *connection
	cfg  Config

	mu    sync.Mutex
	frame streaming.FramePayload
	seq   uint64
}

// New creates a surface. Call Connect before rendering.
func New(cfg Config, logger *slog.Logger) *Surface {
	if logger == nil {
		logger = slog.Default()
	}
	return &Surface{
		conn: newConnection(logger, cfg.Buffer),
		cfg:  cfg,
	}
}

// Connect dials the overlay and announces the session.
func (s *Surface) Connect(session string) error {
	if err := s.conn.dial(s.cfg.URL, s.cfg.Secret); err != nil {
		return err
	}
	data, err := streaming.Marshal(streaming.TypeHello, streaming.HelloPayload{
		Session: session,
		Version: s.cfg.Version,
	})
	if err != nil {
		return fmt.Errorf("marshal hello: %w", err)
	}

	s.conn.mu.Lock()
	s.conn.hello = data
	s.conn.mu.Unlock()

	return s.conn.sendAndWait(data, streaming.TypeHello, ackTimeout)
}

// Close says goodbye and disconnects.
func (s *Surface) Close() error {
	if data, err := streaming.Marshal(streaming.TypeGoodbye, struct{}{}); err == nil {
		s.conn.send(data)
	}
	return s.conn.close()
}

func (s *Surface) BeginFrame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = streaming.FramePayload{Points: []streaming.PointPayload{}}
}

func (s *Surface) DrawPanel(bounds core.Box2D, backdrop core.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame.Bounds = bounds
	s.frame.Backdrop = backdrop
}

func (s *Surface) DrawPoint(pos core.Point2D, color core.Color, size int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame.Points = append(s.frame.Points, streaming.PointPayload{
		X: pos.X, Y: pos.Y, Color: color, Size: size,
	})
}

// EndFrame queues the frame. A full send buffer drops it.
func (s *Surface) EndFrame() {
	s.mu.Lock()
	s.seq++
	s.frame.Seq = s.seq
	frame := s.frame
	s.mu.Unlock()

	data, err := streaming.Marshal(streaming.TypeFrame, frame)
	if err != nil {
		s.conn.logger.Error("Failed to marshal frame", "error", err)
		return
	}
	s.conn.send(data)
}

// Sent returns the number of messages written to the socket.
func (s *Surface) Sent() uint64 { return s.conn.sent.Load() }

// Dropped returns the number of frames dropped on a full buffer.
func (s *Surface) Dropped() uint64 { return s.conn.dropped.Load() }

func (s *Surface) Name() string { return "websocket" }

package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/render"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/pkg/core"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/pkg/streaming"
)

var _ render.FrameSurface = (*Surface)(nil)

type messageLog struct {
	mu   sync.Mutex
	msgs []streaming.Envelope
	urls []string
}

func (m *messageLog) add(env streaming.Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, env)
}

func (m *messageLog) ofType(t string) []streaming.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []streaming.Envelope
	for _, env := range m.msgs {
		if env.Type == t {
			out = append(out, env)
		}
	}
	return out
}

// testServer acks hello messages and records everything it receives.
func testServer(t *testing.T) (*httptest.Server, *messageLog) {
	t.Helper()
	ml := &messageLog{}

	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ml.mu.Lock()
		ml.urls = append(ml.urls, r.URL.String())
		ml.mu.Unlock()

		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}
			var env streaming.Envelope
			if err := json.Unmarshal(msg, &env); err != nil {
				continue
			}
			ml.add(env)

			if env.Type == streaming.TypeHello {
				data, _ := json.Marshal(streaming.AckMessage{Type: "ack", For: env.Type})
				if err := c.WriteMessage(ws.TextMessage, data); err != nil {
					return
				}
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, ml
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestSurface_ConnectSendsHello(t *testing.T) {
	srv, ml := testServer(t)
	s := New(Config{URL: wsURL(srv), Secret: "s3cret", Version: "1.0.0"}, nil)
	require.NoError(t, s.Connect("world-1"))
	t.Cleanup(func() { _ = s.Close() })

	hellos := ml.ofType(streaming.TypeHello)
	require.Len(t, hellos, 1)
	var hp streaming.HelloPayload
	require.NoError(t, json.Unmarshal(hellos[0].Payload, &hp))
	assert.Equal(t, "world-1", hp.Session)
	assert.Equal(t, "1.0.0", hp.Version)

	ml.mu.Lock()
	assert.Contains(t, ml.urls[0], "secret=s3cret")
	ml.mu.Unlock()
}

func TestSurface_StreamsFrames(t *testing.T) {
	srv, ml := testServer(t)
	s := New(Config{URL: wsURL(srv)}, nil)
	require.NoError(t, s.Connect("w"))
	t.Cleanup(func() { _ = s.Close() })

	for range 2 {
		s.BeginFrame()
		s.DrawPanel(core.NewBox2D(core.Pt(0, 12), 65, 65), core.Black)
		s.DrawPoint(core.Pt(32.5, 13), core.Red, 3)
		s.EndFrame()
	}

	require.Eventually(t, func() bool {
		return len(ml.ofType(streaming.TypeFrame)) == 2
	}, 2*time.Second, 10*time.Millisecond)

	frames := ml.ofType(streaming.TypeFrame)
	var fp streaming.FramePayload
	require.NoError(t, json.Unmarshal(frames[1].Payload, &fp))
	assert.Equal(t, uint64(2), fp.Seq)
	require.Len(t, fp.Points, 1)
	assert.Equal(t, 32.5, fp.Points[0].X)
	assert.Equal(t, core.Red, fp.Points[0].Color)
	assert.Equal(t, float64(65), fp.Bounds.Width())
}

func TestSurface_DropsWhenBufferFull(t *testing.T) {
	// Never dialed, so nothing drains the buffer.
	s := New(Config{Buffer: 2}, nil)
	for range 5 {
		s.BeginFrame()
		s.EndFrame()
	}
	assert.Equal(t, uint64(3), s.Dropped())
	assert.Equal(t, uint64(0), s.Sent())
	assert.NoError(t, s.Close())
}

func TestSurface_ConnectFails(t *testing.T) {
	s := New(Config{URL: "ws://127.0.0.1:1/radar"}, nil)
	assert.Error(t, s.Connect("w"))
}

func TestSurface_ReplaysHelloAfterReconnect(t *testing.T) {
	srv, ml := testServer(t)
	s := New(Config{URL: wsURL(srv)}, nil)
	s.conn.backoff = 10 * time.Millisecond
	require.NoError(t, s.Connect("w"))
	t.Cleanup(func() { _ = s.Close() })

	s.conn.mu.Lock()
	current := s.conn.conn
	s.conn.mu.Unlock()
	_ = current.Close()

	require.Eventually(t, func() bool {
		return len(ml.ofType(streaming.TypeHello)) == 2
	}, 3*time.Second, 10*time.Millisecond)
}

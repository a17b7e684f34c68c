package monitor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/worker"
)

type fakeStream struct{ sent, dropped uint64 }

func (f fakeStream) Sent() uint64    { return f.sent }
func (f fakeStream) Dropped() uint64 { return f.dropped }

func fullDeps(dir string) Dependencies {
	return Dependencies{
		World:    func() string { return "survival" },
		Storage:  "sqlite",
		Saver:    func() worker.Stats { return worker.Stats{Saved: 3, Pending: 1} },
		Queues:   func() map[string]int { return map[string]int{":RADAR:TICK:": 2} },
		Ticks:    func() int { return 40 },
		Frames:   func() int { return 120 },
		Stream:   fakeStream{sent: 10, dropped: 1},
		Dir:      dir,
		Interval: 10 * time.Millisecond,
	}
}

func TestStatus_Full(t *testing.T) {
	s := NewService(fullDeps(t.TempDir()))
	st := s.Status()

	assert.Equal(t, "survival", st.World)
	assert.Equal(t, "sqlite", st.Storage)
	assert.Equal(t, 40, st.Ticks)
	assert.Equal(t, 120, st.Frames)
	require.NotNil(t, st.Saves)
	assert.Equal(t, uint64(3), st.Saves.Saved)
	assert.Equal(t, map[string]int{":RADAR:TICK:": 2}, st.Queues)
	assert.Equal(t, &StreamStatus{Sent: 10, Dropped: 1}, st.Stream)
}

func TestStatus_Minimal(t *testing.T) {
	s := NewService(Dependencies{Storage: "memory"})
	st := s.Status()

	assert.Equal(t, "memory", st.Storage)
	assert.Nil(t, st.Saves)
	assert.Nil(t, st.Stream)

	data, err := json.Marshal(st)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "saves")
}

func TestWriteStatus(t *testing.T) {
	dir := t.TempDir()
	s := NewService(fullDeps(dir))
	require.NoError(t, s.WriteStatus())

	data, err := os.ReadFile(filepath.Join(dir, StatusFileName))
	require.NoError(t, err)
	var st Status
	require.NoError(t, json.Unmarshal(data, &st))
	assert.Equal(t, "survival", st.World)
}

func TestStartStop(t *testing.T) {
	dir := t.TempDir()
	s := NewService(fullDeps(dir))

	require.NoError(t, s.Start())
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, StatusFileName))
		return err == nil
	}, time.Second, 5*time.Millisecond)

	s.Stop()
	assert.False(t, s.IsRunning())
	s.Stop()
}

func TestStart_InvalidInterval(t *testing.T) {
	s := NewService(Dependencies{})
	assert.Error(t, s.Start())
}

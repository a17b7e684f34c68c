package sim

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/pkg/core"
)

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator(7, 10, 50)
	b := NewGenerator(7, 10, 50)

	for range 5 {
		sa, sb := a.Next(), b.Next()
		sa.UpdatedAt, sb.UpdatedAt = time.Time{}, time.Time{}
		assert.Equal(t, sa, sb)
	}
}

func TestGenerator_Snapshot(t *testing.T) {
	g := NewGenerator(1, DefaultEntities, DefaultRadius)

	first := g.Next()
	assert.Equal(t, uint64(1), first.Tick)
	require.Len(t, first.Entities, DefaultEntities)
	assert.InDelta(t, walkRadius, first.Player.Position.X, 0.01)

	var last core.WorldSnapshot
	for range 500 {
		last = g.Next()
	}
	assert.Equal(t, uint64(501), last.Tick)
	for _, e := range last.Entities {
		// one step past the edge at most before turning back
		assert.LessOrEqual(t, e.Position.X*e.Position.X+e.Position.Z*e.Position.Z,
			(DefaultRadius+1)*(DefaultRadius+1), "entity %d", e.ID)
	}
}

func TestGenerator_CountClamped(t *testing.T) {
	assert.Empty(t, NewGenerator(1, -3, 0).Next().Entities)
}

type fakeHost struct {
	mu       sync.Mutex
	calls    []string
	failWith map[string]string
}

func (f *fakeHost) CallArgs(command string, args []string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, command)
	if resp, ok := f.failWith[command]; ok {
		return resp
	}
	if command == ":RADAR:TICK:" {
		var p core.LocalPlayer
		if err := json.Unmarshal([]byte(args[0]), &p); err != nil {
			return `["error", "bad player"]`
		}
	}
	return `["ok"]`
}

func (f *fakeHost) count(command string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == command {
			n++
		}
	}
	return n
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDriver_Run(t *testing.T) {
	host := &fakeHost{}
	d := NewDriver(host, NewGenerator(3, 5, 40), Config{
		World:         "sim",
		TickInterval:  2 * time.Millisecond,
		FrameInterval: 2 * time.Millisecond,
	}, quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, d.Run(ctx))

	assert.Equal(t, ":SESSION:", host.calls[0])
	ticks, frames, errs := d.Counts()
	assert.Positive(t, ticks)
	assert.Positive(t, frames)
	assert.Zero(t, errs)
	assert.Equal(t, int(ticks), host.count(":RADAR:TICK:"))
}

func TestDriver_SessionRejected(t *testing.T) {
	host := &fakeHost{failWith: map[string]string{":SESSION:": `["error", "nope"]`}}
	d := NewDriver(host, NewGenerator(3, 5, 40), Config{World: "sim"}, quietLogger())

	err := d.Run(context.Background())
	assert.ErrorContains(t, err, "switching session")
}

func TestDriver_CountsRejectedTicks(t *testing.T) {
	host := &fakeHost{failWith: map[string]string{":RADAR:TICK:": `["error", "queue full"]`}}
	d := NewDriver(host, NewGenerator(3, 5, 40), Config{
		TickInterval:  2 * time.Millisecond,
		FrameInterval: time.Hour,
	}, quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, d.Run(ctx))

	ticks, _, errs := d.Counts()
	assert.Zero(t, ticks)
	assert.Positive(t, errs)
	assert.Zero(t, host.count(":SESSION:"))
}

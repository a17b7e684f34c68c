package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/config"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/dispatcher"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/storage"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(body), 0644))
}

func call(t *testing.T, a *App, command string, args ...string) any {
	t.Helper()
	got, err := a.Dispatcher.Dispatch(dispatcher.Event{Command: command, Args: args, Timestamp: time.Now()})
	require.NoError(t, err, command)
	return got
}

func TestNew_FileStoragePersistsAcrossRestarts(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	writeConfig(t, dir, `{
		"logLevel": "debug",
		"logsDir": "logs",
		"storage": { "type": "file", "file": { "dir": "radar" } },
		"worker": { "retryDelay": "1ms" },
		"monitor": { "interval": "1h" }
	}`)

	ctx := context.Background()
	a, err := New(ctx, Options{ConfigDir: dir, Version: "1.0.0"})
	require.NoError(t, err)

	assert.Equal(t, "file", storage.Name(a.Backend))
	assert.FileExists(t, a.LogFilePath)
	assert.Equal(t, filepath.Join(dir, "logs"), filepath.Dir(a.LogFilePath))
	assert.True(t, a.Monitor.IsRunning())

	assert.Equal(t, "1.0.0", call(t, a, ":VERSION:"))
	call(t, a, ":RADAR:SCALE:UP:")
	call(t, a, ":WAYPOINT:ADD:", "10", "64", "-5", "home")
	call(t, a, ":SAVE:")
	assert.FileExists(t, filepath.Join(dir, "logs", "status.json"))

	require.NoError(t, a.Close(ctx))

	viper.Reset()
	b, err := New(ctx, Options{ConfigDir: dir, Version: "1.0.0"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close(ctx) })

	assert.Equal(t, 5, b.Radar.Scale())
	w, ok := b.Waypoints.Get(10, 64, -5)
	require.True(t, ok)
	assert.Equal(t, "home", w.Name())
}

func TestNew_MissingConfigUsesDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	viper.Set("storage.type", "memory")

	ctx := context.Background()
	a, err := New(ctx, Options{ConfigDir: dir, LogToStdout: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(ctx) })

	assert.Empty(t, a.LogFilePath)
	assert.Equal(t, "memory", storage.Name(a.Backend))
	assert.Nil(t, a.Stream)
	assert.Nil(t, a.Influx)
	assert.False(t, a.Monitor.IsRunning())
	assert.Contains(t, a.Dispatcher.Commands(), ":SAVE:")
	assert.Contains(t, a.Dispatcher.Commands(), ":RADAR:FRAME:")
}

func TestNew_UnknownStorageType(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	writeConfig(t, dir, `{ "storage": { "type": "floppy" } }`)

	_, err := New(context.Background(), Options{ConfigDir: dir, LogToStdout: true})
	assert.ErrorContains(t, err, "unknown storage type")
}

func TestResolve(t *testing.T) {
	assert.Equal(t, filepath.Join("base", "logs"), resolve("base", "logs"))
	assert.Equal(t, "", resolve("base", ""))
	abs, err := filepath.Abs("x")
	require.NoError(t, err)
	assert.Equal(t, abs, resolve("base", abs))
}

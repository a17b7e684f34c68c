package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/dispatcher"
)

var _ dispatcher.Logger = (*DispatcherLogger)(nil)

func TestDispatcherLogger(t *testing.T) {
	tests := []struct {
		name  string
		log   func(*DispatcherLogger)
		level string
		msg   string
		attrs map[string]any
	}{
		{
			name:  "debug",
			log:   func(l *DispatcherLogger) { l.Debug("handling event", "command", ":RADAR:TICK:", "args", 2) },
			level: "DEBUG",
			msg:   "handling event",
			attrs: map[string]any{"command": ":RADAR:TICK:", "args": float64(2)},
		},
		{
			name:  "info",
			log:   func(l *DispatcherLogger) { l.Info("info message", "status", "ok") },
			level: "INFO",
			msg:   "info message",
			attrs: map[string]any{"status": "ok"},
		},
		{
			name:  "error",
			log:   func(l *DispatcherLogger) { l.Error("event failed", "code", 500) },
			level: "ERROR",
			msg:   "event failed",
			attrs: map[string]any{"code": float64(500)},
		},
		{
			name:  "no key values",
			log:   func(l *DispatcherLogger) { l.Debug("simple message") },
			level: "DEBUG",
			msg:   "simple message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			tt.log(NewDispatcherLogger(logger))

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, tt.msg, entry["msg"])
			assert.Equal(t, "dispatcher", entry["component"])
			for k, v := range tt.attrs {
				assert.Equal(t, v, entry[k], k)
			}
		})
	}
}

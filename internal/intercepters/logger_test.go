package intercepters_test

import (
	"context"
	"errors"
	"testing"

	"github.com/atinyakov/shortlink/internal/intercepters"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInterceptorLogger(t *testing.T) {
	core, observedLogs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	il := intercepters.InterceptorLogger(logger)

	ctx := context.Background()

	tests := []struct {
		name     string
		level    logging.Level
		msg      string
		fields   []any
		wantLvl  zapcore.Level
		wantMsg  string
		wantKeys []string
	}{
		{
			name:    "Info level with call fields",
			level:   logging.LevelInfo,
			msg:     "started call",
			fields:  []any{"grpc.method", "Check", "grpc.request.deadline", 42},
			wantLvl: zap.InfoLevel,
			wantMsg: "started call",
			wantKeys: []string{
				"grpc.method",
				"grpc.request.deadline",
			},
		},
		{
			name:    "Debug level with bool field",
			level:   logging.LevelDebug,
			msg:     "health watch",
			fields:  []any{"serving", true},
			wantLvl: zap.DebugLevel,
			wantMsg: "health watch",
			wantKeys: []string{
				"serving",
			},
		},
		{
			name:    "Warn level with unknown field type",
			level:   logging.LevelWarn,
			msg:     "warn message",
			fields:  []any{"data", struct{ A int }{A: 1}},
			wantLvl: zap.WarnLevel,
			wantMsg: "warn message",
			wantKeys: []string{
				"data",
			},
		},
		{
			name:    "Odd field count drops dangling key",
			level:   logging.LevelInfo,
			msg:     "odd",
			fields:  []any{"grpc.service", "grpc.health.v1.Health", "dangling"},
			wantLvl: zap.InfoLevel,
			wantMsg: "odd",
			wantKeys: []string{
				"grpc.service",
			},
		},
		{
			name:    "Error level no fields",
			level:   logging.LevelError,
			msg:     "error occurred",
			fields:  nil,
			wantLvl: zap.ErrorLevel,
			wantMsg: "error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observedLogs.TakeAll()

			il.Log(ctx, tt.level, tt.msg, tt.fields...)

			logs := observedLogs.TakeAll()
			if len(logs) != 1 {
				t.Fatalf("expected 1 log entry, got %d", len(logs))
			}
			logEntry := logs[0]

			if logEntry.Level != tt.wantLvl {
				t.Errorf("got level %v, want %v", logEntry.Level, tt.wantLvl)
			}
			if logEntry.Message != tt.wantMsg {
				t.Errorf("got message %q, want %q", logEntry.Message, tt.wantMsg)
			}

			// Check keys present in fields
			for _, key := range tt.wantKeys {
				found := false
				for _, f := range logEntry.Context {
					if f.Key == key {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("expected field key %q not found in log context", key)
				}
			}
		})
	}
}

func TestInterceptorLogger_UnknownLevelPanics(t *testing.T) {
	core, _ := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	il := intercepters.InterceptorLogger(logger)

	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic for unknown logging level, but did not panic")
		}
	}()

	il.Log(context.Background(), logging.Level(999), "panic test")
}

func TestInterceptorLogger_FinishedCallFields(t *testing.T) {
	core, observedLogs := observer.New(zap.DebugLevel)
	il := intercepters.InterceptorLogger(zap.New(core))

	il.Log(context.Background(), logging.LevelInfo, "finished call",
		"protocol", "grpc",
		"grpc.component", "server",
		"grpc.service", "grpc.health.v1.Health",
		"grpc.method", "Check",
		"grpc.method_type", "unary",
		"peer.address", "bufconn",
		"grpc.code", "OK",
		"grpc.time_ms", "0.42",
	)

	logs := observedLogs.TakeAll()
	require.Len(t, logs, 1)

	fields := logs[0].ContextMap()
	assert.Equal(t, "grpc.health.v1.Health", fields["grpc.service"])
	assert.Equal(t, "Check", fields["grpc.method"])
	assert.Equal(t, "unary", fields["grpc.method_type"])
	assert.Equal(t, "OK", fields["grpc.code"])
	assert.Equal(t, "0.42", fields["grpc.time_ms"])
	assert.Equal(t, "bufconn", fields["peer.address"])
}

func TestInterceptorLogger_ErrorField(t *testing.T) {
	core, observedLogs := observer.New(zap.DebugLevel)
	il := intercepters.InterceptorLogger(zap.New(core))

	il.Log(context.Background(), logging.LevelError, "finished call",
		"grpc.code", "Unavailable",
		"grpc.error", errors.New("store down"),
		"attempt", 3,
	)

	logs := observedLogs.TakeAll()
	require.Len(t, logs, 1)
	assert.Equal(t, zap.ErrorLevel, logs[0].Level)

	fields := logs[0].ContextMap()
	assert.Equal(t, "Unavailable", fields["grpc.code"])
	assert.Equal(t, "store down", fields["grpc.error"])
	assert.Equal(t, int64(3), fields["attempt"])
}

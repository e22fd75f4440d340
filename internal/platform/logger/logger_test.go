package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestNew_DualOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "posts.log")

	l := New(Options{
		Env:          "prod",
		ConsoleLevel: "warn",
		FileLevel:    "debug",
		File:         logFile,
		App:          "posts",
	})

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	require.NoError(t, Close(l))

	content := readLog(t, logFile)
	assert.Contains(t, content, "debug message")
	assert.Contains(t, content, "info message")
	assert.Contains(t, content, "warn message")
	assert.Contains(t, content, `"level":"DEBUG"`)
	assert.Contains(t, content, `"app":"posts"`)
	assert.Contains(t, content, `"env":"prod"`)
}

func TestNew_DefaultFileLevelIsDebug(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "default.log")

	l := New(Options{Env: "prod", File: logFile, App: "comments"})
	l.Debug("debug message")
	require.NoError(t, Close(l))

	assert.Contains(t, readLog(t, logFile), "debug message")
}

func TestNew_ConsoleOnly(t *testing.T) {
	l := New(Options{Env: "dev", ConsoleLevel: "info", App: "gateway"})
	require.NotNil(t, l)

	assert.NotPanics(t, func() { l.Info("console only message") })
	assert.NoError(t, Close(l))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelError},
		{"verbose", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.in, slog.LevelError))
		})
	}
}

func TestRedactingHandler(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewRedactingHandler(slog.NewJSONHandler(&buf, nil), SensitiveKeys))

	l.With(slog.String("dsn", "postgres://blog:s3cret@db:5432/blog")).Info("db connect",
		slog.String("password", "hunter2"),
		slog.String("url", "postgres://blog:s3cret@db:5432/blog?sslmode=disable"),
		slog.String("user", "blog"),
		slog.String("upstream", "http://posts:5001/api/v1"),
	)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))

	assert.Equal(t, "[REDACTED]", rec["dsn"])
	assert.Equal(t, "[REDACTED]", rec["password"])
	assert.Equal(t, "postgres://blog:xxxxx@db:5432/blog?sslmode=disable", rec["url"])
	assert.Equal(t, "blog", rec["user"])
	assert.Equal(t, "http://posts:5001/api/v1", rec["upstream"])
	assert.NotContains(t, buf.String(), "s3cret")
}

func TestMultiHandler(t *testing.T) {
	var info, warn bytes.Buffer
	multi := NewMultiHandler(
		slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	ctx := context.Background()

	assert.True(t, multi.Enabled(ctx, slog.LevelInfo))
	assert.False(t, multi.Enabled(ctx, slog.LevelDebug))

	require.NoError(t, multi.Handle(ctx, slog.NewRecord(time.Now(), slog.LevelInfo, "only info", 0)))
	require.NoError(t, multi.WithAttrs([]slog.Attr{slog.String("k", "v")}).Handle(ctx, slog.NewRecord(time.Now(), slog.LevelError, "both", 0)))

	assert.Contains(t, info.String(), "only info")
	assert.NotContains(t, warn.String(), "only info")
	assert.Contains(t, warn.String(), "both")
	assert.True(t, strings.Contains(warn.String(), "k=v"))
	assert.NotNil(t, multi.WithGroup("group"))
}

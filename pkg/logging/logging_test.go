package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromZapEmitsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	lg := FromZap(zap.New(core))

	lg.Info("connected", "endpoint", "ws://localhost:10333")
	lg.With("subsystem", "dispatcher").Warn("late response", "id", 7)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "connected", entries[0].Message)
	assert.Equal(t, "ws://localhost:10333", entries[0].ContextMap()["endpoint"])
	assert.Equal(t, "dispatcher", entries[1].ContextMap()["subsystem"])
	assert.Equal(t, int64(7), entries[1].ContextMap()["id"])
}

func TestNewFallsBackToInfoLevel(t *testing.T) {
	// Invalid level must not panic, only fall back.
	lg := New("test", "not-a-level")
	require.NotNil(t, lg)
	lg.Debug("suppressed at info")
}

func TestNopLoggerIsSafe(t *testing.T) {
	lg := NewNop()
	lg.Debug("a")
	lg.Info("b", "k", "v")
	lg.Named("x").With("k", 1).Error("c")
}

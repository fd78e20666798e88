package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit(t *testing.T) {
	Init()
	assert.NotNil(t, log)
}

func newObservedLogger() *observer.ObservedLogs {
	core, logs := observer.New(zap.InfoLevel)
	log = zap.New(core).Sugar()
	return logs
}

func TestInfo(t *testing.T) {
	logs := newObservedLogger()

	Info("deposit confirmed", "payment_id", "pi_123")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "deposit confirmed", entries[0].Message)
	assert.Equal(t, "pi_123", entries[0].ContextMap()["payment_id"])
}

func TestError(t *testing.T) {
	logs := newObservedLogger()

	Errorf("poll tick failed: %v", "timeout")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "poll tick failed")
}

func TestDebugBelowLevel(t *testing.T) {
	logs := newObservedLogger()

	Debug("should be filtered")

	assert.Len(t, logs.All(), 0)
}

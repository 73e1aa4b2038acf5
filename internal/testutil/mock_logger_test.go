package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scoredock/scoredock/internal/infrastructure/monitoring/logging"
)

func TestMockLogger_RecordsMessages(t *testing.T) {
	t.Parallel()

	m := NewMockLogger()
	m.Info("scored", logging.Float64("score", -7.5))
	m.Warn("scoring attempt failed")

	msgs := m.GetMessages()
	assert.Len(t, msgs, 2)
	assert.Equal(t, "info", msgs[0].Level)
	assert.Equal(t, "scored", msgs[0].Message)
	assert.True(t, m.HasMessage("warn", "scoring attempt failed"))
	assert.False(t, m.HasMessage("error", "scored"))
}

func TestMockLogger_Clear(t *testing.T) {
	t.Parallel()

	m := NewMockLogger()
	m.Debug("x")
	m.Clear()
	assert.Empty(t, m.GetMessages())
}

func TestMockLogger_ChildrenShareRecorder(t *testing.T) {
	t.Parallel()

	m := NewMockLogger()
	m.Named("batch").With(logging.String("run_id", "r1")).Info("batch run started")
	assert.True(t, m.HasMessage("info", "batch run started"))
}

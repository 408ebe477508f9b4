package logging

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBHandlerPersistsErrors(t *testing.T) {
	db := database.NewTestDB(t)
	h := NewDBHandler(db, time.Hour)
	defer h.Stop()

	logger := slog.New(h).With("action", "create_guess")
	logger.Info("not persisted")
	logger.Warn("not persisted either")
	logger.Error("request failed",
		"request_id", "req-1",
		"trace_id", "trace-1",
		"user_id", "42",
		"event_id", "7",
		"error", "boom",
		"latency_ms", 12.6,
		"path", "/api/events/7",
	)
	h.Flush()

	var rows []models.SystemLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "ERROR", row.Level)
	assert.Equal(t, "request failed", row.Message)
	assert.Equal(t, "req-1", row.RequestID)
	assert.Equal(t, "trace-1", row.TraceID)
	require.NotNil(t, row.UserID)
	assert.Equal(t, "42", *row.UserID)
	require.NotNil(t, row.EventID)
	assert.Equal(t, "7", *row.EventID)
	assert.Equal(t, "create_guess", row.Action)
	assert.Equal(t, "boom", row.Error)
	assert.Equal(t, 13, row.LatencyMs)

	var extra map[string]any
	require.NoError(t, json.Unmarshal(row.Extra, &extra))
	assert.Equal(t, "/api/events/7", extra["path"])
}

func TestDBHandlerFlushesOnStop(t *testing.T) {
	db := database.NewTestDB(t)
	h := NewDBHandler(db, time.Hour)

	slog.New(h).Error("shutting down with a pending record")
	h.Stop()
	h.Stop()

	require.Eventually(t, func() bool {
		var n int64
		db.Model(&models.SystemLog{}).Count(&n)
		return n == 1
	}, time.Second, 10*time.Millisecond)
}

func TestPurgeSystemLogs(t *testing.T) {
	db := database.NewTestDB(t)
	now := time.Now()
	require.NoError(t, db.Create(&[]models.SystemLog{
		{Timestamp: now.Add(-40 * 24 * time.Hour), Level: "ERROR", Message: "old"},
		{Timestamp: now.Add(-31 * 24 * time.Hour), Level: "ERROR", Message: "also old"},
		{Timestamp: now.Add(-time.Hour), Level: "ERROR", Message: "fresh"},
	}).Error)

	deleted, err := PurgeSystemLogs(db, now.Add(-logRetention))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	var left []models.SystemLog
	require.NoError(t, db.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, "fresh", left[0].Message)
}

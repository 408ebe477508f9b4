package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const dbBatchSize = 50

// DBHandler is an slog.Handler that batches ERROR+ records into system_logs.
type DBHandler struct {
	db     *gorm.DB
	mu     sync.Mutex
	buffer []models.SystemLog
	attrs  []slog.Attr
	ticker *time.Ticker
	done   chan struct{}
	stop   sync.Once
}

func NewDBHandler(db *gorm.DB, interval time.Duration) *DBHandler {
	h := &DBHandler{
		db:     db,
		buffer: make([]models.SystemLog, 0, dbBatchSize),
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}
	go h.flushLoop()
	return h
}

func (h *DBHandler) flushLoop() {
	for {
		select {
		case <-h.ticker.C:
			h.Flush()
		case <-h.done:
			h.Flush()
			return
		}
	}
}

// Flush writes everything buffered so far.
func (h *DBHandler) Flush() {
	h.mu.Lock()
	if len(h.buffer) == 0 {
		h.mu.Unlock()
		return
	}
	batch := h.buffer
	h.buffer = make([]models.SystemLog, 0, dbBatchSize)
	h.mu.Unlock()

	if err := h.db.CreateInBatches(batch, dbBatchSize).Error; err != nil {
		// Below ERROR so it never loops back into this handler.
		slog.Warn("failed to flush system logs to DB", "error", err, "count", len(batch))
	}
}

func (h *DBHandler) Stop() {
	h.stop.Do(func() {
		h.ticker.Stop()
		close(h.done)
	})
}

// Enabled only handles ERROR and above.
func (h *DBHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *DBHandler) Handle(_ context.Context, record slog.Record) error {
	entry := models.SystemLog{
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}

	extra := make(map[string]interface{})
	apply := func(a slog.Attr) bool {
		switch a.Key {
		case "request_id":
			entry.RequestID = a.Value.String()
		case "trace_id":
			entry.TraceID = a.Value.String()
		case "user_id":
			s := a.Value.String()
			entry.UserID = &s
		case "event_id":
			s := a.Value.String()
			entry.EventID = &s
		case "action":
			entry.Action = a.Value.String()
		case "error":
			entry.Error = a.Value.String()
		case "latency_ms":
			if f, ok := a.Value.Any().(float64); ok {
				entry.LatencyMs = int(math.Round(f))
			}
		default:
			extra[a.Key] = a.Value.Any()
		}
		return true
	}
	for _, a := range h.attrs {
		apply(a)
	}
	record.Attrs(apply)

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}

	h.mu.Lock()
	h.buffer = append(h.buffer, entry)
	needFlush := len(h.buffer) >= dbBatchSize
	h.mu.Unlock()

	if needFlush {
		go h.Flush()
	}
	return nil
}

// WithAttrs returns a view that shares the buffer but carries extra attrs.
func (h *DBHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &dbHandlerView{parent: h, attrs: append(append([]slog.Attr{}, h.attrs...), attrs...)}
}

func (h *DBHandler) WithGroup(string) slog.Handler {
	return h
}

type dbHandlerView struct {
	parent *DBHandler
	attrs  []slog.Attr
}

func (v *dbHandlerView) Enabled(ctx context.Context, level slog.Level) bool {
	return v.parent.Enabled(ctx, level)
}

func (v *dbHandlerView) Handle(ctx context.Context, record slog.Record) error {
	r := record.Clone()
	r.AddAttrs(v.attrs...)
	return v.parent.Handle(ctx, r)
}

func (v *dbHandlerView) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &dbHandlerView{parent: v.parent, attrs: append(append([]slog.Attr{}, v.attrs...), attrs...)}
}

func (v *dbHandlerView) WithGroup(string) slog.Handler {
	return v
}

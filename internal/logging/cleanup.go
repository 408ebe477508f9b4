package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/babypool-backend/internal/models"
	"gorm.io/gorm"
)

const logRetention = 30 * 24 * time.Hour

// PurgeSystemLogs deletes system_logs rows older than the cutoff.
func PurgeSystemLogs(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}

// StartCleanup runs a daily goroutine that drops system_logs past retention.
func StartCleanup(db *gorm.DB, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deleted, err := PurgeSystemLogs(db, time.Now().Add(-logRetention))
				if err != nil {
					slog.Warn("log cleanup failed", "error", err)
				} else if deleted > 0 {
					slog.Info("log cleanup completed", "deleted", deleted)
				}
			case <-done:
				return
			}
		}
	}()
}

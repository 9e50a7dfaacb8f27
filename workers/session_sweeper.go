package workers

import (
	"context"
	"log"
	"time"

	"tournament-social-system/models"

	"gorm.io/gorm"
)

// SweepSessions deletes expired session rows on an interval until the context
// is cancelled. Sessions also expire on read; this keeps the table from
// accumulating dead rows.
func SweepSessions(ctx context.Context, db *gorm.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Println("[SESSIONS] sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Println("[SESSIONS] sweeper stopped")
			return
		case <-ticker.C:
			res := db.Where("expires_at < ?", time.Now()).Delete(&models.Session{})
			if res.Error != nil {
				log.Printf("[SESSIONS] sweep failed: %v", res.Error)
				continue
			}
			if res.RowsAffected > 0 {
				log.Printf("[SESSIONS] removed %d expired sessions", res.RowsAffected)
			}
		}
	}
}

package workers_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"tournament-social-system/models"
	"tournament-social-system/workers"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestSweepSessions(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Session{}); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	expired := models.Session{ID: uuid.NewString(), UserID: "u1", ExpiresAt: time.Now().Add(-time.Minute)}
	live := models.Session{ID: uuid.NewString(), UserID: "u2", ExpiresAt: time.Now().Add(time.Hour)}
	for _, s := range []models.Session{expired, live} {
		if err := db.Create(&s).Error; err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		workers.SweepSessions(ctx, db, 10*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		var count int64
		if err := db.Model(&models.Session{}).Where("id = ?", expired.ID).Count(&count).Error; err != nil {
			t.Fatal(err)
		}
		if count == 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("expired session not swept in time")
		case <-time.After(10 * time.Millisecond):
		}
	}

	var liveCount int64
	if err := db.Model(&models.Session{}).Where("id = ?", live.ID).Count(&liveCount).Error; err != nil {
		t.Fatal(err)
	}
	if liveCount != 1 {
		t.Fatal("live session was swept")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancel")
	}
}

package services

import (
	"log"
	"time"

	"tournament-social-system/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// StartSchedulers runs the background jobs: a minutely sweep that advances
// tournament statuses past their dates, and an hourly reconciliation that
// rewrites any drifted denormalized counters from the true row counts.
func StartSchedulers(db *gorm.DB) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			SweepTournamentStatuses(db)
		}),
	)
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			ReconcileCounters(db)
		}),
	)
	if err != nil {
		return nil, err
	}

	scheduler.Start()
	log.Println("[SCHEDULER] background jobs started")
	return scheduler, nil
}

// SweepTournamentStatuses moves upcoming tournaments to active once their
// start date passes, and active tournaments to completed once their end date
// passes. Tournaments without an end date stay active until edited.
func SweepTournamentStatuses(db *gorm.DB) {
	now := time.Now()

	res := db.Model(&models.Tournament{}).
		Where("status = ? AND start_date <= ?", models.TournamentUpcoming, now).
		Update("status", models.TournamentActive)
	if res.Error != nil {
		log.Printf("[SCHEDULER] activating tournaments failed: %v", res.Error)
	} else if res.RowsAffected > 0 {
		log.Printf("[SCHEDULER] activated %d tournaments", res.RowsAffected)
	}

	res = db.Model(&models.Tournament{}).
		Where("status = ? AND end_date IS NOT NULL AND end_date > ? AND end_date <= ?",
			models.TournamentActive, time.Time{}, now).
		Update("status", models.TournamentCompleted)
	if res.Error != nil {
		log.Printf("[SCHEDULER] completing tournaments failed: %v", res.Error)
	} else if res.RowsAffected > 0 {
		log.Printf("[SCHEDULER] completed %d tournaments", res.RowsAffected)
	}
}

// ReconcileCounters rewrites likes_count, comments_count, and replies_count
// wherever the stored value has drifted from the true count. Normal request
// paths already recompute inside their transactions; this catches anything a
// crash or manual edit left behind.
func ReconcileCounters(db *gorm.DB) {
	fixes := []struct {
		name string
		sql  string
	}{
		{"likes_count", `
            UPDATE social_posts SET likes_count =
                (SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = social_posts.id)
            WHERE likes_count <>
                (SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = social_posts.id)`},
		{"comments_count", `
            UPDATE social_posts SET comments_count =
                (SELECT COUNT(*) FROM comments cm WHERE cm.post_id = social_posts.id)
            WHERE comments_count <>
                (SELECT COUNT(*) FROM comments cm WHERE cm.post_id = social_posts.id)`},
		{"replies_count", `
            UPDATE tournament_discussions SET replies_count =
                (SELECT COUNT(*) FROM discussion_replies dr WHERE dr.discussion_id = tournament_discussions.id)
            WHERE replies_count <>
                (SELECT COUNT(*) FROM discussion_replies dr WHERE dr.discussion_id = tournament_discussions.id)`},
	}

	for _, fix := range fixes {
		res := db.Exec(fix.sql)
		if res.Error != nil {
			log.Printf("[SCHEDULER] reconciling %s failed: %v", fix.name, res.Error)
			continue
		}
		if res.RowsAffected > 0 {
			log.Printf("[SCHEDULER] reconciled %s on %d rows", fix.name, res.RowsAffected)
		}
	}
}

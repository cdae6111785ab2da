// File: /jobs/notification_cleanup_job.go
package jobs

import (
	"fmt"
	"gorm.io/gorm"
	"time"
	"tripcrew-api/services"
)

// Read notifications older than this are pruned
const notificationRetentionDays = 30

// NotificationCleanupJob handles periodic cleanup of old read notifications
type NotificationCleanupJob struct {
	db                  *gorm.DB
	notificationService *services.NotificationService
	ticker              *time.Ticker
	done                chan bool
}

// NewNotificationCleanupJob creates a new notification cleanup job
func NewNotificationCleanupJob(db *gorm.DB, interval time.Duration) *NotificationCleanupJob {
	return &NotificationCleanupJob{
		db:                  db,
		notificationService: services.NewNotificationService(db),
		ticker:              time.NewTicker(interval),
		done:                make(chan bool),
	}
}

// Start begins the cleanup job
func (j *NotificationCleanupJob) Start() {
	fmt.Println("Notification cleanup job started")

	go func() {
		// Run immediately on start
		j.cleanup()

		// Then run on schedule
		for {
			select {
			case <-j.ticker.C:
				j.cleanup()
			case <-j.done:
				fmt.Println("Notification cleanup job stopped")
				return
			}
		}
	}()
}

// Stop stops the cleanup job
func (j *NotificationCleanupJob) Stop() {
	j.ticker.Stop()
	j.done <- true
}

// cleanup performs the actual cleanup
func (j *NotificationCleanupJob) cleanup() {
	deleted, err := j.notificationService.DeleteReadOlderThan(notificationRetentionDays)
	if err != nil {
		fmt.Printf("Error during notification cleanup: %v\n", err)
		return
	}

	if deleted > 0 {
		fmt.Printf("Notification cleanup removed %d read notifications\n", deleted)
	}
}

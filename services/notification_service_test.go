// File: /services/notification_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tripcrew-api/models"
)

func TestNotifyJoinRequestTargetsOrganizer(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db)

	organizer := createTestUser(t, db, "Olivia")
	applicant := createTestUser(t, db, "Adam")
	trip := createTestTrip(t, db, organizer.ID, 4)

	require.NoError(t, svc.NotifyJoinRequest(trip, applicant.ID))

	responses, total, err := svc.List(organizer.ID, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, responses, 1)
	assert.Equal(t, models.NotificationTypeJoinRequest, responses[0].Type)
	assert.Equal(t, applicant.ID, responses[0].ActorUser.ID)
	assert.False(t, responses[0].IsRead)

	// The applicant gets nothing out of their own request
	_, total, err = svc.List(applicant.ID, 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestNotifySkipsSelf(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db)

	organizer := createTestUser(t, db, "Olivia")
	trip := createTestTrip(t, db, organizer.ID, 4)

	// Actor and target are the same user; no row should be written
	require.NoError(t, svc.NotifyApproval(trip, organizer.ID))

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestMarkReadScopedToOwner(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db)

	organizer := createTestUser(t, db, "Olivia")
	applicant := createTestUser(t, db, "Adam")
	stranger := createTestUser(t, db, "Sam")
	trip := createTestTrip(t, db, organizer.ID, 4)

	require.NoError(t, svc.NotifyJoinRequest(trip, applicant.ID))

	responses, _, err := svc.List(organizer.ID, 1, 20)
	require.NoError(t, err)
	require.Len(t, responses, 1)

	// Another user cannot mark it
	err = svc.MarkRead(stranger.ID, responses[0].ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	require.NoError(t, svc.MarkRead(organizer.ID, responses[0].ID))

	stats, err := svc.Stats(organizer.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.UnreadCount)
	assert.Equal(t, 1, stats.TotalCount)
}

func TestMarkAllRead(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db)

	organizer := createTestUser(t, db, "Olivia")
	trip := createTestTrip(t, db, organizer.ID, 4)

	for i := 0; i < 3; i++ {
		applicant := createTestUser(t, db, "Adam")
		require.NoError(t, svc.NotifyJoinRequest(trip, applicant.ID))
	}

	stats, err := svc.Stats(organizer.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.UnreadCount)

	require.NoError(t, svc.MarkAllRead(organizer.ID))

	stats, err = svc.Stats(organizer.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.UnreadCount)
	assert.Equal(t, 3, stats.TotalCount)
}

func TestDeleteReadOlderThan(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db)

	organizer := createTestUser(t, db, "Olivia")
	applicant := createTestUser(t, db, "Adam")
	trip := createTestTrip(t, db, organizer.ID, 4)

	stale := models.Notification{
		ID:           uuid.New().String(),
		Type:         models.NotificationTypeJoinRequest,
		ActorUserID:  applicant.ID,
		TargetUserID: organizer.ID,
		TripID:       &trip.ID,
		IsRead:       true,
		CreatedAt:    time.Now().AddDate(0, 0, -60),
	}
	require.NoError(t, db.Create(&stale).Error)

	staleUnread := stale
	staleUnread.ID = uuid.New().String()
	staleUnread.IsRead = false
	require.NoError(t, db.Create(&staleUnread).Error)

	fresh := stale
	fresh.ID = uuid.New().String()
	fresh.CreatedAt = time.Now()
	require.NoError(t, db.Create(&fresh).Error)

	deleted, err := svc.DeleteReadOlderThan(30)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	// Unread notifications are kept no matter how old
	var remaining int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&remaining).Error)
	assert.EqualValues(t, 2, remaining)
}

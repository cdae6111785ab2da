// File: /services/notification_service.go
package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"tripcrew-api/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// NotifyJoinRequest tells the organizer that someone asked to join.
func (s *NotificationService) NotifyJoinRequest(trip *models.Trip, actorID string) error {
	return s.create(models.NotificationTypeJoinRequest, actorID, trip.OrganizerID, trip.ID)
}

// NotifyApproval tells the applicant that the organizer let them in.
func (s *NotificationService) NotifyApproval(trip *models.Trip, participantID string) error {
	return s.create(models.NotificationTypeRequestApproved, trip.OrganizerID, participantID, trip.ID)
}

func (s *NotificationService) create(notificationType models.NotificationType, actorID, targetID, tripID string) error {
	if actorID == targetID {
		return nil
	}

	notification := models.Notification{
		ID:           uuid.New().String(),
		Type:         notificationType,
		ActorUserID:  actorID,
		TargetUserID: targetID,
		TripID:       &tripID,
	}
	return s.db.Create(&notification).Error
}

// List returns a page of the user's notifications, newest first.
func (s *NotificationService) List(userID string, page, limit int) ([]models.NotificationResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	offset := (page - 1) * limit

	var total int64
	if err := s.db.Model(&models.Notification{}).Where("target_user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	err := s.db.Preload("ActorUser").Preload("Trip").
		Where("target_user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}

	responses := make([]models.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		n := &notifications[i]
		response := models.NotificationResponse{
			ID:        n.ID,
			Type:      n.Type,
			ActorUser: n.ActorUser.Summary(),
			TripID:    n.TripID,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
			Message:   n.GetNotificationMessage(),
			TimeAgo:   n.GetTimeAgo(),
		}
		if n.Trip != nil {
			response.TripTitle = n.Trip.Title
		}
		responses = append(responses, response)
	}

	return responses, total, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(userID, notificationID string) error {
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND target_user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read.
func (s *NotificationService) MarkAllRead(userID string) error {
	return s.db.Model(&models.Notification{}).
		Where("target_user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

// Stats returns unread/total counts for the user's notification badge.
func (s *NotificationService) Stats(userID string) (*models.NotificationStats, error) {
	var total, unread int64
	if err := s.db.Model(&models.Notification{}).Where("target_user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Notification{}).
		Where("target_user_id = ? AND is_read = ?", userID, false).
		Count(&unread).Error; err != nil {
		return nil, err
	}

	return &models.NotificationStats{
		UnreadCount: int(unread),
		TotalCount:  int(total),
	}, nil
}

// DeleteReadOlderThan prunes read notifications past the retention window.
// Used by the cleanup job.
func (s *NotificationService) DeleteReadOlderThan(days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	result := s.db.Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

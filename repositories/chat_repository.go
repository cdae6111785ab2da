// File: /repositories/chat_repository.go
package repositories

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"tripcrew-api/models"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// FindOrCreateRoom resolves the single chat room of a trip, creating it on
// first access. The organizer is seeded as a room member together with the
// room so the trip owner can always read their own trip's chat.
func (r *ChatRepository) FindOrCreateRoom(tripID string) (*models.ChatRoom, error) {
	return FindOrCreateRoomTx(r.db, tripID)
}

// FindOrCreateRoomTx is the transaction-aware variant used by the approval
// workflow, which must create the room and grant membership atomically.
func FindOrCreateRoomTx(tx *gorm.DB, tripID string) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := tx.Where("trip_id = ?", tripID).First(&room).Error
	if err == nil {
		return &room, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var trip models.Trip
	if err := tx.First(&trip, "id = ?", tripID).Error; err != nil {
		return nil, err
	}

	room = models.ChatRoom{
		ID:        uuid.New().String(),
		TripID:    tripID,
		CreatedAt: time.Now(),
	}
	if err := tx.Create(&room).Error; err != nil {
		return nil, err
	}

	organizer := models.ChatRoomParticipant{
		RoomID: room.ID,
		UserID: trip.OrganizerID,
	}
	if err := tx.Create(&organizer).Error; err != nil {
		return nil, err
	}

	return &room, nil
}

// IsMember reports whether the user holds a membership marker for the room.
func (r *ChatRepository) IsMember(roomID, userID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.ChatRoomParticipant{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddMemberTx grants a user access to a room inside the caller's
// transaction. Granting twice is a no-op.
func AddMemberTx(tx *gorm.DB, roomID, userID string) error {
	var existing models.ChatRoomParticipant
	err := tx.Where("room_id = ? AND user_id = ?", roomID, userID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	member := models.ChatRoomParticipant{
		RoomID: roomID,
		UserID: userID,
	}
	return tx.Create(&member).Error
}

// MessagesByRoom returns the room's full history ordered by creation time
// ascending, each message carrying its resolved sender.
func (r *ChatRepository) MessagesByRoom(roomID string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.Preload("Sender").
		Where("room_id = ?", roomID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MessagesSince returns the room's messages created strictly after the given
// time, oldest first. Used to catch a freshly opened socket up on what
// arrived between the client's history fetch and the subscription opening.
func (r *ChatRepository) MessagesSince(roomID string, since time.Time) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.Preload("Sender").
		Where("room_id = ? AND created_at > ?", roomID, since).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// CreateMessage persists a new message and loads its sender for broadcast.
func (r *ChatRepository) CreateMessage(roomID, senderID, content string) (*models.ChatMessage, error) {
	message := models.ChatMessage{
		ID:        uuid.New().String(),
		RoomID:    roomID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := r.db.Create(&message).Error; err != nil {
		return nil, err
	}
	if err := r.db.Preload("Sender").First(&message, "id = ?", message.ID).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

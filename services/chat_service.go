// File: /services/chat_service.go
package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"tripcrew-api/models"
	"tripcrew-api/realtime"
	"tripcrew-api/repositories"
)

var (
	ErrChatAccessDenied = errors.New("not a member of this trip's chat")
	ErrEmptyMessage     = errors.New("message content must not be empty")
	ErrRoomNotFound     = errors.New("chat room not found")
)

// ChatSession is the resolved state of one (trip, user) chat session. Denied
// sessions carry no room and must not be used for history or subscription.
type ChatSession struct {
	Room     *models.ChatRoom
	Messages []models.ChatMessage
	Denied   bool
}

type ChatService struct {
	db   *gorm.DB
	repo *repositories.ChatRepository
	hub  *realtime.Hub
}

func NewChatService(db *gorm.DB, hub *realtime.Hub) *ChatService {
	return &ChatService{
		db:   db,
		repo: repositories.NewChatRepository(db),
		hub:  hub,
	}
}

// Hub exposes the live subscription broker for transport handlers.
func (s *ChatService) Hub() *realtime.Hub {
	return s.hub
}

// Resolve runs the room lookup for a viewer: finds or creates the trip's
// room, checks the viewer's membership marker and, when access is granted,
// fetches the full history ordered by creation time.
func (s *ChatService) Resolve(tripID, userID string) (*ChatSession, error) {
	var trip models.Trip
	if err := s.db.First(&trip, "id = ?", tripID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}

	room, err := s.repo.FindOrCreateRoom(tripID)
	if err != nil {
		return nil, err
	}

	member, err := s.repo.IsMember(room.ID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return &ChatSession{Denied: true}, nil
	}

	messages, err := s.repo.MessagesByRoom(room.ID)
	if err != nil {
		return nil, err
	}

	return &ChatSession{Room: room, Messages: messages}, nil
}

// MessagesSince returns the room's messages created after the given time as
// broadcast payloads, oldest first. The websocket handler replays these on
// connect so a message created between the client's history fetch and the
// socket opening is not lost.
func (s *ChatService) MessagesSince(roomID string, since time.Time) ([]models.MessagePayload, error) {
	messages, err := s.repo.MessagesSince(roomID, since)
	if err != nil {
		return nil, err
	}

	payloads := make([]models.MessagePayload, 0, len(messages))
	for i := range messages {
		payloads = append(payloads, messages[i].Payload())
	}
	return payloads, nil
}

// Send persists a message and broadcasts it to every live subscriber of the
// room, the sender included. The sender sees their own message through the
// subscription round trip only; nothing is echoed back directly.
func (s *ChatService) Send(roomID, senderID, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyMessage
	}

	var room models.ChatRoom
	if err := s.db.First(&room, "id = ?", roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoomNotFound
		}
		return err
	}

	member, err := s.repo.IsMember(roomID, senderID)
	if err != nil {
		return err
	}
	if !member {
		return ErrChatAccessDenied
	}

	message, err := s.repo.CreateMessage(roomID, senderID, content)
	if err != nil {
		return err
	}

	s.hub.Broadcast(roomID, message.Payload())
	return nil
}

// Timeline renders an ordered message list with one date separator per
// distinct calendar day, placed before the first message of that day.
func Timeline(messages []models.ChatMessage) []models.TimelineEntry {
	entries := make([]models.TimelineEntry, 0, len(messages))

	lastDay := ""
	for i := range messages {
		day := messages[i].CreatedAt.Format("2006-01-02")
		if day != lastDay {
			entries = append(entries, models.TimelineEntry{
				Kind: "separator",
				Date: day,
			})
			lastDay = day
		}
		payload := messages[i].Payload()
		entries = append(entries, models.TimelineEntry{
			Kind:    "message",
			Message: &payload,
		})
	}

	return entries
}

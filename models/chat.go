// File: /models/chat.go
package models

import (
	"time"
)

// ChatRoom is the single chat room of a trip, created lazily on first access.
type ChatRoom struct {
	ID        string    `json:"id" gorm:"primaryKey;size:191"`
	TripID    string    `json:"trip_id" gorm:"uniqueIndex;not null;size:191"`
	CreatedAt time.Time `json:"created_at"`

	Trip Trip `json:"-" gorm:"foreignKey:TripID"`
}

// ChatRoomParticipant marks a user as allowed to read and write a room's
// messages. Granted to the organizer when the room is created and to every
// participant on approval.
type ChatRoomParticipant struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	RoomID    string    `json:"room_id" gorm:"not null;size:191;index:idx_chat_room_participants_room_user,unique"`
	UserID    string    `json:"user_id" gorm:"not null;size:191;index:idx_chat_room_participants_room_user,unique"`
	CreatedAt time.Time `json:"created_at"`

	Room ChatRoom `json:"-" gorm:"foreignKey:RoomID"`
	User User     `json:"-" gorm:"foreignKey:UserID"`
}

type ChatMessage struct {
	ID        string    `json:"id" gorm:"primaryKey;size:191"`
	RoomID    string    `json:"room_id" gorm:"not null;size:191;index"`
	SenderID  string    `json:"sender_id" gorm:"not null;size:191"`
	Content   string    `json:"content" gorm:"not null;type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	Room   ChatRoom `json:"-" gorm:"foreignKey:RoomID"`
	Sender User     `json:"sender" gorm:"foreignKey:SenderID"`
}

// MessagePayload is what the live subscription delivers: the raw message row
// plus the resolved sender display fields, so subscribers need no second
// lookup before rendering.
type MessagePayload struct {
	ID           string    `json:"id"`
	RoomID       string    `json:"room_id"`
	SenderID     string    `json:"sender_id"`
	SenderName   string    `json:"sender_name"`
	SenderAvatar *string   `json:"sender_avatar"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
}

// TimelineEntry is one element of the rendered message list: either a date
// separator or a message. Separators appear exactly once per distinct
// calendar day, before the first message of that day.
type TimelineEntry struct {
	Kind    string          `json:"kind"` // "separator" or "message"
	Date    string          `json:"date,omitempty"`
	Message *MessagePayload `json:"message,omitempty"`
}

func (m *ChatMessage) Payload() MessagePayload {
	return MessagePayload{
		ID:           m.ID,
		RoomID:       m.RoomID,
		SenderID:     m.SenderID,
		SenderName:   m.Sender.FullName(),
		SenderAvatar: m.Sender.Avatar,
		Content:      m.Content,
		CreatedAt:    m.CreatedAt,
	}
}

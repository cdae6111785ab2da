// File: /services/chat_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tripcrew-api/models"
	"tripcrew-api/realtime"
)

func TestResolveDeniedForStranger(t *testing.T) {
	db := setupTestDB(t)
	chat := NewChatService(db, realtime.NewHub())

	organizer := createTestUser(t, db, "Olivia")
	stranger := createTestUser(t, db, "Sam")
	trip := createTestTrip(t, db, organizer.ID, 4)

	session, err := chat.Resolve(trip.ID, stranger.ID)
	require.NoError(t, err)
	assert.True(t, session.Denied)
	assert.Nil(t, session.Room)
	assert.Empty(t, session.Messages)
}

func TestResolveReadyForOrganizer(t *testing.T) {
	db := setupTestDB(t)
	chat := NewChatService(db, realtime.NewHub())

	organizer := createTestUser(t, db, "Olivia")
	trip := createTestTrip(t, db, organizer.ID, 4)

	// Room is created lazily and the organizer is seeded as a member
	session, err := chat.Resolve(trip.ID, organizer.ID)
	require.NoError(t, err)
	assert.False(t, session.Denied)
	require.NotNil(t, session.Room)
	assert.Equal(t, trip.ID, session.Room.TripID)
}

func TestResolveCreatesExactlyOneRoom(t *testing.T) {
	db := setupTestDB(t)
	chat := NewChatService(db, realtime.NewHub())

	organizer := createTestUser(t, db, "Olivia")
	trip := createTestTrip(t, db, organizer.ID, 4)

	first, err := chat.Resolve(trip.ID, organizer.ID)
	require.NoError(t, err)
	second, err := chat.Resolve(trip.ID, organizer.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Room.ID, second.Room.ID)

	var rooms int64
	require.NoError(t, db.Model(&models.ChatRoom{}).
		Where("trip_id = ?", trip.ID).
		Count(&rooms).Error)
	assert.EqualValues(t, 1, rooms)
}

func TestResolveForUnknownTrip(t *testing.T) {
	db := setupTestDB(t)
	chat := NewChatService(db, realtime.NewHub())

	user := createTestUser(t, db, "Sam")

	_, err := chat.Resolve(uuid.New().String(), user.ID)
	assert.ErrorIs(t, err, ErrTripNotFound)
}

func TestSendRejectsEmptyContent(t *testing.T) {
	db := setupTestDB(t)
	chat := NewChatService(db, realtime.NewHub())

	organizer := createTestUser(t, db, "Olivia")
	trip := createTestTrip(t, db, organizer.ID, 4)

	session, err := chat.Resolve(trip.ID, organizer.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, chat.Send(session.Room.ID, organizer.ID, ""), ErrEmptyMessage)
	assert.ErrorIs(t, chat.Send(session.Room.ID, organizer.ID, "   \n\t "), ErrEmptyMessage)

	var count int64
	require.NoError(t, db.Model(&models.ChatMessage{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestSendRejectsNonMember(t *testing.T) {
	db := setupTestDB(t)
	chat := NewChatService(db, realtime.NewHub())

	organizer := createTestUser(t, db, "Olivia")
	stranger := createTestUser(t, db, "Sam")
	trip := createTestTrip(t, db, organizer.ID, 4)

	session, err := chat.Resolve(trip.ID, organizer.ID)
	require.NoError(t, err)

	err = chat.Send(session.Room.ID, stranger.ID, "let me in")
	assert.ErrorIs(t, err, ErrChatAccessDenied)
}

func TestSendDeliversExactlyOnceViaSubscription(t *testing.T) {
	db := setupTestDB(t)
	hub := realtime.NewHub()
	chat := NewChatService(db, hub)

	organizer := createTestUser(t, db, "Olivia")
	trip := createTestTrip(t, db, organizer.ID, 4)

	session, err := chat.Resolve(trip.ID, organizer.ID)
	require.NoError(t, err)
	roomID := session.Room.ID

	// The sender's own subscription is the only echo path
	sub := hub.Subscribe(roomID)
	defer sub.Unsubscribe()

	require.NoError(t, chat.Send(roomID, organizer.ID, "hello"))

	select {
	case payload := <-sub.C:
		assert.Equal(t, "hello", payload.Content)
		assert.Equal(t, organizer.ID, payload.SenderID)
		assert.Equal(t, organizer.FullName(), payload.SenderName)
		assert.Equal(t, roomID, payload.RoomID)
	case <-time.After(time.Second):
		t.Fatal("expected the sent message to arrive on the subscription")
	}

	// No duplicate delivery
	select {
	case payload := <-sub.C:
		t.Fatalf("unexpected second delivery: %+v", payload)
	case <-time.After(50 * time.Millisecond):
	}

	// Exactly one copy in the ordered history
	session, err = chat.Resolve(trip.ID, organizer.ID)
	require.NoError(t, err)
	hellos := 0
	for _, m := range session.Messages {
		if m.Content == "hello" {
			hellos++
			assert.Equal(t, organizer.ID, m.SenderID)
		}
	}
	assert.Equal(t, 1, hellos)
}

func TestHistoryOrderedByCreationTime(t *testing.T) {
	db := setupTestDB(t)
	chat := NewChatService(db, realtime.NewHub())

	organizer := createTestUser(t, db, "Olivia")
	trip := createTestTrip(t, db, organizer.ID, 4)

	session, err := chat.Resolve(trip.ID, organizer.ID)
	require.NoError(t, err)
	roomID := session.Room.ID

	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	// Insert out of order; history must come back by timestamp
	for _, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		msg := models.ChatMessage{
			ID:        uuid.New().String(),
			RoomID:    roomID,
			SenderID:  organizer.ID,
			Content:   offset.String(),
			CreatedAt: base.Add(offset),
		}
		require.NoError(t, db.Create(&msg).Error)
	}

	session, err = chat.Resolve(trip.ID, organizer.ID)
	require.NoError(t, err)
	require.Len(t, session.Messages, 3)
	for i := 1; i < len(session.Messages); i++ {
		assert.False(t, session.Messages[i].CreatedAt.Before(session.Messages[i-1].CreatedAt))
	}
}

func TestMessagesSinceReturnsOnlyNewer(t *testing.T) {
	db := setupTestDB(t)
	chat := NewChatService(db, realtime.NewHub())

	organizer := createTestUser(t, db, "Olivia")
	trip := createTestTrip(t, db, organizer.ID, 4)

	session, err := chat.Resolve(trip.ID, organizer.ID)
	require.NoError(t, err)
	roomID := session.Room.ID

	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	for i, content := range []string{"old", "newer", "newest"} {
		msg := models.ChatMessage{
			ID:        uuid.New().String(),
			RoomID:    roomID,
			SenderID:  organizer.ID,
			Content:   content,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, db.Create(&msg).Error)
	}

	// The cut falls between "old" and "newer"
	tail, err := chat.MessagesSince(roomID, base.Add(30*time.Minute))
	require.NoError(t, err)
	require.Len(t, tail, 2)
	assert.Equal(t, "newer", tail[0].Content)
	assert.Equal(t, "newest", tail[1].Content)
	assert.Equal(t, organizer.FullName(), tail[0].SenderName)

	// A cut at the latest message returns nothing
	tail, err = chat.MessagesSince(roomID, base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, tail)
}

func TestTimelineOneSeparatorPerDay(t *testing.T) {
	sender := models.User{ID: "u1", FirstName: "Olivia", LastName: "Tester"}

	day1 := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 21, 8, 0, 0, 0, time.UTC)

	messages := []models.ChatMessage{
		{ID: "m1", Content: "first", CreatedAt: day1, Sender: sender},
		{ID: "m2", Content: "second", CreatedAt: day1.Add(2 * time.Hour), Sender: sender},
		{ID: "m3", Content: "third", CreatedAt: day2, Sender: sender},
		{ID: "m4", Content: "fourth", CreatedAt: day2.Add(time.Minute), Sender: sender},
	}

	entries := Timeline(messages)
	require.Len(t, entries, 6)

	assert.Equal(t, "separator", entries[0].Kind)
	assert.Equal(t, "2026-08-20", entries[0].Date)
	assert.Equal(t, "first", entries[1].Message.Content)
	assert.Equal(t, "second", entries[2].Message.Content)

	assert.Equal(t, "separator", entries[3].Kind)
	assert.Equal(t, "2026-08-21", entries[3].Date)
	assert.Equal(t, "third", entries[4].Message.Content)
	assert.Equal(t, "fourth", entries[5].Message.Content)

	separators := 0
	for _, e := range entries {
		if e.Kind == "separator" {
			separators++
		}
	}
	assert.Equal(t, 2, separators)
}

func TestTimelineEmpty(t *testing.T) {
	assert.Empty(t, Timeline(nil))
}

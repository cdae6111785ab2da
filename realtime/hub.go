// File: /realtime/hub.go
package realtime

import (
	"sync"

	"tripcrew-api/models"
)

// subscriptionBuffer is how many undelivered payloads a subscriber may lag
// behind before the hub starts dropping towards it.
const subscriptionBuffer = 32

// Subscription is one live listener on a room. Events arrive on C until
// Unsubscribe is called, after which C is closed.
type Subscription struct {
	roomID string
	C      chan models.MessagePayload

	hub  *Hub
	once sync.Once
}

// RoomID returns the room this subscription is scoped to.
func (s *Subscription) RoomID() string {
	return s.roomID
}

// Unsubscribe detaches the subscription from its room and closes C.
// Safe to call more than once and from any exit path.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.C)
	})
}

// Hub fans chat messages out to the live subscribers of each room. It holds
// no message state of its own; the row store stays the source of truth.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Subscription]struct{}),
	}
}

// Subscribe registers a new listener on the given room.
func (h *Hub) Subscribe(roomID string) *Subscription {
	sub := &Subscription{
		roomID: roomID,
		C:      make(chan models.MessagePayload, subscriptionBuffer),
		hub:    h,
	}

	h.mu.Lock()
	subs, ok := h.rooms[roomID]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.rooms[roomID] = subs
	}
	subs[sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

// Broadcast delivers a payload to every subscriber of the room, the sender's
// own subscription included. A subscriber whose buffer is full misses the
// payload rather than blocking everyone else.
func (h *Hub) Broadcast(roomID string, payload models.MessagePayload) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.rooms[roomID] {
		select {
		case sub.C <- payload:
		default:
		}
	}
}

// RoomSize reports the number of live subscribers on a room.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.rooms[sub.roomID]
	if !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.rooms, sub.roomID)
	}
}

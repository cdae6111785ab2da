// File: /controllers/chat_controller.go
package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"tripcrew-api/models"
	"tripcrew-api/realtime"
	"tripcrew-api/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser origin checks are handled by the CORS layer; the socket
	// itself is gated by the membership check below.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type ChatController struct {
	chat *services.ChatService
}

func NewChatController(chat *services.ChatService) *ChatController {
	return &ChatController{chat: chat}
}

// GetRoom resolves the trip's chat for the viewer: 403 when the viewer holds
// no membership marker, otherwise the room plus its full history and the
// day-grouped timeline.
func (cc *ChatController) GetRoom(c *gin.Context) {
	userID := c.GetString("user_id")
	tripID := c.Param("id")

	session, err := cc.chat.Resolve(tripID, userID)
	if err != nil {
		if errors.Is(err, services.ErrTripNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve chat room"})
		return
	}

	if session.Denied {
		c.JSON(http.StatusForbidden, gin.H{"error": "You must be an approved participant to access this chat"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"room":     session.Room,
		"messages": session.Messages,
		"timeline": services.Timeline(session.Messages),
	})
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// SendMessage persists a message. The new message reaches the sender through
// their live subscription like everyone else's messages, so the response
// carries no message body.
func (cc *ChatController) SendMessage(c *gin.Context) {
	userID := c.GetString("user_id")
	tripID := c.Param("id")

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := cc.chat.Resolve(tripID, userID)
	if err != nil {
		if errors.Is(err, services.ErrTripNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve chat room"})
		return
	}
	if session.Denied {
		c.JSON(http.StatusForbidden, gin.H{"error": "You must be an approved participant to access this chat"})
		return
	}

	if err := cc.chat.Send(session.Room.ID, userID, req.Content); err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrChatAccessDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Message sent"})
}

// ServeWebsocket upgrades the connection and streams new room messages until
// the client disconnects. The subscription is torn down on every exit path.
func (cc *ChatController) ServeWebsocket(c *gin.Context) {
	userID := c.GetString("user_id")
	tripID := c.Param("id")

	session, err := cc.chat.Resolve(tripID, userID)
	if err != nil {
		if errors.Is(err, services.ErrTripNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve chat room"})
		return
	}
	if session.Denied {
		c.JSON(http.StatusForbidden, gin.H{"error": "You must be an approved participant to access this chat"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("chat websocket upgrade failed: %v", err)
		return
	}

	roomID := session.Room.ID
	sub := cc.chat.Hub().Subscribe(roomID)

	// Catch the client up on messages created after its history fetch. The
	// subscription is live before the query runs, so a message can land in
	// the replay or the live stream but never between the two; duplicates
	// are suppressed by ID in the write pump.
	var replay []models.MessagePayload
	if raw := c.Query("since"); raw != "" {
		if since, perr := time.Parse(time.RFC3339, raw); perr == nil {
			if tail, terr := cc.chat.MessagesSince(roomID, since); terr == nil {
				replay = tail
			}
		}
	}

	realtime.ServeRoom(conn, sub, replay, func(content string) error {
		return cc.chat.Send(roomID, userID, content)
	})
}

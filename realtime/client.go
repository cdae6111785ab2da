// File: /realtime/client.go
package realtime

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
	"tripcrew-api/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size in bytes
	maxMessageSize = 4096

	// Error replies queued for the writer beyond this are dropped; the
	// reader must never block on a writer that has already exited.
	errorReplyBuffer = 8
)

// inboundMessage is what a connected client sends over the socket.
type inboundMessage struct {
	Content string `json:"content"`
}

// outboundError tells the client why an inbound message was refused without
// tearing the connection down.
type outboundError struct {
	Error string `json:"error"`
}

// SendFunc persists and broadcasts one chat message on behalf of the
// connected user. The delivered payload comes back through the subscription
// like everyone else's messages; there is no local echo.
type SendFunc func(content string) error

// ServeRoom pumps a room subscription over a websocket connection until the
// peer disconnects or errors. Every write to the connection happens on the
// writer goroutine: replayed payloads, live payloads, pings and error
// replies alike, so the two pumps never write concurrently. replay is
// written before the live stream; a payload broadcast while the replay was
// being fetched is suppressed by ID so the client sees each message once.
// The subscription is released on every exit path; the connection is closed
// before returning.
func ServeRoom(conn *websocket.Conn, sub *Subscription, replay []models.MessagePayload, send SendFunc) {
	errs := make(chan outboundError, errorReplyBuffer)
	done := make(chan struct{})

	go writePump(conn, sub, replay, errs, done)
	readPump(conn, errs, send)

	// Reader finished: release the subscription so writePump drains out,
	// then close the socket.
	sub.Unsubscribe()
	<-done
	conn.Close()
}

func readPump(conn *websocket.Conn, errs chan<- outboundError, send SendFunc) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("chat socket read error: %v", err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		if err := send(msg.Content); err != nil {
			// Hand the reply to the writer goroutine; the read side
			// never writes to the connection itself. Dropped when
			// the writer is saturated or gone.
			select {
			case errs <- outboundError{Error: err.Error()}:
			default:
			}
		}
	}
}

func writePump(conn *websocket.Conn, sub *Subscription, replay []models.MessagePayload, errs <-chan outboundError, done chan<- struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(done)
	}()

	replayed := make(map[string]struct{}, len(replay))
	for _, payload := range replay {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(payload); err != nil {
			return
		}
		replayed[payload.ID] = struct{}{}
	}

	for {
		select {
		case payload, ok := <-sub.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Subscription released
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if _, dup := replayed[payload.ID]; dup {
				delete(replayed, payload.ID)
				continue
			}
			if err := conn.WriteJSON(payload); err != nil {
				return
			}
		case reply := <-errs:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(reply); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

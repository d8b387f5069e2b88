package queue_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"smartq/internal/auth"
	"smartq/internal/broadcast"
	"smartq/internal/logger"
)

// WSHandler upgrades connections for the realtime queue channel. A
// fresh socket receives nothing until it sends an authenticate message;
// only then is it registered with the hub under the customer identity
// carried by the token.
type WSHandler struct {
	Hub      *broadcast.Hub
	Logger   *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *broadcast.Hub, log *logger.Logger) *WSHandler {
	return &WSHandler{
		Hub:    hub,
		Logger: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

const (
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second
)

func (h *WSHandler) HandleQueueSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Error("WS", fmt.Sprintf("upgrade failed: %v", err))
		return
	}
	defer conn.Close()

	// Handshake: first frame must be an authenticate message.
	conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return
	}

	msg, ok := broadcast.ParseAuthenticate(data)
	if !ok {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "authenticate first"),
			time.Now().Add(writeTimeout))
		return
	}

	identity, err := auth.IdentityFromToken(msg.Token)
	if err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid token"),
			time.Now().Add(writeTimeout))
		return
	}

	sub := h.Hub.Subscribe(msg.SalonID, identity.UserID)
	defer h.Hub.Unsubscribe(sub)

	h.Logger.LogBroadcast(msg.SalonID, fmt.Sprintf("customer %s subscribed", identity.UserID))

	// Drain the read side so close frames are processed; no further
	// client messages are expected after the handshake.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Time{})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snapshot, ok := <-sub.Send:
			if !ok {
				return
			}
			payload, err := json.Marshal(snapshot)
			if err != nil {
				h.Logger.Error("WS", fmt.Sprintf("failed to serialize snapshot: %v", err))
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				// Dead connection: drop this subscriber, others are
				// unaffected.
				h.Logger.Debug("WS", fmt.Sprintf("write to %s failed: %v", identity.UserID, err))
				return
			}
		case <-done:
			return
		}
	}
}

package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"habitlink-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	UserID  string      `json:"user_id,omitempty"`
	Online  *bool       `json:"online,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// WSHub manages WebSocket connections, one per user. Handlers use it to
// push friend and post events to online users after a mutation succeeds;
// delivery failures are logged and never fail the mutation.
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[string]*websocket.Conn),
	}
}

// Register registers a new WebSocket connection for a user, replacing any
// existing one.
func (h *WSHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existingConn, exists := h.connections[userID]; exists {
		existingConn.Close()
	}
	h.connections[userID] = conn

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes a WebSocket connection for a user
func (h *WSHub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, exists := h.connections[userID]; exists {
		conn.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// SendToUser sends a message to a specific user
func (h *WSHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	conn, exists := h.connections[userID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.Unregister(userID)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// IsOnline checks if a user is online
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.connections[userID]
	return exists
}

// NotifyFriendRequest notifies a user about an incoming friend request
func (h *WSHub) NotifyFriendRequest(recipientID string, sender models.PublicProfile) error {
	return h.SendToUser(recipientID, WSMessage{
		Type: "friend_request",
		Data: sender,
	})
}

// NotifyRequestAccepted notifies the original sender that their request
// was accepted
func (h *WSHub) NotifyRequestAccepted(senderID string, accepter models.PublicProfile) error {
	return h.SendToUser(senderID, WSMessage{
		Type: "friend_request_accepted",
		Data: accepter,
	})
}

// NotifyFriendStatus notifies a friend about online/offline status
func (h *WSHub) NotifyFriendStatus(friendID, userID string, online bool) {
	message := WSMessage{
		Type:   "friend_status",
		UserID: userID,
		Online: &online,
	}

	if err := h.SendToUser(friendID, message); err != nil {
		log.Debug().
			Err(err).
			Str("friend_id", friendID).
			Msg("Failed to notify friend status")
	}
}

// NotifyNewPost notifies a friend about a new check-in post
func (h *WSHub) NotifyNewPost(friendID string, post *models.Post) {
	message := WSMessage{
		Type: "new_post",
		Data: post,
	}

	if err := h.SendToUser(friendID, message); err != nil {
		log.Debug().
			Err(err).
			Str("friend_id", friendID).
			Msg("Failed to notify friend about post")
	}
}

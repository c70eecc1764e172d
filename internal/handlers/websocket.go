package handlers

import (
	"context"
	"net/http"

	"habitlink-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for MVP
	},
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub           *services.WSHub
	userService   *services.UserService
	friendService *services.FriendService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	hub *services.WSHub,
	userService *services.UserService,
	friendService *services.FriendService,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:           hub,
		userService:   userService,
		friendService: friendService,
	}
}

// HandleWebSocket handles WebSocket connections. The connection is
// read-only from the client side: the server pushes friend and post
// events, and incoming frames only keep the connection alive.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Get token from query parameter
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	userID, err := h.userService.ValidateJWT(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID)

	ctx := r.Context()
	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load user for WebSocket session")
		return
	}

	// Tell online friends this user came online, and tell the user which
	// friends are online right now.
	online := make([]string, 0)
	for _, friendID := range user.Friends {
		if h.hub.IsOnline(friendID) {
			h.hub.NotifyFriendStatus(friendID, userID, true)
			online = append(online, friendID)
		}
	}
	if err := h.hub.SendToUser(userID, services.WSMessage{
		Type: "online_friends",
		Data: online,
	}); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to send online_friends message")
	}

	log.Info().Str("user_id", userID).Msg("WebSocket connection established")

	defer h.notifyOffline(userID)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}
	}
}

// notifyOffline tells online friends the user went offline. The friend
// list is re-read so friendships made during the session are included.
func (h *WebSocketHandler) notifyOffline(userID string) {
	friends, err := h.friendService.ListFriends(context.Background(), userID)
	if err != nil {
		return
	}
	for _, friend := range friends {
		if h.hub.IsOnline(friend.ID) {
			h.hub.NotifyFriendStatus(friend.ID, userID, false)
		}
	}
}

package handlers

import (
	"encoding/json"
	"net/http"

	"habitlink-backend/internal/middleware"
	"habitlink-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// FriendHandler handles friend-related HTTP requests. After a successful
// mutation it pushes best-effort WebSocket and APNs notifications; notify
// failures never fail the request.
type FriendHandler struct {
	friendService *services.FriendService
	userService   *services.UserService
	wsHub         *services.WSHub
	notifier      *services.PushNotifier
}

// NewFriendHandler creates a new friend handler. The notifier may be nil
// when push is not configured.
func NewFriendHandler(
	friendService *services.FriendService,
	userService *services.UserService,
	wsHub *services.WSHub,
	notifier *services.PushNotifier,
) *FriendHandler {
	return &FriendHandler{
		friendService: friendService,
		userService:   userService,
		wsHub:         wsHub,
		notifier:      notifier,
	}
}

// ListFriends handles GET /api/v1/friends
func (h *FriendHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	friends, err := h.friendService.ListFriends(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list friends")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"friends": friends})
}

// ListRequests handles GET /api/v1/friends/requests
func (h *FriendHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	requests, err := h.friendService.ListRequests(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list friend requests")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"requests": requests})
}

// FriendRequestBody identifies the other user of a friend operation
type FriendRequestBody struct {
	UserID string `json:"user_id"`
}

// SendRequest handles POST /api/v1/friends/request
func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	senderID := middleware.GetUserID(ctx)

	var req FriendRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		respondError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	if err := h.friendService.SendRequest(ctx, senderID, req.UserID); err != nil {
		log.Error().
			Err(err).
			Str("sender_id", senderID).
			Str("recipient_id", req.UserID).
			Msg("Failed to send friend request")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	log.Info().
		Str("sender_id", senderID).
		Str("recipient_id", req.UserID).
		Msg("Friend request sent")

	h.notifyRequest(r, senderID, req.UserID)

	respondJSON(w, http.StatusOK, map[string]string{"message": "Friend request sent"})
}

// AcceptRequest handles POST /api/v1/friends/accept
func (h *FriendHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accepterID := middleware.GetUserID(ctx)

	var req FriendRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		respondError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	if err := h.friendService.AcceptRequest(ctx, accepterID, req.UserID); err != nil {
		log.Error().
			Err(err).
			Str("accepter_id", accepterID).
			Str("sender_id", req.UserID).
			Msg("Failed to accept friend request")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	log.Info().
		Str("accepter_id", accepterID).
		Str("sender_id", req.UserID).
		Msg("Friend request accepted")

	h.notifyAccepted(r, accepterID, req.UserID)

	respondJSON(w, http.StatusOK, map[string]string{"message": "Friend request accepted"})
}

// RejectRequest handles POST /api/v1/friends/reject
func (h *FriendHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accepterID := middleware.GetUserID(ctx)

	var req FriendRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		respondError(w, "user_id is required", http.StatusBadRequest)
		return
	}

	if err := h.friendService.RejectRequest(ctx, accepterID, req.UserID); err != nil {
		log.Error().
			Err(err).
			Str("accepter_id", accepterID).
			Str("sender_id", req.UserID).
			Msg("Failed to reject friend request")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Friend request rejected"})
}

// RemoveFriend handles DELETE /api/v1/friends/{friend_id}
func (h *FriendHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	friendID := chi.URLParam(r, "friend_id")

	if friendID == "" {
		respondError(w, "friend_id is required", http.StatusBadRequest)
		return
	}

	if err := h.friendService.RemoveFriend(ctx, userID, friendID); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("friend_id", friendID).
			Msg("Failed to remove friend")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("friend_id", friendID).
		Msg("Friend removed")

	w.WriteHeader(http.StatusNoContent)
}

// notifyRequest tells the recipient about a new friend request via
// WebSocket when online and APNs when a push token is registered.
func (h *FriendHandler) notifyRequest(r *http.Request, senderID, recipientID string) {
	ctx := r.Context()

	sender, err := h.userService.GetByID(ctx, senderID)
	if err != nil {
		log.Error().Err(err).Str("user_id", senderID).Msg("Failed to load sender for notification")
		return
	}

	if h.wsHub.IsOnline(recipientID) {
		if err := h.wsHub.NotifyFriendRequest(recipientID, sender.Public()); err != nil {
			log.Error().
				Err(err).
				Str("recipient_id", recipientID).
				Msg("Failed to notify recipient about friend request")
		}
	}

	if h.notifier != nil {
		recipient, err := h.userService.GetByID(ctx, recipientID)
		if err == nil && recipient.PushToken != nil {
			h.notifier.NotifyFriendRequest(*recipient.PushToken, sender.Username)
		}
	}
}

// notifyAccepted tells the original sender their request was accepted.
func (h *FriendHandler) notifyAccepted(r *http.Request, accepterID, senderID string) {
	ctx := r.Context()

	accepter, err := h.userService.GetByID(ctx, accepterID)
	if err != nil {
		log.Error().Err(err).Str("user_id", accepterID).Msg("Failed to load accepter for notification")
		return
	}

	if h.wsHub.IsOnline(senderID) {
		if err := h.wsHub.NotifyRequestAccepted(senderID, accepter.Public()); err != nil {
			log.Error().
				Err(err).
				Str("sender_id", senderID).
				Msg("Failed to notify sender about accepted request")
		}
	}

	if h.notifier != nil {
		sender, err := h.userService.GetByID(ctx, senderID)
		if err == nil && sender.PushToken != nil {
			h.notifier.NotifyRequestAccepted(*sender.PushToken, accepter.Username)
		}
	}
}

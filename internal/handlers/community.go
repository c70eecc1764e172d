package handlers

import (
	"encoding/json"
	"net/http"

	"habitlink-backend/internal/middleware"
	"habitlink-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// CommunityHandler handles community-related HTTP requests
type CommunityHandler struct {
	communityService *services.CommunityService
}

// NewCommunityHandler creates a new community handler
func NewCommunityHandler(communityService *services.CommunityService) *CommunityHandler {
	return &CommunityHandler{
		communityService: communityService,
	}
}

// CreateCommunityRequest is the request body for creating a community
type CreateCommunityRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	HabitName   string `json:"habit_name"`
}

// CreateCommunity handles POST /api/v1/communities
func (h *CommunityHandler) CreateCommunity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req CreateCommunityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		respondError(w, "name is required", http.StatusBadRequest)
		return
	}
	if req.HabitName == "" {
		respondError(w, "habit_name is required", http.StatusBadRequest)
		return
	}

	community, err := h.communityService.Create(ctx, req.Name, req.Description, req.HabitName, userID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("name", req.Name).
			Msg("Failed to create community")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("community_id", community.ID).
		Str("name", community.Name).
		Msg("Community created")

	respondJSON(w, http.StatusCreated, community)
}

// ListCommunities handles GET /api/v1/communities?search=
func (h *CommunityHandler) ListCommunities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	search := r.URL.Query().Get("search")

	communities, err := h.communityService.List(ctx, search)
	if err != nil {
		log.Error().Err(err).Str("search", search).Msg("Failed to list communities")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"communities": communities})
}

// JoinCommunity handles POST /api/v1/communities/{community_id}/join
func (h *CommunityHandler) JoinCommunity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	communityID := chi.URLParam(r, "community_id")

	community, err := h.communityService.Join(ctx, communityID, userID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("community_id", communityID).
			Msg("Failed to join community")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("community_id", communityID).
		Msg("Joined community")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Joined community successfully",
		"community": community,
	})
}

// LeaveCommunity handles POST /api/v1/communities/{community_id}/leave
func (h *CommunityHandler) LeaveCommunity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	communityID := chi.URLParam(r, "community_id")

	community, err := h.communityService.Leave(ctx, communityID, userID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("community_id", communityID).
			Msg("Failed to leave community")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("community_id", communityID).
		Msg("Left community")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Left community successfully",
		"community": community,
	})
}

// DeleteCommunity handles DELETE /api/v1/communities/{community_id}
func (h *CommunityHandler) DeleteCommunity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	communityID := chi.URLParam(r, "community_id")

	if err := h.communityService.Delete(ctx, communityID, userID); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("community_id", communityID).
			Msg("Failed to delete community")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("community_id", communityID).
		Msg("Community deleted")

	respondJSON(w, http.StatusOK, map[string]string{"message": "Community deleted successfully"})
}

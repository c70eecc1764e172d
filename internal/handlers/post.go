package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"habitlink-backend/internal/middleware"
	"habitlink-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// PostHandler handles photo check-in HTTP requests
type PostHandler struct {
	postService   *services.PostService
	userService   *services.UserService
	uploadService *services.UploadService
	wsHub         *services.WSHub
}

// NewPostHandler creates a new post handler
func NewPostHandler(
	postService *services.PostService,
	userService *services.UserService,
	uploadService *services.UploadService,
	wsHub *services.WSHub,
) *PostHandler {
	return &PostHandler{
		postService:   postService,
		userService:   userService,
		uploadService: uploadService,
		wsHub:         wsHub,
	}
}

// CreatePostRequest is the request body for creating a post
type CreatePostRequest struct {
	HabitID     string `json:"habit_id"`
	ImageURL    string `json:"image_url"`
	Description string `json:"description"`
}

// CreatePost handles POST /api/v1/posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.HabitID == "" {
		respondError(w, "habit_id is required", http.StatusBadRequest)
		return
	}
	if req.ImageURL == "" {
		respondError(w, "image_url is required", http.StatusBadRequest)
		return
	}

	post, err := h.postService.Create(ctx, userID, req.HabitID, req.ImageURL, req.Description)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("habit_id", req.HabitID).
			Msg("Failed to create post")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("post_id", post.ID).
		Msg("Post created")

	// Fan the check-in out to online friends. The post is already
	// committed, so delivery failures are only logged.
	if user, err := h.userService.GetByID(ctx, userID); err == nil {
		for _, friendID := range user.Friends {
			if h.wsHub.IsOnline(friendID) {
				h.wsHub.NotifyNewPost(friendID, post)
			}
		}
	}

	respondJSON(w, http.StatusCreated, post)
}

// Feed handles GET /api/v1/posts?scope=friends
func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	limit := parseIntParam(r, "limit")
	offset := parseIntParam(r, "offset")

	var (
		posts interface{}
		err   error
	)
	if r.URL.Query().Get("scope") == "friends" {
		posts, err = h.postService.FriendsFeed(ctx, userID, limit, offset)
	} else {
		posts, err = h.postService.Feed(ctx, limit, offset)
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load feed")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

// UploadRequest is the request body for requesting a pre-signed URL
type UploadRequest struct {
	ContentType string `json:"content_type"`
}

// UploadImage handles POST /api/v1/posts/upload
func (h *PostHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ContentType == "" {
		req.ContentType = "image/jpeg"
	}

	response, err := h.uploadService.PresignPostImage(ctx, userID, req.ContentType)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to generate pre-signed URL")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	respondJSON(w, http.StatusOK, response)
}

func parseIntParam(r *http.Request, name string) int {
	value, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return value
}

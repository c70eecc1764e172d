package handlers

import (
	"encoding/json"
	"net/http"

	"habitlink-backend/internal/middleware"
	"habitlink-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// HabitHandler handles habit-related HTTP requests
type HabitHandler struct {
	habitService *services.HabitService
}

// NewHabitHandler creates a new habit handler
func NewHabitHandler(habitService *services.HabitService) *HabitHandler {
	return &HabitHandler{
		habitService: habitService,
	}
}

// CreateHabitRequest is the request body for creating a habit
type CreateHabitRequest struct {
	Name         string  `json:"name"`
	Time         string  `json:"time"`
	Color        string  `json:"color"`
	ReminderTime *string `json:"reminder_time"`
}

// CreateHabit handles POST /api/v1/habits
func (h *HabitHandler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req CreateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		respondError(w, "name is required", http.StatusBadRequest)
		return
	}
	if req.Time == "" {
		respondError(w, "time is required", http.StatusBadRequest)
		return
	}

	habit, err := h.habitService.Create(ctx, userID, req.Name, req.Time, req.Color, req.ReminderTime)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("name", req.Name).
			Msg("Failed to create habit")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("habit_id", habit.ID).
		Str("name", habit.Name).
		Msg("Habit created")

	respondJSON(w, http.StatusCreated, habit)
}

// ListHabits handles GET /api/v1/habits
func (h *HabitHandler) ListHabits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	habits, err := h.habitService.ListByOwner(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list habits")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"habits": habits})
}

// CompleteHabit handles PUT /api/v1/habits/{habit_id}/complete
func (h *HabitHandler) CompleteHabit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	habitID := chi.URLParam(r, "habit_id")

	habit, err := h.habitService.Complete(ctx, userID, habitID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("habit_id", habitID).
			Msg("Failed to complete habit")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("habit_id", habitID).
		Int("streak", habit.Streak).
		Msg("Habit completed")

	respondJSON(w, http.StatusOK, habit)
}

// DeleteHabit handles DELETE /api/v1/habits/{habit_id}
func (h *HabitHandler) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	habitID := chi.URLParam(r, "habit_id")

	if err := h.habitService.Delete(ctx, userID, habitID); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("habit_id", habitID).
			Msg("Failed to delete habit")
		respondError(w, err.Error(), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

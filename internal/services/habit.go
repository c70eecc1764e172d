package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"habitlink-backend/internal/models"

	"github.com/google/uuid"
)

// habitColors is the fixed palette auto-provisioned habits draw from.
var habitColors = [5]string{"#e74c3c", "#8e44ad", "#3498db", "#27ae60", "#f1c40f"}

// placeholderTime marks an auto-provisioned habit whose schedule the user
// has not picked yet.
const placeholderTime = "TBD"

// HabitService handles habit-related business logic. The random source is
// injected so color assignment is deterministic under test.
type HabitService struct {
	habitRepo HabitStore
	userRepo  UserStore
	rng       *rand.Rand
}

// NewHabitService creates a new habit service
func NewHabitService(habitRepo HabitStore, userRepo UserStore, rng *rand.Rand) *HabitService {
	return &HabitService{
		habitRepo: habitRepo,
		userRepo:  userRepo,
		rng:       rng,
	}
}

// Create creates a habit owned by the caller and records it on the user's
// cached habits list.
func (s *HabitService) Create(ctx context.Context, ownerID, name, timeOfDay, color string, reminderTime *string) (*models.Habit, error) {
	if name == "" {
		return nil, fmt.Errorf("habit name is required")
	}
	if timeOfDay == "" {
		return nil, fmt.Errorf("habit time is required")
	}

	user, err := s.userRepo.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if color == "" {
		color = habitColors[s.rng.Intn(len(habitColors))]
	}

	now := time.Now()
	habit := &models.Habit{
		ID:           uuid.New().String(),
		Name:         name,
		Time:         timeOfDay,
		Color:        color,
		Streak:       0,
		ReminderTime: reminderTime,
		OwnerID:      ownerID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.habitRepo.Create(ctx, habit); err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	user.Habits = addID(user.Habits, habit.ID)
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	return habit, nil
}

// EnsureOwned guarantees the user owns a habit with the given name,
// creating one with placeholder time and a random palette color if absent.
// The name match is exact and case-sensitive. Returns the habit and
// whether it was created by this call.
func (s *HabitService) EnsureOwned(ctx context.Context, userID, name string) (*models.Habit, bool, error) {
	existing, err := s.habitRepo.FindByOwnerAndName(ctx, userID, name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to look up habit: %w", err)
	}

	now := time.Now()
	habit := &models.Habit{
		ID:        uuid.New().String(),
		Name:      name,
		Time:      placeholderTime,
		Color:     habitColors[s.rng.Intn(len(habitColors))],
		Streak:    0,
		OwnerID:   userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.habitRepo.Create(ctx, habit); err != nil {
		return nil, false, fmt.Errorf("failed to create habit: %w", err)
	}

	// The owner field on the habit is authoritative; the user's habits
	// list is a cache kept in step on a best-effort basis.
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	user.Habits = addID(user.Habits, habit.ID)
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, false, fmt.Errorf("failed to save user: %w", err)
	}

	return habit, true, nil
}

// ListByOwner retrieves all habits owned by a user, querying by owner
// rather than trusting the cached list on the user record.
func (s *HabitService) ListByOwner(ctx context.Context, ownerID string) ([]*models.Habit, error) {
	return s.habitRepo.ListByOwner(ctx, ownerID)
}

// Complete increments a habit's streak. The streak only ever moves up;
// there is no decrement or reset path here.
func (s *HabitService) Complete(ctx context.Context, callerID, habitID string) (*models.Habit, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.OwnerID != callerID {
		return nil, models.ErrForbidden
	}

	habit.Streak++
	habit.UpdatedAt = time.Now()

	if err := s.habitRepo.Save(ctx, habit); err != nil {
		return nil, fmt.Errorf("failed to save habit: %w", err)
	}
	return habit, nil
}

// Delete removes a habit owned by the caller and drops it from the user's
// cached habits list.
func (s *HabitService) Delete(ctx context.Context, callerID, habitID string) error {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return err
	}
	if habit.OwnerID != callerID {
		return models.ErrForbidden
	}

	if err := s.habitRepo.Delete(ctx, habitID); err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		return err
	}
	user.Habits = removeID(user.Habits, habitID)
	if err := s.userRepo.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

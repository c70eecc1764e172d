package services

import (
	"context"
	"fmt"
	"time"

	"habitlink-backend/internal/models"

	"github.com/google/uuid"
)

const (
	feedLimitDefault = 50
	feedLimitMax     = 100
)

// PostService handles photo check-in posts. Posts are immutable once
// created.
type PostService struct {
	postRepo  PostStore
	habitRepo HabitStore
	userRepo  UserStore
}

// NewPostService creates a new post service
func NewPostService(postRepo PostStore, habitRepo HabitStore, userRepo UserStore) *PostService {
	return &PostService{
		postRepo:  postRepo,
		habitRepo: habitRepo,
		userRepo:  userRepo,
	}
}

// Create records a photo check-in against one of the caller's habits.
func (s *PostService) Create(ctx context.Context, userID, habitID, imageURL, description string) (*models.Post, error) {
	if imageURL == "" {
		return nil, fmt.Errorf("image_url is required")
	}

	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.OwnerID != userID {
		return nil, models.ErrForbidden
	}

	post := &models.Post{
		ID:          uuid.New().String(),
		UserID:      userID,
		HabitID:     habitID,
		ImageURL:    imageURL,
		Description: description,
		CreatedAt:   time.Now(),
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

// Feed retrieves the global feed, newest first.
func (s *PostService) Feed(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	limit, offset = clampPage(limit, offset)
	return s.postRepo.List(ctx, limit, offset)
}

// FriendsFeed retrieves check-ins by the caller's friends, newest first.
// Posts are resolved through habit ownership: the habits of every friend
// are collected and posts referencing them are returned.
func (s *PostService) FriendsFeed(ctx context.Context, userID string, limit, offset int) ([]*models.Post, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var habitIDs []string
	for _, friendID := range user.Friends {
		habits, err := s.habitRepo.ListByOwner(ctx, friendID)
		if err != nil {
			return nil, fmt.Errorf("failed to list friend habits: %w", err)
		}
		for _, habit := range habits {
			habitIDs = append(habitIDs, habit.ID)
		}
	}
	if len(habitIDs) == 0 {
		return []*models.Post{}, nil
	}

	limit, offset = clampPage(limit, offset)
	return s.postRepo.ListByHabitIDs(ctx, habitIDs, limit, offset)
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = feedLimitDefault
	}
	if limit > feedLimitMax {
		limit = feedLimitMax
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

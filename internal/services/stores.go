package services

import (
	"context"

	"habitlink-backend/internal/models"
)

// Store interfaces consumed by the services. The pgx-backed repositories
// implement them in production; tests substitute in-memory fakes. Each
// method reads or writes a single record; the store guarantees per-record
// consistency only, so multi-record operations in the services are
// sequences of independent writes.

// UserStore persists user records.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Save(ctx context.Context, user *models.User) error
	SearchByUsernamePrefix(ctx context.Context, prefix string, limit int) ([]*models.User, error)
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
}

// HabitStore persists habit records.
type HabitStore interface {
	Create(ctx context.Context, habit *models.Habit) error
	GetByID(ctx context.Context, id string) (*models.Habit, error)
	FindByOwnerAndName(ctx context.Context, ownerID, name string) (*models.Habit, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Habit, error)
	Save(ctx context.Context, habit *models.Habit) error
	Delete(ctx context.Context, id string) error
}

// CommunityStore persists community records.
type CommunityStore interface {
	Create(ctx context.Context, community *models.Community) error
	GetByID(ctx context.Context, id string) (*models.Community, error)
	Save(ctx context.Context, community *models.Community) error
	List(ctx context.Context, nameFilter string) ([]*models.Community, error)
	Delete(ctx context.Context, id string) error
}

// PostStore persists post records.
type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	ListByHabitIDs(ctx context.Context, habitIDs []string, limit, offset int) ([]*models.Post, error)
}

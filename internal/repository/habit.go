package repository

import (
	"context"
	"errors"
	"fmt"

	"habitlink-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HabitRepository handles database operations for habits
type HabitRepository struct {
	db *pgxpool.Pool
}

// NewHabitRepository creates a new habit repository
func NewHabitRepository(db *pgxpool.Pool) *HabitRepository {
	return &HabitRepository{db: db}
}

const habitColumns = `id, name, time, color, streak, reminder_time, owner_id, created_at, updated_at`

func scanHabit(row pgx.Row) (*models.Habit, error) {
	var habit models.Habit
	err := row.Scan(
		&habit.ID, &habit.Name, &habit.Time, &habit.Color, &habit.Streak,
		&habit.ReminderTime, &habit.OwnerID, &habit.CreatedAt, &habit.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &habit, nil
}

// Create creates a new habit
func (r *HabitRepository) Create(ctx context.Context, habit *models.Habit) error {
	query := `
		INSERT INTO habits (id, name, time, color, streak, reminder_time, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		habit.ID, habit.Name, habit.Time, habit.Color, habit.Streak,
		habit.ReminderTime, habit.OwnerID, habit.CreatedAt, habit.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create habit: %w", err)
	}
	return nil
}

// GetByID retrieves a habit by ID
func (r *HabitRepository) GetByID(ctx context.Context, id string) (*models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1`
	habit, err := scanHabit(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("habit %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}
	return habit, nil
}

// FindByOwnerAndName retrieves a habit owned by a user with an exact,
// case-sensitive name match. Returns models.ErrNotFound when absent.
func (r *HabitRepository) FindByOwnerAndName(ctx context.Context, ownerID, name string) (*models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE owner_id = $1 AND name = $2 LIMIT 1`
	habit, err := scanHabit(r.db.QueryRow(ctx, query, ownerID, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("habit %q of user %s: %w", name, ownerID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find habit by owner and name: %w", err)
	}
	return habit, nil
}

// ListByOwner retrieves all habits owned by a user. This is the
// authoritative ownership query; the habits list cached on the user
// record is not consulted.
func (r *HabitRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE owner_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	var habits []*models.Habit
	for rows.Next() {
		habit, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, habit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	return habits, nil
}

// Save persists the mutable fields of a habit record
func (r *HabitRepository) Save(ctx context.Context, habit *models.Habit) error {
	query := `
		UPDATE habits
		SET name = $2, time = $3, color = $4, streak = $5, reminder_time = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query,
		habit.ID, habit.Name, habit.Time, habit.Color, habit.Streak,
		habit.ReminderTime, habit.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save habit: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("habit %s: %w", habit.ID, models.ErrNotFound)
	}
	return nil
}

// Delete deletes a habit by ID
func (r *HabitRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM habits WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("habit %s: %w", id, models.ErrNotFound)
	}
	return nil
}

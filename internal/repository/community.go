package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"habitlink-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CommunityRepository handles database operations for communities
type CommunityRepository struct {
	db *pgxpool.Pool
}

// NewCommunityRepository creates a new community repository
func NewCommunityRepository(db *pgxpool.Pool) *CommunityRepository {
	return &CommunityRepository{db: db}
}

const communityColumns = `id, name, description, habit_name, creator_id, member_ids, created_at`

func scanCommunity(row pgx.Row) (*models.Community, error) {
	var community models.Community
	err := row.Scan(
		&community.ID, &community.Name, &community.Description, &community.HabitName,
		&community.CreatorID, &community.MemberIDs, &community.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &community, nil
}

// Create creates a new community
func (r *CommunityRepository) Create(ctx context.Context, community *models.Community) error {
	query := `
		INSERT INTO communities (id, name, description, habit_name, creator_id, member_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		community.ID, community.Name, community.Description, community.HabitName,
		community.CreatorID, community.MemberIDs, community.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create community: %w", err)
	}
	return nil
}

// GetByID retrieves a community by ID
func (r *CommunityRepository) GetByID(ctx context.Context, id string) (*models.Community, error) {
	query := `SELECT ` + communityColumns + ` FROM communities WHERE id = $1`
	community, err := scanCommunity(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("community %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get community: %w", err)
	}
	return community, nil
}

// Save persists the mutable fields of a community record
func (r *CommunityRepository) Save(ctx context.Context, community *models.Community) error {
	query := `
		UPDATE communities
		SET name = $2, description = $3, habit_name = $4, member_ids = $5
		WHERE id = $1
	`
	result, err := r.db.Exec(ctx, query,
		community.ID, community.Name, community.Description, community.HabitName,
		community.MemberIDs,
	)
	if err != nil {
		return fmt.Errorf("failed to save community: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("community %s: %w", community.ID, models.ErrNotFound)
	}
	return nil
}

// List retrieves communities whose name contains the filter text as a
// case-insensitive substring. An empty filter matches all communities.
func (r *CommunityRepository) List(ctx context.Context, nameFilter string) ([]*models.Community, error) {
	// Escape LIKE metacharacters so a filter of "100%" matches literally.
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(nameFilter)
	query := `
		SELECT ` + communityColumns + `
		FROM communities
		WHERE name ILIKE '%' || $1 || '%'
	`
	rows, err := r.db.Query(ctx, query, escaped)
	if err != nil {
		return nil, fmt.Errorf("failed to list communities: %w", err)
	}
	defer rows.Close()

	var communities []*models.Community
	for rows.Next() {
		community, err := scanCommunity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan community: %w", err)
		}
		communities = append(communities, community)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list communities: %w", err)
	}
	return communities, nil
}

// Delete deletes a community by ID
func (r *CommunityRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM communities WHERE id = $1`
	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete community: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("community %s: %w", id, models.ErrNotFound)
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"anime-battle-bot/internal/model"
)

// ProfileRepository reads user level tracks. Writes happen in battle settlement.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository instance.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// Get returns the user's profile or ErrProfileNotFound.
func (r *ProfileRepository) Get(ctx context.Context, userID int64) (*model.Profile, error) {
	const query = `SELECT user_id, level, exp, updated_at FROM profiles WHERE user_id = $1`

	var p model.Profile
	err := r.pool.QueryRow(ctx, query, userID).Scan(&p.UserID, &p.Level, &p.Exp, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// Ensure creates a level 1 profile if the user has none and returns the stored one.
func (r *ProfileRepository) Ensure(ctx context.Context, userID int64) (*model.Profile, error) {
	const query = `
		INSERT INTO profiles (user_id, level, exp, updated_at)
		VALUES ($1, 1, 0, NOW())
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING user_id, level, exp, updated_at
	`

	var p model.Profile
	err := r.pool.QueryRow(ctx, query, userID).Scan(&p.UserID, &p.Level, &p.Exp, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure profile: %w", err)
	}
	return &p, nil
}

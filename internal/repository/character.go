// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"anime-battle-bot/internal/model"
)

// Common errors for repository operations.
var (
	ErrCharacterNotFound = errors.New("character not found")
	ErrProfileNotFound   = errors.New("profile not found")
)

const characterColumns = `id, user_id, name, anime, rarity, hp, attack, defense, speed, iv, level, exp, caught_at`

// CharacterRepository persists owned character instances.
// A user's collection is ordered by id, which is catch order.
type CharacterRepository struct {
	pool *pgxpool.Pool
}

// NewCharacterRepository creates a new CharacterRepository instance.
func NewCharacterRepository(pool *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{pool: pool}
}

func scanCharacter(row pgx.Row) (*model.Character, error) {
	var c model.Character
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.Anime,
		&c.Rarity,
		&c.HP,
		&c.Attack,
		&c.Defense,
		&c.Speed,
		&c.IV,
		&c.Level,
		&c.Exp,
		&c.CaughtAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Add inserts a freshly caught character at level 1 and returns it with its id.
func (r *CharacterRepository) Add(ctx context.Context, c *model.Character) (*model.Character, error) {
	const query = `
		INSERT INTO characters (user_id, name, anime, rarity, hp, attack, defense, speed, iv, level, exp, caught_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, 0, NOW())
		RETURNING ` + characterColumns

	out, err := scanCharacter(r.pool.QueryRow(ctx, query,
		c.UserID, c.Name, c.Anime, string(c.Rarity),
		c.HP, c.Attack, c.Defense, c.Speed, c.IV,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to add character: %w", err)
	}
	return out, nil
}

// GetByID retrieves one character instance.
func (r *CharacterRepository) GetByID(ctx context.Context, id int64) (*model.Character, error) {
	const query = `SELECT ` + characterColumns + ` FROM characters WHERE id = $1`

	c, err := scanCharacter(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("failed to get character: %w", err)
	}
	return c, nil
}

// GetByIndex returns the character at the 1-based position in the user's collection.
func (r *CharacterRepository) GetByIndex(ctx context.Context, userID int64, index int) (*model.Character, error) {
	if index < 1 {
		return nil, ErrCharacterNotFound
	}

	const query = `
		SELECT ` + characterColumns + `
		FROM characters
		WHERE user_id = $1
		ORDER BY id
		OFFSET $2 LIMIT 1
	`

	c, err := scanCharacter(r.pool.QueryRow(ctx, query, userID, index-1))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("failed to get character by index: %w", err)
	}
	return c, nil
}

// ListByUser returns the whole collection in catch order.
func (r *CharacterRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Character, error) {
	const query = `
		SELECT ` + characterColumns + `
		FROM characters
		WHERE user_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	defer rows.Close()

	var out []*model.Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan character: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate characters: %w", err)
	}
	return out, nil
}

// Count returns the size of the user's collection.
func (r *CharacterRepository) Count(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM characters WHERE user_id = $1`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count characters: %w", err)
	}
	return n, nil
}

// Delete removes one character owned by userID.
func (r *CharacterRepository) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM characters WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete character: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCharacterNotFound
	}
	return nil
}

// DeleteAll empties the user's collection and returns how many were removed.
func (r *CharacterRepository) DeleteAll(ctx context.Context, userID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM characters WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear collection: %w", err)
	}
	return tag.RowsAffected(), nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"anime-battle-bot/internal/battle"
	"anime-battle-bot/internal/leveling"
)

// BattleRewardRepository applies battle grants. It implements battle.RewardSink.
type BattleRewardRepository struct {
	pool *pgxpool.Pool
}

// NewBattleRewardRepository creates a new BattleRewardRepository instance.
func NewBattleRewardRepository(pool *pgxpool.Pool) *BattleRewardRepository {
	return &BattleRewardRepository{pool: pool}
}

var _ battle.RewardSink = (*BattleRewardRepository)(nil)

// ApplyBattleReward levels the winning character and the winner's profile in one
// transaction. Either both rows change or neither does.
func (r *BattleRewardRepository) ApplyBattleReward(ctx context.Context, g battle.Grant) (*battle.Settlement, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("failed to begin reward transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var charBefore leveling.Progress
	err = tx.QueryRow(ctx, `
		SELECT level, exp FROM characters
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`, g.CharacterID, g.UserID).Scan(&charBefore.Level, &charBefore.Exp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("failed to lock character: %w", err)
	}

	charResult := leveling.Apply(charBefore, g.CharacterExp)
	if _, err := tx.Exec(ctx, `
		UPDATE characters SET level = $2, exp = $3 WHERE id = $1
	`, g.CharacterID, charResult.After.Level, charResult.After.Exp); err != nil {
		return nil, fmt.Errorf("failed to update character: %w", err)
	}

	var profBefore leveling.Progress
	err = tx.QueryRow(ctx, `
		INSERT INTO profiles (user_id, level, exp, updated_at)
		VALUES ($1, 1, 0, NOW())
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING level, exp
	`, g.UserID).Scan(&profBefore.Level, &profBefore.Exp)
	if err != nil {
		return nil, fmt.Errorf("failed to lock profile: %w", err)
	}

	profResult := leveling.Apply(profBefore, g.UserExp)
	if _, err := tx.Exec(ctx, `
		UPDATE profiles SET level = $2, exp = $3, updated_at = NOW() WHERE user_id = $1
	`, g.UserID, profResult.After.Level, profResult.After.Exp); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit reward: %w", err)
	}

	return &battle.Settlement{Character: charResult, Profile: profResult}, nil
}

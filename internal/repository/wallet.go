package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"anime-battle-bot/internal/model"
)

// WalletRepository handles coin balances. Wallets are created on first credit.
type WalletRepository struct {
	pool *pgxpool.Pool
}

// NewWalletRepository creates a new WalletRepository instance.
func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

// AddCoins credits amount to the user's wallet, creating it if needed.
func (r *WalletRepository) AddCoins(ctx context.Context, userID, amount int64) (*model.Wallet, error) {
	const query = `
		INSERT INTO wallets (user_id, coins, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET coins = wallets.coins + EXCLUDED.coins, updated_at = NOW()
		RETURNING user_id, coins, updated_at
	`

	var w model.Wallet
	err := r.pool.QueryRow(ctx, query, userID, amount).Scan(&w.UserID, &w.Coins, &w.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add coins: %w", err)
	}
	return &w, nil
}

// Get returns the user's wallet. A user that never earned anything has zero coins.
func (r *WalletRepository) Get(ctx context.Context, userID int64) (*model.Wallet, error) {
	const query = `SELECT user_id, coins, updated_at FROM wallets WHERE user_id = $1`

	var w model.Wallet
	err := r.pool.QueryRow(ctx, query, userID).Scan(&w.UserID, &w.Coins, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &model.Wallet{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &w, nil
}

// TopCollectors ranks users by coins, then by collection size.
func (r *WalletRepository) TopCollectors(ctx context.Context, limit int) ([]model.CollectorRank, error) {
	const query = `
		SELECT u.user_id, COALESCE(w.coins, 0) AS coins, COALESCE(c.cards, 0) AS cards
		FROM (
			SELECT user_id FROM wallets
			UNION
			SELECT user_id FROM characters
		) u
		LEFT JOIN wallets w ON w.user_id = u.user_id
		LEFT JOIN (
			SELECT user_id, COUNT(*) AS cards FROM characters GROUP BY user_id
		) c ON c.user_id = u.user_id
		ORDER BY coins DESC, cards DESC, u.user_id
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()

	var out []model.CollectorRank
	for rows.Next() {
		var rank model.CollectorRank
		if err := rows.Scan(&rank.UserID, &rank.Coins, &rank.Cards); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		out = append(out, rank)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard: %w", err)
	}
	return out, nil
}

package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{
		name: "characters table",
		sql: `
		CREATE TABLE IF NOT EXISTS characters (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			name VARCHAR(255) NOT NULL,
			anime VARCHAR(255) NOT NULL DEFAULT '',
			rarity VARCHAR(16) NOT NULL,
			hp INT NOT NULL CHECK (hp > 0),
			attack INT NOT NULL CHECK (attack >= 0),
			defense INT NOT NULL CHECK (defense >= 0),
			speed INT NOT NULL,
			iv INT NOT NULL DEFAULT 0,
			level INT NOT NULL DEFAULT 1 CHECK (level >= 1),
			exp INT NOT NULL DEFAULT 0 CHECK (exp >= 0),
			caught_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_characters_user ON characters(user_id, id);
		`,
	},
	{
		name: "wallets table",
		sql: `
		CREATE TABLE IF NOT EXISTS wallets (
			user_id BIGINT PRIMARY KEY,
			coins BIGINT NOT NULL DEFAULT 0 CHECK (coins >= 0),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_wallets_coins ON wallets(coins DESC);
		`,
	},
	{
		name: "profiles table",
		sql: `
		CREATE TABLE IF NOT EXISTS profiles (
			user_id BIGINT PRIMARY KEY,
			level INT NOT NULL DEFAULT 1 CHECK (level >= 1),
			exp INT NOT NULL DEFAULT 0 CHECK (exp >= 0),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		`,
	},
}

// Migrate creates the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db Execer) error {
	log.Info().Msg("Running database migrations...")

	for i, m := range migrations {
		if _, err := db.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", i+1, m.name, err)
		}
		log.Info().Int("migration", i+1).Str("name", m.name).Msg("Migration applied")
	}

	log.Info().Msg("All migrations completed successfully")
	return nil
}

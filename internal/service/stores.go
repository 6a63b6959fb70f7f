// Package service provides business logic implementations.
package service

import (
	"context"

	"anime-battle-bot/internal/battle"
	"anime-battle-bot/internal/model"
)

// CharacterStore is the collection persistence used by the services.
// *repository.CharacterRepository implements it.
type CharacterStore interface {
	Add(ctx context.Context, c *model.Character) (*model.Character, error)
	GetByID(ctx context.Context, id int64) (*model.Character, error)
	GetByIndex(ctx context.Context, userID int64, index int) (*model.Character, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.Character, error)
	Count(ctx context.Context, userID int64) (int, error)
	Delete(ctx context.Context, userID, id int64) error
	DeleteAll(ctx context.Context, userID int64) (int64, error)
}

// WalletStore is implemented by *repository.WalletRepository.
type WalletStore interface {
	AddCoins(ctx context.Context, userID, amount int64) (*model.Wallet, error)
	Get(ctx context.Context, userID int64) (*model.Wallet, error)
	TopCollectors(ctx context.Context, limit int) ([]model.CollectorRank, error)
}

// ProfileStore is implemented by *repository.ProfileRepository.
type ProfileStore interface {
	Get(ctx context.Context, userID int64) (*model.Profile, error)
}

// BattlePhases tells whether a user is tied up in a battle.
// *battle.Manager implements it.
type BattlePhases interface {
	SessionPhase(participant int64) battle.Phase
}

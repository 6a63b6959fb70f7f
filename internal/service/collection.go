package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"anime-battle-bot/internal/battle"
	"anime-battle-bot/internal/character"
	"anime-battle-bot/internal/model"
	"anime-battle-bot/internal/pkg/lock"
	"anime-battle-bot/internal/repository"
)

// Collection errors.
var (
	ErrInBattle          = errors.New("collection is locked while in a battle")
	ErrCharacterNotFound = errors.New("no character at that index")
	ErrEmptyCollection   = errors.New("collection is empty")
)

// CatchResult is a successful catch.
type CatchResult struct {
	Character *model.Character
	Coins     int64 // wallet balance after the reward
}

// ReleaseResult is a released character and the wallet after the refund.
type ReleaseResult struct {
	Character *model.Character
	Coins     int64
}

// CollectionService manages owned characters and the coin side of catch and release.
// Writes for one user are serialized through the user lock.
type CollectionService struct {
	chars   CharacterStore
	wallets WalletStore
	battles BattlePhases
	locks   *lock.KeyedLock
	src     character.Source
}

// NewCollectionService creates a new CollectionService instance.
func NewCollectionService(chars CharacterStore, wallets WalletStore, locks *lock.KeyedLock, src character.Source) *CollectionService {
	if locks == nil {
		locks = lock.New()
	}
	return &CollectionService{chars: chars, wallets: wallets, locks: locks, src: src}
}

// SetBattlePhases wires the battle manager after construction, since the manager
// needs this service as its roster.
func (s *CollectionService) SetBattlePhases(b BattlePhases) {
	s.battles = b
}

var _ battle.Roster = (*CollectionService)(nil)

func (s *CollectionService) inBattle(userID int64) bool {
	if s.battles == nil {
		return false
	}
	switch s.battles.SessionPhase(userID) {
	case battle.PhaseChoosing, battle.PhaseInCombat:
		return true
	}
	return false
}

// Catch stores a new instance of spawn with freshly rolled stats and pays the
// catch reward.
func (s *CollectionService) Catch(ctx context.Context, userID int64, spawn character.Spawn) (*CatchResult, error) {
	stats := character.GenerateStats(spawn.Rarity, s.src)
	c := &model.Character{
		UserID:  userID,
		Name:    spawn.Name,
		Anime:   spawn.Anime,
		Rarity:  spawn.Rarity,
		HP:      stats.HP,
		Attack:  stats.Attack,
		Defense: stats.Defense,
		Speed:   stats.Speed,
		IV:      stats.IV,
	}

	var res *CatchResult
	err := s.locks.WithLock(ctx, userID, func() error {
		stored, err := s.chars.Add(ctx, c)
		if err != nil {
			return err
		}
		w, err := s.wallets.AddCoins(ctx, userID, model.CatchReward)
		if err != nil {
			return err
		}
		res = &CatchResult{Character: stored, Coins: w.Coins}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to catch character: %w", err)
	}

	log.Info().
		Int64("user_id", userID).
		Int64("character_id", res.Character.ID).
		Str("name", spawn.Name).
		Str("rarity", string(spawn.Rarity)).
		Msg("Character caught")

	return res, nil
}

// List returns the collection in catch order.
func (s *CollectionService) List(ctx context.Context, userID int64) ([]*model.Character, error) {
	cs, err := s.chars.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list collection: %w", err)
	}
	return cs, nil
}

// Info returns the character at the 1-based index.
func (s *CollectionService) Info(ctx context.Context, userID int64, index int) (*model.Character, error) {
	c, err := s.chars.GetByIndex(ctx, userID, index)
	if err != nil {
		if errors.Is(err, repository.ErrCharacterNotFound) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("failed to get character: %w", err)
	}
	return c, nil
}

// FighterAt resolves a battle pick. Out of range indices wrap battle.ErrInvalidIndex.
func (s *CollectionService) FighterAt(ctx context.Context, userID int64, index int) (*model.Character, error) {
	c, err := s.Info(ctx, userID, index)
	if err != nil {
		if errors.Is(err, ErrCharacterNotFound) {
			return nil, fmt.Errorf("%w: %d", battle.ErrInvalidIndex, index)
		}
		return nil, err
	}
	return c, nil
}

// Release deletes one character by its stable id and pays the release reward.
// Refused while the owner is choosing or fighting.
func (s *CollectionService) Release(ctx context.Context, userID, characterID int64) (*ReleaseResult, error) {
	if s.inBattle(userID) {
		return nil, ErrInBattle
	}

	var res *ReleaseResult
	err := s.locks.WithLock(ctx, userID, func() error {
		c, err := s.chars.GetByID(ctx, characterID)
		if err != nil {
			return err
		}
		if c.UserID != userID {
			return repository.ErrCharacterNotFound
		}
		if err := s.chars.Delete(ctx, userID, characterID); err != nil {
			return err
		}
		w, err := s.wallets.AddCoins(ctx, userID, model.ReleaseReward)
		if err != nil {
			return err
		}
		res = &ReleaseResult{Character: c, Coins: w.Coins}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrCharacterNotFound) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("failed to release character: %w", err)
	}

	log.Info().
		Int64("user_id", userID).
		Int64("character_id", characterID).
		Msg("Character released")

	return res, nil
}

// Clear deletes the whole collection. No coins are paid.
func (s *CollectionService) Clear(ctx context.Context, userID int64) (int64, error) {
	if s.inBattle(userID) {
		return 0, ErrInBattle
	}

	var n int64
	err := s.locks.WithLock(ctx, userID, func() error {
		var err error
		n, err = s.chars.DeleteAll(ctx, userID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clear collection: %w", err)
	}
	if n == 0 {
		return 0, ErrEmptyCollection
	}

	log.Info().Int64("user_id", userID).Int64("removed", n).Msg("Collection cleared")
	return n, nil
}

// Count returns how many characters the user owns.
func (s *CollectionService) Count(ctx context.Context, userID int64) (int, error) {
	n, err := s.chars.Count(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count collection: %w", err)
	}
	return n, nil
}

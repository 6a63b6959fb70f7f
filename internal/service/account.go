package service

import (
	"context"
	"errors"
	"fmt"

	"anime-battle-bot/internal/leveling"
	"anime-battle-bot/internal/model"
	"anime-battle-bot/internal/repository"
)

// DefaultLeaderboardSize is the number of rows /leaderboard shows.
const DefaultLeaderboardSize = 10

// AccountService answers wallet, profile and leaderboard queries.
type AccountService struct {
	wallets  WalletStore
	profiles ProfileStore
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(wallets WalletStore, profiles ProfileStore) *AccountService {
	return &AccountService{wallets: wallets, profiles: profiles}
}

// Balance returns the user's coins.
func (s *AccountService) Balance(ctx context.Context, userID int64) (int64, error) {
	w, err := s.wallets.Get(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return w.Coins, nil
}

// ProfileView is a profile with its progress toward the next level.
type ProfileView struct {
	Profile model.Profile
	Next    int // exp needed to leave the current level
}

// Profile returns the user's level track. Users that never won a battle are level 1.
func (s *AccountService) Profile(ctx context.Context, userID int64) (*ProfileView, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrProfileNotFound) {
			return nil, fmt.Errorf("failed to get profile: %w", err)
		}
		p = &model.Profile{UserID: userID, Level: 1}
	}
	return &ProfileView{Profile: *p, Next: leveling.Threshold(p.Level)}, nil
}

// Leaderboard returns the top collectors by coins, then collection size.
func (s *AccountService) Leaderboard(ctx context.Context, limit int) ([]model.CollectorRank, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	rows, err := s.wallets.TopCollectors(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return rows, nil
}

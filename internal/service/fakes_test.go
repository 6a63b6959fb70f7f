package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"anime-battle-bot/internal/battle"
	"anime-battle-bot/internal/model"
	"anime-battle-bot/internal/repository"
)

// memChars mirrors CharacterRepository in memory.
type memChars struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*model.Character
	addErr error
}

func newMemChars() *memChars {
	return &memChars{rows: make(map[int64]*model.Character)}
}

func (m *memChars) Add(_ context.Context, c *model.Character) (*model.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return nil, m.addErr
	}
	m.nextID++
	out := *c
	out.ID = m.nextID
	out.Level, out.Exp = 1, 0
	m.rows[out.ID] = &out
	cp := out
	return &cp, nil
}

func (m *memChars) GetByID(_ context.Context, id int64) (*model.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrCharacterNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memChars) owned(userID int64) []*model.Character {
	var out []*model.Character
	for _, c := range m.rows {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memChars) GetByIndex(_ context.Context, userID int64, index int) (*model.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cs := m.owned(userID)
	if index < 1 || index > len(cs) {
		return nil, repository.ErrCharacterNotFound
	}
	return cs[index-1], nil
}

func (m *memChars) ListByUser(_ context.Context, userID int64) ([]*model.Character, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owned(userID), nil
}

func (m *memChars) Count(_ context.Context, userID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.owned(userID)), nil
}

func (m *memChars) Delete(_ context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok || c.UserID != userID {
		return repository.ErrCharacterNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memChars) DeleteAll(_ context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, c := range m.rows {
		if c.UserID == userID {
			delete(m.rows, id)
			n++
		}
	}
	return n, nil
}

// memWallets mirrors WalletRepository in memory.
type memWallets struct {
	mu    sync.Mutex
	coins map[int64]int64
}

func newMemWallets() *memWallets {
	return &memWallets{coins: make(map[int64]int64)}
}

func (m *memWallets) AddCoins(_ context.Context, userID, amount int64) (*model.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coins[userID] += amount
	return &model.Wallet{UserID: userID, Coins: m.coins[userID]}, nil
}

func (m *memWallets) Get(_ context.Context, userID int64) (*model.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &model.Wallet{UserID: userID, Coins: m.coins[userID]}, nil
}

func (m *memWallets) TopCollectors(_ context.Context, limit int) ([]model.CollectorRank, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.CollectorRank
	for id, c := range m.coins {
		out = append(out, model.CollectorRank{UserID: id, Coins: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Coins != out[j].Coins {
			return out[i].Coins > out[j].Coins
		}
		return out[i].UserID < out[j].UserID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memProfiles struct {
	rows map[int64]*model.Profile
	err  error
}

func (m *memProfiles) Get(_ context.Context, userID int64) (*model.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.rows[userID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	return p, nil
}

// stubPhases reports a fixed phase per user.
type stubPhases map[int64]battle.Phase

func (s stubPhases) SessionPhase(id int64) battle.Phase {
	return s[id]
}

var errStore = errors.New("store unavailable")

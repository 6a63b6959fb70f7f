package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"anime-battle-bot/internal/model"
)

func TestAccount_ProfileDefaultsToLevelOne(t *testing.T) {
	svc := NewAccountService(newMemWallets(), &memProfiles{})

	v, err := svc.Profile(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Profile.Level)
	assert.Equal(t, 0, v.Profile.Exp)
	assert.Equal(t, 100, v.Next)
}

func TestAccount_ProfileStored(t *testing.T) {
	profiles := &memProfiles{rows: map[int64]*model.Profile{5: {UserID: 5, Level: 3, Exp: 120}}}
	svc := NewAccountService(newMemWallets(), profiles)

	v, err := svc.Profile(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Profile.Level)
	assert.Equal(t, 300, v.Next)
}

func TestAccount_ProfileError(t *testing.T) {
	svc := NewAccountService(newMemWallets(), &memProfiles{err: errStore})
	_, err := svc.Profile(context.Background(), 5)
	assert.ErrorIs(t, err, errStore)
}

func TestAccount_Balance(t *testing.T) {
	wallets := newMemWallets()
	svc := NewAccountService(wallets, &memProfiles{})
	ctx := context.Background()

	b, err := svc.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, b)

	_, _ = wallets.AddCoins(ctx, 1, 30)
	b, err = svc.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(30), b)
}

// *For any* set of wallets, the leaderboard is sorted by coins descending and
// respects the limit.
func TestLeaderboardOrderingProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		wallets := newMemWallets()
		svc := NewAccountService(wallets, &memProfiles{})
		ctx := context.Background()

		n := rapid.IntRange(0, 30).Draw(t, "users")
		for i := 0; i < n; i++ {
			_, _ = wallets.AddCoins(ctx, int64(i+1), rapid.Int64Range(0, 10000).Draw(t, "coins"))
		}
		limit := rapid.IntRange(1, 15).Draw(t, "limit")

		rows, err := svc.Leaderboard(ctx, limit)
		if err != nil {
			t.Fatalf("leaderboard: %v", err)
		}
		if len(rows) != min(limit, n) {
			t.Fatalf("got %d rows, want %d", len(rows), min(limit, n))
		}
		for i := 1; i < len(rows); i++ {
			if rows[i-1].Coins < rows[i].Coins {
				t.Fatalf("not sorted at %d: %d < %d", i, rows[i-1].Coins, rows[i].Coins)
			}
		}
	})
}

func TestLeaderboard_DefaultLimit(t *testing.T) {
	wallets := newMemWallets()
	svc := NewAccountService(wallets, &memProfiles{})
	ctx := context.Background()
	for i := 0; i < 15; i++ {
		_, _ = wallets.AddCoins(ctx, int64(i+1), int64(i))
	}
	rows, err := svc.Leaderboard(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, rows, DefaultLeaderboardSize)
}

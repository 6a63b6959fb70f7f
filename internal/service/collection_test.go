package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"anime-battle-bot/internal/battle"
	"anime-battle-bot/internal/character"
	"anime-battle-bot/internal/model"
)

func newTestCollection() (*CollectionService, *memChars, *memWallets) {
	chars := newMemChars()
	wallets := newMemWallets()
	svc := NewCollectionService(chars, wallets, nil, character.NewSource(1))
	return svc, chars, wallets
}

func spawnOf(name string, r model.Rarity) character.Spawn {
	return character.Spawn{Entry: character.Entry{Name: name, Anime: "Test"}, Rarity: r}
}

func TestCollection_CatchPaysAndStores(t *testing.T) {
	svc, _, wallets := newTestCollection()
	ctx := context.Background()

	res, err := svc.Catch(ctx, 1, spawnOf("Goku", model.RarityEpic))
	require.NoError(t, err)
	assert.Equal(t, model.CatchReward, res.Coins)
	assert.Equal(t, "Goku", res.Character.Name)
	assert.Equal(t, model.RarityEpic, res.Character.Rarity)
	assert.Equal(t, 1, res.Character.Level)

	// Epic base hp is 90.
	assert.GreaterOrEqual(t, res.Character.HP, 90)
	assert.LessOrEqual(t, res.Character.HP, 110)

	w, _ := wallets.Get(ctx, 1)
	assert.Equal(t, int64(25), w.Coins)
}

func TestCollection_CatchFailureNoCoins(t *testing.T) {
	svc, chars, wallets := newTestCollection()
	chars.addErr = errStore

	_, err := svc.Catch(context.Background(), 1, spawnOf("Goku", model.RarityCommon))
	assert.ErrorIs(t, err, errStore)

	w, _ := wallets.Get(context.Background(), 1)
	assert.Zero(t, w.Coins)
}

func TestCollection_IndexIsCatchOrder(t *testing.T) {
	svc, _, _ := newTestCollection()
	ctx := context.Background()

	for _, name := range []string{"Luffy", "Zoro", "Nami"} {
		_, err := svc.Catch(ctx, 1, spawnOf(name, model.RarityCommon))
		require.NoError(t, err)
	}

	c, err := svc.Info(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "Zoro", c.Name)

	_, err = svc.Info(ctx, 1, 4)
	assert.ErrorIs(t, err, ErrCharacterNotFound)

	_, err = svc.FighterAt(ctx, 1, 0)
	assert.ErrorIs(t, err, battle.ErrInvalidIndex)
	_, err = svc.FighterAt(ctx, 2, 1)
	assert.ErrorIs(t, err, battle.ErrInvalidIndex)

	f, err := svc.FighterAt(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, "Nami", f.Name)
}

func TestCollection_Release(t *testing.T) {
	svc, _, _ := newTestCollection()
	ctx := context.Background()

	res, err := svc.Catch(ctx, 1, spawnOf("Levi", model.RarityRare))
	require.NoError(t, err)

	_, err = svc.Release(ctx, 2, res.Character.ID)
	assert.ErrorIs(t, err, ErrCharacterNotFound, "cannot release someone else's character")

	rel, err := svc.Release(ctx, 1, res.Character.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CatchReward+model.ReleaseReward, rel.Coins)
	assert.Equal(t, "Levi", rel.Character.Name)

	_, err = svc.Release(ctx, 1, res.Character.ID)
	assert.ErrorIs(t, err, ErrCharacterNotFound)

	n, err := svc.Count(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCollection_RefusedInBattle(t *testing.T) {
	for _, phase := range []battle.Phase{battle.PhaseChoosing, battle.PhaseInCombat} {
		t.Run(phase.String(), func(t *testing.T) {
			svc, _, _ := newTestCollection()
			ctx := context.Background()
			res, err := svc.Catch(ctx, 1, spawnOf("Levi", model.RarityRare))
			require.NoError(t, err)

			svc.SetBattlePhases(stubPhases{1: phase})

			_, err = svc.Release(ctx, 1, res.Character.ID)
			assert.ErrorIs(t, err, ErrInBattle)
			_, err = svc.Clear(ctx, 1)
			assert.ErrorIs(t, err, ErrInBattle)

			n, _ := svc.Count(ctx, 1)
			assert.Equal(t, 1, n)
		})
	}
}

func TestCollection_PendingChallengeDoesNotLock(t *testing.T) {
	svc, _, _ := newTestCollection()
	ctx := context.Background()
	res, err := svc.Catch(ctx, 1, spawnOf("Levi", model.RarityRare))
	require.NoError(t, err)

	svc.SetBattlePhases(stubPhases{1: battle.PhasePendingChallenge})
	_, err = svc.Release(ctx, 1, res.Character.ID)
	assert.NoError(t, err)
}

func TestCollection_Clear(t *testing.T) {
	svc, _, wallets := newTestCollection()
	ctx := context.Background()

	_, err := svc.Clear(ctx, 1)
	assert.ErrorIs(t, err, ErrEmptyCollection)

	for i := 0; i < 4; i++ {
		_, err := svc.Catch(ctx, 1, spawnOf("Gon", model.RarityCommon))
		require.NoError(t, err)
	}
	n, err := svc.Clear(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	w, _ := wallets.Get(ctx, 1)
	assert.Equal(t, 4*model.CatchReward, w.Coins, "clearing pays nothing")
}

// *For any* sequence of concurrent catches and releases by one user, the wallet
// equals catches*25 + successful releases*5.
func TestCollectionCoinConservationProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		svc, _, wallets := newTestCollection()
		ctx := context.Background()

		catches := rapid.IntRange(1, 15).Draw(t, "catches")
		releases := rapid.IntRange(0, catches).Draw(t, "releases")

		ids := make([]int64, 0, catches)
		for i := 0; i < catches; i++ {
			res, err := svc.Catch(ctx, 9, spawnOf("Saitama", model.RarityCommon))
			if err != nil {
				t.Fatalf("catch: %v", err)
			}
			ids = append(ids, res.Character.ID)
		}

		// Two goroutines race to release each chosen character; exactly one may win.
		var wg sync.WaitGroup
		for _, id := range ids[:releases] {
			for k := 0; k < 2; k++ {
				wg.Add(1)
				go func(id int64) {
					defer wg.Done()
					_, _ = svc.Release(ctx, 9, id)
				}(id)
			}
		}
		wg.Wait()

		w, _ := wallets.Get(ctx, 9)
		want := int64(catches)*model.CatchReward + int64(releases)*model.ReleaseReward
		if w.Coins != want {
			t.Fatalf("coins %d, want %d", w.Coins, want)
		}
		n, _ := svc.Count(ctx, 9)
		if n != catches-releases {
			t.Fatalf("collection size %d, want %d", n, catches-releases)
		}
	})
}

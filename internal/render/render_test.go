package render

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"anime-battle-bot/internal/battle"
	"anime-battle-bot/internal/leveling"
	"anime-battle-bot/internal/model"
)

func TestHPBar(t *testing.T) {
	tests := []struct {
		cur, total int
		green      int
		suffix     string
	}{
		{100, 100, 10, " 100/100"},
		{0, 50, 0, " 0/50"},
		{55, 100, 6, " 55/100"},
		{54, 100, 5, " 54/100"},
		{-5, 10, 0, " 0/10"},
		{20, 10, 10, " 10/10"},
		{5, 0, 10, " 1/1"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.cur, tt.total), func(t *testing.T) {
			bar := HPBar(tt.cur, tt.total)
			assert.Equal(t, tt.green, strings.Count(bar, "🟩"))
			assert.Equal(t, BarLength-tt.green, strings.Count(bar, "🟥"))
			assert.True(t, strings.HasSuffix(bar, tt.suffix), bar)
		})
	}
}

func TestFrames(t *testing.T) {
	assert.Equal(t, []int{40, 30, 20}, Frames(50, 20, 3))
	assert.Equal(t, []int{6, 3, 0}, Frames(10, 0, 3))
	assert.Equal(t, []int{5, 5, 5}, Frames(5, 5, 3))
	assert.Equal(t, []int{0}, Frames(9, 0, 0))
}

// *For any* hit, the animation never rises, never overshoots and ends on the
// real health.
func TestFramesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		after := rapid.IntRange(0, 200).Draw(t, "after")
		before := rapid.IntRange(after, after+200).Draw(t, "before")
		steps := rapid.IntRange(1, 10).Draw(t, "steps")

		fr := Frames(before, after, steps)
		if len(fr) != steps {
			t.Fatalf("got %d frames, want %d", len(fr), steps)
		}
		prev := before
		for i, hp := range fr {
			if hp > prev || hp < after {
				t.Fatalf("frame %d = %d outside [%d,%d]", i, hp, after, prev)
			}
			prev = hp
		}
		if fr[steps-1] != after {
			t.Fatalf("last frame %d, want %d", fr[steps-1], after)
		}
	})
}

var (
	alice = battle.Participant{ID: 1, Name: "alice"}
	bob   = battle.Participant{ID: 2, Name: "bob"}
)

func testBoard() battle.Board {
	a := battle.NewCombatant(alice, model.Character{ID: 10, UserID: 1, Name: "Goku", Rarity: model.RarityEpic, HP: 100, Attack: 50, Defense: 20, Level: 2})
	b := battle.NewCombatant(bob, model.Character{ID: 20, UserID: 2, Name: "Luffy", Rarity: model.RarityCommon, HP: 60, Attack: 30, Defense: 10, Level: 1})
	return battle.Board{First: a, Second: b}
}

func TestTurnFrame(t *testing.T) {
	board := testBoard()
	board.Second.HP = 20
	turn := battle.Turn{
		Attacker: alice, Defender: bob,
		AttackerName: "Goku", DefenderName: "Luffy",
		Damage: 40, DefenderHPBefore: 60, DefenderHP: 20,
		Board: board,
	}

	frame := TurnFrame(turn, 33)
	assert.Contains(t, frame, " 33/60")
	assert.Contains(t, frame, " 100/100")
	assert.True(t, strings.HasSuffix(frame, "💥 Goku attacks → 40 damage to Luffy!"))

	assert.Contains(t, Board(board), " 20/60")
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "alice", DisplayName(alice))
	assert.Equal(t, "User7", DisplayName(battle.Participant{ID: 7}))
}

func TestChallenge(t *testing.T) {
	now := time.Now()
	c := battle.Challenge{Challenger: alice, Target: bob, CreatedAt: now, ExpiresAt: now.Add(time.Minute)}
	assert.Contains(t, Challenge(c), "⚔️ alice has challenged bob!")
	assert.Contains(t, Challenge(c), "60s")
	assert.Contains(t, ChallengeExpired(c), "timed out")
}

func TestOutcome(t *testing.T) {
	goku := model.Character{ID: 10, Name: "Goku", Rarity: model.RarityEpic}

	t.Run("knockout with level up", func(t *testing.T) {
		o := battle.Outcome{
			Reason:          battle.EndKnockout,
			Winner:          alice,
			Loser:           bob,
			WinnerCharacter: &goku,
			Reward: &battle.Reward{
				Grant: battle.NewGrant(alice.ID, goku),
				Settlement: &battle.Settlement{
					Character: leveling.Apply(leveling.Progress{Level: 1, Exp: 90}, 30),
					Profile:   leveling.Apply(leveling.Progress{Level: 1, Exp: 0}, 10),
				},
			},
		}
		msg := Outcome(o)
		assert.Contains(t, msg, "🏆 Battle Over!\nalice wins and bob loses")
		assert.Contains(t, msg, "✨ Goku +30 exp (20/200)")
		assert.Contains(t, msg, "🆙 Goku reached level 2!")
		assert.Contains(t, msg, "✨ alice +10 exp (10/100)")
		assert.NotContains(t, msg, "alice reached level")
	})

	t.Run("forfeit", func(t *testing.T) {
		msg := Outcome(battle.Outcome{Reason: battle.EndForfeit, Winner: alice, Loser: bob})
		assert.Equal(t, "🏳️ bob fled the battle. alice wins!", msg)
	})

	t.Run("selection timeout", func(t *testing.T) {
		msg := Outcome(battle.Outcome{Reason: battle.EndSelectionTimeout, Winner: bob, Loser: alice})
		assert.Contains(t, msg, "alice did not pick a fighter in time")
	})

	t.Run("cancelled", func(t *testing.T) {
		msg := Outcome(battle.Outcome{Reason: battle.EndCancelled, Winner: alice, Loser: bob})
		assert.Contains(t, msg, "cancelled")
	})

	t.Run("settlement failed", func(t *testing.T) {
		msg := Outcome(battle.Outcome{
			Reason: battle.EndKnockout, Winner: alice, Loser: bob,
			WinnerCharacter: &goku, Err: errors.New("db down"),
		})
		assert.Contains(t, msg, "could not be saved")
		assert.NotContains(t, msg, "exp")
	})
}

func TestCollection(t *testing.T) {
	assert.Equal(t, "📦 Your collection is empty.", Collection("alice", nil))

	msg := Collection("alice", []*model.Character{
		{Name: "Goku", Anime: "Dragon Ball", Rarity: model.RarityEpic, Level: 3},
		{Name: "Luffy", Anime: "One Piece", Rarity: model.RarityCommon, Level: 1},
	})
	assert.Contains(t, msg, "1. 💎 Goku Lv.3 (Dragon Ball)")
	assert.Contains(t, msg, "2.  Luffy Lv.1 (One Piece)")
}

func TestInfo(t *testing.T) {
	msg := Info(2, &model.Character{Name: "Levi", Anime: "Attack on Titan", Rarity: model.RarityRare, Level: 2, Exp: 40, HP: 80, Attack: 45, Defense: 38, Speed: 22, IV: 17})
	assert.Contains(t, msg, "#2 Levi")
	assert.Contains(t, msg, "Exp: 40/200")
	assert.Contains(t, msg, "IV: 17")
}

func TestLeaderboard(t *testing.T) {
	name := func(id int64) string { return fmt.Sprintf("u%d", id) }
	assert.Contains(t, Leaderboard(nil, name), "No collectors yet")

	msg := Leaderboard([]model.CollectorRank{
		{UserID: 1, Coins: 300, Cards: 4},
		{UserID: 2, Coins: 200, Cards: 2},
		{UserID: 3, Coins: 100, Cards: 9},
		{UserID: 4, Coins: 50, Cards: 1},
	}, name)
	assert.Contains(t, msg, "💰 Richest Collectors")
	assert.Contains(t, msg, "🥇 u1\nCoins: 💵 300 | Cards: 4")
	assert.Contains(t, msg, "4. u4")
}

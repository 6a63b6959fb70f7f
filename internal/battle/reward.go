package battle

import (
	"context"
	"fmt"
	"time"

	"anime-battle-bot/internal/leveling"
	"anime-battle-bot/internal/model"
)

// Experience granted to the winning side only.
const (
	BaseCharacterExp = 20
	UserExpGain      = 10
)

// settleTimeout bounds the persistence call of one settlement.
const settleTimeout = 10 * time.Second

// RarityBonus returns the extra character exp for a win with a character of rarity r.
func RarityBonus(r model.Rarity) int {
	switch r {
	case model.RarityRare:
		return 5
	case model.RarityEpic:
		return 10
	case model.RarityLegendary:
		return 20
	case model.RarityMythic:
		return 40
	default:
		return 0
	}
}

// CharacterExpGain returns the exp the winning character receives.
func CharacterExpGain(r model.Rarity) int {
	return BaseCharacterExp + RarityBonus(r)
}

// Grant is the experience owed to the winner of one battle.
type Grant struct {
	CharacterID  int64
	UserID       int64
	CharacterExp int
	UserExp      int
}

// Settlement is what the sink applied: the character track and the profile track,
// which never interact.
type Settlement struct {
	Character leveling.Result
	Profile   leveling.Result
}

// RewardSink persists a grant. Both updates must be applied together or not at all.
type RewardSink interface {
	ApplyBattleReward(ctx context.Context, g Grant) (*Settlement, error)
}

// Reward is a computed grant and, when persistence succeeded, its effect.
type Reward struct {
	Grant      Grant
	Settlement *Settlement
}

// NewGrant computes the winner's grant from the character they fought with.
func NewGrant(winner int64, c model.Character) Grant {
	return Grant{
		CharacterID:  c.ID,
		UserID:       winner,
		CharacterExp: CharacterExpGain(c.Rarity),
		UserExp:      UserExpGain,
	}
}

// Settle applies the winner's reward through sink. It runs detached from ctx
// cancellation so a forfeit or shutdown mid-write cannot half-apply it.
func Settle(ctx context.Context, sink RewardSink, winner int64, c model.Character) (*Reward, error) {
	g := NewGrant(winner, c)
	r := &Reward{Grant: g}
	if sink == nil {
		return r, nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
	defer cancel()

	s, err := sink.ApplyBattleReward(ctx, g)
	if err != nil {
		return r, fmt.Errorf("failed to settle battle reward: %w", err)
	}
	r.Settlement = s
	return r, nil
}

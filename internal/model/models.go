// Package model defines the data models for the anime battle bot.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Rarity is the ordered tier of a character instance.
type Rarity string

// Rarity tiers, lowest first.
const (
	RarityCommon    Rarity = "Common"
	RarityRare      Rarity = "Rare"
	RarityEpic      Rarity = "Epic"
	RarityLegendary Rarity = "Legendary"
	RarityMythic    Rarity = "Mythic"
)

// Rarities returns every tier in ascending order.
func Rarities() []Rarity {
	return []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary, RarityMythic}
}

// Rank returns the position of the tier (Common = 0). Unknown tiers rank -1.
func (r Rarity) Rank() int {
	for i, t := range Rarities() {
		if t == r {
			return i
		}
	}
	return -1
}

// Valid reports whether r is one of the known tiers.
func (r Rarity) Valid() bool {
	return r.Rank() >= 0
}

// Less reports whether r is a lower tier than other.
func (r Rarity) Less(other Rarity) bool {
	return r.Rank() < other.Rank()
}

// Emoji returns the decoration shown next to the tier.
func (r Rarity) Emoji() string {
	switch r {
	case RarityRare:
		return "🎯"
	case RarityEpic:
		return "💎"
	case RarityLegendary:
		return "✨"
	case RarityMythic:
		return "🌟"
	default:
		return ""
	}
}

// ParseRarity converts a stored tier name, ignoring case.
func ParseRarity(s string) (Rarity, error) {
	for _, t := range Rarities() {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown rarity %q", s)
}

// Character is an owned collectible instance.
// Several instances of the same named character may exist, each with its own stats.
type Character struct {
	ID       int64     `db:"id"`
	UserID   int64     `db:"user_id"`
	Name     string    `db:"name"`
	Anime    string    `db:"anime"`
	Rarity   Rarity    `db:"rarity"`
	HP       int       `db:"hp"`
	Attack   int       `db:"attack"`
	Defense  int       `db:"defense"`
	Speed    int       `db:"speed"`
	IV       int       `db:"iv"`
	Level    int       `db:"level"`
	Exp      int       `db:"exp"`
	CaughtAt time.Time `db:"caught_at"`
}

// Wallet is the coin balance of a user.
type Wallet struct {
	UserID    int64     `db:"user_id"`
	Coins     int64     `db:"coins"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Profile is the account level track of a user, separate from any character level.
type Profile struct {
	UserID    int64     `db:"user_id"`
	Level     int       `db:"level"`
	Exp       int       `db:"exp"`
	UpdatedAt time.Time `db:"updated_at"`
}

// CollectorRank is one leaderboard row.
type CollectorRank struct {
	UserID int64 `db:"user_id"`
	Coins  int64 `db:"coins"`
	Cards  int   `db:"cards"`
}

// Economy constants carried over from the catch and release flow.
const (
	CatchReward   int64 = 25 // Coins granted for a successful catch
	ReleaseReward int64 = 5  // Coins granted for releasing a character
)

package character

import "anime-battle-bot/internal/model"

// Stat roll bounds.
const (
	HPBonusMax   = 20
	StatBonusMax = 15
	SpeedMin     = 10
	SpeedMax     = 50
	IVMax        = 31
)

// Stats are the combat stats rolled when a character is caught.
type Stats struct {
	HP      int
	Attack  int
	Defense int
	Speed   int
	IV      int
}

// BaseHP returns the hp floor of a rarity: Common 50 up to Mythic 130 in steps of 20.
// Unknown tiers use the Common floor.
func BaseHP(r model.Rarity) int {
	rank := r.Rank()
	if rank < 0 {
		rank = 0
	}
	return 50 + 20*rank
}

// GenerateStats rolls stats for a freshly caught character of rarity r.
// attack and defense scale with base/2; speed and iv do not depend on rarity.
func GenerateStats(r model.Rarity, src Source) Stats {
	base := BaseHP(r)
	return Stats{
		HP:      base + between(src, 0, HPBonusMax),
		Attack:  base/2 + between(src, 0, StatBonusMax),
		Defense: base/2 + between(src, 0, StatBonusMax),
		Speed:   between(src, SpeedMin, SpeedMax),
		IV:      between(src, 0, IVMax),
	}
}

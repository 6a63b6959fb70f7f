// Package leveling implements the experience curve shared by characters and user profiles.
package leveling

// ExpPerLevel is the multiplier of the level-up threshold: reaching level L+1 from L
// costs L*ExpPerLevel experience.
const ExpPerLevel = 100

// Progress is a level/exp pair on the curve.
type Progress struct {
	Level int
	Exp   int
}

// Threshold returns the exp needed to leave the given level.
func Threshold(level int) int {
	return level * ExpPerLevel
}

// Result describes what one experience grant did.
type Result struct {
	Before Progress
	After  Progress
	Gained int // exp granted
	Levels int // levels gained
}

// LeveledUp reports whether the grant crossed at least one threshold.
func (r Result) LeveledUp() bool {
	return r.Levels > 0
}

// Apply grants exp and levels up by repeated subtraction until exp < level*100.
// Invalid inputs are normalised: level below 1 becomes 1, negative exp or gain becomes 0.
func Apply(p Progress, gain int) Result {
	if p.Level < 1 {
		p.Level = 1
	}
	if p.Exp < 0 {
		p.Exp = 0
	}
	if gain < 0 {
		gain = 0
	}

	res := Result{Before: p, Gained: gain}

	level, exp := p.Level, p.Exp+gain
	for exp >= Threshold(level) {
		exp -= Threshold(level)
		level++
		res.Levels++
	}

	res.After = Progress{Level: level, Exp: exp}
	return res
}

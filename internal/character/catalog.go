package character

import (
	"strings"
	"unicode"

	"anime-battle-bot/internal/model"
)

// Entry is a named character in the roster.
type Entry struct {
	ID    int
	Name  string
	Anime string
}

// Spawn is a roster entry with the rarity it appeared with.
type Spawn struct {
	Entry
	Rarity model.Rarity
}

var roster = []Entry{
	{1, "Naruto Uzumaki", "Naruto"},
	{2, "Sasuke Uchiha", "Naruto"},
	{3, "Luffy", "One Piece"},
	{4, "Gojo Satoru", "Jujutsu Kaisen"},
	{5, "Goku", "Dragon Ball"},
	{6, "Tanjiro Kamado", "Demon Slayer"},
	{7, "Mikasa Ackerman", "Attack on Titan"},
	{8, "Light Yagami", "Death Note"},
	{9, "Saitama", "One Punch Man"},
	{10, "Levi Ackerman", "Attack on Titan"},
	{11, "Izuku Midoriya", "My Hero Academia"},
	{12, "Itsuki Nakano", "The Quintessential Quintuplets"},
}

// rarityWeights are the spawn weights per tier, out of 100.
var rarityWeights = []struct {
	rarity model.Rarity
	weight int
}{
	{model.RarityCommon, 55},
	{model.RarityRare, 25},
	{model.RarityEpic, 12},
	{model.RarityLegendary, 6},
	{model.RarityMythic, 2},
}

// Roster returns a copy of all spawnable characters.
func Roster() []Entry {
	out := make([]Entry, len(roster))
	copy(out, roster)
	return out
}

// RarityWeight returns the spawn weight of a tier.
func RarityWeight(r model.Rarity) int {
	for _, w := range rarityWeights {
		if w.rarity == r {
			return w.weight
		}
	}
	return 0
}

// DrawRarity picks a tier using the spawn weights.
func DrawRarity(src Source) model.Rarity {
	total := 0
	for _, w := range rarityWeights {
		total += w.weight
	}
	n := src.Intn(total)
	for _, w := range rarityWeights {
		if n < w.weight {
			return w.rarity
		}
		n -= w.weight
	}
	return model.RarityCommon
}

// Random picks a roster entry and a weighted rarity.
func Random(src Source) Spawn {
	e := roster[src.Intn(len(roster))]
	return Spawn{Entry: e, Rarity: DrawRarity(src)}
}

// Matches reports whether a catch guess names the character: the full name or the
// first word, ignoring case and surrounding space.
func Matches(guess, name string) bool {
	g := strings.ToLower(strings.TrimSpace(guess))
	n := strings.ToLower(strings.TrimSpace(name))
	if g == "" || n == "" {
		return false
	}
	if g == n {
		return true
	}
	return g == strings.Fields(n)[0]
}

// Hint reveals the first letter of each word and masks the rest, e.g.
// "Naruto Uzumaki" -> "N _ _ _ _ _   U _ _ _ _ _ _".
func Hint(name string) string {
	var b strings.Builder
	newWord := true
	for _, ch := range name {
		switch {
		case ch == ' ':
			b.WriteString("  ")
			newWord = true
		case unicode.IsLetter(ch):
			if newWord {
				b.WriteRune(unicode.ToUpper(ch))
				b.WriteString(" ")
				newWord = false
			} else {
				b.WriteString("_ ")
			}
		default:
			b.WriteRune(ch)
			b.WriteString(" ")
		}
	}
	return strings.TrimSpace(b.String())
}

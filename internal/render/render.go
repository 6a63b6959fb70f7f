// Package render builds the chat text for battles, collections and the economy.
package render

import (
	"fmt"
	"math"
	"strings"

	"anime-battle-bot/internal/battle"
	"anime-battle-bot/internal/character"
	"anime-battle-bot/internal/leveling"
	"anime-battle-bot/internal/model"
)

// BarLength is the number of cells in an HP bar.
const BarLength = 10

const separator = "━━━━━━━━━━━━━━━"

// BoardClosed replaces a board whose battle ended before the first blow.
const BoardClosed = "🏁 This battle is over."

// HPBar draws cur/total as filled and empty cells followed by the numbers.
func HPBar(cur, total int) string {
	if total < 1 {
		total = 1
	}
	cur = min(max(cur, 0), total)
	filled := int(math.Round(float64(cur) / float64(total) * BarLength))
	return strings.Repeat("🟩", filled) + strings.Repeat("🟥", BarLength-filled) +
		fmt.Sprintf(" %d/%d", cur, total)
}

// Frames returns the defender health shown on each animation step of one hit,
// ending at after.
func Frames(before, after, steps int) []int {
	if steps < 1 {
		steps = 1
	}
	dmg := before - after
	out := make([]int, steps)
	for s := 0; s < steps; s++ {
		hp := before - int(math.Ceil(float64((s+1)*dmg)/float64(steps)))
		out[s] = max(hp, after)
	}
	return out
}

// DisplayName returns the name to show for a participant.
func DisplayName(p battle.Participant) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("User%d", p.ID)
}

func side(c battle.Combatant, hp int) string {
	return fmt.Sprintf("%s %s (%s)\n%s Lv.%d · ATK %d · DEF %d\n%s",
		c.Character.Rarity.Emoji(), c.Character.Name, DisplayName(c.Owner),
		c.Character.Rarity, c.Character.Level, c.Character.Attack, c.Character.Defense,
		HPBar(hp, c.MaxHP))
}

// Board renders both fighters at their current health.
func Board(b battle.Board) string {
	return BoardAt(b, 0, 0)
}

// BoardAt renders b with the fighter owned by defender shown at hp.
// A defender of 0 keeps both sides as they are.
func BoardAt(b battle.Board, defender int64, hp int) string {
	first, second := b.First.HP, b.Second.HP
	switch defender {
	case 0:
	case b.First.Owner.ID:
		first = hp
	case b.Second.Owner.ID:
		second = hp
	}
	return "⚔️ Battle\n" + separator + "\n" +
		side(b.First, first) + "\n\n" +
		side(b.Second, second) + "\n" + separator
}

// TurnLine describes one attack.
func TurnLine(t battle.Turn) string {
	return fmt.Sprintf("💥 %s attacks → %d damage to %s!", t.AttackerName, t.Damage, t.DefenderName)
}

// TurnFrame is one animation frame of t: the board with the defender at hp and the
// attack line below.
func TurnFrame(t battle.Turn, hp int) string {
	return BoardAt(t.Board, t.Defender.ID, hp) + "\n" + TurnLine(t)
}

// Challenge announces a challenge waiting for an answer.
func Challenge(c battle.Challenge) string {
	secs := int(math.Round(c.ExpiresAt.Sub(c.CreatedAt).Seconds()))
	return fmt.Sprintf("⚔️ %s has challenged %s!\n\n%s, accept within %ds.",
		DisplayName(c.Challenger), DisplayName(c.Target), DisplayName(c.Target), secs)
}

// ChallengeExpired tells the chat nobody answered.
func ChallengeExpired(c battle.Challenge) string {
	return fmt.Sprintf("❌ Battle request timed out. %s did not answer %s.",
		DisplayName(c.Target), DisplayName(c.Challenger))
}

// Accepted tells both sides to pick their fighters.
func Accepted(v battle.View) string {
	return fmt.Sprintf("✅ Battle accepted! Starting...\n\n%s and %s, pick your fighter using /fight <index>.",
		DisplayName(v.Challenger), DisplayName(v.Opponent))
}

// Declined tells the challenger the answer was no.
func Declined(c battle.Challenge) string {
	return fmt.Sprintf("🚫 %s declined the battle.", DisplayName(c.Target))
}

// Picked confirms a fighter pick.
func Picked(s battle.Selection) string {
	msg := fmt.Sprintf("✅ %s picked %s %s!", DisplayName(s.Session.Participant(s.Character.UserID)),
		s.Character.Rarity.Emoji(), s.Character.Name)
	if !s.Started {
		msg += fmt.Sprintf("\nWaiting for %s...", DisplayName(s.Session.OpponentOf(s.Character.UserID)))
	}
	return msg
}

// Outcome renders the end of a battle and what the winner earned.
func Outcome(o battle.Outcome) string {
	var msg string
	winner, loser := DisplayName(o.Winner), DisplayName(o.Loser)
	switch o.Reason {
	case battle.EndKnockout:
		msg = fmt.Sprintf("🏆 Battle Over!\n%s wins and %s loses", winner, loser)
	case battle.EndForfeit:
		msg = fmt.Sprintf("🏳️ %s fled the battle. %s wins!", loser, winner)
	case battle.EndSelectionTimeout:
		msg = fmt.Sprintf("⌛ %s did not pick a fighter in time. %s wins!", loser, winner)
	default:
		return "❌ Battle cancelled. No rewards this time."
	}

	if o.Err != nil {
		return msg + "\n\n⚠️ Rewards could not be saved, please try again later."
	}
	if o.Reward == nil || o.Reward.Settlement == nil || o.WinnerCharacter == nil {
		return msg
	}

	g, s := o.Reward.Grant, o.Reward.Settlement
	msg += "\n\n" + ExpLine(o.WinnerCharacter.Name, g.CharacterExp, s.Character)
	msg += "\n" + ExpLine(winner, g.UserExp, s.Profile)
	return msg
}

// ExpLine reports an exp gain and any level up.
func ExpLine(name string, gained int, r leveling.Result) string {
	line := fmt.Sprintf("✨ %s +%d exp (%d/%d)", name, gained, r.After.Exp, leveling.Threshold(r.After.Level))
	if r.LeveledUp() {
		line += fmt.Sprintf("\n🆙 %s reached level %d!", name, r.After.Level)
	}
	return line
}

// Spawned announces a new character in the chat.
func Spawned(sp character.Spawn) string {
	return fmt.Sprintf("%s A wild %s character appeared!\nAnime: %s\n\nUse /catch <name> to catch it, /hint for help.",
		sp.Rarity.Emoji(), sp.Rarity, sp.Anime)
}

// Caught announces a successful catch.
func Caught(c *model.Character, coins int64) string {
	return fmt.Sprintf("🎉 %s You caught %s!\nAnime: %s | Rarity: %s\n💵 +%d coins (balance %d)",
		c.Rarity.Emoji(), c.Name, c.Anime, c.Rarity, model.CatchReward, coins)
}

// Hint shows the first-letter hint.
func Hint(hint string) string {
	return "💡 Hint: " + hint
}

// Collection lists owned characters with their 1-based index.
func Collection(name string, chars []*model.Character) string {
	if len(chars) == 0 {
		return "📦 Your collection is empty."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📦 %s's collection (%d)\n%s\n", name, len(chars), separator)
	for i, c := range chars {
		fmt.Fprintf(&b, "%d. %s %s Lv.%d (%s)\n", i+1, c.Rarity.Emoji(), c.Name, c.Level, c.Anime)
	}
	b.WriteString(separator)
	return b.String()
}

// Info shows the full stats of one character.
func Info(index int, c *model.Character) string {
	return fmt.Sprintf("%s #%d %s\n"+
		"Anime: %s | Rarity: %s\n"+
		"Level: %d | Exp: %d/%d\n"+
		"❤️ HP: %d\n"+
		"⚔️ ATK: %d\n"+
		"🛡 DEF: %d\n"+
		"💨 SPD: %d\n"+
		"🧬 IV: %d",
		c.Rarity.Emoji(), index, c.Name,
		c.Anime, c.Rarity,
		c.Level, c.Exp, leveling.Threshold(c.Level),
		c.HP, c.Attack, c.Defense, c.Speed, c.IV)
}

// Leaderboard lists the richest collectors. name resolves a user id to a display name.
func Leaderboard(rows []model.CollectorRank, name func(int64) string) string {
	msg := "💰 Richest Collectors\n" + separator + "\n"
	if len(rows) == 0 {
		return msg + "No collectors yet"
	}
	medals := []string{"🥇", "🥈", "🥉"}
	for i, r := range rows {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		msg += fmt.Sprintf("%s %s\nCoins: 💵 %d | Cards: %d\n", rank, name(r.UserID), r.Coins, r.Cards)
	}
	return msg + separator
}

// Profile shows a user's account level.
func Profile(name string, p model.Profile, coins int64, cards int) string {
	return fmt.Sprintf("👤 %s\nLevel: %d\nExp: %d/%d\n💵 Coins: %d\n📦 Cards: %d",
		name, p.Level, p.Exp, leveling.Threshold(p.Level), coins, cards)
}

package battle

import (
	"context"

	"anime-battle-bot/internal/model"
)

// Roster resolves a 1-based collection index to the user's character.
// Implementations return an error wrapping ErrInvalidIndex when index is out of range.
type Roster interface {
	FighterAt(ctx context.Context, userID int64, index int) (*model.Character, error)
}

// Notifier receives the events that happen without a caller waiting on them:
// challenge expiry, the combat loop and battles that end on their own.
// Outcomes of Forfeit are returned to the caller instead.
// The manager never holds the store lock while calling a Notifier.
type Notifier interface {
	ChallengeExpired(ctx context.Context, c Challenge)
	CombatStarted(ctx context.Context, v View, b Board)
	// TurnResolved may block to pace the fight; ctx is cancelled when the battle is
	// forfeited or the manager shuts down.
	TurnResolved(ctx context.Context, v View, t Turn)
	BattleEnded(ctx context.Context, o Outcome)
}

// NopNotifier ignores every event.
type NopNotifier struct{}

func (NopNotifier) ChallengeExpired(context.Context, Challenge) {}
func (NopNotifier) CombatStarted(context.Context, View, Board) {}
func (NopNotifier) TurnResolved(context.Context, View, Turn) {}
func (NopNotifier) BattleEnded(context.Context, Outcome) {}

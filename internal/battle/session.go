// Package battle implements 1v1 character battles: the session store, the phase
// machine, turn resolution and reward settlement.
package battle

import (
	"context"
	"time"

	"anime-battle-bot/internal/model"
)

// Phase is the stage a battle is in.
type Phase int

// Battle phases. PhaseNone means the participant has nothing open.
const (
	PhaseNone Phase = iota
	PhasePendingChallenge
	PhaseChoosing
	PhaseInCombat
	PhaseResolved
)

func (p Phase) String() string {
	switch p {
	case PhasePendingChallenge:
		return "pending-challenge"
	case PhaseChoosing:
		return "choosing"
	case PhaseInCombat:
		return "in-combat"
	case PhaseResolved:
		return "resolved"
	default:
		return "none"
	}
}

// Participant identifies a player.
type Participant struct {
	ID   int64
	Name string
}

// Challenge is an issued but unanswered battle request.
type Challenge struct {
	ID         string
	ChatID     int64
	Challenger Participant
	Target     Participant
	CreatedAt  time.Time
	ExpiresAt  time.Time
	MessageID  int

	timer *time.Timer
}

// session is the shared record both store entries point to.
// All fields are guarded by the store mutex.
type session struct {
	id         string
	chatID     int64
	challenger Participant
	opponent   Participant
	phase      Phase
	selections map[int64]model.Character
	createdAt  time.Time
	messageID  int
	turns      int

	selectionTimer *time.Timer
	cancelCombat   context.CancelFunc
}

func (s *session) view() View {
	sel := make(map[int64]model.Character, len(s.selections))
	for k, v := range s.selections {
		sel[k] = v
	}
	return View{
		ID:         s.id,
		ChatID:     s.chatID,
		Challenger: s.challenger,
		Opponent:   s.opponent,
		Phase:      s.phase,
		Selections: sel,
		CreatedAt:  s.createdAt,
		MessageID:  s.messageID,
		Turns:      s.turns,
	}
}

func (s *session) other(id int64) Participant {
	if id == s.challenger.ID {
		return s.opponent
	}
	return s.challenger
}

// View is a read-only snapshot of a session.
type View struct {
	ID         string
	ChatID     int64
	Challenger Participant
	Opponent   Participant
	Phase      Phase
	Selections map[int64]model.Character
	CreatedAt  time.Time
	MessageID  int
	Turns      int // resolved combat turns
}

// OpponentOf returns the other side of the battle.
func (v View) OpponentOf(id int64) Participant {
	if id == v.Challenger.ID {
		return v.Opponent
	}
	return v.Challenger
}

// Participant returns the side with id.
func (v View) Participant(id int64) Participant {
	if id == v.Opponent.ID {
		return v.Opponent
	}
	return v.Challenger
}

// Selection returns the character a participant picked.
func (v View) Selection(id int64) (model.Character, bool) {
	c, ok := v.Selections[id]
	return c, ok
}

// Involves reports whether id is one of the two participants.
func (v View) Involves(id int64) bool {
	return id == v.Challenger.ID || id == v.Opponent.ID
}

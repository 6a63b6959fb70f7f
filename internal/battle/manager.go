package battle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"anime-battle-bot/internal/model"
)

// Default timings.
const (
	DefaultChallengeTimeout = 60 * time.Second
	DefaultSelectionTimeout = 5 * time.Minute
)

// EndReason tells how a battle finished.
type EndReason int

const (
	EndKnockout         EndReason = iota // a side reached 0 health
	EndForfeit                           // a participant gave up
	EndSelectionTimeout                  // the choosing phase ran out with one pick missing
	EndCancelled                         // nobody can be credited, no reward
)

func (r EndReason) String() string {
	switch r {
	case EndKnockout:
		return "knockout"
	case EndForfeit:
		return "forfeit"
	case EndSelectionTimeout:
		return "selection_timeout"
	default:
		return "cancelled"
	}
}

// Outcome is the result of a concluded battle.
type Outcome struct {
	Session         View
	Reason          EndReason
	Winner          Participant
	Loser           Participant
	WinnerCharacter *model.Character // nil when cancelled
	Turns           int
	Reward          *Reward // nil when cancelled
	Err             error   // settlement failure, the session is gone regardless
}

// Rewarded reports whether the winner was credited.
func (o Outcome) Rewarded() bool {
	return o.Reward != nil && o.Err == nil
}

// Config holds manager timings. A zero SelectionTimeout disables the choosing deadline.
type Config struct {
	ChallengeTimeout time.Duration
	SelectionTimeout time.Duration
}

// Selection is the result of a fighter pick.
type Selection struct {
	Character model.Character
	Session   View
	Started   bool // this pick completed both selections and combat began
}

// Response is the result of answering a challenge.
type Response struct {
	Challenge Challenge
	Accepted  bool
	Session   View // set when accepted
}

// Manager runs the battle commands against a Store. The combat loop of each battle
// runs in its own goroutine; turns of one battle never interleave.
type Manager struct {
	store    *Store
	roster   Roster
	sink     RewardSink
	notifier Notifier
	cfg      Config

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a manager. A nil notifier drops events.
func NewManager(store *Store, roster Roster, sink RewardSink, notifier Notifier, cfg Config) *Manager {
	if store == nil {
		store = NewStore()
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if cfg.ChallengeTimeout <= 0 {
		cfg.ChallengeTimeout = DefaultChallengeTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		store:    store,
		roster:   roster,
		sink:     sink,
		notifier: notifier,
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Store returns the underlying session store.
func (m *Manager) Store() *Store {
	return m.store
}

// SetNotifier replaces the event receiver. Call before the first command.
func (m *Manager) SetNotifier(n Notifier) {
	if n == nil {
		n = NopNotifier{}
	}
	m.notifier = n
}

// Close stops running combat loops and waits for them to exit.
func (m *Manager) Close() {
	m.cancel()
	m.wg.Wait()
}

// SessionPhase returns the phase participant is in.
func (m *Manager) SessionPhase(participant int64) Phase {
	return m.store.Phase(participant)
}

// IssueChallenge registers a challenge from challenger to target. If target does not
// answer within the challenge timeout the challenge is dropped and no session exists.
func (m *Manager) IssueChallenge(ctx context.Context, chatID int64, challenger, target Participant) (*Challenge, error) {
	if m.ctx.Err() != nil {
		return nil, ErrClosed
	}
	if challenger.ID == target.ID {
		return nil, ErrSelfChallenge
	}

	now := m.store.now()
	c := &Challenge{
		ID:         uuid.NewString(),
		ChatID:     chatID,
		Challenger: challenger,
		Target:     target,
		CreatedAt:  now,
		ExpiresAt:  now.Add(m.cfg.ChallengeTimeout),
	}

	id := c.ID
	if err := m.store.addChallenge(c, m.cfg.ChallengeTimeout, func() { m.expireChallenge(id) }); err != nil {
		return nil, err
	}

	log.Info().
		Str("challenge_id", c.ID).
		Int64("challenger", challenger.ID).
		Int64("target", target.ID).
		Msg("Battle challenge issued")

	out := *c
	return &out, nil
}

func (m *Manager) expireChallenge(id string) {
	c, ok := m.store.expireChallenge(id)
	if !ok {
		return
	}
	log.Info().Str("challenge_id", id).Msg("Battle challenge timed out")
	m.notifier.ChallengeExpired(m.ctx, c)
}

// RespondToChallenge answers the challenge aimed at responder. Only the challenged
// player may answer. Accepting opens the session in phase choosing.
func (m *Manager) RespondToChallenge(ctx context.Context, responder int64, accept bool) (*Response, error) {
	c, v, err := m.store.answerChallenge(responder, accept)
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			log.Info().Str("challenge_id", c.ID).Msg("Battle challenge answered after timeout")
		}
		return nil, err
	}

	if !accept {
		log.Info().Str("challenge_id", c.ID).Msg("Battle challenge declined")
		return &Response{Challenge: c}, nil
	}

	m.armSelectionTimer(v)

	log.Info().
		Str("battle_id", v.ID).
		Int64("challenger", v.Challenger.ID).
		Int64("opponent", v.Opponent.ID).
		Msg("Battle accepted")

	return &Response{Challenge: c, Accepted: true, Session: v}, nil
}

func (m *Manager) armSelectionTimer(v View) {
	if m.cfg.SelectionTimeout <= 0 {
		return
	}
	id := v.ID
	t := time.AfterFunc(m.cfg.SelectionTimeout, func() { m.selectionExpired(id) })
	if !m.store.setSelectionTimer(v.ID, v.Challenger.ID, t) {
		t.Stop()
	}
}

// SelectFighter picks the character at the 1-based collection index for participant.
// The pick that completes both selections starts combat.
func (m *Manager) SelectFighter(ctx context.Context, participant int64, index int) (*Selection, error) {
	switch m.store.Phase(participant) {
	case PhaseNone:
		return nil, ErrNotInBattle
	case PhaseChoosing:
	default:
		return nil, ErrWrongPhase
	}

	if index < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	if m.roster == nil {
		return nil, fmt.Errorf("%w: no roster", ErrInvalidIndex)
	}
	ch, err := m.roster.FighterAt(ctx, participant, index)
	if err != nil {
		return nil, err
	}

	combatCtx, cancel := context.WithCancel(m.ctx)
	v, started, err := m.store.RecordSelection(participant, *ch, cancel)
	if err != nil {
		cancel()
		return nil, err
	}

	log.Info().
		Str("battle_id", v.ID).
		Int64("user_id", participant).
		Int64("character_id", ch.ID).
		Bool("started", started).
		Msg("Fighter selected")

	if !started {
		cancel()
		return &Selection{Character: *ch, Session: v}, nil
	}

	m.wg.Add(1)
	go m.runCombat(combatCtx, v)

	return &Selection{Character: *ch, Session: v, Started: true}, nil
}

// runCombat drives the turn loop. The knockout claims the session before the last
// turn is shown, so a late forfeit cannot overturn it.
func (m *Manager) runCombat(ctx context.Context, v View) {
	defer m.wg.Done()

	first, _ := v.Selection(v.Challenger.ID)
	second, _ := v.Selection(v.Opponent.ID)
	c := NewCombat(NewCombatant(v.Challenger, first), NewCombatant(v.Opponent, second))

	m.notifier.CombatStarted(ctx, v, c.Board())

	for {
		if ctx.Err() != nil {
			return
		}
		t, ok := c.Step()
		if !ok {
			return
		}
		m.store.recordTurn(v.ID, v.Challenger.ID, c.Turns())

		if !c.Done() {
			m.notifier.TurnResolved(ctx, v, t)
			continue
		}

		cl, ok := m.store.resolve(v.ID, PhaseInCombat)
		if !ok {
			return
		}
		cl.release(false)

		// The fight is decided; show the last blow even if shutdown started.
		m.notifier.TurnResolved(context.WithoutCancel(ctx), v, t)

		w, l := c.Winner(), c.Loser()
		o := m.conclude(cl.view, EndKnockout, w.Owner, l.Owner, c.Turns())
		m.notifier.BattleEnded(context.WithoutCancel(ctx), o)
		return
	}
}

// Forfeit ends participant's battle with participant as the loser. In choosing, when
// the opponent has not picked yet there is no character to credit and the battle is
// cancelled without reward.
func (m *Manager) Forfeit(ctx context.Context, participant int64) (*Outcome, error) {
	cl, err := m.store.resolveParticipant(participant)
	if err != nil {
		if _, pending := m.store.PendingChallenge(participant); pending {
			return nil, ErrWrongPhase
		}
		return nil, err
	}
	cl.release(true)

	v := cl.view
	loser := v.Participant(participant)
	winner := v.OpponentOf(participant)

	reason := EndForfeit
	if _, ok := v.Selection(winner.ID); !ok {
		reason = EndCancelled
	}

	o := m.conclude(v, reason, winner, loser, v.Turns)
	return &o, nil
}

func (m *Manager) selectionExpired(id string) {
	cl, ok := m.store.resolve(id, PhaseChoosing)
	if !ok {
		return
	}
	cl.release(true)

	v := cl.view
	_, challengerPicked := v.Selection(v.Challenger.ID)
	_, opponentPicked := v.Selection(v.Opponent.ID)

	var o Outcome
	switch {
	case challengerPicked && !opponentPicked:
		o = m.conclude(v, EndSelectionTimeout, v.Challenger, v.Opponent, 0)
	case opponentPicked && !challengerPicked:
		o = m.conclude(v, EndSelectionTimeout, v.Opponent, v.Challenger, 0)
	default:
		o = m.conclude(v, EndCancelled, v.Challenger, v.Opponent, 0)
	}
	m.notifier.BattleEnded(m.ctx, o)
}

// conclude settles a session that was already removed from the store.
func (m *Manager) conclude(v View, reason EndReason, winner, loser Participant, turns int) Outcome {
	o := Outcome{
		Session: v,
		Reason:  reason,
		Winner:  winner,
		Loser:   loser,
		Turns:   turns,
	}
	o.Session.Phase = PhaseResolved

	if reason != EndCancelled {
		ch, ok := v.Selection(winner.ID)
		if !ok {
			o.Reason = EndCancelled
		} else {
			o.WinnerCharacter = &ch
			o.Reward, o.Err = Settle(m.ctx, m.sink, winner.ID, ch)
		}
	}

	ev := log.Info()
	if o.Err != nil {
		ev = log.Error().Err(o.Err)
	}
	ev.Str("battle_id", v.ID).
		Str("reason", o.Reason.String()).
		Int64("winner", winner.ID).
		Int64("loser", loser.ID).
		Int("turns", turns).
		Msg("Battle concluded")

	return o
}

package battle

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"anime-battle-bot/internal/model"
)

// Store is the process-wide table of open battles and pending challenges.
// A participant appears at most once across both tables. Every method is short and
// never blocks on anything but the store mutex.
type Store struct {
	mu         sync.Mutex
	sessions   map[int64]*session   // participant -> session, two entries per battle
	challenges map[int64]*Challenge // challenger and target -> challenge
	now        func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sessions:   make(map[int64]*session),
		challenges: make(map[int64]*Challenge),
		now:        time.Now,
	}
}

// closed is what resolving a session hands back to the caller.
type closed struct {
	view           View
	selectionTimer *time.Timer
	cancelCombat   context.CancelFunc
}

// release stops the session timer and, if cancel is set, the combat loop.
func (c closed) release(cancel bool) {
	if c.selectionTimer != nil {
		c.selectionTimer.Stop()
	}
	if cancel && c.cancelCombat != nil {
		c.cancelCombat()
	}
}

func (s *Store) busy(id int64) bool {
	_, inSession := s.sessions[id]
	_, inChallenge := s.challenges[id]
	return inSession || inChallenge
}

// Open creates two linked entries for a and b in phase choosing.
// a is recorded as the challenger and attacks first.
func (s *Store) Open(chatID int64, a, b Participant) (View, error) {
	if a.ID == b.ID {
		return View{}, ErrSelfChallenge
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy(a.ID) || s.busy(b.ID) {
		return View{}, ErrAlreadyInBattle
	}
	return s.openLocked(chatID, a, b).view(), nil
}

func (s *Store) openLocked(chatID int64, a, b Participant) *session {
	sess := &session{
		id:         uuid.NewString(),
		chatID:     chatID,
		challenger: a,
		opponent:   b,
		phase:      PhaseChoosing,
		selections: make(map[int64]model.Character, 2),
		createdAt:  s.now(),
	}
	s.sessions[a.ID] = sess
	s.sessions[b.ID] = sess
	return sess
}

// Get returns the session participant is in.
func (s *Store) Get(participant int64) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[participant]
	if !ok {
		return View{}, ErrNotInBattle
	}
	return sess.view(), nil
}

// Phase returns the phase participant is in, PhaseNone if nothing is open.
func (s *Store) Phase(participant int64) Phase {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[participant]; ok {
		return sess.phase
	}
	if _, ok := s.challenges[participant]; ok {
		return PhasePendingChallenge
	}
	return PhaseNone
}

// RecordSelection stores participant's fighter. A second call from the same
// participant overwrites the first pick. When both sides have picked, the session
// moves to in-combat in the same critical section and started is true; the caller
// then owns starting the combat loop. cancel is attached to the session only when
// started is true.
func (s *Store) RecordSelection(participant int64, c model.Character, cancel context.CancelFunc) (v View, started bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[participant]
	if !ok {
		return View{}, false, ErrNotInBattle
	}
	if sess.phase != PhaseChoosing {
		return View{}, false, ErrWrongPhase
	}

	sess.selections[participant] = c

	if _, ok := sess.selections[sess.other(participant).ID]; ok {
		sess.phase = PhaseInCombat
		sess.cancelCombat = cancel
		if sess.selectionTimer != nil {
			sess.selectionTimer.Stop()
			sess.selectionTimer = nil
		}
		started = true
	}
	return sess.view(), started, nil
}

// Close removes the battle between a and b. Both entries disappear in one critical
// section, so no observer sees one without the other.
func (s *Store) Close(a, b int64) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[a]
	if !ok || sess.other(a).ID != b || s.sessions[b] != sess {
		return View{}, ErrNotInBattle
	}
	c := s.resolveLocked(sess)
	c.release(true)
	return c.view, nil
}

// resolve closes the session with the given id if it is still in one of the allowed
// phases. ok is false when someone else resolved it first.
func (s *Store) resolve(id string, allowed ...Phase) (closed, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		if sess.id != id {
			continue
		}
		for _, p := range allowed {
			if sess.phase == p {
				return s.resolveLocked(sess), true
			}
		}
		return closed{}, false
	}
	return closed{}, false
}

// resolveParticipant closes whatever session participant is in.
func (s *Store) resolveParticipant(participant int64) (closed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[participant]
	if !ok {
		return closed{}, ErrNotInBattle
	}
	return s.resolveLocked(sess), nil
}

func (s *Store) resolveLocked(sess *session) closed {
	c := closed{
		selectionTimer: sess.selectionTimer,
		cancelCombat:   sess.cancelCombat,
	}
	sess.phase = PhaseResolved
	sess.selectionTimer = nil
	sess.cancelCombat = nil
	delete(s.sessions, sess.challenger.ID)
	delete(s.sessions, sess.opponent.ID)
	c.view = sess.view()
	return c
}

// setSelectionTimer attaches the choosing-phase timer to a session still choosing.
func (s *Store) setSelectionTimer(id string, participant int64, t *time.Timer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[participant]
	if !ok || sess.id != id || sess.phase != PhaseChoosing {
		return false
	}
	sess.selectionTimer = t
	return true
}

// recordTurn stores how many turns the combat loop of battle id has resolved.
func (s *Store) recordTurn(id string, participant int64, turns int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[participant]; ok && sess.id == id {
		sess.turns = turns
	}
}

// SetMessageID remembers the chat message that announces the battle.
func (s *Store) SetMessageID(participant int64, messageID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[participant]; ok {
		sess.messageID = messageID
	}
}

// Count returns the number of open battles.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions) / 2
}

// ========== Pending challenges ==========

// addChallenge registers c for both parties if neither is busy and arms expire to
// run after timeout. The timer is started under the lock, so expire always finds c
// published.
func (s *Store) addChallenge(c *Challenge, timeout time.Duration, expire func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy(c.Challenger.ID) || s.busy(c.Target.ID) {
		return ErrAlreadyInBattle
	}
	s.challenges[c.Challenger.ID] = c
	s.challenges[c.Target.ID] = c
	if expire != nil {
		c.timer = time.AfterFunc(timeout, expire)
	}
	return nil
}

func (s *Store) dropChallengeLocked(c *Challenge) {
	if s.challenges[c.Challenger.ID] == c {
		delete(s.challenges, c.Challenger.ID)
	}
	if s.challenges[c.Target.ID] == c {
		delete(s.challenges, c.Target.ID)
	}
	if c.timer != nil {
		c.timer.Stop()
	}
}

// answerChallenge resolves the challenge aimed at responder. On accept the session is
// opened in the same critical section the challenge is removed in.
func (s *Store) answerChallenge(responder int64, accept bool) (Challenge, View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.challenges[responder]
	if !ok {
		return Challenge{}, View{}, ErrNoChallenge
	}
	if c.Target.ID != responder {
		return Challenge{}, View{}, ErrNotChallenged
	}

	s.dropChallengeLocked(c)

	if !s.now().Before(c.ExpiresAt) {
		return *c, View{}, ErrTimeout
	}
	if !accept {
		return *c, View{}, nil
	}
	return *c, s.openLocked(c.ChatID, c.Challenger, c.Target).view(), nil
}

// expireChallenge removes the challenge with id if it is still pending.
func (s *Store) expireChallenge(id string) (Challenge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.challenges {
		if c.ID == id {
			s.dropChallengeLocked(c)
			return *c, true
		}
	}
	return Challenge{}, false
}

// PendingChallenge returns the challenge participant is part of.
func (s *Store) PendingChallenge(participant int64) (Challenge, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.challenges[participant]
	if !ok {
		return Challenge{}, false
	}
	return *c, true
}

// SetChallengeMessageID remembers the message carrying the accept/decline buttons.
func (s *Store) SetChallengeMessageID(id string, messageID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.challenges {
		if c.ID == id {
			c.MessageID = messageID
			return
		}
	}
}

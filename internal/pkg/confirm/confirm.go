// Package confirm keeps pending yes/no prompts for destructive commands such as
// releasing or clearing characters.
package confirm

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("confirmation not found")
	ErrExpired  = errors.New("confirmation expired")
	ErrNotOwner = errors.New("confirmation belongs to another user")
)

// Prompt is one pending confirmation.
type Prompt struct {
	ID        string
	UserID    int64
	Action    string
	Payload   int64 // action argument, e.g. a character id
	ExpiresAt time.Time
}

// Store holds at most one prompt per user; asking again replaces the older one.
type Store struct {
	mu      sync.Mutex
	prompts map[string]*Prompt
	byUser  map[int64]string
	ttl     time.Duration
	now     func() time.Time
}

// NewStore creates a store whose prompts live for ttl.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		prompts: make(map[string]*Prompt),
		byUser:  make(map[int64]string),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Ask registers a prompt for userID and returns it.
func (s *Store) Ask(userID int64, action string, payload int64) Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	if old, ok := s.byUser[userID]; ok {
		delete(s.prompts, old)
	}

	p := &Prompt{
		ID:        uuid.NewString()[:8],
		UserID:    userID,
		Action:    action,
		Payload:   payload,
		ExpiresAt: s.now().Add(s.ttl),
	}
	s.prompts[p.ID] = p
	s.byUser[userID] = p.ID
	return *p
}

// Take removes and returns the prompt if userID owns it and it has not expired.
// A prompt answered by someone else stays pending.
func (s *Store) Take(id string, userID int64) (Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.prompts[id]
	if !ok {
		return Prompt{}, ErrNotFound
	}
	if p.UserID != userID {
		return Prompt{}, ErrNotOwner
	}

	s.dropLocked(p)
	if !s.now().Before(p.ExpiresAt) {
		return *p, ErrExpired
	}
	return *p, nil
}

// Cancel drops whatever prompt userID has pending.
func (s *Store) Cancel(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byUser[userID]; ok {
		s.dropLocked(s.prompts[id])
	}
}

// Len returns the number of pending prompts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

func (s *Store) dropLocked(p *Prompt) {
	if p == nil {
		return
	}
	delete(s.prompts, p.ID)
	if s.byUser[p.UserID] == p.ID {
		delete(s.byUser, p.UserID)
	}
}

func (s *Store) sweepLocked() {
	now := s.now()
	for _, p := range s.prompts {
		if !now.Before(p.ExpiresAt) {
			s.dropLocked(p)
		}
	}
}

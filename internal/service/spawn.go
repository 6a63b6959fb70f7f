package service

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"anime-battle-bot/internal/character"
)

// Spawn errors.
var (
	ErrNoSpawn    = errors.New("no character is waiting to be caught")
	ErrWrongGuess = errors.New("that is not the character")
)

// Default spawn cadence.
const (
	DefaultMinMessages = 25
	DefaultMaxMessages = 40
)

// ActiveSpawn is a character waiting in a chat.
type ActiveSpawn struct {
	character.Spawn
	ChatID    int64
	SpawnedAt time.Time
}

type chatSpawn struct {
	count     int
	threshold int
	active    *ActiveSpawn
}

// SpawnService counts chat messages and drops a character once a chat reaches its
// threshold. At most one spawn is active per chat.
type SpawnService struct {
	mu    sync.Mutex
	chats map[int64]*chatSpawn
	src   character.Source
	min   int
	max   int
	now   func() time.Time
}

// NewSpawnService creates a spawner whose thresholds are drawn from [minMessages, maxMessages].
func NewSpawnService(src character.Source, minMessages, maxMessages int) *SpawnService {
	if minMessages < 1 {
		minMessages = DefaultMinMessages
	}
	if maxMessages < minMessages {
		maxMessages = minMessages
	}
	return &SpawnService{
		chats: make(map[int64]*chatSpawn),
		src:   src,
		min:   minMessages,
		max:   maxMessages,
		now:   time.Now,
	}
}

func (s *SpawnService) drawThreshold() int {
	return s.min + s.src.Intn(s.max-s.min+1)
}

func (s *SpawnService) chatLocked(chatID int64) *chatSpawn {
	c, ok := s.chats[chatID]
	if !ok {
		c = &chatSpawn{threshold: s.drawThreshold()}
		s.chats[chatID] = c
	}
	return c
}

func (s *SpawnService) spawnLocked(chatID int64, c *chatSpawn) ActiveSpawn {
	sp := ActiveSpawn{Spawn: character.Random(s.src), ChatID: chatID, SpawnedAt: s.now()}
	c.active = &sp
	c.count = 0
	c.threshold = s.drawThreshold()

	log.Info().
		Int64("chat_id", chatID).
		Str("name", sp.Name).
		Str("rarity", string(sp.Rarity)).
		Msg("Character spawned")
	return sp
}

// Observe counts one message in chatID. It returns the new spawn when this message
// crossed the threshold. While a spawn is active the counter holds.
func (s *SpawnService) Observe(chatID int64) (ActiveSpawn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.chatLocked(chatID)
	if c.active != nil {
		return ActiveSpawn{}, false
	}
	c.count++
	if c.count < c.threshold {
		return ActiveSpawn{}, false
	}
	return s.spawnLocked(chatID, c), true
}

// Force spawns immediately, replacing any active spawn.
func (s *SpawnService) Force(chatID int64) ActiveSpawn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawnLocked(chatID, s.chatLocked(chatID))
}

// Active returns the spawn waiting in chatID.
func (s *SpawnService) Active(chatID int64) (ActiveSpawn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chats[chatID]
	if !ok || c.active == nil {
		return ActiveSpawn{}, false
	}
	return *c.active, true
}

// Hint returns the first-letter hint of the active spawn.
func (s *SpawnService) Hint(chatID int64) (string, error) {
	sp, ok := s.Active(chatID)
	if !ok {
		return "", ErrNoSpawn
	}
	return character.Hint(sp.Name), nil
}

// Claim takes the active spawn if guess names it. Only one caller can win a spawn.
func (s *SpawnService) Claim(chatID int64, guess string) (ActiveSpawn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.chats[chatID]
	if !ok || c.active == nil {
		return ActiveSpawn{}, ErrNoSpawn
	}
	if !character.Matches(guess, c.active.Name) {
		return ActiveSpawn{}, ErrWrongGuess
	}
	sp := *c.active
	c.active = nil
	return sp, nil
}

// Restore puts a claimed spawn back when storing the catch failed. A spawn that
// appeared in the meantime wins.
func (s *SpawnService) Restore(sp ActiveSpawn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.chatLocked(sp.ChatID)
	if c.active == nil {
		c.active = &sp
	}
}

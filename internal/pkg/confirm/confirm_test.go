package confirm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() (*Store, *time.Time) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewStore(30 * time.Second)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestAskTake(t *testing.T) {
	s, _ := newTestStore()

	p := s.Ask(1, "release", 42)
	assert.Len(t, p.ID, 8)

	got, err := s.Take(p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "release", got.Action)
	assert.Equal(t, int64(42), got.Payload)

	_, err = s.Take(p.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTake_WrongUserKeepsPrompt(t *testing.T) {
	s, _ := newTestStore()
	p := s.Ask(1, "clear", 0)

	_, err := s.Take(p.ID, 2)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = s.Take(p.ID, 1)
	assert.NoError(t, err)
}

func TestTake_Expired(t *testing.T) {
	s, now := newTestStore()
	p := s.Ask(1, "release", 3)

	*now = now.Add(30 * time.Second)
	_, err := s.Take(p.ID, 1)
	assert.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, 0, s.Len())
}

func TestAsk_ReplacesPrevious(t *testing.T) {
	s, _ := newTestStore()
	first := s.Ask(1, "release", 3)
	second := s.Ask(1, "clear", 0)

	_, err := s.Take(first.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := s.Take(second.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "clear", got.Action)
}

func TestAsk_SweepsExpired(t *testing.T) {
	s, now := newTestStore()
	s.Ask(1, "release", 3)
	s.Ask(2, "release", 4)

	*now = now.Add(time.Minute)
	s.Ask(3, "clear", 0)
	assert.Equal(t, 1, s.Len())
}

func TestCancel(t *testing.T) {
	s, _ := newTestStore()
	p := s.Ask(1, "clear", 0)
	s.Cancel(1)
	s.Cancel(99)

	_, err := s.Take(p.ID, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

// Package character provides the character roster, spawn rarity draws and stat rolls.
package character

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
)

// Source is a uniform integer source. Intn returns a value in [0, n).
type Source interface {
	Intn(n int) int
}

// lockedSource makes a math/rand generator safe for concurrent handlers.
type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource returns a goroutine-safe source seeded with seed.
func NewSource(seed int64) Source {
	return &lockedSource{rng: rand.New(rand.NewSource(seed))}
}

// NewSeededSource returns a goroutine-safe source seeded from crypto/rand.
func NewSeededSource() (Source, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return nil, fmt.Errorf("read random seed: %w", err)
	}
	return NewSource(int64(binary.LittleEndian.Uint64(b[:]))), nil
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// between returns a uniform value in [lo, hi].
func between(src Source, lo, hi int) int {
	return lo + src.Intn(hi-lo+1)
}

package handler

import (
	"strconv"
	"sync"
	"sync/atomic"

	tele "gopkg.in/telebot.v3"
)

// Directory remembers the display names of users seen in allowed chats, so
// leaderboards can name users without asking Telegram.
type Directory struct {
	mu    sync.RWMutex
	names map[int64]string
}

// NewDirectory creates an empty Directory.
func NewDirectory() *Directory {
	return &Directory{names: make(map[int64]string)}
}

// Remember records u's current name.
func (d *Directory) Remember(u *tele.User) {
	if u == nil || u.IsBot {
		return
	}
	name := userName(u)
	d.mu.Lock()
	d.names[u.ID] = name
	d.mu.Unlock()
}

// Known reports whether the user was seen before.
func (d *Directory) Known(userID int64) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.names[userID]
	return ok
}

// Name returns the remembered name or a placeholder.
func (d *Directory) Name(userID int64) string {
	d.mu.RLock()
	name, ok := d.names[userID]
	d.mu.RUnlock()
	if ok {
		return name
	}
	return "User" + strconv.FormatInt(userID, 10)
}

// Gate is the owner switch that restricts the bot to admins.
type Gate struct {
	locked atomic.Bool
}

// Lock restricts the bot to admins. It reports whether the state changed.
func (g *Gate) Lock() bool {
	return g.locked.CompareAndSwap(false, true)
}

// Unlock opens the bot to everyone. It reports whether the state changed.
func (g *Gate) Unlock() bool {
	return g.locked.CompareAndSwap(true, false)
}

// Locked reports whether only admins may use the bot.
func (g *Gate) Locked() bool {
	return g.locked.Load()
}

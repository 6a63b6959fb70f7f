package handler

import (
	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"anime-battle-bot/internal/render"
	"anime-battle-bot/internal/service"
)

// AdminHandler handles owner commands.
type AdminHandler struct {
	spawns *service.SpawnService
	gate   *Gate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(spawns *service.SpawnService, gate *Gate) *AdminHandler {
	return &AdminHandler{spawns: spawns, gate: gate}
}

// HandleSpawn handles /spawn, dropping a character into the chat right away.
func (h *AdminHandler) HandleSpawn(c tele.Context) error {
	chat, sender := c.Chat(), c.Sender()
	if chat == nil || sender == nil {
		return nil
	}
	if chat.Type == tele.ChatPrivate {
		return c.Reply("❌ Spawns only happen in groups.")
	}

	sp := h.spawns.Force(chat.ID)

	log.Info().
		Int64("admin_id", sender.ID).
		Int64("chat_id", chat.ID).
		Str("operation", "spawn").
		Msg("Admin operation executed")

	return c.Send(render.Spawned(sp.Spawn))
}

// HandleLock handles /lock.
func (h *AdminHandler) HandleLock(c tele.Context) error {
	if !h.gate.Lock() {
		return c.Reply("🔒 The bot is already locked.")
	}
	log.Info().Int64("admin_id", c.Sender().ID).Str("operation", "lock").Msg("Admin operation executed")
	return c.Reply("🔒 Bot locked. Only admins can use it now.")
}

// HandleUnlock handles /unlock.
func (h *AdminHandler) HandleUnlock(c tele.Context) error {
	if !h.gate.Unlock() {
		return c.Reply("🔓 The bot is not locked.")
	}
	log.Info().Int64("admin_id", c.Sender().ID).Str("operation", "unlock").Msg("Admin operation executed")
	return c.Reply("🔓 Bot unlocked.")
}

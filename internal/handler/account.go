package handler

import (
	"fmt"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"anime-battle-bot/internal/render"
	"anime-battle-bot/internal/service"
)

// AccountHandler handles wallet, profile and leaderboard commands.
type AccountHandler struct {
	accounts   *service.AccountService
	collection *service.CollectionService
	names      *Directory
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts *service.AccountService, collection *service.CollectionService, names *Directory) *AccountHandler {
	if names == nil {
		names = NewDirectory()
	}
	return &AccountHandler{accounts: accounts, collection: collection, names: names}
}

// HandleBalance handles the /bal command.
func (h *AccountHandler) HandleBalance(c tele.Context) error {
	ctx, cancel := commandContext()
	defer cancel()

	sender := c.Sender()
	if sender == nil {
		return nil
	}

	coins, err := h.accounts.Balance(ctx, sender.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Get balance failed")
		return c.Reply(msgInternalError)
	}
	return c.Reply(fmt.Sprintf("💰 %s\nBalance: 💵 %d coins", userName(sender), coins))
}

// HandleProfile handles the /profile command.
func (h *AccountHandler) HandleProfile(c tele.Context) error {
	ctx, cancel := commandContext()
	defer cancel()

	sender := c.Sender()
	if sender == nil {
		return nil
	}

	p, err := h.accounts.Profile(ctx, sender.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Get profile failed")
		return c.Reply(msgInternalError)
	}
	coins, err := h.accounts.Balance(ctx, sender.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Get balance failed")
		return c.Reply(msgInternalError)
	}
	cards, err := h.collection.Count(ctx, sender.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Count collection failed")
		return c.Reply(msgInternalError)
	}

	return c.Reply(render.Profile(userName(sender), p.Profile, coins, cards))
}

// HandleLeaderboard handles the /leaderboard command.
func (h *AccountHandler) HandleLeaderboard(c tele.Context) error {
	ctx, cancel := commandContext()
	defer cancel()

	rows, err := h.accounts.Leaderboard(ctx, service.DefaultLeaderboardSize)
	if err != nil {
		log.Error().Err(err).Msg("Get leaderboard failed")
		return c.Reply(msgInternalError)
	}
	return c.Reply(render.Leaderboard(rows, h.names.Name))
}

package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"anime-battle-bot/internal/model"
	"anime-battle-bot/internal/pkg/confirm"
	"anime-battle-bot/internal/render"
	"anime-battle-bot/internal/service"
)

// Callback uniques of the collection buttons.
const (
	CallbackConfirmYes   = "confirm_yes"
	CallbackConfirmNo    = "confirm_no"
	CallbackReleaseOffer = "release_offer"
)

// Confirmation actions.
const (
	ActionRelease = "release"
	ActionClear   = "clear"
)

// CollectionHandler handles catching and managing characters.
type CollectionHandler struct {
	spawns     *service.SpawnService
	collection *service.CollectionService
	confirms   *confirm.Store // /release and /cc
	offers     *confirm.Store // release button under a fresh catch
}

// NewCollectionHandler creates a new CollectionHandler.
func NewCollectionHandler(spawns *service.SpawnService, collection *service.CollectionService, confirms, offers *confirm.Store) *CollectionHandler {
	return &CollectionHandler{spawns: spawns, collection: collection, confirms: confirms, offers: offers}
}

func collectionErrorText(err error) string {
	switch {
	case errors.Is(err, service.ErrNoSpawn):
		return "❌ No character to catch here!"
	case errors.Is(err, service.ErrWrongGuess):
		return "❌ Wrong name!"
	case errors.Is(err, service.ErrInBattle):
		return "❌ You can't change your collection during a battle."
	case errors.Is(err, service.ErrCharacterNotFound):
		return "❌ Invalid character index. Check /collection."
	case errors.Is(err, service.ErrEmptyCollection):
		return "📦 Your collection is empty."
	default:
		return msgInternalError
	}
}

// HandleCatch handles /catch <name> and its alias /ac.
func (h *CollectionHandler) HandleCatch(c tele.Context) error {
	ctx, cancel := commandContext()
	defer cancel()

	sender, chat := c.Sender(), c.Chat()
	if sender == nil || chat == nil {
		return nil
	}
	guess := strings.TrimSpace(strings.Join(c.Args(), " "))
	if guess == "" {
		return c.Reply("❌ Usage: /catch <name>")
	}

	sp, err := h.spawns.Claim(chat.ID, guess)
	if err != nil {
		return c.Reply(collectionErrorText(err))
	}

	res, err := h.collection.Catch(ctx, sender.ID, sp.Spawn)
	if err != nil {
		h.spawns.Restore(sp)
		log.Error().Err(err).Int64("user_id", sender.ID).Str("name", sp.Name).Msg("Catch failed")
		return c.Reply(msgInternalError)
	}

	offer := h.offers.Ask(sender.ID, ActionRelease, res.Character.ID)
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(
		markup.Data(fmt.Sprintf("🗑 Release (+%d)", model.ReleaseReward), CallbackReleaseOffer, offer.ID),
	))
	return c.Reply(render.Caught(res.Character, res.Coins), markup)
}

// HandleHint handles /hint.
func (h *CollectionHandler) HandleHint(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}
	hint, err := h.spawns.Hint(chat.ID)
	if err != nil {
		return c.Reply(collectionErrorText(err))
	}
	return c.Reply(render.Hint(hint))
}

// HandleCollection handles /collection.
func (h *CollectionHandler) HandleCollection(c tele.Context) error {
	ctx, cancel := commandContext()
	defer cancel()

	sender := c.Sender()
	if sender == nil {
		return nil
	}
	chars, err := h.collection.List(ctx, sender.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("List collection failed")
		return c.Reply(msgInternalError)
	}
	return c.Reply(render.Collection(userName(sender), chars))
}

// HandleInfo handles /info <index>.
func (h *CollectionHandler) HandleInfo(c tele.Context) error {
	ctx, cancel := commandContext()
	defer cancel()

	sender := c.Sender()
	if sender == nil {
		return nil
	}
	index, ok := parseIndex(c.Args())
	if !ok {
		return c.Reply("❌ Usage: /info <index>")
	}
	ch, err := h.collection.Info(ctx, sender.ID, index)
	if err != nil {
		return c.Reply(collectionErrorText(err))
	}
	return c.Reply(render.Info(index, ch))
}

// HandleRelease handles /release <index>, asking for confirmation first.
func (h *CollectionHandler) HandleRelease(c tele.Context) error {
	ctx, cancel := commandContext()
	defer cancel()

	sender := c.Sender()
	if sender == nil {
		return nil
	}
	index, ok := parseIndex(c.Args())
	if !ok {
		return c.Reply("❌ Usage: /release <index>")
	}
	ch, err := h.collection.Info(ctx, sender.ID, index)
	if err != nil {
		return c.Reply(collectionErrorText(err))
	}

	p := h.confirms.Ask(sender.ID, ActionRelease, ch.ID)
	return c.Reply(fmt.Sprintf("⚠️ Release %s %s (Lv.%d) for %d coins?", ch.Rarity.Emoji(), ch.Name, ch.Level, model.ReleaseReward),
		confirmMarkup(p))
}

// HandleClear handles /cc, asking for confirmation before removing everything.
func (h *CollectionHandler) HandleClear(c tele.Context) error {
	ctx, cancel := commandContext()
	defer cancel()

	sender := c.Sender()
	if sender == nil {
		return nil
	}
	n, err := h.collection.Count(ctx, sender.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Count collection failed")
		return c.Reply(msgInternalError)
	}
	if n == 0 {
		return c.Reply(collectionErrorText(service.ErrEmptyCollection))
	}

	p := h.confirms.Ask(sender.ID, ActionClear, 0)
	return c.Reply(fmt.Sprintf("⚠️ Release all %d characters? You get no coins for this.", n), confirmMarkup(p))
}

func confirmMarkup(p confirm.Prompt) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(
		markup.Data("✅ Yes", CallbackConfirmYes, p.ID),
		markup.Data("❌ No", CallbackConfirmNo, p.ID),
	))
	return markup
}

// HandleCallback handles the confirmation and release-offer buttons.
func (h *CollectionHandler) HandleCallback(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	unique, id := callbackData(c)

	store := h.confirms
	if unique == CallbackReleaseOffer {
		store = h.offers
	}

	p, err := store.Take(id, sender.ID)
	switch {
	case errors.Is(err, confirm.ErrNotOwner):
		return alert(c, "❌ These buttons are not for you.")
	case errors.Is(err, confirm.ErrExpired), errors.Is(err, confirm.ErrNotFound):
		if m := c.Message(); m != nil {
			_ = c.Edit(m.Text + "\n\n⌛ Expired.")
		}
		return c.Respond(&tele.CallbackResponse{Text: "⌛ Expired"})
	case err != nil:
		return alert(c, msgInternalError)
	}

	if unique == CallbackConfirmNo {
		_ = c.Edit("👌 Cancelled.")
		return c.Respond()
	}
	return h.apply(c, p)
}

func (h *CollectionHandler) apply(c tele.Context, p confirm.Prompt) error {
	ctx, cancel := commandContext()
	defer cancel()

	switch p.Action {
	case ActionRelease:
		res, err := h.collection.Release(ctx, p.UserID, p.Payload)
		if err != nil {
			if !errors.Is(err, service.ErrInBattle) && !errors.Is(err, service.ErrCharacterNotFound) {
				log.Error().Err(err).Int64("user_id", p.UserID).Int64("character_id", p.Payload).Msg("Release failed")
			}
			return alert(c, collectionErrorText(err))
		}
		_ = c.Edit(fmt.Sprintf("🗑 Released %s. 💵 +%d coins (balance %d)", res.Character.Name, model.ReleaseReward, res.Coins))
		return c.Respond()

	case ActionClear:
		n, err := h.collection.Clear(ctx, p.UserID)
		if err != nil {
			if !errors.Is(err, service.ErrInBattle) && !errors.Is(err, service.ErrEmptyCollection) {
				log.Error().Err(err).Int64("user_id", p.UserID).Msg("Clear failed")
			}
			return alert(c, collectionErrorText(err))
		}
		_ = c.Edit(fmt.Sprintf("🗑 Released all %d characters.", n))
		return c.Respond()
	}
	return c.Respond()
}

// HandleText counts group chatter toward the next spawn and announces it.
func (h *CollectionHandler) HandleText(c tele.Context) error {
	chat := c.Chat()
	if chat == nil || chat.Type == tele.ChatPrivate {
		return nil
	}
	if s := c.Sender(); s != nil && s.IsBot {
		return nil
	}
	sp, ok := h.spawns.Observe(chat.ID)
	if !ok {
		return nil
	}
	return c.Send(render.Spawned(sp.Spawn))
}

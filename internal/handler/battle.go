package handler

import (
	"errors"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"anime-battle-bot/internal/battle"
	"anime-battle-bot/internal/render"
)

// Callback uniques of the challenge buttons.
const (
	CallbackBattleAccept  = "battle_accept"
	CallbackBattleDecline = "battle_decline"
)

// BattleHandler handles /battle, /fight, /flee and the challenge buttons.
type BattleHandler struct {
	manager  *battle.Manager
	notifier *BattleNotifier
	out      Messenger
}

// NewBattleHandler creates a new BattleHandler. Challenges are posted through out.
func NewBattleHandler(manager *battle.Manager, notifier *BattleNotifier, out Messenger) *BattleHandler {
	return &BattleHandler{manager: manager, notifier: notifier, out: out}
}

// battleErrorText maps a battle error to its reply.
func battleErrorText(err error) string {
	switch {
	case errors.Is(err, battle.ErrSelfChallenge):
		return "❌ You can't challenge yourself."
	case errors.Is(err, battle.ErrAlreadyInBattle):
		return "❌ One of you is already in a battle."
	case errors.Is(err, battle.ErrNotInBattle):
		return "❌ You are not in a battle."
	case errors.Is(err, battle.ErrWrongPhase):
		return "❌ You can't do that at this stage of the battle."
	case errors.Is(err, battle.ErrInvalidIndex):
		return "❌ Invalid character index. Check /collection."
	case errors.Is(err, battle.ErrTimeout):
		return "❌ Battle request timed out."
	case errors.Is(err, battle.ErrNoChallenge):
		return "❌ There is no battle request for you."
	case errors.Is(err, battle.ErrNotChallenged):
		return "❌ This battle request is not for you."
	case errors.Is(err, battle.ErrClosed):
		return "❌ The bot is restarting, try again in a moment."
	default:
		return msgInternalError
	}
}

func participant(u *tele.User) battle.Participant {
	return battle.Participant{ID: u.ID, Name: userName(u)}
}

// HandleBattle handles /battle sent as a reply to the challenged user's message.
func (h *BattleHandler) HandleBattle(c tele.Context) error {
	ctx, cancel := commandContext()
	defer cancel()

	sender, chat, msg := c.Sender(), c.Chat(), c.Message()
	if sender == nil || chat == nil || msg == nil {
		return nil
	}
	if msg.ReplyTo == nil || msg.ReplyTo.Sender == nil {
		return c.Reply("❌ Usage: reply to someone's message with /battle")
	}
	target := msg.ReplyTo.Sender
	if target.IsBot {
		return c.Reply("❌ Bots don't fight.")
	}

	ch, err := h.manager.IssueChallenge(ctx, chat.ID, participant(sender), participant(target))
	if err != nil {
		if !isBattleUserError(err) {
			log.Error().Err(err).Int64("user_id", sender.ID).Int64("target", target.ID).Msg("Issue challenge failed")
		}
		return c.Reply(battleErrorText(err))
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(
		markup.Data("✅ Accept", CallbackBattleAccept, ch.ID),
		markup.Data("❌ Decline", CallbackBattleDecline, ch.ID),
	))

	sent, err := h.out.Send(chat, render.Challenge(*ch), markup)
	if err != nil {
		log.Error().Err(err).Str("challenge_id", ch.ID).Msg("Failed to send challenge")
		return nil
	}
	h.manager.Store().SetChallengeMessageID(ch.ID, sent.ID)
	return nil
}

// HandleChallengeCallback handles the accept and decline buttons.
func (h *BattleHandler) HandleChallengeCallback(c tele.Context) error {
	ctx, cancel := commandContext()
	defer cancel()

	sender := c.Sender()
	if sender == nil {
		return nil
	}
	unique, challengeID := callbackData(c)
	accept := unique == CallbackBattleAccept

	// Buttons of an older challenge must not answer the current one.
	pending, ok := h.manager.Store().PendingChallenge(sender.ID)
	if ok && pending.Target.ID == sender.ID && pending.ID != challengeID {
		return alert(c, "❌ This battle request has expired.")
	}

	resp, err := h.manager.RespondToChallenge(ctx, sender.ID, accept)
	if err != nil {
		if errors.Is(err, battle.ErrTimeout) {
			_ = c.Edit(battleErrorText(err))
		}
		return alert(c, battleErrorText(err))
	}

	if !resp.Accepted {
		_ = c.Edit(render.Declined(resp.Challenge))
		return c.Respond(&tele.CallbackResponse{Text: "Battle declined"})
	}

	if err := c.Edit(render.Accepted(resp.Session)); err != nil {
		log.Debug().Err(err).Str("battle_id", resp.Session.ID).Msg("Failed to edit challenge message")
	}
	if m := c.Message(); m != nil {
		h.manager.Store().SetMessageID(sender.ID, m.ID)
	}
	return c.Respond(&tele.CallbackResponse{Text: "⚔️ Battle accepted!"})
}

// HandleFight handles /fight <index>.
func (h *BattleHandler) HandleFight(c tele.Context) error {
	ctx, cancel := commandContext()
	defer cancel()

	sender := c.Sender()
	if sender == nil {
		return nil
	}
	index, ok := parseIndex(c.Args())
	if !ok {
		return c.Reply("❌ Usage: /fight <index>")
	}

	sel, err := h.manager.SelectFighter(ctx, sender.ID, index)
	if err != nil {
		if !isBattleUserError(err) {
			log.Error().Err(err).Int64("user_id", sender.ID).Int("index", index).Msg("Select fighter failed")
		}
		return c.Reply(battleErrorText(err))
	}
	return c.Reply(render.Picked(*sel))
}

// HandleFlee handles /flee, forfeiting the current battle.
func (h *BattleHandler) HandleFlee(c tele.Context) error {
	ctx, cancel := commandContext()
	defer cancel()

	sender := c.Sender()
	if sender == nil {
		return nil
	}

	o, err := h.manager.Forfeit(ctx, sender.ID)
	if err != nil {
		return c.Reply(battleErrorText(err))
	}
	if h.notifier != nil {
		h.notifier.Forget(o.Session.ID)
	}
	return c.Reply(render.Outcome(*o))
}

func isBattleUserError(err error) bool {
	for _, target := range []error{
		battle.ErrAlreadyInBattle, battle.ErrNotInBattle, battle.ErrWrongPhase,
		battle.ErrInvalidIndex, battle.ErrTimeout, battle.ErrSelfChallenge,
		battle.ErrNoChallenge, battle.ErrNotChallenged, battle.ErrClosed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

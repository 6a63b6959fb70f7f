package handler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"anime-battle-bot/internal/battle"
	"anime-battle-bot/internal/render"
)

// Animation timings used when none are configured.
const (
	DefaultAnimationFrames = 3
	DefaultFrameDelay      = 100 * time.Millisecond
	DefaultTurnDelay       = time.Second
)

// AnimationConfig paces the battle board.
type AnimationConfig struct {
	Frames     int
	FrameDelay time.Duration
	TurnDelay  time.Duration
}

// BattleNotifier posts battle events to the chat. Each running fight owns one
// board message that is edited frame by frame.
type BattleNotifier struct {
	out  Messenger
	anim AnimationConfig

	mu     sync.Mutex
	boards map[string]*tele.Message
}

// NewBattleNotifier creates a notifier sending through out. A zero Frames uses the
// default; zero delays stay zero.
func NewBattleNotifier(out Messenger, anim AnimationConfig) *BattleNotifier {
	if anim.Frames < 1 {
		anim.Frames = DefaultAnimationFrames
	}
	return &BattleNotifier{out: out, anim: anim, boards: make(map[string]*tele.Message)}
}

var _ battle.Notifier = (*BattleNotifier)(nil)

// ChallengeExpired replaces the challenge buttons with the timeout notice.
func (n *BattleNotifier) ChallengeExpired(_ context.Context, c battle.Challenge) {
	text := render.ChallengeExpired(c)
	if c.MessageID != 0 {
		if _, err := n.out.Edit(storedMessage(c.ChatID, c.MessageID), text); err == nil {
			return
		}
	}
	n.send(c.ChatID, text)
}

// CombatStarted posts the board both fighters will be animated on. When the battle
// ends while the board is on its way, the board is closed instead of registered.
func (n *BattleNotifier) CombatStarted(ctx context.Context, v battle.View, b battle.Board) {
	msg, err := n.out.Send(&tele.Chat{ID: v.ChatID}, "🔥 Both fighters are ready!\n\n"+render.Board(b))
	if err != nil {
		log.Error().Err(err).Str("battle_id", v.ID).Msg("Failed to post battle board")
		return
	}

	// Cancellation always precedes Forget, so checking under mu cannot leak an entry.
	n.mu.Lock()
	live := ctx.Err() == nil
	if live {
		n.boards[v.ID] = msg
	}
	n.mu.Unlock()

	if !live {
		if _, err := n.out.Edit(msg, render.BoardClosed); err != nil {
			log.Debug().Err(err).Str("battle_id", v.ID).Msg("Failed to close battle board")
		}
	}
}

// TurnResolved animates one attack on the board and then holds for the turn delay.
// It returns early when ctx is cancelled.
func (n *BattleNotifier) TurnResolved(ctx context.Context, v battle.View, t battle.Turn) {
	n.mu.Lock()
	board := n.boards[v.ID]
	n.mu.Unlock()

	frames := render.Frames(t.DefenderHPBefore, t.DefenderHP, n.anim.Frames)
	for i, hp := range frames {
		if ctx.Err() != nil {
			return
		}
		text := render.TurnFrame(t, hp)
		if board == nil {
			// The board could not be posted; show only the final frame.
			if i == len(frames)-1 {
				n.send(v.ChatID, text)
			}
		} else if _, err := n.out.Edit(board, text); err != nil {
			log.Debug().Err(err).Str("battle_id", v.ID).Int("turn", t.Index).Msg("Failed to edit battle board")
		}
		if !sleep(ctx, n.anim.FrameDelay) {
			return
		}
	}
	sleep(ctx, n.anim.TurnDelay)
}

// BattleEnded posts the result of a battle that ended on its own.
func (n *BattleNotifier) BattleEnded(_ context.Context, o battle.Outcome) {
	n.Forget(o.Session.ID)
	n.send(o.Session.ChatID, render.Outcome(o))
}

// Forget drops the board of a battle that ended through a command.
func (n *BattleNotifier) Forget(battleID string) {
	n.mu.Lock()
	delete(n.boards, battleID)
	n.mu.Unlock()
}

// Boards returns the number of fights with a live board.
func (n *BattleNotifier) Boards() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.boards)
}

func (n *BattleNotifier) send(chatID int64, text string) {
	if _, err := n.out.Send(&tele.Chat{ID: chatID}, text); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send battle message")
	}
}

// sleep waits d or until ctx is done and reports whether the full wait elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

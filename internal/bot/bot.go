// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"anime-battle-bot/internal/battle"
	"anime-battle-bot/internal/config"
	"anime-battle-bot/internal/handler"
	"anime-battle-bot/internal/pkg/confirm"
	"anime-battle-bot/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot   *tele.Bot
	cfg   *config.Config
	gate  *handler.Gate
	names *handler.Directory

	// Handlers
	battleHandler     *handler.BattleHandler
	collectionHandler *handler.CollectionHandler
	accountHandler    *handler.AccountHandler
	adminHandler      *handler.AdminHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config            *config.Config
	BattleManager     *battle.Manager
	SpawnService      *service.SpawnService
	CollectionService *service.CollectionService
	AccountService    *service.AccountService
}

// New creates a new Bot instance and wires its notifier into the battle manager.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			ev := log.Error().Err(err)
			if c != nil && c.Sender() != nil {
				ev = ev.Int64("user_id", c.Sender().ID)
			}
			ev.Msg("Handler error")
		},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:   teleBot,
		cfg:   deps.Config,
		gate:  &handler.Gate{},
		names: handler.NewDirectory(),
	}

	bc := deps.Config.Battle
	notifier := handler.NewBattleNotifier(teleBot, handler.AnimationConfig{
		Frames:     bc.AnimationFrames,
		FrameDelay: bc.FrameDelay,
		TurnDelay:  bc.TurnDelay,
	})
	deps.BattleManager.SetNotifier(notifier)

	// Initialize handlers
	b.battleHandler = handler.NewBattleHandler(deps.BattleManager, notifier, teleBot)
	b.collectionHandler = handler.NewCollectionHandler(
		deps.SpawnService,
		deps.CollectionService,
		confirm.NewStore(deps.Config.Spawn.ConfirmWindow),
		confirm.NewStore(deps.Config.Spawn.ReleaseWindow),
	)
	b.accountHandler = handler.NewAccountHandler(deps.AccountService, deps.CollectionService, b.names)
	b.adminHandler = handler.NewAdminHandler(deps.SpawnService, b.gate)

	// Register middleware
	b.registerMiddleware()

	// Register handlers
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())

	// Whitelist middleware - check if chat is allowed
	b.bot.Use(WhitelistMiddleware(b.cfg, b.names))

	// Owner lock
	b.bot.Use(GateMiddleware(b.cfg, b.gate))

	// Logging middleware
	b.bot.Use(LoggingMiddleware())
}

// registerHandlers registers all command and callback handlers.
func (b *Bot) registerHandlers() {
	b.bot.Handle("/start", handler.HandleCommands)
	b.bot.Handle("/commands", handler.HandleCommands)

	// Catching and collection
	b.bot.Handle("/catch", b.collectionHandler.HandleCatch)
	b.bot.Handle("/ac", b.collectionHandler.HandleCatch)
	b.bot.Handle("/hint", b.collectionHandler.HandleHint)
	b.bot.Handle("/collection", b.collectionHandler.HandleCollection)
	b.bot.Handle("/info", b.collectionHandler.HandleInfo)
	b.bot.Handle("/release", b.collectionHandler.HandleRelease)
	b.bot.Handle("/cc", b.collectionHandler.HandleClear)

	// Battles
	b.bot.Handle("/battle", b.battleHandler.HandleBattle)
	b.bot.Handle("/fight", b.battleHandler.HandleFight)
	b.bot.Handle("/flee", b.battleHandler.HandleFlee)

	// Economy
	b.bot.Handle("/bal", b.accountHandler.HandleBalance)
	b.bot.Handle("/profile", b.accountHandler.HandleProfile)
	b.bot.Handle("/leaderboard", b.accountHandler.HandleLeaderboard)

	// Admin handlers (with admin middleware)
	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/spawn", b.adminHandler.HandleSpawn)
	adminGroup.Handle("/lock", b.adminHandler.HandleLock)
	adminGroup.Handle("/unlock", b.adminHandler.HandleUnlock)

	// Plain chatter drives spawning
	b.bot.Handle(tele.OnText, b.collectionHandler.HandleText)

	// Generic callback handler for all inline buttons
	b.bot.Handle(tele.OnCallback, b.handleCallback)
}

// handleCallback routes callbacks to appropriate handlers
func (b *Bot) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		return nil
	}

	// Telebot v3 may add a \f prefix to callback data
	data := strings.TrimPrefix(callback.Data, "\f")
	log.Debug().Str("data", data).Msg("Callback received")

	switch {
	case strings.HasPrefix(data, "battle_"):
		return b.battleHandler.HandleChallengeCallback(c)
	case strings.HasPrefix(data, "confirm_"), strings.HasPrefix(data, handler.CallbackReleaseOffer):
		return b.collectionHandler.HandleCallback(c)
	}
	return c.Respond()
}

// Start starts the bot polling.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}

// GetBot returns the underlying telebot instance.
func (b *Bot) GetBot() *tele.Bot {
	return b.bot
}

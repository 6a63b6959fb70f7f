// Package main is the entry point for the anime battle bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"anime-battle-bot/internal/battle"
	"anime-battle-bot/internal/bot"
	"anime-battle-bot/internal/character"
	"anime-battle-bot/internal/config"
	"anime-battle-bot/internal/pkg/db"
	"anime-battle-bot/internal/pkg/lock"
	"anime-battle-bot/internal/repository"
	"anime-battle-bot/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	if err := db.Migrate(ctx, dbPool.Pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	charRepo := repository.NewCharacterRepository(dbPool.Pool)
	walletRepo := repository.NewWalletRepository(dbPool.Pool)
	profileRepo := repository.NewProfileRepository(dbPool.Pool)
	rewardRepo := repository.NewBattleRewardRepository(dbPool.Pool)

	src, err := character.NewSeededSource()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed random source")
	}

	// Initialize services
	userLock := lock.New()
	collectionService := service.NewCollectionService(charRepo, walletRepo, userLock, src)
	accountService := service.NewAccountService(walletRepo, profileRepo)
	spawnService := service.NewSpawnService(src, cfg.Spawn.MinMessages, cfg.Spawn.MaxMessages)

	// The collection is the battle roster; the manager in turn locks the collection
	// of anyone choosing or fighting.
	manager := battle.NewManager(battle.NewStore(), collectionService, rewardRepo, nil, battle.Config{
		ChallengeTimeout: cfg.Battle.ChallengeTimeout,
		SelectionTimeout: cfg.Battle.SelectionTimeout,
	})
	collectionService.SetBattlePhases(manager)

	// Initialize bot
	telegramBot, err := bot.New(&bot.Dependencies{
		Config:            cfg,
		BattleManager:     manager,
		SpawnService:      spawnService,
		CollectionService: collectionService,
		AccountService:    accountService,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start bot in a goroutine
	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	// Graceful shutdown: stop taking updates, then let running fights wind down.
	telegramBot.Stop()
	manager.Close()
	log.Info().Msg("Bot stopped gracefully")
}

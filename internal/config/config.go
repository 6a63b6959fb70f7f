// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Spawn     SpawnConfig     `mapstructure:"spawn"`
	Battle    BattleConfig    `mapstructure:"battle"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token string `mapstructure:"token"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// AdminConfig holds the owner accounts allowed to force spawns and lock the bot.
type AdminConfig struct {
	IDs []int64 `mapstructure:"ids"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// SpawnConfig holds spawn cadence and catch economy settings.
type SpawnConfig struct {
	MinMessages   int           `mapstructure:"min_messages"`
	MaxMessages   int           `mapstructure:"max_messages"`
	ReleaseWindow time.Duration `mapstructure:"release_window"`
	ConfirmWindow time.Duration `mapstructure:"confirm_window"`
}

// BattleConfig holds battle timing settings.
type BattleConfig struct {
	ChallengeTimeout time.Duration `mapstructure:"challenge_timeout"`
	SelectionTimeout time.Duration `mapstructure:"selection_timeout"`
	TurnDelay        time.Duration `mapstructure:"turn_delay"`
	AnimationFrames  int           `mapstructure:"animation_frames"`
	FrameDelay       time.Duration `mapstructure:"frame_delay"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// e.g. BOT_TOKEN, DATABASE_HOST, BATTLE_CHALLENGE_TIMEOUT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional; env vars can provide everything
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "animebot")
	v.SetDefault("database.name", "animebot")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("spawn.min_messages", 25)
	v.SetDefault("spawn.max_messages", 40)
	v.SetDefault("spawn.release_window", "30s")
	v.SetDefault("spawn.confirm_window", "30s")

	v.SetDefault("battle.challenge_timeout", "60s")
	v.SetDefault("battle.selection_timeout", "5m")
	v.SetDefault("battle.turn_delay", "1s")
	v.SetDefault("battle.animation_frames", 3)
	v.SetDefault("battle.frame_delay", "100ms")
}

// Validate rejects settings the bot cannot run with.
func (c *Config) Validate() error {
	if c.Spawn.MinMessages < 1 || c.Spawn.MaxMessages < c.Spawn.MinMessages {
		return fmt.Errorf("invalid spawn range [%d,%d]", c.Spawn.MinMessages, c.Spawn.MaxMessages)
	}
	if c.Battle.ChallengeTimeout <= 0 {
		return fmt.Errorf("battle.challenge_timeout must be positive")
	}
	if c.Battle.SelectionTimeout < 0 {
		return fmt.Errorf("battle.selection_timeout must not be negative")
	}
	return nil
}

// IsAdmin checks if a user ID is in the admin list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admin.IDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsChatAllowed checks if a chat ID is in the whitelist.
func (c *Config) IsChatAllowed(chatID int64) bool {
	// Empty whitelist means all chats are allowed
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	for _, id := range c.Whitelist.Chats {
		if id == chatID {
			return true
		}
	}
	return false
}

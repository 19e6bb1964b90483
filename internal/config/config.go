package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"chore-board/internal/chore"
)

// Config keeps runtime settings for the bot and the operator CLI.
type Config struct {
	TelegramToken  string
	DatabaseDriver string
	DatabaseURL    string
	ReminderTime   string
	Timezone       *time.Location
	RetryInterval  time.Duration
	SessionTimeout time.Duration
	WritePolicy    chore.WritePolicy
	ReviewerRole   string
}

// Load reads configuration from CHOREBOARD_* environment variables and an
// optional choreboard.yaml in the working directory. Environment wins.
func Load() (Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	v.SetEnvPrefix("choreboard")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_url", "chore_board.db")
	v.SetDefault("reminder_time", "19:00")
	v.SetDefault("timezone", "Local")
	v.SetDefault("retry_interval", "1m")
	v.SetDefault("session_timeout", "1h")
	v.SetDefault("write_policy", "keep")
	v.SetDefault("reviewer_role", "parent")

	v.SetConfigName("choreboard")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		TelegramToken:  strings.TrimSpace(v.GetString("telegram_token")),
		DatabaseDriver: strings.ToLower(strings.TrimSpace(v.GetString("database_driver"))),
		DatabaseURL:    strings.TrimSpace(v.GetString("database_url")),
		ReminderTime:   strings.TrimSpace(v.GetString("reminder_time")),
		RetryInterval:  v.GetDuration("retry_interval"),
		SessionTimeout: v.GetDuration("session_timeout"),
		ReviewerRole:   strings.TrimSpace(v.GetString("reviewer_role")),
	}

	loc, err := time.LoadLocation(strings.TrimSpace(v.GetString("timezone")))
	if err != nil {
		return cfg, fmt.Errorf("load timezone: %w", err)
	}
	cfg.Timezone = loc

	cfg.WritePolicy, err = chore.ParseWritePolicy(v.GetString("write_policy"))
	if err != nil {
		return cfg, err
	}

	switch cfg.DatabaseDriver {
	case "sqlite", "mysql":
	default:
		return cfg, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("database_url is required")
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = time.Minute
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = time.Hour
	}
	return cfg, nil
}

// RequireTelegram fails when the bot token is missing.
func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("CHOREBOARD_TELEGRAM_TOKEN is required")
	}
	return nil
}

package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"

	"chore-board/internal/chore"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseDriver != "sqlite" || cfg.DatabaseURL != "chore_board.db" {
		t.Errorf("database = %s %s", cfg.DatabaseDriver, cfg.DatabaseURL)
	}
	if cfg.ReminderTime != "19:00" || cfg.RetryInterval != time.Minute || cfg.SessionTimeout != time.Hour {
		t.Errorf("timing = %s %s %s", cfg.ReminderTime, cfg.RetryInterval, cfg.SessionTimeout)
	}
	if cfg.WritePolicy != chore.KeepLocal || cfg.ReviewerRole != "parent" {
		t.Errorf("policy = %v role = %s", cfg.WritePolicy, cfg.ReviewerRole)
	}
	if err := cfg.RequireTelegram(); err == nil {
		t.Errorf("missing token accepted")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CHOREBOARD_TELEGRAM_TOKEN", " 123:abc ")
	t.Setenv("CHOREBOARD_DATABASE_DRIVER", "MySQL")
	t.Setenv("CHOREBOARD_DATABASE_URL", "user:pw@tcp(db:3306)/chores?parseTime=true")
	t.Setenv("CHOREBOARD_RETRY_INTERVAL", "30s")
	t.Setenv("CHOREBOARD_WRITE_POLICY", "rollback")
	t.Setenv("CHOREBOARD_TIMEZONE", "UTC")

	cfg, err := load(viper.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TelegramToken != "123:abc" || cfg.RequireTelegram() != nil {
		t.Errorf("token = %q", cfg.TelegramToken)
	}
	if cfg.DatabaseDriver != "mysql" {
		t.Errorf("driver = %s", cfg.DatabaseDriver)
	}
	if cfg.RetryInterval != 30*time.Second || cfg.WritePolicy != chore.Rollback {
		t.Errorf("retry = %s policy = %v", cfg.RetryInterval, cfg.WritePolicy)
	}
	if cfg.Timezone != time.UTC {
		t.Errorf("timezone = %s", cfg.Timezone)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	for key, value := range map[string]string{
		"CHOREBOARD_DATABASE_DRIVER": "postgres",
		"CHOREBOARD_WRITE_POLICY":    "sometimes",
		"CHOREBOARD_TIMEZONE":        "Mars/Olympus",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := load(viper.New()); err == nil {
				t.Fatalf("%s=%s accepted", key, value)
			}
		})
	}
}

package cli

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"chore-board/internal/bot"
	"chore-board/internal/service"
)

func addBot(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot with the evening reminder and write retries.",
		Example: `
CHOREBOARD_TELEGRAM_TOKEN=123:abc choreboard bot
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runBot(ctx)
		},
	}
	topLevel.AddCommand(cmd)
}

func runBot(ctx context.Context) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.cfg.RequireTelegram(); err != nil {
		return err
	}

	telegramBot, err := bot.New(a.cfg.TelegramToken, a.auth, a.boards, a.reviews, a.reminders)
	if err != nil {
		return err
	}

	scheduler := service.NewSchedulerService(a.cfg.Timezone)
	if _, err := scheduler.ScheduleDaily("daily-report", a.cfg.ReminderTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := telegramBot.SendDailyReports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("report: %v", err)
		}
	}); err != nil {
		return err
	}
	if _, err := scheduler.ScheduleInterval("write-retry", a.cfg.RetryInterval, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := a.boards.RetryAll(jobCtx); err != nil {
			log.Printf("retry writes: %v", err)
		}
	}); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("[info] chore board bot started")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.boards.Flush(flushCtx); err != nil {
		log.Printf("flush writes on shutdown: %v", err)
	}
	log.Println("[info] shutdown complete")
	return nil
}

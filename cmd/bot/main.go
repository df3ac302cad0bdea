package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"homework_status_bot/internal/app"
	"homework_status_bot/internal/domain/failure"
	"homework_status_bot/internal/domain/notification"
	"homework_status_bot/internal/infra/config"
	idb "homework_status_bot/internal/infra/database"
	"homework_status_bot/internal/infra/logger"
	"homework_status_bot/internal/infra/practicum"
	"homework_status_bot/internal/infra/scheduler"
	"homework_status_bot/internal/infra/telegram"
)

func main() {
	fmt.Println("Homework Status Bot starting...")

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.New(nil).WithError(err).Fatal(fatalMessage(err))
	}
}

// fatalMessage picks the last log line for an error that stopped the bot.
func fatalMessage(err error) string {
	var cfgErr *failure.ConfigError
	if !errors.As(err, &cfgErr) {
		return "Bot stopped with an unrecoverable error"
	}
	if len(cfgErr.Missing) > 0 {
		return "Отсутствует одна из обязательных переменных окружения."
	}
	return "Некорректное значение переменной окружения."
}

// run wires the bot from the environment and blocks until ctx is cancelled.
// Configuration is validated before anything touches the network.
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg)
	log.Infof("Configuration loaded. LogLevel: %s, Environment: %s, Schedule: %s, Chat ID: %s",
		cfg.LogLevel, cfg.Environment, cfg.PollSchedule, cfg.TelegramChatID)

	schedule, err := scheduler.Parse(cfg.PollSchedule)
	if err != nil {
		return &failure.ConfigError{Invalid: []string{"POLL_SCHEDULE"}, Err: err}
	}

	// Initialize the optional delivery journal
	var journal notification.Journal
	if cfg.DatabaseURL != "" {
		db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("could not connect to database: %w", err)
		}
		defer db.Close()
		journalRepo := idb.NewPostgresJournalRepository(db)
		if err := journalRepo.EnsureSchema(ctx); err != nil {
			return err
		}
		journal = journalRepo
		log.Info("Notification journal enabled.")
	}

	// Initialize Telegram Bot
	bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramAPIURL, cfg.HTTPTimeout)
	if err != nil {
		return fmt.Errorf("could not create Telegram bot: %w", err)
	}

	notifier := app.NewTelegramNotifier(
		telegram.NewTelebotAdapter(bot),
		cfg.TelegramChatID,
		cfg.SendRatePerSec,
		journal,
		log.WithField("component", "notifier"),
	)
	fetcher := practicum.NewClient(cfg.Endpoint, cfg.PracticumToken, cfg.HTTPTimeout)
	poller := app.NewPoller(fetcher, notifier, schedule, log.WithField("component", "poller"))

	log.Info("Application setup complete. Poller is starting...")
	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("Application shut down gracefully.")
	return nil
}

package main

import (
	"time"

	"femflow/internal/app"
	"femflow/internal/domain/notify"
	"femflow/internal/generator"
	"femflow/internal/infra/logger"
	"femflow/internal/infra/scheduler"
	"femflow/internal/infra/telegram"

	"github.com/spf13/cobra"
	"gopkg.in/telebot.v3"
)

// serveCmd keeps the store fresh on a schedule
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Reseed the store on a cron schedule, with an optional Telegram admin bot",
	Long: `Runs until interrupted. The store is reseeded with SEED_COUNT records on
the CRON_SPEC_RESEED schedule (default: 3:00 AM daily).

When TELEGRAM_TOKEN is set, a bot answers /seed and /stats from
ADMIN_TELEGRAM_ID and every seed report is sent to that chat.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mainLogger := logger.Component("serve")

	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.close()

	var (
		bot      *telebot.Bot
		notifier notify.Notifier
	)
	if cfg.TelegramEnabled() {
		botLogger := logger.Component("telebot")
		bot, err = telebot.NewBot(telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) { // Global error handler
				logCtx := botLogger.WithError(err)
				if c != nil && c.Sender() != nil && c.Chat() != nil {
					logCtx = logCtx.WithField("sender_id", c.Sender().ID).WithField("chat_id", c.Chat().ID)
				}
				logCtx.Error("Telegram handler failed")
			},
		})
		if err != nil {
			return err
		}
		notifier = telegram.NewTelebotAdapter(bot, cfg.AdminTelegramID)
	}

	gen := generator.New(generator.Config{Seed: cfg.GeneratorSeed})
	svc := app.NewSeedService(gen, s.repo, s.target, cfg.SeedWorkers, notifier, logger.Component("seed"))

	reseed := scheduler.NewReseedScheduler(svc, logger.Component("scheduler"), cfg.CronSpecReseed, cfg.SeedCount)
	if err := reseed.Start(); err != nil {
		return err
	}
	defer reseed.Stop()

	if bot != nil {
		telegram.NewBotCommands(svc, s.repo, cfg.AdminTelegramID, cfg.SeedCount).
			Register(ctx, bot, logger.Component("telegram"))
		go bot.Start()
		defer bot.Stop()
		mainLogger.Info("Telegram admin bot started")
	}

	mainLogger.WithField("target", s.target).Info("Application setup complete, waiting for shutdown signal")
	<-ctx.Done()
	mainLogger.Info("Shutting down application...")
	return nil
}

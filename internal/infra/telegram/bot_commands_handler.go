// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"femflow/internal/app"
	"femflow/internal/domain/cycle"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const maxSeedCount = 10000

const helpText = "Available commands:\n\n" +
	"`/seed [count]`\n - Replace the stored records with a fresh mock batch.\n\n" +
	"`/stats`\n - Show how many records are stored and their duration statistics.\n\n" +
	"`/help`\n - Show this message."

// BotCommands answers admin commands about the seeded records.
type BotCommands struct {
	seeder       app.Seeder
	repo         cycle.Repository
	adminID      int64
	defaultCount int
}

func NewBotCommands(seeder app.Seeder, repo cycle.Repository, adminID int64, defaultCount int) *BotCommands {
	return &BotCommands{seeder: seeder, repo: repo, adminID: adminID, defaultCount: defaultCount}
}

// Register attaches the command handlers to the bot.
func (bc *BotCommands) Register(ctx context.Context, b *telebot.Bot, baseLogger *logrus.Entry) {
	handlerLogger := baseLogger.WithField("handler_group", "admin_commands")

	b.Handle("/start", bc.guard(handlerLogger, "/start", func(c telebot.Context) error {
		return c.Send(fmt.Sprintf("Hello, %s! Use /help to see what I can do.", c.Sender().FirstName))
	}))

	b.Handle("/help", bc.guard(handlerLogger, "/help", func(c telebot.Context) error {
		return c.Send(helpText, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	}))

	b.Handle("/seed", bc.guard(handlerLogger, "/seed", func(c telebot.Context) error {
		return c.Send(bc.SeedReply(ctx, c.Args()))
	}))

	b.Handle("/stats", bc.guard(handlerLogger, "/stats", func(c telebot.Context) error {
		return c.Send(bc.StatsReply(ctx))
	}))
}

// guard logs the command and rejects anyone but the admin.
func (bc *BotCommands) guard(logger *logrus.Entry, command string, next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		if c.Sender() == nil {
			return nil
		}
		logCtx := logger.WithField("command", command).WithField("sender_id", c.Sender().ID)
		if !bc.Authorized(c.Sender().ID) {
			logCtx.Warn("Unauthorized access attempt")
			return c.Send("You are not allowed to use this bot.")
		}
		logCtx.Info("Processing command")
		return next(c)
	}
}

func (bc *BotCommands) Authorized(senderID int64) bool {
	return senderID == bc.adminID
}

// SeedReply runs a seed and describes the outcome. args may hold one count.
func (bc *BotCommands) SeedReply(ctx context.Context, args []string) string {
	count := bc.defaultCount
	if len(args) > 1 {
		return "Usage: /seed [count]"
	}
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 || n > maxSeedCount {
			return fmt.Sprintf("Count must be a number between 1 and %d.", maxSeedCount)
		}
		count = n
	}

	report, err := bc.seeder.Seed(ctx, count)
	if err != nil {
		return fmt.Sprintf("Seeding failed: %v", err)
	}
	return report.Summary()
}

// StatsReply reports the record count, plus duration statistics when the store supports aggregation.
func (bc *BotCommands) StatsReply(ctx context.Context) string {
	total, err := bc.repo.Count(ctx)
	if err != nil {
		return fmt.Sprintf("Could not count records: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Stored records: %d", total)

	qr, ok := bc.repo.(cycle.QueryRepository)
	if !ok || total == 0 {
		return b.String()
	}

	stats, err := qr.DurationStats(ctx)
	if err != nil {
		fmt.Fprintf(&b, "\nCould not aggregate durations: %v", err)
		return b.String()
	}
	fmt.Fprintf(&b, "\nDuration: avg %.2f, min %d, max %d days", stats.AvgDuration, stats.MinDuration, stats.MaxDuration)

	flows, err := qr.FlowBreakdown(ctx)
	if err != nil {
		fmt.Fprintf(&b, "\nCould not group by flow: %v", err)
		return b.String()
	}
	for _, f := range flows {
		fmt.Fprintf(&b, "\n%s: %d", f.Flow, f.Count)
	}
	return b.String()
}

package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// BotOptions are the transport options the relay runs with. A single worker and synchronous
// handlers keep commands in the order Telegram delivered them.
func BotOptions() []bot.Option {
	return []bot.Option{
		bot.WithDefaultHandler(noOpHandler),
		bot.WithWorkers(1),
		bot.WithNotAsyncHandlers(),
	}
}

// Register routes every text message to the command handler. Parsing decides what is a command.
func (c *Command) Register(b *bot.Bot) string {
	return b.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.Handle)
}

func noOpHandler(_ context.Context, _ *bot.Bot, _ *models.Update) {}

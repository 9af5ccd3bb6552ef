package handler

import (
	"context"
	"strings"
	"tehbot/internal/core/domain"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, message *domain.Message) error
}

// Command feeds text messages from Telegram updates into the dispatcher, one at a time and in
// delivery order.
type Command struct {
	dispatcher Dispatcher
	timeout    time.Duration
}

func NewCommand(dispatcher Dispatcher, timeout time.Duration) *Command {
	return &Command{dispatcher: dispatcher, timeout: timeout}
}

func (c *Command) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	message := toMessage(update.Message)

	log.Debug().
		Int64("chatId", message.ChatID).
		Str("chatKind", string(message.ChatKind)).
		Str("message", message.Text).
		Msg("received message")

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.dispatcher.Dispatch(ctx, message)
	if err != nil {
		log.Err(err).Int64("chatId", message.ChatID).Msg("failed to handle message")
	}
}

func toMessage(m *models.Message) *domain.Message {
	message := &domain.Message{
		ID:       m.ID,
		ChatID:   m.Chat.ID,
		ChatKind: domain.ChatKind(m.Chat.Type),
		Text:     m.Text,
	}

	if m.From != nil {
		message.SenderID = m.From.ID
		message.SenderName = getUserNameOrFullName(m.From)
	}

	return message
}

func getUserNameOrFullName(user *models.User) string {
	if user.Username != "" {
		return "@" + user.Username
	}

	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"tehbot/internal/core/domain"
	"tehbot/internal/core/domain/command"
	"tehbot/internal/core/port"

	"github.com/rs/zerolog/log"
)

const genericFailure = "API error"

// Outcome is what a single inbound message results in. Both fields nil means a silent drop.
type Outcome struct {
	Reply  *domain.OutboundMessage
	Notify *domain.OutboundMessage
}

// Dispatcher turns authorized chat commands into club API calls. It keeps no state between
// messages.
type Dispatcher struct {
	authorizer   Authorizer
	parser       *command.Parser
	allowBang    bool
	workstations port.WorkstationResolver
	actions      port.ActionClient
	sender       port.TextSender
	adminChatID  int64
	replies      *Replies
}

type DispatcherOption func(*Dispatcher)

// WithReplies replaces the built-in English reply texts.
func WithReplies(replies *Replies) DispatcherOption {
	return func(d *Dispatcher) {
		d.replies = replies
	}
}

// WithAdminChat enables audit notifications for successful switches. Zero disables them.
func WithAdminChat(chatID int64) DispatcherOption {
	return func(d *Dispatcher) {
		d.adminChatID = chatID
	}
}

// WithBangPrefix toggles the "!teh<N>" form.
func WithBangPrefix(enabled bool) DispatcherOption {
	return func(d *Dispatcher) {
		d.allowBang = enabled
		d.parser = command.NewParser(enabled)
	}
}

func NewDispatcher(authorizer Authorizer,
	workstations port.WorkstationResolver,
	actions port.ActionClient,
	sender port.TextSender,
	opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		authorizer:   authorizer,
		parser:       command.NewParser(true),
		allowBang:    true,
		workstations: workstations,
		actions:      actions,
		sender:       sender,
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.replies == nil {
		d.replies = defaultReplies(d.allowBang)
	}

	return d
}

// OnMessage decides the outcome for one message. The only side effect is the club API call.
func (d *Dispatcher) OnMessage(ctx context.Context, message *domain.Message) Outcome {
	if !d.authorizer.IsAuthorized(message) {
		return Outcome{}
	}

	l := log.With().
		Int("messageId", message.ID).
		Int64("chatId", message.ChatID).
		Int64("senderId", message.SenderID).
		Logger()

	cmd := d.parser.Parse(message.Text)

	switch cmd.Kind {
	case command.Ignored:
		return Outcome{}
	case command.Invalid:
		l.Info().Str("text", message.Text).Str("reason", cmd.Reason).Msg("rejecting malformed command")
		return Outcome{Reply: d.reply(message, render(d.replies.invalid, replyData{}), domain.Markdown)}
	}

	data := replyData{
		Workstation: cmd.Workstation,
		Sender:      message.SenderName,
		SenderID:    message.SenderID,
		ChatID:      message.ChatID,
	}

	l = l.With().Int("workstation", cmd.Workstation).Logger()

	uuid, err := d.workstations.Resolve(cmd.Workstation)
	if err != nil {
		if !errors.Is(err, domain.ErrWorkstationNotFound) {
			l.Error().Err(err).Msg("failed to resolve workstation")
		}
		l.Info().Msg("unknown workstation")
		return Outcome{Reply: d.reply(message, render(d.replies.notFound, data), domain.Plain)}
	}

	l.Info().Str("uuid", uuid).Msg("switching workstation to tech mode")

	result := d.actions.SwitchToTechMode(ctx, uuid)
	if !result.Succeeded {
		reason := result.Message
		if reason == "" {
			reason = genericFailure
		}

		l.Error().Int("status", result.HTTPStatus).Str("reason", reason).Msg("failed to switch workstation")
		data.Reason = reason
		return Outcome{Reply: d.reply(message, render(d.replies.failed, data), domain.Plain)}
	}

	outcome := Outcome{Reply: d.reply(message, render(d.replies.switched, data), domain.Plain)}

	if d.adminChatID != 0 {
		outcome.Notify = &domain.OutboundMessage{
			ChatID:     d.adminChatID,
			Text:       render(d.replies.audit, data),
			Formatting: domain.Plain,
		}
	}

	return outcome
}

// Dispatch runs OnMessage and delivers the outcome. Delivery failures are logged and returned,
// never retried.
func (d *Dispatcher) Dispatch(ctx context.Context, message *domain.Message) error {
	outcome := d.OnMessage(ctx, message)

	if outcome.Reply != nil {
		if err := d.sender.SendText(ctx, *outcome.Reply); err != nil {
			log.Error().Err(err).Int64("chatId", outcome.Reply.ChatID).Msg(domain.ErrSendingReplyFailed.Error())
			return fmt.Errorf("%w: %w", domain.ErrSendingReplyFailed, err)
		}
	}

	if outcome.Notify != nil {
		if err := d.sender.SendText(ctx, *outcome.Notify); err != nil {
			log.Error().Err(err).Int64("chatId", outcome.Notify.ChatID).Msg("failed to send audit notification")
			return fmt.Errorf("failed to send audit notification: %w", err)
		}
	}

	return nil
}

func (d *Dispatcher) reply(message *domain.Message, text string, formatting domain.Formatting) *domain.OutboundMessage {
	return &domain.OutboundMessage{ChatID: message.ChatID, Text: text, Formatting: formatting}
}

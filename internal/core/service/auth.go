package service

import (
	"tehbot/internal/core/domain"

	"github.com/rs/zerolog/log"
)

type Authorizer interface {
	IsAuthorized(message *domain.Message) bool
}

// ChatAuthorizer admits group messages from exactly one chat. Everything else is dropped without
// a reply.
type ChatAuthorizer struct {
	allowedChatID int64
}

func NewAuthorizer(allowedChatID int64) *ChatAuthorizer {
	return &ChatAuthorizer{allowedChatID: allowedChatID}
}

func (a *ChatAuthorizer) IsAuthorized(message *domain.Message) bool {
	if message.ChatKind == domain.Private {
		log.Warn().
			Int64("senderId", message.SenderID).
			Str("sender", message.SenderName).
			Msg("ignoring private message")
		return false
	}

	if message.ChatID != a.allowedChatID {
		log.Warn().Int64("chatId", message.ChatID).Msg("ignoring message from chat that is not allowed")
		return false
	}

	return true
}

package port

import (
	"context"
	"tehbot/internal/core/domain"
)

type TextSender interface {
	// SendText delivers a message to a chat. Implementations must be safe for concurrent use and must not
	// interleave the parts of two messages.
	SendText(ctx context.Context, message domain.OutboundMessage) error
}

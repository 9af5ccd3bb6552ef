package sender

import (
	"context"
	"fmt"
	"sync"
	"tehbot/internal/core/domain"
	"unicode/utf16"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

// TelegramMessageLimit is the longest text Telegram accepts in one message, counted in UTF-16
// code units.
const TelegramMessageLimit = 4096

//go:generate mockery --name TelegramBot

type TelegramBot interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Telegram sends chat messages. A lock keeps the chunks of one long message together when the
// dispatcher and the reminder send at the same time.
type Telegram struct {
	bot TelegramBot
	mu  sync.Mutex
}

func NewTelegram(bot TelegramBot) *Telegram {
	return &Telegram{bot: bot}
}

func (s *Telegram) SendText(ctx context.Context, message domain.OutboundMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chunks := splitText(message.Text, TelegramMessageLimit)

	for i, chunk := range chunks {
		_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    message.ChatID,
			Text:      chunk,
			ParseMode: parseMode(message.Formatting),
		})
		if err != nil {
			log.Error().Err(err).
				Int64("chatId", message.ChatID).
				Int("chunk", i).
				Int("chunks", len(chunks)).
				Msg("failed to send message")
			return fmt.Errorf("failed to send message: %w", err)
		}
	}

	log.Debug().Int64("chatId", message.ChatID).Int("chunks", len(chunks)).Msg("message sent")

	return nil
}

func parseMode(f domain.Formatting) models.ParseMode {
	if f == domain.Markdown {
		return models.ParseModeMarkdownV1
	}

	return ""
}

// splitText cuts text into chunks of at most limit UTF-16 code units. A chunk ends after the
// last newline that fits, so Markdown entities spanning a single line stay whole; a line longer
// than limit is cut at the rune boundary.
func splitText(text string, limit int) []string {
	if utf16Len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	runes := []rune(text)

	for len(runes) > 0 {
		size, end, lastNewline := 0, 0, -1
		for end < len(runes) {
			n := utf16.RuneLen(runes[end])
			if n < 0 {
				n = 1
			}
			if size+n > limit {
				break
			}
			size += n
			if runes[end] == '\n' {
				lastNewline = end
			}
			end++
		}

		if end < len(runes) && lastNewline >= 0 {
			end = lastNewline + 1
		}
		if end == 0 {
			end = 1
		}

		chunks = append(chunks, string(runes[:end]))
		runes = runes[end:]
	}

	return chunks
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}

	return n
}

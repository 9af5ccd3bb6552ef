package domain

import "time"

type ChatKind string

const (
	Private    ChatKind = "private"
	Group      ChatKind = "group"
	Supergroup ChatKind = "supergroup"
	Channel    ChatKind = "channel"
)

// Message is a single inbound chat event as delivered by the transport.
type Message struct {
	ID         int
	ChatID     int64
	ChatKind   ChatKind
	SenderID   int64
	SenderName string
	Text       string
}

type Formatting string

const (
	Plain    Formatting = "plain"
	Markdown Formatting = "markdown"
)

type OutboundMessage struct {
	ChatID     int64
	Text       string
	Formatting Formatting
}

// NoResponseStatus is reported as HTTPStatus when the remote API could not be reached at all.
const NoResponseStatus = 500

type ActionResult struct {
	Succeeded  bool
	Message    string
	HTTPStatus int
}

// ReminderSchedule describes the recurring weekday announcement.
type ReminderSchedule struct {
	Enabled    bool
	Hour       int
	Minute     int
	Weekdays   []time.Weekday
	Location   *time.Location
	ChatID     int64
	Body       string
	Formatting Formatting
}

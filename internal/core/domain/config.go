package domain

import "time"

// Config is built once at startup and handed to every component; nothing mutates it afterwards.
type Config struct {
	LogLevel       string
	BotToken       string
	AllowedChatID  int64
	AdminChatID    int64
	BangPrefix     bool
	HandlerTimeout time.Duration
	Club           ClubConfig
	Workstations   map[int]string
	Reminder       ReminderSchedule
	Replies        Replies
}

type ClubConfig struct {
	APIURL       string
	APIKey       string
	ClubID       int
	Timeout      time.Duration
	UUIDAsString bool
}

// Replies holds the chat-facing texts as Go templates. Empty fields fall back to the built-in
// English wording. Available fields: .Workstation, .Reason, .Sender, .SenderID, .ChatID.
type Replies struct {
	Switched string
	NotFound string
	Failed   string
	Invalid  string
	Audit    string
}

package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"tehbot/internal/core/domain"
	"tehbot/internal/core/domain/workstation"
	"tehbot/internal/core/service"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	keyLogLevel       = "bot.log_level"
	keyBotToken       = "telegram.bot_token"
	keyAllowedChatID  = "telegram.allowed_chat_id"
	keyAdminChatID    = "telegram.admin_chat_id"
	keyBangPrefix     = "commands.bang_prefix"
	keyHandlerTimeout = "handler.timeout"
	keyAPIURL         = "club.api_url"
	keyAPIKey         = "club.api_key"
	keyClubID         = "club.id"
	keyAPITimeout     = "club.timeout"
	keyUUIDAsString   = "club.uuid_as_string"
	keyWorkstations   = "workstations"
	keyReminderOn     = "reminder.enabled"
	keyReminderTime   = "reminder.time"
	keyReminderDays   = "reminder.weekdays"
	keyReminderText   = "reminder.text"
	keyReminderChat   = "reminder.chat_id"
	keyReminderTZ     = "reminder.timezone"
	keyReminderMD     = "reminder.markdown"
	keyReplySwitched  = "replies.switched"
	keyReplyNotFound  = "replies.not_found"
	keyReplyFailed    = "replies.failed"
	keyReplyInvalid   = "replies.invalid"
	keyReplyAudit     = "replies.audit"
)

var envBindings = map[string]string{
	keyLogLevel:       "LOG_LEVEL",
	keyBotToken:       "TELEGRAM_TOKEN",
	keyAllowedChatID:  "ALLOWED_GROUP_ID",
	keyAdminChatID:    "ADMIN_CHAT_ID",
	keyBangPrefix:     "BANG_PREFIX",
	keyHandlerTimeout: "HANDLER_TIMEOUT",
	keyAPIURL:         "API_URL",
	keyAPIKey:         "API_KEY",
	keyClubID:         "CLUB_ID",
	keyAPITimeout:     "API_TIMEOUT",
	keyUUIDAsString:   "UUID_AS_STRING",
	keyReminderOn:     "REMINDER_ENABLED",
	keyReminderTime:   "REMINDER_TIME",
	keyReminderDays:   "REMINDER_WEEKDAYS",
	keyReminderText:   "REMINDER_TEXT",
	keyReminderChat:   "REMINDER_CHAT_ID",
	keyReminderTZ:     "REMINDER_TIMEZONE",
	keyReminderMD:     "REMINDER_MARKDOWN",
	keyReplySwitched:  "REPLY_SWITCHED",
	keyReplyNotFound:  "REPLY_NOT_FOUND",
	keyReplyFailed:    "REPLY_FAILED",
	keyReplyInvalid:   "REPLY_INVALID",
	keyReplyAudit:     "REPLY_AUDIT",
}

// LoadDotEnv copies a .env file into the process environment if one exists. Variables that are
// already set are left alone.
func LoadDotEnv(paths ...string) {
	if err := godotenv.Load(paths...); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded, using process environment")
		return
	}

	log.Info().Msg("loaded environment from .env file")
}

// NewViper returns a viper instance reading an optional config.toml from dir with the environment
// bindings and defaults applied.
func NewViper(dir string) (*viper.Viper, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("toml")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	setDefaults(v)

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: could not read config file: %w", domain.ErrInvalidConfig, err)
		}
		log.Info().Msg("no config file found, using environment only")
	}

	return v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyBangPrefix, true)
	v.SetDefault(keyHandlerTimeout, "15s")
	v.SetDefault(keyClubID, 1)
	v.SetDefault(keyAPITimeout, "5s")
	v.SetDefault(keyUUIDAsString, false)
	v.SetDefault(keyReminderOn, false)
	v.SetDefault(keyReminderTime, "10:00")
	v.SetDefault(keyReminderDays, "mon,wed,fri")
	v.SetDefault(keyReminderMD, false)
}

// Load builds the immutable configuration. Environment PC_UUID_<N> entries override the
// [workstations] table.
func Load(v *viper.Viper, environ []string) (domain.Config, error) {
	cfg := domain.Config{
		LogLevel:   strings.ToLower(v.GetString(keyLogLevel)),
		BotToken:   v.GetString(keyBotToken),
		BangPrefix: v.GetBool(keyBangPrefix),
		Club: domain.ClubConfig{
			APIURL:       v.GetString(keyAPIURL),
			APIKey:       v.GetString(keyAPIKey),
			UUIDAsString: v.GetBool(keyUUIDAsString),
		},
	}

	var err error

	if cfg.BotToken == "" {
		return domain.Config{}, missing(keyBotToken)
	}

	if cfg.AllowedChatID, err = requiredInt64(v, keyAllowedChatID); err != nil {
		return domain.Config{}, err
	}

	if cfg.AdminChatID, err = optionalInt64(v, keyAdminChatID); err != nil {
		return domain.Config{}, err
	}

	if cfg.Club.APIURL == "" {
		return domain.Config{}, missing(keyAPIURL)
	}

	if cfg.Club.APIKey == "" {
		return domain.Config{}, missing(keyAPIKey)
	}

	clubID, err := optionalInt64(v, keyClubID)
	if err != nil {
		return domain.Config{}, err
	}
	cfg.Club.ClubID = int(clubID)

	if cfg.Club.Timeout, err = duration(v, keyAPITimeout); err != nil {
		return domain.Config{}, err
	}

	if cfg.HandlerTimeout, err = duration(v, keyHandlerTimeout); err != nil {
		return domain.Config{}, err
	}

	if cfg.Workstations, err = workstations(v, environ); err != nil {
		return domain.Config{}, err
	}

	if cfg.Reminder, err = reminder(v, cfg.AllowedChatID); err != nil {
		return domain.Config{}, err
	}

	cfg.Replies = domain.Replies{
		Switched: v.GetString(keyReplySwitched),
		NotFound: v.GetString(keyReplyNotFound),
		Failed:   v.GetString(keyReplyFailed),
		Invalid:  v.GetString(keyReplyInvalid),
		Audit:    v.GetString(keyReplyAudit),
	}
	if _, err := service.NewReplies(cfg.Replies, cfg.BangPrefix); err != nil {
		return domain.Config{}, err
	}

	return cfg, nil
}

func workstations(v *viper.Viper, environ []string) (map[int]string, error) {
	entries := make(map[int]string)

	for key, value := range v.GetStringMapString(keyWorkstations) {
		n, err := strconv.Atoi(key)
		if err != nil || n < 1 {
			log.Warn().Str("key", key).Msg("skipping workstation entry with malformed number")
			continue
		}
		entries[n] = value
	}

	for n, value := range workstation.FromEnviron(environ) {
		entries[n] = value
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no workstations configured (%s<N> or [%s])",
			domain.ErrMissingConfig, workstation.EnvPrefix, keyWorkstations)
	}

	return entries, nil
}

func reminder(v *viper.Viper, allowedChatID int64) (domain.ReminderSchedule, error) {
	r := domain.ReminderSchedule{Enabled: v.GetBool(keyReminderOn), Formatting: domain.Plain}
	if !r.Enabled {
		return r, nil
	}

	var err error

	if r.Hour, r.Minute, err = ParseClock(v.GetString(keyReminderTime)); err != nil {
		return r, err
	}

	if r.Weekdays, err = ParseWeekdays(v.GetString(keyReminderDays)); err != nil {
		return r, err
	}

	r.Location = time.Local
	if tz := v.GetString(keyReminderTZ); tz != "" {
		if r.Location, err = time.LoadLocation(tz); err != nil {
			return r, fmt.Errorf("%w: %s: %w", domain.ErrInvalidConfig, keyReminderTZ, err)
		}
	}

	if r.ChatID, err = optionalInt64(v, keyReminderChat); err != nil {
		return r, err
	}
	if r.ChatID == 0 {
		r.ChatID = allowedChatID
	}

	r.Body = v.GetString(keyReminderText)
	if _, err := service.ParseReminderBody(r.Body); err != nil {
		return r, err
	}

	if v.GetBool(keyReminderMD) {
		r.Formatting = domain.Markdown
	}

	return r, nil
}

// ParseClock reads "HH:MM" in 24h format.
func ParseClock(s string) (int, int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s %q: %w", domain.ErrInvalidConfig, keyReminderTime, s, err)
	}

	return t.Hour(), t.Minute(), nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// ParseWeekdays reads a comma or space separated list of weekday names ("mon,wed,fri",
// "Monday Friday").
func ParseWeekdays(s string) ([]time.Weekday, error) {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ',' || r == ' ' || r == ';'
	})

	seen := make(map[time.Weekday]bool)
	var days []time.Weekday

	for _, f := range fields {
		if len(f) < 3 {
			return nil, fmt.Errorf("%w: %s: unknown weekday %q", domain.ErrInvalidConfig, keyReminderDays, f)
		}

		d, ok := weekdayNames[f[:3]]
		if !ok || (len(f) > 3 && !strings.HasPrefix(strings.ToLower(d.String()), f)) {
			return nil, fmt.Errorf("%w: %s: unknown weekday %q", domain.ErrInvalidConfig, keyReminderDays, f)
		}

		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}

	if len(days) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingConfig, keyReminderDays)
	}

	return days, nil
}

func requiredInt64(v *viper.Viper, key string) (int64, error) {
	n, err := optionalInt64(v, key)
	if err != nil {
		return 0, err
	}

	if n == 0 {
		return 0, missing(key)
	}

	return n, nil
}

func optionalInt64(v *viper.Viper, key string) (int64, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", domain.ErrInvalidConfig, key, raw)
	}

	return n, nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %s %q is not a positive duration", domain.ErrInvalidConfig, key, v.GetString(key))
	}

	return d, nil
}

func missing(key string) error {
	env := envBindings[key]
	return fmt.Errorf("%w: %s (%s)", domain.ErrMissingConfig, key, env)
}

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"tehbot/internal/core/domain"
	"tehbot/internal/core/port"
	"text/template"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// WeekdaySchedule fires at a fixed wall-clock time on a set of weekdays. It satisfies
// cron.Schedule, so the weekday check is repeated for every occurrence.
type WeekdaySchedule struct {
	hour     int
	minute   int
	weekdays [7]bool
	location *time.Location
}

func NewWeekdaySchedule(hour, minute int, weekdays []time.Weekday, location *time.Location) (WeekdaySchedule, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return WeekdaySchedule{}, fmt.Errorf("%w: reminder time %02d:%02d", domain.ErrInvalidConfig, hour, minute)
	}

	if len(weekdays) == 0 {
		return WeekdaySchedule{}, fmt.Errorf("%w: reminder needs at least one weekday", domain.ErrInvalidConfig)
	}

	if location == nil {
		location = time.Local
	}

	s := WeekdaySchedule{hour: hour, minute: minute, location: location}
	for _, d := range weekdays {
		if d < time.Sunday || d > time.Saturday {
			return WeekdaySchedule{}, fmt.Errorf("%w: weekday %d", domain.ErrInvalidConfig, d)
		}
		s.weekdays[d] = true
	}

	return s, nil
}

// Next returns the first trigger strictly after t: today at the configured time if still ahead,
// otherwise tomorrow, then advanced day by day until the weekday is enabled.
func (s WeekdaySchedule) Next(t time.Time) time.Time {
	t = t.In(s.location)

	next := time.Date(t.Year(), t.Month(), t.Day(), s.hour, s.minute, 0, 0, s.location)
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}

	for range 7 {
		if s.weekdays[next.Weekday()] {
			return next
		}
		next = next.AddDate(0, 0, 1)
	}

	return time.Time{}
}

type reminderData struct {
	Date    string
	Weekday string
}

// Reminder posts the scheduled announcement. It shares nothing with the dispatcher except the sender.
type Reminder struct {
	schedule   WeekdaySchedule
	chatID     int64
	body       *template.Template
	formatting domain.Formatting
	sender     port.TextSender
}

func NewReminder(cfg domain.ReminderSchedule, sender port.TextSender) (*Reminder, error) {
	schedule, err := NewWeekdaySchedule(cfg.Hour, cfg.Minute, cfg.Weekdays, cfg.Location)
	if err != nil {
		return nil, err
	}

	if cfg.ChatID == 0 {
		return nil, fmt.Errorf("%w: reminder chat id", domain.ErrMissingConfig)
	}

	body, err := ParseReminderBody(cfg.Body)
	if err != nil {
		return nil, err
	}

	formatting := cfg.Formatting
	if formatting == "" {
		formatting = domain.Plain
	}

	return &Reminder{
		schedule:   schedule,
		chatID:     cfg.ChatID,
		body:       body,
		formatting: formatting,
		sender:     sender,
	}, nil
}

// ParseReminderBody compiles the reminder text. {{.Date}} and {{.Weekday}} are available.
func ParseReminderBody(body string) (*template.Template, error) {
	if body == "" {
		return nil, fmt.Errorf("%w: reminder text", domain.ErrMissingConfig)
	}

	tmpl, err := template.New("reminder").Option("missingkey=error").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: reminder text: %w", domain.ErrInvalidConfig, err)
	}

	return tmpl, nil
}

func (r *Reminder) NextFire(now time.Time) time.Time {
	return r.schedule.Next(now)
}

// Fire renders and sends the announcement for the occurrence at the given time.
func (r *Reminder) Fire(ctx context.Context, at time.Time) error {
	at = at.In(r.schedule.location)

	buf := new(bytes.Buffer)
	err := r.body.Execute(buf, reminderData{Date: at.Format(time.DateOnly), Weekday: at.Weekday().String()})
	if err != nil {
		return fmt.Errorf("failed to render reminder: %w", err)
	}

	err = r.sender.SendText(ctx, domain.OutboundMessage{
		ChatID:     r.chatID,
		Text:       buf.String(),
		Formatting: r.formatting,
	})
	if err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}

	return nil
}

// Start schedules the reminder on its own cron runner and returns immediately. The runner stops
// when ctx is cancelled; a job already running is allowed to finish.
func (r *Reminder) Start(ctx context.Context) *cron.Cron {
	logger := cronLogger{}
	c := cron.New(
		cron.WithLocation(r.schedule.location),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger)),
	)

	c.Schedule(r.schedule, cron.FuncJob(func() {
		now := time.Now()
		l := log.With().Int64("chatId", r.chatID).Time("at", now).Logger()

		if err := r.Fire(ctx, now); err != nil {
			if errors.Is(err, context.Canceled) {
				l.Debug().Msg("reminder cancelled")
				return
			}
			l.Error().Err(err).Msg("failed to fire reminder")
			return
		}

		l.Info().Time("next", r.NextFire(now)).Msg("reminder sent")
	}))

	log.Info().Time("next", r.NextFire(time.Now())).Int64("chatId", r.chatID).Msg("reminder scheduled")

	c.Start()

	go func() {
		<-ctx.Done()
		log.Debug().Msg("stopping reminder scheduler")
		<-c.Stop().Done()
	}()

	return c
}

// cronLogger routes cron's own diagnostics into zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}

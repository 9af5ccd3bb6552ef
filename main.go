package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"tehbot/internal/adapters/club"
	"tehbot/internal/adapters/config"
	"tehbot/internal/adapters/handler"
	"tehbot/internal/adapters/sender"
	"tehbot/internal/core/domain/workstation"
	"tehbot/internal/core/service"

	"github.com/go-telegram/bot"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Info().Msg("starting tehbot...")

	config.LoadDotEnv()

	log.Info().Msg("reading config...")
	v, err := config.NewViper(".")
	if err != nil {
		log.Fatal().Err(err).Msg("could not read config")
	}

	cfg, err := config.Load(v, os.Environ())
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	var logLevel zerolog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	workstations, err := workstation.New(cfg.Workstations)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid workstation table")
	}
	log.Info().Int("workstations", workstations.Len()).Msg("loaded workstation table")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	b, err := bot.New(cfg.BotToken, handler.BotOptions()...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed initializing telegram bot")
	}

	s := sender.NewTelegram(b)

	replies, err := service.NewReplies(cfg.Replies, cfg.BangPrefix)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid reply texts")
	}

	dispatcher := service.NewDispatcher(
		service.NewAuthorizer(cfg.AllowedChatID),
		workstations,
		club.New(cfg.Club),
		s,
		service.WithBangPrefix(cfg.BangPrefix),
		service.WithAdminChat(cfg.AdminChatID),
		service.WithReplies(replies),
	)

	commandHandler := handler.NewCommand(dispatcher, cfg.HandlerTimeout)
	commandHandler.Register(b)

	if cfg.Reminder.Enabled {
		reminder, err := service.NewReminder(cfg.Reminder, s)
		if err != nil {
			log.Fatal().Err(err).Msg("failed initializing reminder")
		}
		reminder.Start(ctx)
	}

	log.Info().Int64("chatId", cfg.AllowedChatID).Msg("bot listening")
	b.Start(ctx)
}

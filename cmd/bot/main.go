package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/dropfour/bot"
	"github.com/domino14/dropfour/config"
)

func main() {
	cfg := config.DefaultConfig()
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("bad-arguments")
	}
	log.Info().Interface("settings", cfg.SanitizedSettings()).Msg("loaded-config")

	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	nc, err := bot.Connect(ctx, cfg.GetString(config.ConfigNatsURL))
	if err != nil {
		log.Fatal().Err(err).Msg("nats-connect-failed")
	}
	defer nc.Close()

	b := bot.NewBot(&cfg)
	if err := bot.Main(ctx, nc, cfg.GetString(config.ConfigSolveSubject), b); err != nil {
		log.Err(err).Msg("bot-stopped")
	}
	log.Info().Msg("bot shutting down")
}

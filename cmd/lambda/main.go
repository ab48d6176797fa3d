package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/dropfour/bot"
	"github.com/domino14/dropfour/config"
)

var cfg *config.Config
var nc *nats.Conn

const HardTimeLimit = 180 * time.Second

func HandleRequest(ctx context.Context, evt bot.LambdaEvent) (string, error) {
	logger := log.With().
		Str("request-id", evt.RequestID).
		Logger()

	ctx, cancel := context.WithTimeout(ctx, HardTimeLimit)
	defer cancel()

	resp := bot.NewBot(cfg).Solve(ctx, evt.Request)
	data, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	logger.Info().Str("verdict", resp.Verdict).Int("best-move", resp.BestMove).
		Str("error", resp.Error).Msg("solve-finished")

	if evt.ReplyChannel != "" && nc != nil {
		logger.Info().Msg("sending-via-nats")
		err = retry.Do(
			func() error {
				// Only the acknowledgement matters.
				_, err := nc.Request(evt.ReplyChannel, data, 3*time.Second)
				return err
			},
			retry.Attempts(5),
			retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
				logger.Err(err).Uint("n", n).
					Msg("did-not-receive-ack-try-again")
				return retry.BackOffDelay(n, err, config)
			}),
		)
		if err != nil {
			logger.Err(err).Msg("reply-failed")
		}
	}
	logger.Info().Msg("exiting-fn")
	return string(data), nil
}

func main() {
	c := config.DefaultConfig()
	if err := c.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("bad-arguments")
	}
	cfg = &c
	log.Info().Interface("settings", cfg.SanitizedSettings()).Msg("loaded-config")
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	var err error
	nc, err = bot.Connect(context.Background(), cfg.GetString(config.ConfigNatsURL))
	if err != nil {
		log.Fatal().AnErr("natsConnectErr", err).Msg(":(")
	}

	lambda.Start(HandleRequest)
}

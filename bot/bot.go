// Package bot answers solve requests that arrive over NATS.
package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/dropfour/board"
	"github.com/domino14/dropfour/config"
	"github.com/domino14/dropfour/solver"
)

const connectAttempts = 5

var ErrMissingLayout = errors.New("request has no layout")

// Request asks for the verdict of a layout. Workers and Lookahead fall
// back to the configured values when left out.
type Request struct {
	Layout    string `json:"layout"`
	Mover     string `json:"mover"`
	Workers   int    `json:"workers,omitempty"`
	Lookahead *int   `json:"lookahead,omitempty"`
}

type Response struct {
	Verdict  string `json:"verdict,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Distance int    `json:"distance"`
	BestMove int    `json:"best_move"`
	Error    string `json:"error,omitempty"`
}

// LambdaEvent is a Request that also names where the answer goes.
type LambdaEvent struct {
	Request
	RequestID    string `json:"request_id"`
	ReplyChannel string `json:"reply_channel"`
}

type Bot struct {
	config *config.Config
}

func NewBot(cfg *config.Config) *Bot {
	return &Bot{config: cfg}
}

func errorResponse(message string, err error) Response {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %s", msg, err.Error())
	}
	return Response{BestMove: int(board.NoColumn), Error: msg}
}

// Solve runs one request to the end or until ctx is done.
func (bot *Bot) Solve(ctx context.Context, req Request) Response {
	if req.Layout == "" {
		return errorResponse("bad request", ErrMissingLayout)
	}
	b, err := board.Parse(req.Layout)
	if err != nil {
		return errorResponse("bad layout", err)
	}
	mover, err := board.PlayerFromString(req.Mover)
	if err != nil {
		return errorResponse("bad mover", err)
	}
	if mover != board.Black && mover != board.White {
		return errorResponse("bad mover", solver.ErrBadMover)
	}
	cfg := bot.solverConfig(req)
	log.Debug().Int("workers", cfg.Workers).Int("lookahead", cfg.Lookahead).Msg("solve-request-limits")
	s := solver.New(cfg)
	v, err := s.Solve(ctx, b, mover)
	if err != nil {
		return errorResponse("solve failed", err)
	}
	return Response{
		Verdict:  v.String(),
		Kind:     v.Kind.String(),
		Distance: v.Distance,
		BestMove: int(s.BestMove()),
	}
}

// solverConfig applies the request's worker count and lookahead, capped by
// max-workers and max-lookahead.
func (bot *Bot) solverConfig(req Request) solver.Config {
	cfg := bot.config.SolverConfig()
	maxWorkers := max(1, bot.config.GetInt(config.ConfigMaxWorkers))
	maxLookahead := max(0, bot.config.GetInt(config.ConfigMaxLookahead))
	if req.Workers > 0 {
		cfg.Workers = req.Workers
	}
	if req.Lookahead != nil {
		cfg.Lookahead = *req.Lookahead
	}
	cfg.Workers = min(cfg.Workers, maxWorkers)
	cfg.Lookahead = min(max(cfg.Lookahead, 0), maxLookahead)
	return cfg
}

// Handle decodes a request, solves it and encodes the response.
func (bot *Bot) Handle(ctx context.Context, data []byte) []byte {
	var req Request
	var resp Response
	if err := json.Unmarshal(data, &req); err != nil {
		resp = errorResponse("cannot decode request", err)
	} else {
		resp = bot.Solve(ctx, req)
	}
	out, err := json.Marshal(resp)
	if err != nil {
		// Should never happen, but the caller needs an answer.
		return []byte(`{"error":"cannot encode response"}`)
	}
	return out
}

// Connect dials NATS, backing off between failed attempts.
func Connect(ctx context.Context, url string) (*nats.Conn, error) {
	return retry.DoWithData(
		func() (*nats.Conn, error) {
			return nats.Connect(url, nats.Name("dropfour"))
		},
		retry.Context(ctx),
		retry.Attempts(connectAttempts),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			log.Err(err).Uint("n", n).Str("url", url).Msg("nats-connect-failed-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
}

// Main answers requests on subject until ctx is done. Requests are solved
// one at a time.
func Main(ctx context.Context, nc *nats.Conn, subject string, bot *Bot) error {
	sub, err := nc.Subscribe(subject, func(m *nats.Msg) {
		log.Info().Int("bytes", len(m.Data)).Str("subject", m.Subject).Msg("solve-request")
		if err := m.Respond(bot.Handle(ctx, m.Data)); err != nil {
			log.Err(err).Msg("respond-failed")
		}
	})
	if err != nil {
		return err
	}
	if err := nc.Flush(); err != nil {
		return err
	}
	if err := nc.LastError(); err != nil {
		return err
	}
	log.Info().Str("subject", subject).Msg("listening")

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return err
	}
	return nil
}

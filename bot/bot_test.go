package bot

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/dropfour/config"
)

const threeInARow = "------\nxx\nx\n\nooox\no\no\n\n------"

func testBot(t *testing.T) *Bot {
	cfg := config.DefaultConfig()
	if err := cfg.Load([]string{"--workers", "2"}); err != nil {
		t.Fatal(err)
	}
	return NewBot(&cfg)
}

func handle(t *testing.T, bot *Bot, req string) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(bot.Handle(context.Background(), []byte(req)), &resp); err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestHandleSolve(t *testing.T) {
	is := is.New(t)
	bot := testBot(t)
	req, err := json.Marshal(Request{Layout: threeInARow, Mover: "o"})
	is.NoErr(err)
	resp := handle(t, bot, string(req))
	is.Equal(resp.Error, "")
	is.Equal(resp.Verdict, "Won(0)")
	is.Equal(resp.Kind, "Won")
	is.Equal(resp.Distance, 0)
	is.Equal(resp.BestMove, 2)
}

func TestHandleLookaheadOverride(t *testing.T) {
	is := is.New(t)
	bot := testBot(t)
	zero := 0
	req, err := json.Marshal(Request{Layout: threeInARow, Mover: "x", Lookahead: &zero})
	is.NoErr(err)
	resp := handle(t, bot, string(req))
	is.Equal(resp.Error, "")
	is.Equal(resp.Kind, "Lost")
}

func TestHandleErrors(t *testing.T) {
	is := is.New(t)
	bot := testBot(t)
	cases := []struct {
		req    string
		prefix string
	}{
		{`{"layout":`, "cannot decode request"},
		{`{"mover":"x"}`, "bad request"},
		{`{"layout":"nonsense","mover":"x"}`, "bad layout"},
		{`{"layout":"------\n\n\n\n\n\n\n\n------","mover":"q"}`, "bad mover"},
		{`{"layout":"------\n\n\n\n\n\n\n\n------","mover":"n"}`, "bad mover"},
		{`{"layout":"x","mover":""}`, "bad layout"},
	}
	for _, c := range cases {
		resp := handle(t, bot, c.req)
		is.True(strings.HasPrefix(resp.Error, c.prefix))
		is.Equal(resp.BestMove, -1)
	}
}

func TestOversizeRequestIsCapped(t *testing.T) {
	is := is.New(t)
	bot := testBot(t)
	resp := handle(t, bot, `{"layout":"`+strings.ReplaceAll(threeInARow, "\n", `\n`)+
		`","mover":"o","workers":72057594037927936,"lookahead":1000000}`)
	is.Equal(resp.Error, "")
	is.Equal(resp.Verdict, "Won(0)")

	huge, deep := 1<<40, 1<<30
	cfg := bot.solverConfig(Request{Workers: huge, Lookahead: &deep})
	is.Equal(cfg.Workers, bot.config.GetInt(config.ConfigMaxWorkers))
	is.Equal(cfg.Lookahead, bot.config.GetInt(config.ConfigMaxLookahead))

	negative := -3
	cfg = bot.solverConfig(Request{Lookahead: &negative})
	is.Equal(cfg.Lookahead, 0)
}

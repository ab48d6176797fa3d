package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/dropfour/bot"
	"github.com/domino14/dropfour/config"
)

func TestHandleRequest(t *testing.T) {
	is := is.New(t)
	evt := bot.LambdaEvent{
		Request: bot.Request{
			Layout: "------\nxx\nx\n\nooox\no\no\n\n------",
			Mover:  "o",
		},
		RequestID: "foo",
	}
	dc := config.DefaultConfig()
	is.NoErr(dc.Load(nil))
	cfg = &dc
	ret, err := HandleRequest(context.Background(), evt)
	is.NoErr(err)

	var resp bot.Response
	is.NoErr(json.Unmarshal([]byte(ret), &resp))
	is.Equal(resp.Verdict, "Won(0)")
	is.Equal(resp.BestMove, 2)
}

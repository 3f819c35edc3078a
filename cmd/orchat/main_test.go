package main

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/LubyRuffy/orchat/backend"
	"github.com/LubyRuffy/orchat/chat"
	"github.com/LubyRuffy/orchat/openrouterapi"
)

// fixedCompleter 固定返回一段内容；streaming 为 true 时先按片段回调 onDelta。
type fixedCompleter struct {
	reply     string
	streaming bool
}

func (f *fixedCompleter) Complete(ctx context.Context, messages []openrouterapi.Message, tools []openrouterapi.Tool, onDelta func(string)) (*backend.Result, error) {
	if f.streaming && onDelta != nil {
		onDelta(f.reply[:1])
		onDelta(f.reply[1:])
	}
	return &backend.Result{
		Message:      openrouterapi.AssistantMessage(f.reply, nil),
		FinishReason: "stop",
	}, nil
}

func newTurnFixture(t *testing.T, completer chat.Completer, out io.Writer, streamedLive *bool) *chat.Conversation {
	t.Helper()
	conv, err := chat.NewConversation(chat.Config{
		Completer: completer,
		Registry:  chat.NewRegistry(),
		OnDelta: func(delta string) {
			*streamedLive = true
			io.WriteString(out, delta) //nolint:errcheck
		},
	})
	require.NoError(t, err)
	return conv
}

func TestRunTurn_PrintsReplyWhenNothingStreamedLive(t *testing.T) {
	// 非流式回退路径不触发 onDelta，完整回答必须由 runTurn 补印
	var out bytes.Buffer
	var streamedLive bool
	conv := newTurnFixture(t, &fixedCompleter{reply: "fallback answer"}, &out, &streamedLive)

	runTurn(&out, conv, logrus.New(), "hi", &streamedLive)
	require.Equal(t, "fallback answer\n", out.String())
}

func TestRunTurn_LiveStreamOnlyAppendsNewline(t *testing.T) {
	var out bytes.Buffer
	var streamedLive bool
	conv := newTurnFixture(t, &fixedCompleter{reply: "hi", streaming: true}, &out, &streamedLive)

	runTurn(&out, conv, logrus.New(), "q", &streamedLive)
	// 片段已经边到边打，不得再重复整段回答
	require.Equal(t, "hi\n", out.String())
}

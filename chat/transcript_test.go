package chat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LubyRuffy/orchat/openrouterapi"
)

func TestTranscript_SystemMessageFirst(t *testing.T) {
	tr := NewTranscript("你是助手")
	tr.AddUser("hi")

	msgs := tr.Messages()
	require.Len(t, msgs, 2)
	require.Equal(t, "system", msgs[0].Role)
	require.Equal(t, "你是助手", msgs[0].Content)
	require.Equal(t, "user", msgs[1].Role)
}

func TestTranscript_NoSystemPrompt(t *testing.T) {
	tr := NewTranscript("")
	require.Equal(t, 0, tr.Len())

	_, ok := tr.PopLast()
	require.False(t, ok)
}

func TestTranscript_MessagesReturnsCopy(t *testing.T) {
	tr := NewTranscript("sys")
	tr.AddUser("hi")

	msgs := tr.Messages()
	msgs[0].Content = "polluted"
	msgs[1].Role = "hacker"

	fresh := tr.Messages()
	require.Equal(t, "sys", fresh[0].Content)
	require.Equal(t, "user", fresh[1].Role)
}

func TestTranscript_PopLastStopsAtSystem(t *testing.T) {
	tr := NewTranscript("sys")
	tr.AddUser("q1")
	tr.AddAssistant("a1", nil)

	last, ok := tr.PopLast()
	require.True(t, ok)
	require.Equal(t, "assistant", last.Role)

	last, ok = tr.PopLast()
	require.True(t, ok)
	require.Equal(t, "user", last.Role)

	// system 消息不可弹出
	_, ok = tr.PopLast()
	require.False(t, ok)
	require.Equal(t, 1, tr.Len())
}

func TestTranscript_ToolResultOrder(t *testing.T) {
	tr := NewTranscript("sys")
	tr.AddUser("q")
	call1 := openrouterapi.ToolCall{Index: 0, ID: "c1", Type: "function"}
	call1.Function.Name = "first"
	call2 := openrouterapi.ToolCall{Index: 1, ID: "c2", Type: "function"}
	call2.Function.Name = "second"
	tr.AddAssistant(nil, []openrouterapi.ToolCall{call1, call2})
	tr.AddToolResult("first", "c1", "r1")
	tr.AddToolResult("second", "c2", "r2")

	msgs := tr.Messages()
	require.Len(t, msgs, 4)
	require.Equal(t, "tool", msgs[2].Role)
	require.Equal(t, "c1", msgs[2].ToolCallID)
	require.Equal(t, "tool", msgs[3].Role)
	require.Equal(t, "c2", msgs[3].ToolCallID)
}

func TestTranscript_TruncateTo(t *testing.T) {
	tr := NewTranscript("sys")
	mark := tr.Len()
	tr.AddUser("q")
	tr.AddAssistant("partial", nil)
	tr.AddToolResult("x", "c1", "r")

	tr.truncateTo(mark)
	require.Equal(t, 1, tr.Len())
	require.Equal(t, "system", tr.Messages()[0].Role)

	// 回滚不会越过 system 消息
	tr.truncateTo(0)
	require.Equal(t, 1, tr.Len())
}

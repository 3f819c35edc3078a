package chathttp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LubyRuffy/orchat/backend"
	"github.com/LubyRuffy/orchat/chat"
	"github.com/LubyRuffy/orchat/chathttp"
	"github.com/LubyRuffy/orchat/openrouterapi"
)

// fakeCompleter 对任何输入都回同一段内容，可选先回一轮工具调用。
type fakeCompleter struct {
	reply     string
	toolFirst bool
	err       error
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []openrouterapi.Message, tools []openrouterapi.Tool, onDelta func(string)) (*backend.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.toolFirst && messages[len(messages)-1].Role != "tool" {
		call := openrouterapi.ToolCall{Index: 0, ID: "c1", Type: "function"}
		call.Function.Name = "echo"
		call.Function.Arguments = `{"text":"x"}`
		return &backend.Result{
			Message:      openrouterapi.AssistantMessage(nil, []openrouterapi.ToolCall{call}),
			FinishReason: "tool_calls",
		}, nil
	}
	if onDelta != nil {
		for _, part := range []string{f.reply[:1], f.reply[1:]} {
			onDelta(part)
		}
	}
	return &backend.Result{
		Message:      openrouterapi.AssistantMessage(f.reply, nil),
		FinishReason: "stop",
	}, nil
}

type echoProvider struct{}

func (p *echoProvider) Definitions() []openrouterapi.Tool {
	tool := openrouterapi.Tool{Type: "function"}
	tool.Function.Name = "echo"
	return []openrouterapi.Tool{tool}
}

func (p *echoProvider) Execute(ctx context.Context, name string, arguments string) (string, error) {
	if name != "echo" {
		return "", chat.ErrUnsupportedTool
	}
	return arguments, nil
}

func newHandlers(t *testing.T, completer chat.Completer) (http.HandlerFunc, http.HandlerFunc) {
	t.Helper()
	chatHandler, streamHandler, err := chathttp.Handlers(chathttp.Config{
		Completer:    completer,
		Registry:     chat.NewRegistry(&echoProvider{}),
		SystemPrompt: "sys",
	})
	require.NoError(t, err)
	return chatHandler, streamHandler
}

func postJSON(handler http.HandlerFunc, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestChat_OK(t *testing.T) {
	chatHandler, _ := newHandlers(t, &fakeCompleter{reply: "你好"})

	w := postJSON(chatHandler, "/api/chat", map[string]string{"prompt": "hi"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		SessionID string `json:"session_id"`
		Reply     string `json:"reply"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "你好", resp.Reply)
	require.True(t, strings.HasPrefix(resp.SessionID, "sess-"))
}

func TestChat_SessionContinuity(t *testing.T) {
	chatHandler, _ := newHandlers(t, &fakeCompleter{reply: "ok"})

	w := postJSON(chatHandler, "/api/chat", map[string]string{"prompt": "first"})
	require.Equal(t, http.StatusOK, w.Code)
	var first struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

	w = postJSON(chatHandler, "/api/chat", map[string]string{
		"prompt":     "second",
		"session_id": first.SessionID,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var second struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	require.Equal(t, first.SessionID, second.SessionID)
}

func TestChat_UnknownSession(t *testing.T) {
	chatHandler, _ := newHandlers(t, &fakeCompleter{reply: "ok"})

	w := postJSON(chatHandler, "/api/chat", map[string]string{
		"prompt":     "hi",
		"session_id": "sess-nonexistent",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestChat_MissingPrompt(t *testing.T) {
	chatHandler, _ := newHandlers(t, &fakeCompleter{reply: "ok"})

	w := postJSON(chatHandler, "/api/chat", map[string]string{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "invalid_request_error", resp.Error.Type)
}

func TestChat_UpstreamErrorMapsToBadGateway(t *testing.T) {
	chatHandler, _ := newHandlers(t, &fakeCompleter{
		err: &backend.HTTPStatusError{StatusCode: 500, Status: "500 Internal Server Error", Body: "oops"},
	})

	w := postJSON(chatHandler, "/api/chat", map[string]string{"prompt": "hi"})
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Contains(t, w.Body.String(), "oops")
}

func TestChat_ToolRoundTrip(t *testing.T) {
	chatHandler, _ := newHandlers(t, &fakeCompleter{reply: "done", toolFirst: true})

	w := postJSON(chatHandler, "/api/chat", map[string]string{"prompt": "use the tool"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "done")
}

func TestChatStream_EventsAndDone(t *testing.T) {
	_, streamHandler := newHandlers(t, &fakeCompleter{reply: "hi", toolFirst: true})

	w := postJSON(streamHandler, "/api/chat/stream", map[string]string{"prompt": "go"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))

	body := w.Body.String()
	require.Contains(t, body, `"type":"tool_result"`)
	require.Contains(t, body, `"type":"delta"`)
	require.Contains(t, body, `"type":"done"`)
	require.Contains(t, body, `"reply":"hi"`)
	require.True(t, strings.HasSuffix(strings.TrimSpace(body), "data: [DONE]"))
}

func TestChatStream_ErrorEvent(t *testing.T) {
	_, streamHandler := newHandlers(t, &fakeCompleter{
		err: fmt.Errorf("backend unavailable"),
	})

	w := postJSON(streamHandler, "/api/chat/stream", map[string]string{"prompt": "go"})
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	require.Contains(t, body, `"type":"error"`)
	require.Contains(t, body, "backend unavailable")
	require.Contains(t, body, "data: [DONE]")
}

func TestHandlers_Validation(t *testing.T) {
	_, _, err := chathttp.Handlers(chathttp.Config{Registry: chat.NewRegistry()})
	require.Error(t, err)
	_, _, err = chathttp.Handlers(chathttp.Config{Completer: &fakeCompleter{}})
	require.Error(t, err)
}

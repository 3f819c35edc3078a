package chathttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/LubyRuffy/orchat/backend"
	"github.com/LubyRuffy/orchat/chat"
)

func Handlers(cfg Config) (chatHandler http.HandlerFunc, streamHandler http.HandlerFunc, err error) {
	resolved, err := resolveConfig(cfg)
	if err != nil {
		return nil, nil, err
	}

	h := &chatAPIHandler{
		logger: resolved.Logger,
		store: newSessionStore(func(emit func(streamEvent)) (*chat.Conversation, error) {
			return chat.NewConversation(chat.Config{
				Completer:     resolved.Completer,
				Registry:      resolved.Registry,
				SystemPrompt:  resolved.SystemPrompt,
				MaxToolRounds: resolved.MaxToolRounds,
				OnDelta: func(delta string) {
					emit(streamEvent{Type: "delta", Delta: delta})
				},
				OnToolResult: func(result chat.ToolResult) {
					emit(streamEvent{
						Type:       "tool_result",
						ToolName:   result.Name,
						ToolCallID: result.ToolCallID,
						ToolResult: result.Content,
					})
				},
			})
		}),
	}
	return h.handleChat, h.handleChatStream, nil
}

type resolvedConfig struct {
	BasePath      string
	Completer     chat.Completer
	Registry      *chat.Registry
	SystemPrompt  string
	MaxToolRounds int
	Logger        *logrus.Logger
}

func resolveConfig(cfg Config) (resolvedConfig, error) {
	if cfg.Completer == nil {
		return resolvedConfig{}, fmt.Errorf("Completer is required")
	}
	if cfg.Registry == nil {
		return resolvedConfig{}, fmt.Errorf("Registry is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return resolvedConfig{
		BasePath:      normalizeBasePath(cfg.BasePath),
		Completer:     cfg.Completer,
		Registry:      cfg.Registry,
		SystemPrompt:  cfg.SystemPrompt,
		MaxToolRounds: cfg.MaxToolRounds,
		Logger:        logger,
	}, nil
}

type chatAPIHandler struct {
	logger *logrus.Logger
	store  *sessionStore
}

// parseChatRequest 解析并校验请求体，失败时已写出错误响应。
func (h *chatAPIHandler) parseChatRequest(w http.ResponseWriter, r *http.Request) (chatRequest, bool) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method not allowed")
		return chatRequest{}, false
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return chatRequest{}, false
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeAPIError(w, http.StatusBadRequest, "prompt is required")
		return chatRequest{}, false
	}
	return req, true
}

func (h *chatAPIHandler) handleChat(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseChatRequest(w, r)
	if !ok {
		return
	}

	sessionID, sess, found, err := h.store.resolve(req.SessionID)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		writeAPIError(w, http.StatusNotFound, fmt.Sprintf("unknown session: %s", req.SessionID))
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.sink = nil

	reply, err := sess.conv.Ask(r.Context(), req.Prompt)
	if err != nil {
		h.logger.WithError(err).WithField("session_id", sessionID).Warn("chat turn failed")
		writeAPIError(w, statusFromError(err), err.Error())
		return
	}

	writeJSON(w, chatResponse{SessionID: sessionID, Reply: reply})
}

func (h *chatAPIHandler) handleChatStream(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseChatRequest(w, r)
	if !ok {
		return
	}

	sessionID, sess, found, err := h.store.resolve(req.SessionID)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		writeAPIError(w, http.StatusNotFound, fmt.Sprintf("unknown session: %s", req.SessionID))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeAPIError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	writeEvent := func(event streamEvent) {
		data, _ := json.Marshal(event)
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.sink = writeEvent
	defer func() { sess.sink = nil }()

	reply, err := sess.conv.Ask(r.Context(), req.Prompt)
	if err != nil {
		// 流已经开始，错误只能作为事件送出。
		h.logger.WithError(err).WithField("session_id", sessionID).Warn("chat stream turn failed")
		writeEvent(streamEvent{Type: "error", Reply: err.Error()})
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
		return
	}

	writeEvent(streamEvent{Type: "done", SessionID: sessionID, Reply: reply})
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// statusFromError 把后端错误归到合适的 HTTP 状态码。
func statusFromError(err error) int {
	var netErr *backend.NetworkError
	if errors.As(err, &netErr) {
		return http.StatusBadGateway
	}
	var statusErr *backend.HTTPStatusError
	if errors.As(err, &statusErr) {
		return http.StatusBadGateway
	}
	var protoErr *backend.ProtocolError
	if errors.As(err, &protoErr) {
		return http.StatusBadGateway
	}
	var notFound *chat.ToolNotFoundError
	if errors.As(err, &notFound) {
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

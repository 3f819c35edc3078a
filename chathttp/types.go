package chathttp

import (
	"github.com/sirupsen/logrus"

	"github.com/LubyRuffy/orchat/chat"
)

type Config struct {
	// BasePath 仅用于 Gin 注册路由时拼接路径，默认 "/api"。
	BasePath string
	// Completer 必填：补全驱动，通常是 *backend.Client。
	Completer chat.Completer
	// Registry 必填：工具注册表，所有会话共享。
	Registry *chat.Registry
	// SystemPrompt 可选，新建会话时写入的 system 消息。
	SystemPrompt string
	// MaxToolRounds 可选，单回合工具轮数上限；0 表示默认值。
	MaxToolRounds int
	// Logger 可选，nil 时使用 logrus.StandardLogger()。
	Logger *logrus.Logger
}

// chatRequest 是 chat 与 chat/stream 端点共用的请求体。
// session_id 为空时新建会话，否则续接已有会话。
type chatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Prompt    string `json:"prompt"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

// streamEvent 是 chat/stream 端点的 SSE 事件体。
// Type 取值 delta/tool_result/done/error。
type streamEvent struct {
	Type       string `json:"type"`
	SessionID  string `json:"session_id,omitempty"`
	Delta      string `json:"delta,omitempty"`
	ToolName   string `json:"tool_name,omitempty"`
	ToolCallID string `json:"tool_call_id,omitempty"`
	ToolResult string `json:"tool_result,omitempty"`
	Reply      string `json:"reply,omitempty"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

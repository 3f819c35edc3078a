package openrouterapi

import (
	"github.com/google/uuid"
)

// ==================== OpenRouter 线上数据结构 ====================

// Message 对话消息。Content 在大多数情况下是 string，
// 但部分非纯文本模型会返回结构化内容，因此保留 any。
type Message struct {
	Role       string     `json:"role"`
	Content    any        `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"` // role=tool 时引用的调用 ID
	Name       string     `json:"name,omitempty"`         // role=tool 时的工具名
}

// ToolCall 模型发起的工具调用。流式传输时同一个 Index 的分片会多次出现，
// 由 backend 包负责聚合；聚合完成后 Arguments 是完整的 JSON 字符串。
type ToolCall struct {
	Index    int    `json:"index"`
	ID       string `json:"id,omitempty"`
	Type     string `json:"type,omitempty"`
	Function struct {
		Name      string `json:"name,omitempty"`
		Arguments string `json:"arguments,omitempty"`
	} `json:"function"`
}

// Tool 工具定义，OpenAI function tools 格式。
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction 工具函数定义。
type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"` // JSON Schema
}

// ChatRequest 补全请求体。Tools 即使为空也要序列化成空数组，
// 空数组向服务端表示"当前没有可用工具"。
type ChatRequest struct {
	Model      string    `json:"model"`
	Messages   []Message `json:"messages"`
	Tools      []Tool    `json:"tools"`
	ToolChoice string    `json:"tool_choice"`
	Stream     bool      `json:"stream"`
}

// Usage token 使用统计，按原样透传服务端数值。
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Delta 流式响应的增量片段。Content 使用指针以区分"缺省"与空字符串。
type Delta struct {
	Role      string     `json:"role,omitempty"`
	Content   *string    `json:"content,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ChunkChoice 流式响应选项。
type ChunkChoice struct {
	Index        int     `json:"index"`
	Delta        Delta   `json:"delta"`
	FinishReason *string `json:"finish_reason"`
}

// ChatChunk 流式响应块（一条 data: 行的 JSON 负载）。
type ChatChunk struct {
	ID      string        `json:"id,omitempty"`
	Object  string        `json:"object,omitempty"`
	Model   string        `json:"model,omitempty"`
	Choices []ChunkChoice `json:"choices"`
	Usage   *Usage        `json:"usage,omitempty"`
}

// Choice 非流式响应选项。
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason *string `json:"finish_reason"`
}

// ChatCompletion 非流式完整响应，也是流式解码后归一化出的形态。
type ChatCompletion struct {
	ID      string   `json:"id,omitempty"`
	Object  string   `json:"object,omitempty"`
	Model   string   `json:"model,omitempty"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// ==================== 辅助函数 ====================

// NewChatID 生成一次补全的本地 ID。
func NewChatID() string {
	return "chat-" + uuid.New().String()[:8]
}

// NewSessionID 生成会话 ID。
func NewSessionID() string {
	return "sess-" + uuid.New().String()[:8]
}

// SystemMessage 构造 system 消息。
func SystemMessage(content string) Message {
	return Message{Role: "system", Content: content}
}

// UserMessage 构造 user 消息。
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// AssistantMessage 构造 assistant 消息。
func AssistantMessage(content any, toolCalls []ToolCall) Message {
	return Message{Role: "assistant", Content: content, ToolCalls: toolCalls}
}

// ToolMessage 构造 tool 结果消息，引用产生该调用的 tool_call_id。
func ToolMessage(name, toolCallID, content string) Message {
	return Message{Role: "tool", Name: name, ToolCallID: toolCallID, Content: content}
}

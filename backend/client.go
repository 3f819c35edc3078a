package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/LubyRuffy/orchat/openrouterapi"
)

// Config 是补全驱动的配置。
type Config struct {
	// BaseURL OpenRouter chat completions 端点地址。
	BaseURL string
	// Model 发往服务端的模型 ID。
	Model string
	// APIKey 用于 Authorization: Bearer <key>。
	APIKey string
	// Metadata 可选的附加请求头（如 HTTP-Referer / X-Title）。
	Metadata map[string]string
	// HTTPClient 可选，nil 时内部使用 &http.Client{}。
	HTTPClient *http.Client
	// Timeout 整个请求 + 流式读取的上限；调用方 ctx 已带 deadline 时不再叠加。
	Timeout time.Duration
}

// Client 是基于 OpenRouter chat completions SSE 接口的补全驱动。
// 每次 Complete 发出一个 stream=true 的请求，由 decodeChatStream 归一化结果。
type Client struct {
	config Config
}

func NewClient(config Config) (*Client, error) {
	if strings.TrimSpace(config.BaseURL) == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if strings.TrimSpace(config.Model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{}
	}
	return &Client{config: config}, nil
}

// Model 返回驱动配置的模型 ID。
func (c *Client) Model() string { return c.config.Model }

// Complete 发送一次补全请求并返回归一化结果。
//
// 请求体形态固定：model + 完整消息列表 + 工具定义列表（空列表表示没有工具）
// + tool_choice（有工具时 auto，否则 none）+ stream=true。
// 失败分类：传输层失败返回 *NetworkError；状态码 >= 400 返回 *HTTPStatusError
// （携带 <=400 字符的响应体片段，不尝试解析）；流为空且整体也不是合法 JSON、
// 或解析结果没有任何 choice 时返回 *ProtocolError。
func (c *Client) Complete(ctx context.Context, messages []openrouterapi.Message, tools []openrouterapi.Tool, onDelta func(string)) (*Result, error) {
	if tools == nil {
		tools = []openrouterapi.Tool{}
	}
	toolChoice := "none"
	if len(tools) > 0 {
		toolChoice = "auto"
	}

	payload := openrouterapi.ChatRequest{
		Model:      c.config.Model,
		Messages:   messages,
		Tools:      tools,
		ToolChoice: toolChoice,
		Stream:     true,
	}

	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode completion request: %w", err)
	}

	if c.config.Timeout > 0 {
		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
			defer cancel()
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to build completion request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	for key, value := range c.config.Metadata {
		if strings.TrimSpace(value) == "" {
			continue
		}
		req.Header.Set(key, value)
	}

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return nil, &HTTPStatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       truncateBody(string(body)),
		}
	}

	// 响应体同时旁路进缓冲区：当流里从未出现可解析的 SSE 负载时，
	// 用累计的完整响应体做非流式 JSON 回退解析。
	var buffered bytes.Buffer
	result, err := decodeChatStream(ctx, io.TeeReader(resp.Body, &buffered), onDelta)
	if err != nil {
		if !errors.Is(err, errEmptyStream) {
			return nil, err
		}
		io.Copy(&buffered, io.LimitReader(resp.Body, 8<<20)) //nolint:errcheck
		result, err = decodeWholeBody(buffered.Bytes())
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// decodeWholeBody 把完整响应体按非流式 completion 响应解析（部分服务端不回 SSE）。
func decodeWholeBody(body []byte) (*Result, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errEmptyStream
	}
	var completion openrouterapi.ChatCompletion
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, &ProtocolError{
			Message: "non-JSON completion response",
			Snippet: truncateBody(string(body)),
		}
	}
	if len(completion.Choices) == 0 {
		return nil, &ProtocolError{
			Message: "completion response did not include any choices",
			Snippet: truncateBody(string(body)),
		}
	}

	choice := completion.Choices[0]
	message := choice.Message
	if message.Role == "" {
		message.Role = "assistant"
	}
	finishReason := ""
	if choice.FinishReason != nil {
		finishReason = *choice.FinishReason
	}
	if finishReason == "" {
		if len(message.ToolCalls) > 0 {
			finishReason = "tool_calls"
		} else {
			finishReason = "stop"
		}
	}

	return &Result{
		Message:      message,
		FinishReason: finishReason,
		Usage:        completion.Usage,
	}, nil
}

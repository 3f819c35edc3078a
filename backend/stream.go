package backend

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/LubyRuffy/orchat/openrouterapi"
)

// Result 是一次补全调用归一化后的结果，由驱动层产出、对话循环立即消费。
type Result struct {
	Message      openrouterapi.Message
	FinishReason string
	Usage        *openrouterapi.Usage
}

// toolCallBuilder 聚合同一个 index 上分片到达的 tool_call 信息：
// id 取首个非空值；name 每次被非空新值覆盖（服务端不会重发完整 name）；
// arguments 严格按到达顺序拼接，绝不覆盖。
type toolCallBuilder struct {
	index     int
	id        string
	callType  string
	name      string
	arguments strings.Builder
}

func (b *toolCallBuilder) merge(fragment openrouterapi.ToolCall) {
	if b.id == "" && fragment.ID != "" {
		b.id = fragment.ID
	}
	if b.callType == "" && fragment.Type != "" {
		b.callType = fragment.Type
	}
	if fragment.Function.Name != "" {
		b.name = fragment.Function.Name
	}
	if fragment.Function.Arguments != "" {
		b.arguments.WriteString(fragment.Function.Arguments)
	}
}

func (b *toolCallBuilder) build() openrouterapi.ToolCall {
	call := openrouterapi.ToolCall{
		Index: b.index,
		ID:    b.id,
		Type:  b.callType,
	}
	if call.Type == "" {
		call.Type = "function"
	}
	call.Function.Name = b.name
	call.Function.Arguments = b.arguments.String()
	return call
}

// decodeChatStream 逐行消费 SSE 响应体并归一化出一个 Result。
//
// 规则与服务端流式协议对齐：
//   - 空行与非 data: 前缀行直接跳过
//   - 负载 [DONE] 正常结束流
//   - 单行 JSON 解析失败静默跳过（容忍 keep-alive 噪声）
//   - 整个响应体从未解析出任何负载时返回 errEmptyStream，由上层回退整体 JSON
//
// onDelta 每收到一个 content 片段回调一次，仅用于实时展示，不影响聚合结果。
func decodeChatStream(ctx context.Context, body io.Reader, onDelta func(string)) (*Result, error) {
	reader := bufio.NewReader(body)

	var contentParts strings.Builder
	builders := make(map[int]*toolCallBuilder)
	role := ""
	finishReason := ""
	var usage *openrouterapi.Usage
	sawPayload := false

	handlePayload := func(payload string) {
		var chunk openrouterapi.ChatChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return
		}
		sawPayload = true

		if usage == nil && chunk.Usage != nil {
			captured := *chunk.Usage
			usage = &captured
		}
		if len(chunk.Choices) == 0 {
			return
		}

		choice := chunk.Choices[0]
		if choice.FinishReason != nil && *choice.FinishReason != "" {
			finishReason = *choice.FinishReason
		}
		if role == "" && choice.Delta.Role != "" {
			role = choice.Delta.Role
		}
		if choice.Delta.Content != nil {
			contentParts.WriteString(*choice.Delta.Content)
			if onDelta != nil && *choice.Delta.Content != "" {
				onDelta(*choice.Delta.Content)
			}
		}
		for _, fragment := range choice.Delta.ToolCalls {
			builder, ok := builders[fragment.Index]
			if !ok {
				builder = &toolCallBuilder{index: fragment.Index}
				builders[fragment.Index] = builder
			}
			builder.merge(fragment)
		}
	}

loop:
	for {
		if ctx.Err() != nil {
			return nil, &NetworkError{Err: ctx.Err()}
		}

		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line != "" && strings.HasPrefix(line, "data:") {
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			switch payload {
			case "":
			case "[DONE]":
				break loop
			default:
				handlePayload(payload)
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &NetworkError{Err: err}
		}
	}

	if !sawPayload {
		return nil, errEmptyStream
	}

	if role == "" {
		role = "assistant"
	}

	indexes := make([]int, 0, len(builders))
	for index := range builders {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)

	toolCalls := make([]openrouterapi.ToolCall, 0, len(builders))
	for _, index := range indexes {
		toolCalls = append(toolCalls, builders[index].build())
	}

	if finishReason == "" {
		if len(toolCalls) > 0 {
			finishReason = "tool_calls"
		} else {
			finishReason = "stop"
		}
	}

	message := openrouterapi.Message{
		Role:    role,
		Content: contentParts.String(),
	}
	if len(toolCalls) > 0 {
		message.ToolCalls = toolCalls
	}

	return &Result{
		Message:      message,
		FinishReason: finishReason,
		Usage:        usage,
	}, nil
}

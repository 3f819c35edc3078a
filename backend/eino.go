package backend

import (
	"context"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/LubyRuffy/orchat/openrouterapi"
)

// ChatModel 是基于 OpenRouter 补全驱动的 ToolCallingChatModel 实现，
// 方便把本引擎接入 Eino/ADK 编排。
type ChatModel struct {
	client        *Client
	tools         []*schema.ToolInfo
	functionTools []openrouterapi.Tool
}

func NewChatModel(config Config) (*ChatModel, error) {
	client, err := NewClient(config)
	if err != nil {
		return nil, err
	}
	return &ChatModel{client: client}, nil
}

func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, _ ...einoModel.Option) (*schema.Message, error) {
	result, err := m.client.Complete(ctx, messagesFromSchema(input), m.requestTools(), nil)
	if err != nil {
		return nil, err
	}
	return schemaFromResult(result), nil
}

func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, _ ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	sr, sw := schema.Pipe[*schema.Message](64)
	go func() {
		defer sw.Close()
		streamed := false
		result, err := m.client.Complete(ctx, messagesFromSchema(input), m.requestTools(), func(delta string) {
			streamed = true
			sw.Send(&schema.Message{Role: schema.Assistant, Content: delta}, nil)
		})
		if err != nil {
			sw.Send(nil, err)
			return
		}
		final := schemaFromResult(result)
		if streamed {
			// 全文已经按增量帧送出，收尾帧只补 tool_calls，内容置空防止重复
			final.Content = ""
		}
		if final.Content != "" || len(final.ToolCalls) > 0 {
			sw.Send(final, nil)
		}
	}()
	return sr, nil
}

var _ einoModel.ToolCallingChatModel = (*ChatModel)(nil)

func (m *ChatModel) WithTools(tools []*schema.ToolInfo) (einoModel.ToolCallingChatModel, error) {
	cloned := *m
	cloned.tools = tools
	return &cloned, nil
}

// WithFunctionTools 返回携带 OpenRouter 工具定义的副本。
// Eino 的 ToolInfo 仅保留名称与描述；参数 schema 通过本方法以线上格式注入。
func (m *ChatModel) WithFunctionTools(tools []openrouterapi.Tool) *ChatModel {
	cloned := *m
	cloned.functionTools = tools
	return &cloned
}

func (m *ChatModel) requestTools() []openrouterapi.Tool {
	if len(m.functionTools) > 0 {
		return m.functionTools
	}
	if len(m.tools) == 0 {
		return nil
	}
	out := make([]openrouterapi.Tool, 0, len(m.tools))
	for _, info := range m.tools {
		if info == nil || info.Name == "" {
			continue
		}
		out = append(out, openrouterapi.Tool{
			Type: "function",
			Function: openrouterapi.ToolFunction{
				Name:        info.Name,
				Description: info.Desc,
			},
		})
	}
	return out
}

func messagesFromSchema(input []*schema.Message) []openrouterapi.Message {
	out := make([]openrouterapi.Message, 0, len(input))
	for _, msg := range input {
		if msg == nil {
			continue
		}
		converted := openrouterapi.Message{
			Role:       string(msg.Role),
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
		}
		if len(msg.ToolCalls) > 0 {
			calls := make([]openrouterapi.ToolCall, 0, len(msg.ToolCalls))
			for i, tc := range msg.ToolCalls {
				call := openrouterapi.ToolCall{
					Index: i,
					ID:    tc.ID,
					Type:  tc.Type,
				}
				if tc.Index != nil {
					call.Index = *tc.Index
				}
				call.Function.Name = tc.Function.Name
				call.Function.Arguments = tc.Function.Arguments
				calls = append(calls, call)
			}
			converted.ToolCalls = calls
		}
		out = append(out, converted)
	}
	return out
}

func schemaFromResult(result *Result) *schema.Message {
	var toolCalls []schema.ToolCall
	for _, call := range result.Message.ToolCalls {
		index := call.Index
		toolCalls = append(toolCalls, schema.ToolCall{
			Index: &index,
			ID:    call.ID,
			Type:  call.Type,
			Function: schema.FunctionCall{
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			},
		})
	}
	content, _ := result.Message.Content.(string)
	return schema.AssistantMessage(content, toolCalls)
}

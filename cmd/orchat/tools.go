package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LubyRuffy/orchat/chat"
	"github.com/LubyRuffy/orchat/openrouterapi"
)

// localTools 是内置的演示工具：当前时间与回显。
type localTools struct{}

func (t *localTools) Definitions() []openrouterapi.Tool {
	return []openrouterapi.Tool{
		{
			Type: "function",
			Function: openrouterapi.ToolFunction{
				Name:        "current_time",
				Description: "返回当前本地时间，RFC3339 格式",
				Parameters: map[string]any{
					"type":       "object",
					"properties": map[string]any{},
				},
			},
		},
		{
			Type: "function",
			Function: openrouterapi.ToolFunction{
				Name:        "echo",
				Description: "原样返回 text 参数，用于联通性测试",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"text": map[string]any{"type": "string"},
					},
					"required": []string{"text"},
				},
			},
		},
	}
}

func (t *localTools) Execute(ctx context.Context, name string, arguments string) (string, error) {
	switch name {
	case "current_time":
		return time.Now().Format(time.RFC3339), nil
	case "echo":
		var args struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return "", fmt.Errorf("invalid echo arguments: %w", err)
		}
		return args.Text, nil
	default:
		return "", chat.ErrUnsupportedTool
	}
}

package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/LubyRuffy/orchat/backend"
	"github.com/LubyRuffy/orchat/openrouterapi"
)

// DefaultMaxToolRounds 是单个回合允许的工具轮数上限。
// 协议本身对轮数没有约定，上限用来阻断模型无休止请求工具的回合。
const DefaultMaxToolRounds = 16

// ErrToolRoundLimit 表示单个回合内工具轮数超过上限，回合被中止。
var ErrToolRoundLimit = errors.New("tool round limit exceeded")

// Completer 是对话循环依赖的补全驱动接口，由 backend.Client 实现。
type Completer interface {
	Complete(ctx context.Context, messages []openrouterapi.Message, tools []openrouterapi.Tool, onDelta func(string)) (*backend.Result, error)
}

// ToolResult 记录一次工具执行，供观察回调展示。
type ToolResult struct {
	Name       string
	ToolCallID string
	Arguments  string
	Content    string
}

// Config 描述一个会话的组成。
type Config struct {
	// Completer 必填，补全驱动。
	Completer Completer
	// Registry 必填，工具注册表。
	Registry *Registry
	// SystemPrompt 可选，作为 Transcript 的首条消息。
	SystemPrompt string
	// MaxToolRounds 单回合工具轮数上限；0 表示 DefaultMaxToolRounds，负数表示不设限。
	MaxToolRounds int
	// OnDelta 可选，每个流式 content 片段回调一次，仅用于实时展示。
	OnDelta func(delta string)
	// OnToolResult 可选，每次工具执行完成后回调一次。
	OnToolResult func(result ToolResult)
}

// Conversation 是对话循环状态机：反复补全、执行模型请求的工具并回填结果，
// 直到模型产出不带 tool_calls 的消息，该消息即本回合的最终回答。
// 一个 Conversation 独占一个 Transcript，回合内严格单线程执行。
type Conversation struct {
	completer     Completer
	registry      *Registry
	transcript    *Transcript
	maxToolRounds int
	onDelta       func(string)
	onToolResult  func(ToolResult)
}

func NewConversation(cfg Config) (*Conversation, error) {
	if cfg.Completer == nil {
		return nil, fmt.Errorf("completer is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	maxRounds := cfg.MaxToolRounds
	if maxRounds == 0 {
		maxRounds = DefaultMaxToolRounds
	}
	return &Conversation{
		completer:     cfg.Completer,
		registry:      cfg.Registry,
		transcript:    NewTranscript(cfg.SystemPrompt),
		maxToolRounds: maxRounds,
		onDelta:       cfg.OnDelta,
		onToolResult:  cfg.OnToolResult,
	}, nil
}

// Transcript 返回会话持有的对话历史。
func (c *Conversation) Transcript() *Transcript {
	return c.transcript
}

// Ask 执行一个完整回合：追加 user 消息并循环补全直到得到最终回答。
// 回合内任何失败（网络、协议、HTTP 状态、工具执行）都会中止本回合，
// 并把 Transcript 回滚到回合前状态，保证重试同一提问不会产生重复历史。
func (c *Conversation) Ask(ctx context.Context, prompt string) (string, error) {
	mark := c.transcript.Len()
	c.transcript.AddUser(prompt)

	reply, err := c.chatOnce(ctx)
	if err != nil {
		c.transcript.truncateTo(mark)
		return "", err
	}
	return reply, nil
}

// chatOnce 驱动「补全 -> 执行工具 -> 回填」循环。
// 工具按模型给出的顺序逐个串行执行，每个结果在算出后立即追加，
// 保证 tool 消息与对应调用之间的顺序始终是调用顺序。
func (c *Conversation) chatOnce(ctx context.Context) (string, error) {
	tools := c.registry.Definitions()
	rounds := 0

	for {
		result, err := c.completer.Complete(ctx, c.transcript.Messages(), tools, c.onDelta)
		if err != nil {
			return "", err
		}

		message := result.Message
		c.transcript.AddAssistant(message.Content, message.ToolCalls)

		if len(message.ToolCalls) == 0 {
			return NormalizeContent(message.Content), nil
		}

		rounds++
		if c.maxToolRounds > 0 && rounds > c.maxToolRounds {
			return "", fmt.Errorf("%w after %d rounds", ErrToolRoundLimit, c.maxToolRounds)
		}

		for _, call := range message.ToolCalls {
			output, err := c.registry.Execute(ctx, call.Function.Name, call.Function.Arguments)
			if err != nil {
				return "", err
			}
			if c.onToolResult != nil {
				c.onToolResult(ToolResult{
					Name:       call.Function.Name,
					ToolCallID: call.ID,
					Arguments:  call.Function.Arguments,
					Content:    output,
				})
			}
			c.transcript.AddToolResult(call.Function.Name, call.ID, output)
		}
	}
}

package chat

import (
	"github.com/LubyRuffy/orchat/openrouterapi"
)

// Transcript 是与补全接口交换的有序消息日志。
// 追加是唯一的常规变更；PopLast 是仅有的删除操作，用于失败回合的回滚。
// 一个 Transcript 只归属一个会话，不跨会话共享。
type Transcript struct {
	messages  []openrouterapi.Message
	hasSystem bool
}

// NewTranscript 创建 Transcript。systemPrompt 非空时作为首条 system 消息，
// 该消息永远位于开头且不会被 PopLast 移除。
func NewTranscript(systemPrompt string) *Transcript {
	t := &Transcript{messages: make([]openrouterapi.Message, 0, 8)}
	if systemPrompt != "" {
		t.messages = append(t.messages, openrouterapi.SystemMessage(systemPrompt))
		t.hasSystem = true
	}
	return t
}

// AddUser 追加一条 user 消息。
func (t *Transcript) AddUser(content string) {
	t.messages = append(t.messages, openrouterapi.UserMessage(content))
}

// AddAssistant 追加一条 assistant 消息，toolCalls 可为空。
func (t *Transcript) AddAssistant(content any, toolCalls []openrouterapi.ToolCall) {
	t.messages = append(t.messages, openrouterapi.AssistantMessage(content, toolCalls))
}

// AddToolResult 追加一条 tool 结果消息，引用产生该调用的 tool_call_id。
// 同一个 assistant 回合的多条结果必须按调用顺序依次追加。
func (t *Transcript) AddToolResult(name, toolCallID, content string) {
	t.messages = append(t.messages, openrouterapi.ToolMessage(name, toolCallID, content))
}

// Messages 返回消息列表的副本，调用方无法通过返回值污染历史。
func (t *Transcript) Messages() []openrouterapi.Message {
	out := make([]openrouterapi.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len 返回当前消息条数（含 system 消息）。
func (t *Transcript) Len() int {
	return len(t.messages)
}

// PopLast 移除并返回最后一条消息，用于失败回合的回滚。
// system 消息不参与回滚：当它是仅存的消息时返回 false。
func (t *Transcript) PopLast() (openrouterapi.Message, bool) {
	floor := 0
	if t.hasSystem {
		floor = 1
	}
	if len(t.messages) <= floor {
		return openrouterapi.Message{}, false
	}
	last := t.messages[len(t.messages)-1]
	t.messages = t.messages[:len(t.messages)-1]
	return last, true
}

// truncateTo 反复 PopLast 直到长度回到 n，用于把失败回合整体回滚到回合前状态。
func (t *Transcript) truncateTo(n int) {
	for t.Len() > n {
		if _, ok := t.PopLast(); !ok {
			return
		}
	}
}

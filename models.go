package orchat

import "strings"

const (
	// DefaultBaseURL 是 OpenRouter chat completions 接口的默认地址。
	DefaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"
	// DefaultModel 是未指定模型时使用的默认模型 ID。
	DefaultModel = "openai/gpt-5"

	// DefaultSystemPrompt 是终端前端默认的系统提示词。
	DefaultSystemPrompt = "You are a finance assistant. Provide concise market context and only call tools" +
		" when the user explicitly asks for specific data points. Prefer summarising using high-level trends" +
		" over fetching ticker-by-ticker statistics unless a detailed lookup is necessary."
)

// ResolveBaseURL 返回清理后的 base url，空值回退到 DefaultBaseURL。
func ResolveBaseURL(baseURL string) string {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return DefaultBaseURL
	}
	return trimmed
}

// ResolveModel 返回清理后的模型 ID，空值回退到 DefaultModel。
func ResolveModel(model string) string {
	trimmed := strings.TrimSpace(model)
	if trimmed == "" {
		return DefaultModel
	}
	return trimmed
}

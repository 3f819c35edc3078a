// Package openrouterapi 定义 OpenRouter chat completions 接口的数据结构，
// 包括请求体、流式 chunk（delta 与 tool_calls 分片）以及非流式的完整响应。
// 该包只描述线上的 JSON 形态，不包含任何网络或解析逻辑。
package openrouterapi

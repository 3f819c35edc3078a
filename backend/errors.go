package backend

import (
	"fmt"
	"strings"
)

// maxBodySnippet 限制错误信息里携带的响应体长度。
const maxBodySnippet = 400

// NetworkError 表示请求在传输层失败（连接失败、超时、上下文取消等）。
// 此类错误发生时 Transcript 状态未被修改，回滚由调用方负责。
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("openrouter network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPStatusError 表示服务端返回了 >= 400 的状态码。
// Body 是截断后的响应体片段，不做 JSON 解析。
type HTTPStatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("openrouter request failed with status %d %s: %s", e.StatusCode, statusReason(e.Status), e.Body)
}

// ProtocolError 表示响应无法按协议解析：空流、非 JSON 响应体，
// 或解析结果没有任何 choice。Snippet 携带定位问题用的负载片段。
type ProtocolError struct {
	Message string
	Snippet string
}

func (e *ProtocolError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("openrouter protocol error: %s", e.Message)
	}
	return fmt.Sprintf("openrouter protocol error: %s: %s", e.Message, e.Snippet)
}

// errEmptyStream 是解码器内部信号：整个响应体没有出现任何可解析的 SSE 负载。
// 驱动层捕获后回退到整体 JSON 解析。
var errEmptyStream = &ProtocolError{Message: "empty streaming response received"}

// truncateBody 截断响应体片段并清理首尾空白。
func truncateBody(body string) string {
	trimmed := strings.TrimSpace(body)
	if len(trimmed) <= maxBodySnippet {
		return trimmed
	}
	return trimmed[:maxBodySnippet]
}

// statusReason 从 "500 Internal Server Error" 中剥离出 reason 部分。
func statusReason(status string) string {
	if idx := strings.IndexByte(status, ' '); idx >= 0 {
		return status[idx+1:]
	}
	return status
}

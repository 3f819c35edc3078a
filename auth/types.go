package auth

import "context"

// Credentials 是调用 OpenRouter 需要的凭据与可选请求元信息。
// Metadata 中的键值会原样作为 HTTP 头附加到每个请求上。
type Credentials struct {
	APIKey   string
	Metadata map[string]string
}

// Provider 用于从不同来源读取 OpenRouter 凭据。
type Provider interface {
	Credentials(ctx context.Context) (Credentials, error)
}

type Source string

const (
	SourceEnv    Source = "env"
	SourceDotEnv Source = "dotenv"
	SourceAuto   Source = "auto"
)

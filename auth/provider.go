package auth

import (
	"context"
	"fmt"
	"strings"
)

// NewProvider 根据来源创建 Provider。
// source 允许：env/dotenv/auto；空值按 auto 处理。
func NewProvider(source string) (Provider, error) {
	s := strings.ToLower(strings.TrimSpace(source))
	if s == "" {
		s = string(SourceAuto)
	}
	switch Source(s) {
	case SourceEnv:
		return &envProvider{}, nil
	case SourceDotEnv:
		return &dotEnvProvider{}, nil
	case SourceAuto:
		return &autoProvider{providers: []Provider{&dotEnvProvider{}, &envProvider{}}}, nil
	default:
		return nil, fmt.Errorf("unsupported auth source: %s", source)
	}
}

type autoProvider struct {
	providers []Provider
}

func (p *autoProvider) Credentials(ctx context.Context) (Credentials, error) {
	var lastErr error
	for _, provider := range p.providers {
		creds, err := provider.Credentials(ctx)
		if err == nil && strings.TrimSpace(creds.APIKey) != "" {
			return creds, nil
		}
		if err != nil {
			lastErr = err
		}
	}
	if lastErr != nil {
		return Credentials{}, lastErr
	}
	return Credentials{}, fmt.Errorf("no credentials available")
}

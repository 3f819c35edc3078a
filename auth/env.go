package auth

import (
	"context"
	"fmt"
	"os"
	"strings"
)

const (
	EnvAPIKey  = "OPENROUTER_API_KEY"
	EnvOrg     = "OPENROUTER_ORG"
	EnvSiteURL = "OPENROUTER_SITE_URL"
	EnvAppName = "OPENROUTER_APP_NAME"
)

type envProvider struct{}

func (p *envProvider) Credentials(ctx context.Context) (Credentials, error) {
	apiKey := strings.TrimSpace(os.Getenv(EnvAPIKey))
	if apiKey == "" {
		return Credentials{}, fmt.Errorf("%s is not set", EnvAPIKey)
	}
	return Credentials{APIKey: apiKey, Metadata: metadataFromEnv()}, nil
}

// metadataFromEnv 把可选的环境变量映射为 OpenRouter 约定的请求头。
func metadataFromEnv() map[string]string {
	metadata := map[string]string{}
	if org := strings.TrimSpace(os.Getenv(EnvOrg)); org != "" {
		metadata["X-OpenRouter-Org"] = org
	}
	if site := strings.TrimSpace(os.Getenv(EnvSiteURL)); site != "" {
		metadata["HTTP-Referer"] = site
	}
	if app := strings.TrimSpace(os.Getenv(EnvAppName)); app != "" {
		metadata["X-Title"] = app
	}
	if len(metadata) == 0 {
		return nil
	}
	return metadata
}

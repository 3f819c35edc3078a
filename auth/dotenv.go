package auth

import (
	"context"
	"os"

	"github.com/joho/godotenv"
)

// dotEnvProvider 先加载工作目录下的 .env 再走环境变量读取。
// .env 不存在时不算错误，按普通环境变量处理。
type dotEnvProvider struct {
	path string
}

func (p *dotEnvProvider) Credentials(ctx context.Context) (Credentials, error) {
	path := p.path
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err == nil {
		// godotenv 不覆盖已存在的环境变量，显式设置的值优先。
		if err := godotenv.Load(path); err != nil {
			return Credentials{}, err
		}
	}
	return (&envProvider{}).Credentials(ctx)
}

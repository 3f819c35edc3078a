package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/LubyRuffy/orchat/openrouterapi"
)

// ErrUnsupportedTool 是 Provider 的"不归我管"路由信号：
// Execute 返回（或包装）该错误时注册表继续尝试下一个 Provider；
// 其他任何错误被视为真实的执行失败，原样向上传播。
var ErrUnsupportedTool = errors.New("unsupported tool")

// ToolNotFoundError 表示没有任何 Provider 认领请求的工具名。
type ToolNotFoundError struct {
	Name string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("no tool provider handled %q", e.Name)
}

// Provider 是外部工具模块暴露给对话循环的能力接口。
// Definitions 返回该模块的工具定义；Execute 执行指定工具并返回文本结果。
type Provider interface {
	Definitions() []openrouterapi.Tool
	Execute(ctx context.Context, name string, arguments string) (string, error)
}

// Registry 把工具名映射到静态注册的 Provider 列表。
// Provider 列表惰性构建且至多构建一次，构建后只读，可被多个会话并发使用。
type Registry struct {
	load sync.Once
	init func() []Provider

	providers   []Provider
	definitions []openrouterapi.Tool
}

// NewRegistry 用显式给定的 Provider 列表创建注册表。
func NewRegistry(providers ...Provider) *Registry {
	return NewLazyRegistry(func() []Provider { return providers })
}

// NewLazyRegistry 延迟到首次使用时才执行 init 构建 Provider 列表；
// 首个调用方完成构建，后续调用复用缓存结果。
func NewLazyRegistry(init func() []Provider) *Registry {
	return &Registry{init: init}
}

func (r *Registry) ensureLoaded() {
	r.load.Do(func() {
		if r.init != nil {
			r.providers = r.init()
		}
		for _, provider := range r.providers {
			r.definitions = append(r.definitions, provider.Definitions()...)
		}
	})
}

// Definitions 返回所有 Provider 的工具定义聚合，顺序在多次调用间保持稳定。
func (r *Registry) Definitions() []openrouterapi.Tool {
	r.ensureLoaded()
	out := make([]openrouterapi.Tool, len(r.definitions))
	copy(out, r.definitions)
	return out
}

// Execute 按注册顺序把调用分发给首个认领该工具名的 Provider。
func (r *Registry) Execute(ctx context.Context, name string, arguments string) (string, error) {
	r.ensureLoaded()
	for _, provider := range r.providers {
		result, err := provider.Execute(ctx, name, arguments)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, ErrUnsupportedTool) {
			continue
		}
		return "", err
	}
	return "", &ToolNotFoundError{Name: name}
}

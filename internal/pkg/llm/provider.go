package llm

import (
	"context"
	"errors"
	"sync"

	"github.com/agenticrag/backend/config"
	"github.com/cloudwego/eino/components/model"
)

var (
	// ErrEmptyModelName 模型名称为空
	ErrEmptyModelName = errors.New("model name is empty")
	// ErrNilResponse 模型既没有返回错误也没有返回消息
	ErrNilResponse = errors.New("model returned no message")
)

// Factory 按模型名称创建 ChatModel
type Factory func(ctx context.Context, modelName string) (model.BaseChatModel, error)

// Provider 按模型名称提供 ChatModel，同名模型只创建一次
// 多个 Agent 绑定同一个模型时共享同一个客户端
type Provider struct {
	mu           sync.Mutex
	factory      Factory
	defaultModel string
	models       map[string]model.BaseChatModel
}

// NewProvider 基于 LLM 配置创建 Provider
func NewProvider(cfg config.LLMConfig) *Provider {
	return NewProviderWithFactory(cfg.Model, func(ctx context.Context, modelName string) (model.BaseChatModel, error) {
		return NewChatModel(ctx, cfg, modelName)
	})
}

// NewProviderWithFactory 使用自定义工厂创建 Provider
func NewProviderWithFactory(defaultModel string, factory Factory) *Provider {
	return &Provider{
		factory:      factory,
		defaultModel: NormalizeModelName(defaultModel),
		models:       make(map[string]model.BaseChatModel),
	}
}

// DefaultModel 返回默认模型名称
func (p *Provider) DefaultModel() string {
	return p.defaultModel
}

// GetModel 返回指定名称的 ChatModel，名称为空时使用默认模型
func (p *Provider) GetModel(ctx context.Context, name string) (model.BaseChatModel, error) {
	name = NormalizeModelName(name)
	if name == "" {
		name = p.defaultModel
	}
	if name == "" {
		return nil, ErrEmptyModelName
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if m, ok := p.models[name]; ok {
		return m, nil
	}
	m, err := p.factory(ctx, name)
	if err != nil {
		return nil, err
	}
	p.models[name] = m
	return m, nil
}

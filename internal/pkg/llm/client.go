package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenticrag/backend/config"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"k8s.io/klog/v2"
)

// providerPrefixes 模型名称中可省略的 provider 前缀
// 例如 "ollama/llama3" 在 OpenAI 兼容接口下应写作 "llama3"
var providerPrefixes = []string{"ollama/", "ollama_chat/", "openai/"}

// NormalizeModelName 去掉 provider 前缀和首尾空白
func NormalizeModelName(name string) string {
	name = strings.TrimSpace(name)
	for _, prefix := range providerPrefixes {
		if strings.HasPrefix(name, prefix) {
			return strings.TrimPrefix(name, prefix)
		}
	}
	return name
}

// NewChatModel 根据 LLM 配置创建 ChatModel
// modelName 为空时使用配置中的默认模型
// 本地 Ollama 通过其 OpenAI 兼容接口访问
func NewChatModel(ctx context.Context, cfg config.LLMConfig, modelName string) (model.BaseChatModel, error) {
	if modelName == "" {
		modelName = cfg.Model
	}
	modelName = NormalizeModelName(modelName)
	if modelName == "" {
		return nil, ErrEmptyModelName
	}

	klog.V(6).Infof("[LLM] 创建 ChatModel: model=%s, baseURL=%s", modelName, cfg.APIURL)

	chatConfig := &openai.ChatModelConfig{
		BaseURL: cfg.APIURL,
		APIKey:  cfg.APIKey,
		Model:   modelName,
		Timeout: cfg.Timeout,
	}
	if cfg.MaxTokens > 0 {
		maxTokens := cfg.MaxTokens
		chatConfig.MaxTokens = &maxTokens
	}
	if cfg.Temperature > 0 {
		temperature := cfg.Temperature
		chatConfig.Temperature = &temperature
	}

	chatModel, err := openai.NewChatModel(ctx, chatConfig)
	if err != nil {
		klog.Errorf("[LLM] 创建 ChatModel 失败: model=%s, error=%v", modelName, err)
		return nil, fmt.Errorf("create chat model %s: %w", modelName, err)
	}

	klog.V(6).Infof("[LLM] ChatModel 创建成功: model=%s", modelName)
	return NewLoggingChatModel(modelName, chatModel), nil
}

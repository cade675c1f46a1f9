package llm

import (
	"context"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"k8s.io/klog/v2"
)

// LoggingChatModel 在 ChatModel 外层记录调用耗时和 token 用量
type LoggingChatModel struct {
	name  string
	inner model.BaseChatModel
}

// NewLoggingChatModel 包装一个 ChatModel
func NewLoggingChatModel(name string, inner model.BaseChatModel) *LoggingChatModel {
	return &LoggingChatModel{name: name, inner: inner}
}

// Name 返回绑定的模型名称
func (m *LoggingChatModel) Name() string {
	return m.name
}

// Generate 同步生成响应
func (m *LoggingChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	klog.V(6).Infof("[LLM] Generate 开始: model=%s, messageCount=%d", m.name, len(input))
	for i, msg := range input {
		klog.V(8).Infof("[LLM]   Message[%d]: role=%s, content=%s", i, msg.Role, msg.Content)
	}

	start := time.Now()
	resp, err := m.inner.Generate(ctx, input, opts...)
	if err != nil {
		klog.Errorf("[LLM] Generate 失败: model=%s, duration=%s, error=%v", m.name, time.Since(start), err)
		return nil, err
	}
	if resp == nil {
		return nil, ErrNilResponse
	}

	usage := UsageOf(resp)
	klog.V(6).Infof("[LLM] Generate 完成: model=%s, duration=%s, responseLength=%d, promptTokens=%d, completionTokens=%d",
		m.name, time.Since(start), len(resp.Content), usage.PromptTokens, usage.CompletionTokens)
	return resp, nil
}

// Stream 流式生成
func (m *LoggingChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (
	*schema.StreamReader[*schema.Message], error) {
	klog.V(6).Infof("[LLM] Stream 开始: model=%s, messageCount=%d", m.name, len(input))

	reader, err := m.inner.Stream(ctx, input, opts...)
	if err != nil {
		klog.Errorf("[LLM] Stream 失败: model=%s, error=%v", m.name, err)
		return nil, err
	}
	return reader, nil
}

// Usage token 使用统计
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// UsageOf 从响应元数据中读取 token 用量，缺失时返回零值
func UsageOf(msg *schema.Message) Usage {
	if msg == nil || msg.ResponseMeta == nil || msg.ResponseMeta.Usage == nil {
		return Usage{}
	}
	u := msg.ResponseMeta.Usage
	return Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}

package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"k8s.io/klog/v2"
)

// Executor 能执行任务提示词并返回文本结果的对象
type Executor interface {
	Execute(ctx context.Context, prompt string) (string, error)
}

// ChatAgent 把 Agent 定义绑定到一个 ChatModel
// 每次执行都是独立的一轮对话，不保留历史
type ChatAgent struct {
	def   *Agent
	model model.BaseChatModel
}

// NewChatAgent 创建 ChatAgent
func NewChatAgent(def *Agent, chatModel model.BaseChatModel) *ChatAgent {
	return &ChatAgent{def: def, model: chatModel}
}

// Execute 以 Agent 的角色设定执行一次任务
func (a *ChatAgent) Execute(ctx context.Context, prompt string) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(a.def.SystemPrompt()),
		schema.UserMessage(prompt),
	}

	klog.V(6).Infof("[ChatAgent] 执行开始: agent=%s, promptLength=%d", a.def.Name, len(prompt))
	resp, err := a.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("agent %s: %w", a.def.Name, err)
	}

	content := ""
	if resp != nil {
		content = strings.TrimSpace(resp.Content)
	}
	if content == "" {
		return "", fmt.Errorf("agent %s: %w", a.def.Name, ErrEmptyCompletion)
	}

	klog.V(6).Infof("[ChatAgent] 执行完成: agent=%s, outputLength=%d", a.def.Name, len(content))
	return content, nil
}

package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

const (
	expectedOutputHeader = "This is the expected criteria for your final answer: "
	finalAnswerReminder  = "you MUST return the actual complete content as the final answer, not a summary."
	contextHeader        = "This is the context you're working with:"
)

// RenderDescription 用用户问题渲染任务描述模板
// 模板使用 FString 语法，唯一的变量是 {query}
func (t *Task) RenderDescription(ctx context.Context, query string) (string, error) {
	tpl := prompt.FromMessages(schema.FString, schema.UserMessage(t.Description))
	msgs, err := tpl.Format(ctx, map[string]any{"query": query})
	if err != nil {
		return "", fmt.Errorf("%w: task %s: %v", ErrInvalidTemplate, t.Name, err)
	}
	if len(msgs) == 0 {
		return "", fmt.Errorf("%w: task %s rendered no message", ErrInvalidTemplate, t.Name)
	}
	return msgs[0].Content, nil
}

// Prompt 生成发送给 Agent 的完整任务提示词
// 上游输出按原样放入上下文段落
func (t *Task) Prompt(ctx context.Context, query string, upstream ...TaskOutput) (string, error) {
	description, err := t.RenderDescription(ctx, query)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(description))
	b.WriteString("\n\n")
	b.WriteString(expectedOutputHeader)
	b.WriteString(strings.TrimSpace(t.ExpectedOutput))
	b.WriteString("\n")
	b.WriteString(finalAnswerReminder)

	if len(upstream) > 0 {
		b.WriteString("\n\n")
		b.WriteString(contextHeader)
		for _, out := range upstream {
			b.WriteString("\n")
			b.WriteString(out.Output)
		}
	}
	return b.String(), nil
}

package crew

import (
	"context"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"k8s.io/klog/v2"
)

type startTimeKey struct{}

// NewLoggingCallbacks 创建记录链路节点耗时和模型 token 用量的回调处理器
// 开始时间保存在 context 中，处理器本身无状态，可被并发的请求共享
func NewLoggingCallbacks() callbacks.Handler {
	return callbacks.NewHandlerBuilder().
		OnStartFn(onStart).
		OnEndFn(onEnd).
		OnErrorFn(onError).
		Build()
}

func onStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	klog.V(6).InfoS("[CrewCallback] 节点开始执行",
		"component", info.Component,
		"type", info.Type,
		"name", info.Name,
	)

	if info.Component == "ChatModel" {
		if modelInput := model.ConvCallbackInput(input); modelInput != nil {
			klog.V(6).InfoS("[CrewCallback] Model 输入",
				"name", info.Name,
				"message_count", len(modelInput.Messages),
			)
		}
	}

	return context.WithValue(ctx, startTimeKey{}, time.Now())
}

func onEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	klog.V(6).InfoS("[CrewCallback] 节点执行完成",
		"component", info.Component,
		"type", info.Type,
		"name", info.Name,
		"duration_ms", elapsed(ctx).Milliseconds(),
	)

	if info.Component == "ChatModel" {
		modelOutput := model.ConvCallbackOutput(output)
		if modelOutput != nil && modelOutput.TokenUsage != nil {
			klog.V(6).InfoS("[CrewCallback] Model Token 使用情况",
				"name", info.Name,
				"prompt_tokens", modelOutput.TokenUsage.PromptTokens,
				"completion_tokens", modelOutput.TokenUsage.CompletionTokens,
				"total_tokens", modelOutput.TokenUsage.TotalTokens,
			)
		}
	}
	return ctx
}

func onError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	klog.ErrorS(err, "[CrewCallback] 节点执行出错",
		"component", info.Component,
		"type", info.Type,
		"name", info.Name,
		"duration_ms", elapsed(ctx).Milliseconds(),
	)
	return ctx
}

func elapsed(ctx context.Context) time.Duration {
	start, ok := ctx.Value(startTimeKey{}).(time.Time)
	if !ok {
		return 0
	}
	return time.Since(start)
}

package agents

import "time"

// DefinitionKind 定义文件类型
type DefinitionKind string

const (
	KindAgent DefinitionKind = "agent"
	KindTask  DefinitionKind = "task"
)

// LoadResult 加载结果
type LoadResult struct {
	Kind   DefinitionKind
	Name   string
	Path   string
	Error  error
	Action string // "created", "updated", "failed"
}

// TaskOutput 上游任务的输出，作为下游任务的上下文
type TaskOutput struct {
	Task   string
	Output string
}

// Now 返回当前时间（用于测试）
var Now = func() time.Time {
	return time.Now()
}

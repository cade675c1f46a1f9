package agents

import "errors"

// 预定义错误
var (
	// ErrAgentNotFound Agent 不存在
	ErrAgentNotFound = errors.New("agent not found")

	// ErrTaskNotFound Task 不存在
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("invalid definition")

	// ErrInvalidName name 格式错误
	ErrInvalidName = errors.New("invalid name")

	// ErrInvalidTemplate 任务描述模板无法渲染
	ErrInvalidTemplate = errors.New("invalid task template")

	// ErrConfigNotFound 定义文件不存在
	ErrConfigNotFound = errors.New("definition file not found")

	// ErrEmptyCompletion 模型返回了空内容
	ErrEmptyCompletion = errors.New("model returned empty completion")
)

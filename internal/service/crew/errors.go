package crew

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery 查询为空或只包含空白
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrInvalidCrew 任务之间的依赖关系无法组成研究 -> 写作的两阶段链路
	ErrInvalidCrew = errors.New("invalid crew definition")
)

// StageError 某个阶段执行失败
type StageError struct {
	Stage string
	Agent string
	Err   error
}

func (e *StageError) Error() string {
	if e.Agent == "" {
		return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s stage failed (agent %s): %v", e.Stage, e.Agent, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

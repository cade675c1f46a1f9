package statemachine

import (
	"fmt"
	"sync"

	"k8s.io/klog/v2"
)

// RunStatus 一次查询执行（Run）的状态
type RunStatus string

const (
	RunStatusReceived    RunStatus = "received"    // 已接收，尚未调用模型
	RunStatusResearching RunStatus = "researching" // 研究阶段执行中
	RunStatusWriting     RunStatus = "writing"     // 写作阶段执行中
	RunStatusResponded   RunStatus = "responded"   // 已产出最终结果
	RunStatusFailed      RunStatus = "failed"      // 任一阶段失败
)

// RunTransition 定义状态迁移
type RunTransition struct {
	From RunStatus
	To   RunStatus
}

// RunStateMachine Run 状态机
// 生命周期是线性的：received -> researching -> writing -> responded
// 任何非终止态都可以进入 failed，不存在取消路径
type RunStateMachine struct {
	allowedTransitions map[RunTransition]bool
}

// NewRunStateMachine 创建新的 Run 状态机
func NewRunStateMachine() *RunStateMachine {
	sm := &RunStateMachine{
		allowedTransitions: make(map[RunTransition]bool),
	}

	transitions := []RunTransition{
		// 正常执行流程
		{RunStatusReceived, RunStatusResearching},
		{RunStatusResearching, RunStatusWriting},
		{RunStatusWriting, RunStatusResponded},

		// 失败流程
		{RunStatusReceived, RunStatusFailed},
		{RunStatusResearching, RunStatusFailed},
		{RunStatusWriting, RunStatusFailed},
	}

	for _, t := range transitions {
		sm.allowedTransitions[t] = true
	}

	return sm
}

// CanTransition 检查状态迁移是否合法
func (sm *RunStateMachine) CanTransition(from, to RunStatus) bool {
	if from == to {
		return false
	}
	return sm.allowedTransitions[RunTransition{From: from, To: to}]
}

// ValidateTransition 验证状态迁移并返回错误
func (sm *RunStateMachine) ValidateTransition(from, to RunStatus) error {
	if !sm.CanTransition(from, to) {
		return &InvalidStateTransitionError{
			From: string(from),
			To:   string(to),
		}
	}
	return nil
}

// Transition 执行状态迁移（带日志）
func (sm *RunStateMachine) Transition(from, to RunStatus, runID string) error {
	if err := sm.ValidateTransition(from, to); err != nil {
		klog.V(6).Infof("Run 状态迁移被拒绝: runID=%s, %s -> %s, error=%v", runID, from, to, err)
		return err
	}

	klog.V(6).Infof("Run 状态迁移成功: runID=%s, %s -> %s", runID, from, to)
	return nil
}

// InvalidStateTransitionError 无效的状态迁移错误
type InvalidStateTransitionError struct {
	From string
	To   string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid run state transition: %s -> %s", e.From, e.To)
}

// IsTerminal 判断状态是否为终止态
func IsTerminal(status RunStatus) bool {
	return status == RunStatusResponded || status == RunStatusFailed
}

// Run 单次执行的状态跟踪器，只属于一个请求
type Run struct {
	ID string

	sm     *RunStateMachine
	mu     sync.Mutex
	status RunStatus
}

// NewRun 创建处于 received 状态的 Run
func (sm *RunStateMachine) NewRun(id string) *Run {
	return &Run{ID: id, sm: sm, status: RunStatusReceived}
}

// Status 当前状态
func (r *Run) Status() RunStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Advance 迁移到目标状态，非法迁移返回 *InvalidStateTransitionError
func (r *Run) Advance(to RunStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.sm.Transition(r.status, to, r.ID); err != nil {
		return err
	}
	r.status = to
	return nil
}

// Fail 把 Run 标记为失败，已处于终止态时不做任何事
func (r *Run) Fail() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if IsTerminal(r.status) {
		return
	}
	_ = r.sm.Transition(r.status, RunStatusFailed, r.ID)
	r.status = RunStatusFailed
}

package subscriber

import (
	"context"
	"sync/atomic"

	"github.com/agenticrag/backend/internal/eventbus"
	"k8s.io/klog/v2"
)

// RunEventSubscriber 记录 Run 生命周期事件，并在内存中统计完成/失败次数
type RunEventSubscriber struct {
	completed atomic.Int64
	failed    atomic.Int64
}

// RunStats 运行统计
type RunStats struct {
	Completed int64
	Failed    int64
}

func NewRunEventSubscriber() *RunEventSubscriber {
	return &RunEventSubscriber{}
}

func (s *RunEventSubscriber) Register(bus *eventbus.RunEventBus) {
	if bus == nil {
		return
	}
	bus.Subscribe(eventbus.RunEventStageStarted, s.handleStageStarted)
	bus.Subscribe(eventbus.RunEventStageFinished, s.handleStageFinished)
	bus.Subscribe(eventbus.RunEventCompleted, s.handleCompleted)
	bus.Subscribe(eventbus.RunEventFailed, s.handleFailed)
}

func (s *RunEventSubscriber) Stats() RunStats {
	return RunStats{
		Completed: s.completed.Load(),
		Failed:    s.failed.Load(),
	}
}

func (s *RunEventSubscriber) handleStageStarted(ctx context.Context, event eventbus.RunEvent) error {
	klog.V(6).Infof("[RunEvent] 阶段开始: runID=%s, stage=%s, agent=%s", event.RunID, event.Stage, event.Agent)
	return nil
}

func (s *RunEventSubscriber) handleStageFinished(ctx context.Context, event eventbus.RunEvent) error {
	klog.V(6).Infof("[RunEvent] 阶段完成: runID=%s, stage=%s, agent=%s, duration=%s, outputLength=%d",
		event.RunID, event.Stage, event.Agent, event.Duration, event.OutputLength)
	return nil
}

func (s *RunEventSubscriber) handleCompleted(ctx context.Context, event eventbus.RunEvent) error {
	s.completed.Add(1)
	klog.V(6).Infof("[RunEvent] 执行完成: runID=%s, duration=%s, outputLength=%d", event.RunID, event.Duration, event.OutputLength)
	return nil
}

func (s *RunEventSubscriber) handleFailed(ctx context.Context, event eventbus.RunEvent) error {
	s.failed.Add(1)
	klog.Errorf("[RunEvent] 执行失败: runID=%s, stage=%s, agent=%s, error=%v", event.RunID, event.Stage, event.Agent, event.Err)
	return nil
}

package crew

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agenticrag/backend/internal/eventbus"
	"github.com/agenticrag/backend/internal/pkg/agents"
	"github.com/agenticrag/backend/internal/pkg/llm"
	"github.com/agenticrag/backend/internal/service/statemachine"
	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	"k8s.io/klog/v2"
)

// ExecutorFactory 为 Agent 定义创建执行器
type ExecutorFactory func(ctx context.Context, def *agents.Agent) (agents.Executor, error)

// ChatAgentFactory 基于模型 Provider 创建 ChatAgent，Agent 未指定模型时使用默认模型
func ChatAgentFactory(provider *llm.Provider) ExecutorFactory {
	return func(ctx context.Context, def *agents.Agent) (agents.Executor, error) {
		chatModel, err := provider.GetModel(ctx, def.Model)
		if err != nil {
			return nil, err
		}
		return agents.NewChatAgent(def, chatModel), nil
	}
}

// Options Service 配置
type Options struct {
	ResearchTask string // 默认 "research"
	WriteTask    string // 默认 "write"

	// Bus 可选，用于发布 Run 生命周期事件
	Bus *eventbus.RunEventBus

	// Callbacks 可选，附加到每次链路执行
	Callbacks callbacks.Handler
}

// stage 一个阶段：任务定义 + 执行该任务的 Agent
type stage struct {
	task     *agents.Task
	agent    string
	executor agents.Executor
}

// Service 研究 -> 写作两阶段链路
// 链路在创建时编译一次，之后可被并发调用
type Service struct {
	research  stage
	write     stage
	runnable  compose.Runnable[ResearchInput, *Result]
	sm        *statemachine.RunStateMachine
	bus       *eventbus.RunEventBus
	callbacks callbacks.Handler
}

// NewService 根据已加载的定义组装并编译链路
func NewService(ctx context.Context, manager *agents.Manager, factory ExecutorFactory, opts Options) (*Service, error) {
	if opts.ResearchTask == "" {
		opts.ResearchTask = StageResearch
	}
	if opts.WriteTask == "" {
		opts.WriteTask = StageWrite
	}

	research, err := newStage(ctx, manager, factory, opts.ResearchTask)
	if err != nil {
		return nil, err
	}
	write, err := newStage(ctx, manager, factory, opts.WriteTask)
	if err != nil {
		return nil, err
	}

	if err := checkDependencies(research.task, write.task); err != nil {
		return nil, err
	}

	s := &Service{
		research:  research,
		write:     write,
		sm:        statemachine.NewRunStateMachine(),
		bus:       opts.Bus,
		callbacks: opts.Callbacks,
	}

	chain := compose.NewChain[ResearchInput, *Result]()
	chain.
		AppendLambda(compose.InvokableLambda(s.runResearch), compose.WithNodeName("ResearchStage")).
		AppendLambda(compose.InvokableLambda(s.runWrite), compose.WithNodeName("WriteStage"))

	runnable, err := chain.Compile(ctx, compose.WithGraphName("Crew"))
	if err != nil {
		return nil, fmt.Errorf("failed to compile crew chain: %w", err)
	}
	s.runnable = runnable

	klog.V(6).Infof("[Crew] 链路编译完成: %s(%s) -> %s(%s)",
		research.task.Name, research.agent, write.task.Name, write.agent)
	return s, nil
}

func newStage(ctx context.Context, manager *agents.Manager, factory ExecutorFactory, taskName string) (stage, error) {
	task, def, err := manager.AgentForTask(taskName)
	if err != nil {
		return stage{}, err
	}
	executor, err := factory(ctx, def)
	if err != nil {
		return stage{}, fmt.Errorf("failed to create executor for agent %s: %w", def.Name, err)
	}
	return stage{task: task, agent: def.Name, executor: executor}, nil
}

// checkDependencies 写作任务必须显式声明依赖研究任务的输出
// 研究任务是链路的第一阶段，不能有上游
func checkDependencies(research, write *agents.Task) error {
	if len(research.Context) > 0 {
		return fmt.Errorf("%w: task %s is the first stage and cannot declare context %v",
			ErrInvalidCrew, research.Name, research.Context)
	}
	if !write.DependsOn(research.Name) {
		return fmt.Errorf("%w: task %s must declare context [%s]", ErrInvalidCrew, write.Name, research.Name)
	}
	for _, dep := range write.Context {
		if dep != research.Name {
			return fmt.Errorf("%w: task %s declares context %s which is not produced by this crew",
				ErrInvalidCrew, write.Name, dep)
		}
	}
	return nil
}

// Run 对一个查询完整执行一次研究和写作
// 不做缓存和去重，相同查询每次都会重新调用模型
func (s *Service) Run(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	runID := uuid.NewString()
	rc := &runContext{state: s.sm.NewRun(runID)}
	start := time.Now()

	klog.V(6).Infof("[Crew] 开始执行: runID=%s, queryLength=%d", runID, len(query))

	var opts []compose.Option
	if s.callbacks != nil {
		opts = append(opts, compose.WithCallbacks(s.callbacks))
	}

	result, err := s.runnable.Invoke(ctx, ResearchInput{RunID: runID, Query: query, run: rc}, opts...)
	if err != nil {
		rc.state.Fail()
		stageErr := rc.failure
		if stageErr == nil && !errors.As(err, &stageErr) {
			stageErr = &StageError{Stage: StagePipeline, Err: err}
		}
		klog.Errorf("[Crew] 执行失败: runID=%s, duration=%s, error=%v", runID, time.Since(start), stageErr)
		s.publish(ctx, eventbus.RunEvent{
			Type:     eventbus.RunEventFailed,
			RunID:    runID,
			Stage:    stageErr.Stage,
			Agent:    stageErr.Agent,
			Duration: time.Since(start),
			Err:      stageErr.Err,
		})
		return nil, stageErr
	}

	if err := rc.state.Advance(statemachine.RunStatusResponded); err != nil {
		return nil, err
	}

	klog.V(6).Infof("[Crew] 执行完成: runID=%s, duration=%s, outputLength=%d", runID, time.Since(start), len(result.Raw))
	s.publish(ctx, eventbus.RunEvent{
		Type:         eventbus.RunEventCompleted,
		RunID:        runID,
		Duration:     time.Since(start),
		OutputLength: len(result.Raw),
	})
	return result, nil
}

// runResearch 第一阶段：执行研究任务
func (s *Service) runResearch(ctx context.Context, in ResearchInput) (ResearchOutput, error) {
	if err := in.run.state.Advance(statemachine.RunStatusResearching); err != nil {
		return ResearchOutput{}, err
	}

	output, err := s.execute(ctx, in.RunID, StageResearch, s.research, in.run, in.Query)
	if err != nil {
		return ResearchOutput{}, err
	}

	return ResearchOutput{
		RunID:    in.RunID,
		Query:    in.Query,
		Research: output,
		run:      in.run,
	}, nil
}

// runWrite 第二阶段：以研究输出为上下文执行写作任务
func (s *Service) runWrite(ctx context.Context, in ResearchOutput) (*Result, error) {
	if err := in.run.state.Advance(statemachine.RunStatusWriting); err != nil {
		return nil, err
	}

	upstream := agents.TaskOutput{Task: s.research.task.Name, Output: in.Research}
	output, err := s.execute(ctx, in.RunID, StageWrite, s.write, in.run, in.Query, upstream)
	if err != nil {
		return nil, err
	}

	return &Result{RunID: in.RunID, Raw: output}, nil
}

func (s *Service) execute(ctx context.Context, runID, stageName string, st stage, rc *runContext,
	query string, upstream ...agents.TaskOutput) (string, error) {
	klog.V(6).Infof("[Crew] 阶段开始: runID=%s, stage=%s, task=%s, agent=%s", runID, stageName, st.task.Name, st.agent)
	s.publish(ctx, eventbus.RunEvent{Type: eventbus.RunEventStageStarted, RunID: runID, Stage: stageName, Agent: st.agent})
	start := time.Now()

	prompt, err := st.task.Prompt(ctx, query, upstream...)
	if err != nil {
		return "", rc.fail(stageName, st.agent, err)
	}

	output, err := st.executor.Execute(ctx, prompt)
	if err != nil {
		return "", rc.fail(stageName, st.agent, err)
	}

	klog.V(6).Infof("[Crew] 阶段完成: runID=%s, stage=%s, duration=%s, outputLength=%d",
		runID, stageName, time.Since(start), len(output))
	s.publish(ctx, eventbus.RunEvent{
		Type:         eventbus.RunEventStageFinished,
		RunID:        runID,
		Stage:        stageName,
		Agent:        st.agent,
		Duration:     time.Since(start),
		OutputLength: len(output),
	})
	return output, nil
}

func (rc *runContext) fail(stageName, agent string, err error) error {
	rc.failure = &StageError{Stage: stageName, Agent: agent, Err: err}
	return rc.failure
}

func (s *Service) publish(ctx context.Context, event eventbus.RunEvent) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		klog.Errorf("[Crew] 事件处理失败: type=%s, runID=%s, error=%v", event.Type, event.RunID, err)
	}
}

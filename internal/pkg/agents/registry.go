package agents

import (
	"fmt"
	"sort"
	"sync"
)

// Registry Agent / Task 注册中心接口
type Registry interface {
	// Register 注册 Agent
	Register(agent *Agent) error

	// Get 获取指定名称的 Agent
	Get(name string) (*Agent, error)

	// List 按名称排序列出所有 Agents
	List() []*Agent

	// Exists 检查 Agent 是否存在
	Exists(name string) bool

	// RegisterTask 注册 Task
	RegisterTask(task *Task) error

	// GetTask 获取指定名称的 Task
	GetTask(name string) (*Task, error)

	// ListTasks 按名称排序列出所有 Tasks
	ListTasks() []*Task
}

// registry Registry 的实现
type registry struct {
	mu     sync.RWMutex
	agents map[string]*Agent // name -> Agent
	tasks  map[string]*Task  // name -> Task
}

// NewRegistry 创建新的 Registry 实例
func NewRegistry() Registry {
	return &registry{
		agents: make(map[string]*Agent),
		tasks:  make(map[string]*Task),
	}
}

func (r *registry) Register(agent *Agent) error {
	if agent == nil {
		return fmt.Errorf("agent cannot be nil")
	}
	if agent.Name == "" {
		return fmt.Errorf("agent name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.agents[agent.Name] = agent
	return nil
}

func (r *registry) Get(name string) (*Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, exists := r.agents[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}
	return agent, nil
}

func (r *registry) List() []*Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Agent, 0, len(r.agents))
	for _, agent := range r.agents {
		result = append(result, agent)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (r *registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.agents[name]
	return exists
}

func (r *registry) RegisterTask(task *Task) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}
	if task.Name == "" {
		return fmt.Errorf("task name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[task.Name] = task
	return nil
}

func (r *registry) GetTask(name string) (*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, exists := r.tasks[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, name)
	}
	return task, nil
}

func (r *registry) ListTasks() []*Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Task, 0, len(r.tasks))
	for _, task := range r.tasks {
		result = append(result, task)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

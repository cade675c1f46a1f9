package agents

import (
	"embed"
	"fmt"
	"io/fs"

	"k8s.io/klog/v2"
)

//go:embed builtin/agents/*.yaml builtin/tasks/*.yaml
var builtinFiles embed.FS

// BuiltinFS 内置的 Agent / Task 定义（Researcher + Writer）
func BuiltinFS() fs.FS {
	sub, err := fs.Sub(builtinFiles, "builtin")
	if err != nil {
		panic(err)
	}
	return sub
}

// Config Manager 配置
type Config struct {
	// Dir 覆盖目录，同名定义覆盖内置定义，为空时只使用内置定义
	Dir string
}

// Manager Agent / Task 定义管理器
// 启动时加载一次，之后只读
type Manager struct {
	Config   *Config
	Registry Registry
	Parser   *Parser
	Loader   *Loader
}

// NewManager 创建 Manager 并加载全部定义
func NewManager(config *Config) (*Manager, error) {
	if config == nil {
		config = &Config{}
	}

	registry := NewRegistry()
	parser := NewParser()
	loader := NewLoader(parser, registry)

	m := &Manager{
		Config:   config,
		Registry: registry,
		Parser:   parser,
		Loader:   loader,
	}

	// 内置定义必须全部加载成功
	results, err := loader.LoadFromFS(BuiltinFS(), "builtin")
	if err != nil {
		return nil, fmt.Errorf("failed to load builtin definitions: %w", err)
	}
	for _, r := range results {
		if r.Error != nil {
			return nil, fmt.Errorf("failed to load builtin %s %s: %w", r.Kind, r.Path, r.Error)
		}
	}

	if config.Dir != "" {
		results, err := loader.LoadFromDir(config.Dir)
		if err != nil {
			return nil, err
		}
		m.report(results)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	klog.V(6).Infof("[Agents] 定义加载完成: agents=%d, tasks=%d", len(registry.List()), len(registry.ListTasks()))
	return m, nil
}

func (m *Manager) report(results []*LoadResult) {
	created, updated, failed := 0, 0, 0
	for _, r := range results {
		switch r.Action {
		case "created":
			created++
		case "updated":
			updated++
		case "failed":
			failed++
			klog.Errorf("[Agents] 加载 %s 定义失败: path=%s, error=%v", r.Kind, r.Path, r.Error)
		}
	}
	klog.V(6).Infof("[Agents] 覆盖目录 %s: created=%d, updated=%d, failed=%d", m.Config.Dir, created, updated, failed)
}

// Validate 校验 Task 之间以及 Task 与 Agent 之间的引用
func (m *Manager) Validate() error {
	for _, task := range m.Registry.ListTasks() {
		if !m.Registry.Exists(task.Agent) {
			return fmt.Errorf("%w: task %s references unknown agent %s", ErrInvalidConfig, task.Name, task.Agent)
		}
		for _, dep := range task.Context {
			if _, err := m.Registry.GetTask(dep); err != nil {
				return fmt.Errorf("%w: task %s references unknown context task %s", ErrInvalidConfig, task.Name, dep)
			}
		}
	}
	return nil
}

// Agent 获取 Agent 定义
func (m *Manager) Agent(name string) (*Agent, error) {
	return m.Registry.Get(name)
}

// Task 获取 Task 定义
func (m *Manager) Task(name string) (*Task, error) {
	return m.Registry.GetTask(name)
}

// AgentForTask 获取 Task 以及为其分配的 Agent
func (m *Manager) AgentForTask(taskName string) (*Task, *Agent, error) {
	task, err := m.Task(taskName)
	if err != nil {
		return nil, nil, err
	}
	agent, err := m.Agent(task.Agent)
	if err != nil {
		return nil, nil, err
	}
	return task, agent, nil
}

package agents

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"k8s.io/klog/v2"
)

const (
	agentsSubdir = "agents"
	tasksSubdir  = "tasks"
)

// Loader 从目录加载 Agent 和 Task 定义
// 目录结构：
//
//	<dir>/agents/*.yaml
//	<dir>/tasks/*.yaml
type Loader struct {
	parser   *Parser
	registry Registry
}

// NewLoader 创建加载器
func NewLoader(parser *Parser, registry Registry) *Loader {
	return &Loader{
		parser:   parser,
		registry: registry,
	}
}

// LoadFromDir 从磁盘目录加载，目录不存在时返回空结果
func (l *Loader) LoadFromDir(dir string) ([]*LoadResult, error) {
	dir = filepath.Clean(dir)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		klog.V(6).Infof("[Agents] 定义目录不存在，跳过: %s", dir)
		return nil, nil
	}
	return l.LoadFromFS(os.DirFS(dir), dir)
}

// LoadFromFS 从文件系统加载，origin 仅用于记录来源路径
func (l *Loader) LoadFromFS(fsys fs.FS, origin string) ([]*LoadResult, error) {
	results := make([]*LoadResult, 0)

	agentResults, err := l.loadKind(fsys, origin, agentsSubdir, KindAgent)
	if err != nil {
		return nil, err
	}
	results = append(results, agentResults...)

	taskResults, err := l.loadKind(fsys, origin, tasksSubdir, KindTask)
	if err != nil {
		return nil, err
	}
	results = append(results, taskResults...)

	return results, nil
}

func (l *Loader) loadKind(fsys fs.FS, origin, subdir string, kind DefinitionKind) ([]*LoadResult, error) {
	entries, err := fs.ReadDir(fsys, subdir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s directory: %w", subdir, err)
	}

	results := make([]*LoadResult, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		// 只处理 .yaml 和 .yml 文件
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		name := path.Join(subdir, entry.Name())
		source := filepath.Join(origin, filepath.FromSlash(name))
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			results = append(results, &LoadResult{Kind: kind, Path: source, Error: err, Action: "failed"})
			continue
		}

		switch kind {
		case KindAgent:
			results = append(results, l.loadAgent(content, source))
		case KindTask:
			results = append(results, l.loadTask(content, source))
		}
	}
	return results, nil
}

// loadAgent 加载 Agent（内部）
func (l *Loader) loadAgent(content []byte, source string) *LoadResult {
	agent, err := l.parser.ParseAgentBytes(content, source)
	if err != nil {
		return &LoadResult{Kind: KindAgent, Path: source, Error: err, Action: "failed"}
	}

	action := "created"
	if l.registry.Exists(agent.Name) {
		action = "updated"
	}

	if err := l.registry.Register(agent); err != nil {
		return &LoadResult{Kind: KindAgent, Name: agent.Name, Path: source, Error: err, Action: "failed"}
	}
	return &LoadResult{Kind: KindAgent, Name: agent.Name, Path: source, Action: action}
}

// loadTask 加载 Task（内部）
func (l *Loader) loadTask(content []byte, source string) *LoadResult {
	task, err := l.parser.ParseTaskBytes(content, source)
	if err != nil {
		return &LoadResult{Kind: KindTask, Path: source, Error: err, Action: "failed"}
	}

	action := "created"
	if _, err := l.registry.GetTask(task.Name); err == nil {
		action = "updated"
	}

	if err := l.registry.RegisterTask(task); err != nil {
		return &LoadResult{Kind: KindTask, Name: task.Name, Path: source, Error: err, Action: "failed"}
	}
	return &LoadResult{Kind: KindTask, Name: task.Name, Path: source, Action: action}
}

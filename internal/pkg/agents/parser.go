package agents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	validNamePattern    = regexp.MustCompile(`^[a-z0-9-]+$`)
	validVersionPattern = regexp.MustCompile(`^v\d+(\.\d+)?(\.\d+)?$`)
)

// Parser Agent / Task 定义解析器
type Parser struct {
	maxTextLen int
	maxNameLen int
}

// NewParser 创建解析器
func NewParser() *Parser {
	return &Parser{
		maxTextLen: 4096,
		maxNameLen: 64,
	}
}

// ParseAgent 解析 Agent 定义文件
func (p *Parser) ParseAgent(path string) (*Agent, error) {
	content, err := readDefinition(path)
	if err != nil {
		return nil, err
	}
	return p.ParseAgentBytes(content, path)
}

// ParseAgentBytes 解析 Agent 定义内容
func (p *Parser) ParseAgentBytes(content []byte, path string) (*Agent, error) {
	agent := &Agent{}
	if err := yaml.Unmarshal(content, agent); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}

	agent.Path = path
	agent.LoadedAt = Now()

	if err := p.ValidateAgent(agent); err != nil {
		return nil, err
	}
	return agent, nil
}

// ParseTask 解析 Task 定义文件
func (p *Parser) ParseTask(path string) (*Task, error) {
	content, err := readDefinition(path)
	if err != nil {
		return nil, err
	}
	return p.ParseTaskBytes(content, path)
}

// ParseTaskBytes 解析 Task 定义内容
func (p *Parser) ParseTaskBytes(content []byte, path string) (*Task, error) {
	task := &Task{}
	if err := yaml.Unmarshal(content, task); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}

	task.Path = path
	task.LoadedAt = Now()

	if err := p.ValidateTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

// ValidateAgent 校验 Agent 定义
func (p *Parser) ValidateAgent(agent *Agent) error {
	if err := p.validateName(agent.Name); err != nil {
		return err
	}

	if agent.Version != "" && !validVersionPattern.MatchString(agent.Version) {
		return fmt.Errorf("%w: version must be valid semantic version (e.g., v1, v1.0, v1.0.0)", ErrInvalidConfig)
	}

	fields := []struct {
		name  string
		value string
	}{
		{"role", agent.Role},
		{"goal", agent.Goal},
		{"backstory", agent.Backstory},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidConfig, f.name)
		}
		if len(f.value) > p.maxTextLen {
			return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidConfig, f.name, p.maxTextLen)
		}
	}
	return nil
}

// ValidateTask 校验 Task 定义
// 描述模板会用占位问题试渲染一次，未知变量在加载时即报错
func (p *Parser) ValidateTask(task *Task) error {
	if err := p.validateName(task.Name); err != nil {
		return err
	}

	if strings.TrimSpace(task.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidConfig)
	}
	if len(task.Description) > p.maxTextLen {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidConfig, p.maxTextLen)
	}
	if strings.TrimSpace(task.ExpectedOutput) == "" {
		return fmt.Errorf("%w: expectedOutput is required", ErrInvalidConfig)
	}
	if task.Agent == "" {
		return fmt.Errorf("%w: agent is required", ErrInvalidConfig)
	}
	for _, dep := range task.Context {
		if dep == task.Name {
			return fmt.Errorf("%w: task %s cannot use its own output as context", ErrInvalidConfig, task.Name)
		}
	}

	if _, err := task.RenderDescription(context.Background(), "placeholder"); err != nil {
		return err
	}
	return nil
}

func (p *Parser) validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if len(name) > p.maxNameLen {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, p.maxNameLen)
	}
	if !isValidName(name) {
		return fmt.Errorf("%w: name must contain only lowercase letters, numbers, and hyphens, and cannot start or end with hyphen", ErrInvalidName)
	}
	return nil
}

func readDefinition(path string) ([]byte, error) {
	path = filepath.Clean(path)
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}
	return content, nil
}

// isValidName 校验 name 格式
// 规则：
// - 只能包含小写字母、数字、连字符
// - 不能以连字符开头或结尾
// - 不能包含连续连字符
func isValidName(name string) bool {
	if name == "" {
		return false
	}
	if name[0] == '-' || name[len(name)-1] == '-' {
		return false
	}
	if strings.Contains(name, "--") {
		return false
	}
	return validNamePattern.MatchString(name)
}

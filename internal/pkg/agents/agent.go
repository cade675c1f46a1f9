package agents

import (
	"fmt"
	"strings"
	"time"
)

// Agent Agent 定义
// 一个 Agent 是绑定到某个模型的角色设定，加载后只读
type Agent struct {
	// 元数据
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`

	// 角色设定
	Role      string `yaml:"role" json:"role"`
	Goal      string `yaml:"goal" json:"goal"`
	Backstory string `yaml:"backstory" json:"backstory"`

	// Model 绑定的模型名称，为空时使用默认模型
	Model string `yaml:"model" json:"model"`

	// 路径信息
	Path     string    `yaml:"-" json:"path"`
	LoadedAt time.Time `yaml:"-" json:"loaded_at"`
}

// SystemPrompt 由角色、背景和目标拼装出的系统提示词
func (a *Agent) SystemPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s. %s\n", strings.TrimSpace(a.Role), strings.TrimSpace(a.Backstory))
	fmt.Fprintf(&b, "Your personal goal is: %s", strings.TrimSpace(a.Goal))
	return b.String()
}

// Task 任务定义
// Description 是模板，{query} 会被替换为用户问题
type Task struct {
	Name           string   `yaml:"name" json:"name"`
	Description    string   `yaml:"description" json:"description"`
	ExpectedOutput string   `yaml:"expectedOutput" json:"expected_output"`
	Agent          string   `yaml:"agent" json:"agent"`
	Context        []string `yaml:"context" json:"context"` // 依赖的上游任务名称，其输出作为上下文

	Path     string    `yaml:"-" json:"path"`
	LoadedAt time.Time `yaml:"-" json:"loaded_at"`
}

// DependsOn 判断任务是否声明了对指定任务输出的依赖
func (t *Task) DependsOn(name string) bool {
	for _, c := range t.Context {
		if c == name {
			return true
		}
	}
	return false
}

package agents

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgent_SystemPrompt(t *testing.T) {
	agent := &Agent{
		Name:      "researcher",
		Role:      "Research Specialist",
		Goal:      "Provide facts",
		Backstory: "You are an expert researcher.\n",
	}

	got := agent.SystemPrompt()
	assert.Equal(t, "You are Research Specialist. You are an expert researcher.\nYour personal goal is: Provide facts", got)
}

func TestTask_DependsOn(t *testing.T) {
	task := &Task{Name: "write", Context: []string{"research"}}
	assert.True(t, task.DependsOn("research"))
	assert.False(t, task.DependsOn("write"))
	assert.False(t, (&Task{Name: "research"}).DependsOn("write"))
}

func TestTask_Prompt(t *testing.T) {
	task := &Task{
		Name:           "write",
		Description:    "Answer the user's question: \"{query}\"\n\nUser's question: {query}\n",
		ExpectedOutput: "A clear answer",
		Agent:          "writer",
		Context:        []string{"research"},
	}

	prompt, err := task.Prompt(context.Background(), "What is quantum computing?",
		TaskOutput{Task: "research", Output: "SENTINEL-RESEARCH {not a template}"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, "Answer the user's question: \"What is quantum computing?\""))
	assert.Contains(t, prompt, "User's question: What is quantum computing?")
	assert.Contains(t, prompt, expectedOutputHeader+"A clear answer")
	assert.Contains(t, prompt, contextHeader+"\nSENTINEL-RESEARCH {not a template}", "上游输出应原样进入上下文")
}

func TestTask_PromptWithoutContext(t *testing.T) {
	task := &Task{Name: "research", Description: "Research {query}", ExpectedOutput: "Facts"}

	prompt, err := task.Prompt(context.Background(), "{curly} query")
	require.NoError(t, err)
	assert.Contains(t, prompt, "Research {curly} query", "问题中的花括号不应被再次解析")
	assert.NotContains(t, prompt, contextHeader)
}

func TestTask_RenderDescriptionInvalid(t *testing.T) {
	task := &Task{Name: "bad", Description: "Answer {question}"}
	_, err := task.RenderDescription(context.Background(), "q")
	assert.ErrorIs(t, err, ErrInvalidTemplate)
}

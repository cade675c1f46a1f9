package agents

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParser_ParseAgent(t *testing.T) {
	originalNow := Now
	defer func() { Now = originalNow }()

	fixedTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	Now = func() time.Time { return fixedTime }

	parser := NewParser()

	tests := []struct {
		name        string
		content     string
		wantErr     error
		errContains string
	}{
		{
			name: "valid agent",
			content: `name: researcher
version: v1
role: Research Specialist
goal: Research the question
backstory: You are an expert researcher.
model: ollama/llama3
`,
		},
		{
			name: "version is optional",
			content: `name: writer
role: Technical Writer
goal: Write the answer
backstory: You are a skilled technical writer.
`,
		},
		{
			name: "missing name",
			content: `role: Research Specialist
goal: Research
backstory: Expert.
`,
			wantErr:     ErrInvalidName,
			errContains: "name is required",
		},
		{
			name: "uppercase name",
			content: `name: Researcher
role: Research Specialist
goal: Research
backstory: Expert.
`,
			wantErr: ErrInvalidName,
		},
		{
			name: "missing role",
			content: `name: researcher
goal: Research
backstory: Expert.
`,
			wantErr:     ErrInvalidConfig,
			errContains: "role is required",
		},
		{
			name: "missing goal",
			content: `name: researcher
role: Research Specialist
backstory: Expert.
`,
			wantErr:     ErrInvalidConfig,
			errContains: "goal is required",
		},
		{
			name: "blank backstory",
			content: `name: researcher
role: Research Specialist
goal: Research
backstory: "   "
`,
			wantErr:     ErrInvalidConfig,
			errContains: "backstory is required",
		},
		{
			name: "invalid version",
			content: `name: researcher
version: 1.0
role: Research Specialist
goal: Research
backstory: Expert.
`,
			wantErr:     ErrInvalidConfig,
			errContains: "version",
		},
		{
			name:    "invalid yaml",
			content: "name: [unclosed",
			wantErr: ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "agent.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test file: %v", err)
			}

			agent, err := parser.ParseAgent(configPath)
			if tt.wantErr != nil {
				if err == nil {
					t.Fatalf("ParseAgent() expected error, got nil")
				}
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseAgent() error = %v, want %v", err, tt.wantErr)
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("ParseAgent() error = %v, should contain %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAgent() unexpected error = %v", err)
			}
			if agent.Path != configPath {
				t.Errorf("Path = %v, want %v", agent.Path, configPath)
			}
			if !agent.LoadedAt.Equal(fixedTime) {
				t.Errorf("LoadedAt = %v, want %v", agent.LoadedAt, fixedTime)
			}
		})
	}
}

func TestParser_ParseTask(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name        string
		content     string
		wantErr     error
		errContains string
	}{
		{
			name: "valid task with context",
			content: `name: write
agent: writer
context: [research]
description: |
  Answer the user's question: "{query}"
expectedOutput: A clear answer
`,
		},
		{
			name: "missing description",
			content: `name: write
agent: writer
expectedOutput: A clear answer
`,
			wantErr:     ErrInvalidConfig,
			errContains: "description is required",
		},
		{
			name: "missing expected output",
			content: `name: write
agent: writer
description: Answer {query}
`,
			wantErr:     ErrInvalidConfig,
			errContains: "expectedOutput is required",
		},
		{
			name: "missing agent",
			content: `name: write
description: Answer {query}
expectedOutput: A clear answer
`,
			wantErr:     ErrInvalidConfig,
			errContains: "agent is required",
		},
		{
			name: "self context",
			content: `name: write
agent: writer
context: [write]
description: Answer {query}
expectedOutput: A clear answer
`,
			wantErr:     ErrInvalidConfig,
			errContains: "its own output",
		},
		{
			name: "unknown template variable",
			content: `name: write
agent: writer
description: Answer {question}
expectedOutput: A clear answer
`,
			wantErr: ErrInvalidTemplate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "task.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test file: %v", err)
			}

			task, err := parser.ParseTask(configPath)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseTask() error = %v, want %v", err, tt.wantErr)
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("ParseTask() error = %v, should contain %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTask() unexpected error = %v", err)
			}
			if !task.DependsOn("research") {
				t.Errorf("expected task to depend on research, context = %v", task.Context)
			}
		})
	}
}

func TestParser_FileNotFound(t *testing.T) {
	parser := NewParser()
	_, err := parser.ParseAgent(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("expected ErrConfigNotFound, got %v", err)
	}
	_, err = parser.ParseTask(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestIsValidName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"researcher", true},
		{"tech-writer", true},
		{"agent2", true},
		{"", false},
		{"-writer", false},
		{"writer-", false},
		{"tech--writer", false},
		{"Tech_Writer", false},
		{"tech writer", false},
	}
	for _, tt := range tests {
		if got := isValidName(tt.name); got != tt.valid {
			t.Errorf("isValidName(%q) = %v, want %v", tt.name, got, tt.valid)
		}
	}
}

func TestParser_NameTooLong(t *testing.T) {
	parser := NewParser()
	agent := &Agent{
		Name:      strings.Repeat("a", 65),
		Role:      "r",
		Goal:      "g",
		Backstory: "b",
	}
	if err := parser.ValidateAgent(agent); !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
}

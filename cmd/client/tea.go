package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED"))
	statusStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

var errInterrupted = errors.New("interrupted")

// answerMsg 携带 predict 请求的结果
type answerMsg struct {
	answer string
	err    error
}

// waitModel 等待服务端返回时在 stderr 上显示 spinner
type waitModel struct {
	spinner spinner.Model
	query   string
	cancel  context.CancelFunc
	fetch   tea.Cmd

	answer string
	err    error
	done   bool
}

func newWaitModel(query string, fetch tea.Cmd, cancel context.CancelFunc) waitModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle
	return waitModel{
		spinner: s,
		query:   query,
		cancel:  cancel,
		fetch:   fetch,
	}
}

func (m waitModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch)
}

func (m waitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancel()
			m.err = errInterrupted
			m.done = true
			return m, tea.Quit
		}

	case answerMsg:
		m.answer = msg.answer
		m.err = msg.err
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m waitModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s Thinking... %s\n", m.spinner.View(), statusStyle.Render(truncate(m.query, 60)))
}

// predictWithSpinner 发送请求，期间在 out 上渲染 spinner
func predictWithSpinner(ctx context.Context, c predictor, query string, out io.Writer) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fetch := func() tea.Msg {
		answer, err := c.Predict(ctx, query)
		return answerMsg{answer: answer, err: err}
	}

	p := tea.NewProgram(newWaitModel(query, fetch, cancel), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	m := final.(waitModel)
	return m.answer, m.err
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}

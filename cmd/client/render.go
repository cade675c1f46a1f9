package main

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"k8s.io/klog/v2"
)

const wordWrap = 100

// renderAnswer 终端输出时用 glamour 渲染 markdown，失败时退回原文
func renderAnswer(raw string, pretty bool) string {
	if !pretty {
		return raw
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		klog.V(6).Infof("[Client] 创建 markdown 渲染器失败: %v", err)
		return raw
	}

	rendered, err := renderer.Render(raw)
	if err != nil {
		klog.V(6).Infof("[Client] markdown 渲染失败: %v", err)
		return raw
	}
	return strings.TrimRight(rendered, "\n")
}

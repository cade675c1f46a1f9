package crew

import "github.com/agenticrag/backend/internal/service/statemachine"

const (
	StageResearch = "research"
	StageWrite    = "write"
	// StagePipeline 无法归因到具体阶段的失败（例如链路本身出错）
	StagePipeline = "pipeline"
)

// ResearchInput 研究阶段输入，同时是整条链路的输入
type ResearchInput struct {
	RunID string
	Query string

	run *runContext
}

// ResearchOutput 研究阶段输出，也是写作阶段的输入
// 写作阶段能看到的上游数据只有 Research 字段
type ResearchOutput struct {
	RunID    string
	Query    string
	Research string

	run *runContext
}

// Result 最终结果，即写作阶段的输出
type Result struct {
	RunID string `json:"-"`
	Raw   string `json:"raw"`
}

// runContext 单次执行的私有状态，不跨请求共享
type runContext struct {
	state   *statemachine.Run
	failure *StageError
}

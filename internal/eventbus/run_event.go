package eventbus

import "time"

type RunEventType string

const (
	RunEventStageStarted  RunEventType = "StageStarted"
	RunEventStageFinished RunEventType = "StageFinished"
	RunEventCompleted     RunEventType = "RunCompleted"
	RunEventFailed        RunEventType = "RunFailed"
)

type RunEvent struct {
	Type         RunEventType
	RunID        string
	Stage        string // research, write
	Agent        string
	Duration     time.Duration
	OutputLength int
	Err          error
}

func (e RunEvent) EventType() RunEventType {
	return e.Type
}

type RunEventHandler = Handler[RunEvent]
type RunEventBus = Bus[RunEventType, RunEvent]

func NewRunEventBus() *RunEventBus {
	return NewBus[RunEventType, RunEvent]()
}

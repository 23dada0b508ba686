package apify

import "context"

// State 轮询状态机的状态
type State string

const (
	StateSubmitted State = "SUBMITTED"
	StatePolling   State = "POLLING"
	StateSucceeded State = "SUCCEEDED"
	StateFailed    State = "FAILED"
	StateTimedOut  State = "TIMED_OUT"
	StateCancelled State = "CANCELLED"
)

// ProgressEvent 轮询进度事件
type ProgressEvent struct {
	TaskID      string `json:"task_id,omitempty"`
	RunID       string `json:"run_id"`
	State       State  `json:"state"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
	Status      string `json:"status,omitempty"`
	Message     string `json:"message,omitempty"`
}

// ProgressReporter 接收轮询进度, 实现不得阻塞轮询
type ProgressReporter interface {
	Report(ctx context.Context, event ProgressEvent)
}

type taskIDKey struct{}

// WithTaskID 在 ctx 中记录调用方的任务ID
func WithTaskID(ctx context.Context, taskID string) context.Context {
	if taskID == "" {
		return ctx
	}
	return context.WithValue(ctx, taskIDKey{}, taskID)
}

// TaskIDFromContext 读取任务ID
func TaskIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(taskIDKey{}).(string)
	return id
}

package apify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seancondron/ReelLoop/internal/models"
	"github.com/seancondron/ReelLoop/internal/utils"
)

type fakeJobAPI struct {
	mu          sync.Mutex
	statuses    []string
	items       []models.RawMetadata
	startErr    error
	statusCalls int
	itemCalls   int
	aborted     []string
	onStatus    func(call int)
}

func (f *fakeJobAPI) StartRun(ctx context.Context, input RunInput) (string, error) {
	if f.startErr != nil {
		return "", f.startErr
	}
	return "run-1", nil
}

func (f *fakeJobAPI) GetRunStatus(ctx context.Context, runID string) (string, error) {
	f.mu.Lock()
	f.statusCalls++
	call := f.statusCalls
	f.mu.Unlock()

	if f.onStatus != nil {
		f.onStatus(call)
	}
	if len(f.statuses) == 0 {
		return RunStatusRunning, nil
	}
	idx := call - 1
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	return f.statuses[idx], nil
}

func (f *fakeJobAPI) GetDatasetItems(ctx context.Context, runID string) ([]models.RawMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.itemCalls++
	return f.items, nil
}

func (f *fakeJobAPI) AbortRun(ctx context.Context, runID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aborted = append(f.aborted, runID)
	return nil
}

type recordingReporter struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (r *recordingReporter) Report(ctx context.Context, event ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func newTestPoller(api JobAPI, reporter ProgressReporter) *Poller {
	return NewPoller(api, PollerConfig{Interval: 0, MaxAttempts: 30}, reporter, zap.NewNop())
}

func TestPollerTimesOutAfterExactlyMaxAttempts(t *testing.T) {
	api := &fakeJobAPI{}
	reporter := &recordingReporter{}

	_, err := newTestPoller(api, reporter).Run(context.Background(), "https://www.instagram.com/p/abc/")

	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrJobTimedOut)
	assert.Equal(t, 30, api.statusCalls)
	assert.Zero(t, api.itemCalls)

	last := reporter.events[len(reporter.events)-1]
	assert.Equal(t, StateTimedOut, last.State)
	assert.Equal(t, 30, last.MaxAttempts)
}

func TestPollerSucceedsAndStopsPolling(t *testing.T) {
	api := &fakeJobAPI{
		statuses: []string{RunStatusRunning, RunStatusRunning, RunStatusSucceeded},
		items:    []models.RawMetadata{{"caption": "first"}, {"caption": "second"}},
	}
	reporter := &recordingReporter{}

	item, err := newTestPoller(api, reporter).Run(context.Background(), "https://www.instagram.com/p/abc/")

	require.NoError(t, err)
	assert.Equal(t, "first", item["caption"])
	assert.Equal(t, 3, api.statusCalls)
	assert.Equal(t, 1, api.itemCalls)

	states := make([]State, 0, len(reporter.events))
	for _, e := range reporter.events {
		states = append(states, e.State)
	}
	assert.Equal(t, []State{StateSubmitted, StatePolling, StatePolling, StateSucceeded}, states)
}

func TestPollerTerminalFailures(t *testing.T) {
	tests := []struct {
		status string
		want   error
	}{
		{RunStatusFailed, utils.ErrJobFailed},
		{RunStatusAborted, utils.ErrJobAborted},
		{RunStatusTimedOut, utils.ErrJobAborted},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			api := &fakeJobAPI{statuses: []string{RunStatusRunning, tt.status}}

			_, err := newTestPoller(api, nil).Run(context.Background(), "u")

			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.status)
			assert.Equal(t, 2, api.statusCalls)
			assert.Zero(t, api.itemCalls)
		})
	}
}

func TestPollerNoResults(t *testing.T) {
	api := &fakeJobAPI{statuses: []string{RunStatusSucceeded}}

	_, err := newTestPoller(api, nil).Run(context.Background(), "u")

	assert.ErrorIs(t, err, utils.ErrNoResults)
	assert.True(t, utils.IsProviderFailure(err))
	assert.Equal(t, 1, api.statusCalls)
}

func TestPollerSubmitFailure(t *testing.T) {
	api := &fakeJobAPI{startErr: utils.ErrProviderRequestFailed}

	_, err := newTestPoller(api, nil).Run(context.Background(), "u")

	assert.ErrorIs(t, err, utils.ErrProviderRequestFailed)
	assert.Zero(t, api.statusCalls)
}

func TestPollerCancellationAbortsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := &fakeJobAPI{onStatus: func(call int) {
		if call == 2 {
			cancel()
		}
	}}
	reporter := &recordingReporter{}

	_, err := newTestPoller(api, reporter).Run(WithTaskID(ctx, "task-9"), "u")

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 2, api.statusCalls)
	assert.Equal(t, []string{"run-1"}, api.aborted)

	last := reporter.events[len(reporter.events)-1]
	assert.Equal(t, StateCancelled, last.State)
	assert.Equal(t, "task-9", last.TaskID)
}

func TestTaskIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, TaskIDFromContext(ctx))
	assert.Equal(t, ctx, WithTaskID(ctx, ""))
	assert.Equal(t, "abc", TaskIDFromContext(WithTaskID(ctx, "abc")))
}

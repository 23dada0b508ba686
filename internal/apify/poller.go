package apify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seancondron/ReelLoop/internal/models"
	"github.com/seancondron/ReelLoop/internal/utils"
)

const (
	DefaultPollInterval = 10 * time.Second
	DefaultMaxAttempts  = 30

	abortTimeout = 5 * time.Second
)

// JobAPI 轮询器依赖的平台接口
type JobAPI interface {
	StartRun(ctx context.Context, input RunInput) (string, error)
	GetRunStatus(ctx context.Context, runID string) (string, error)
	GetDatasetItems(ctx context.Context, runID string) ([]models.RawMetadata, error)
	AbortRun(ctx context.Context, runID string) error
}

// PollerConfig 轮询配置
type PollerConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

// Poller 提交抓取任务并轮询至终态
type Poller struct {
	api         JobAPI
	interval    time.Duration
	maxAttempts int
	reporter    ProgressReporter
	logger      *zap.Logger
}

// NewPoller 创建轮询器, reporter 可为 nil
func NewPoller(api JobAPI, cfg PollerConfig, reporter ProgressReporter, logger *zap.Logger) *Poller {
	if cfg.Interval < 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	return &Poller{
		api:         api,
		interval:    cfg.Interval,
		maxAttempts: cfg.MaxAttempts,
		reporter:    reporter,
		logger:      logger,
	}
}

// Run 提交单个帖子的抓取任务, 成功时返回第一条结果
func (p *Poller) Run(ctx context.Context, postURL string) (models.RawMetadata, error) {
	// 1. 提交任务
	runID, err := p.api.StartRun(ctx, NewRunInput(postURL))
	if err != nil {
		return nil, err
	}
	p.report(ctx, ProgressEvent{RunID: runID, State: StateSubmitted})

	// 2. 轮询状态
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err := p.wait(ctx); err != nil {
			p.abort(runID)
			p.report(ctx, ProgressEvent{RunID: runID, State: StateCancelled, Attempt: attempt - 1, Message: err.Error()})
			return nil, err
		}

		status, err := p.api.GetRunStatus(ctx, runID)
		if err != nil {
			if ctx.Err() != nil {
				p.abort(runID)
				p.report(ctx, ProgressEvent{RunID: runID, State: StateCancelled, Attempt: attempt, Message: ctx.Err().Error()})
				return nil, ctx.Err()
			}
			p.report(ctx, ProgressEvent{RunID: runID, State: StateFailed, Attempt: attempt, Message: err.Error()})
			return nil, err
		}

		switch status {
		case RunStatusSucceeded:
			// 3. 读取结果, 之后不再查询状态
			item, err := p.firstItem(ctx, runID)
			if err != nil {
				p.report(ctx, ProgressEvent{RunID: runID, State: StateFailed, Attempt: attempt, Status: status, Message: err.Error()})
				return nil, err
			}
			p.report(ctx, ProgressEvent{RunID: runID, State: StateSucceeded, Attempt: attempt, Status: status})
			return item, nil
		case RunStatusFailed:
			p.report(ctx, ProgressEvent{RunID: runID, State: StateFailed, Attempt: attempt, Status: status})
			return nil, fmt.Errorf("%w: run %s status %s", utils.ErrJobFailed, runID, status)
		case RunStatusAborted, RunStatusTimedOut:
			p.report(ctx, ProgressEvent{RunID: runID, State: StateFailed, Attempt: attempt, Status: status})
			return nil, fmt.Errorf("%w: run %s status %s", utils.ErrJobAborted, runID, status)
		default:
			p.report(ctx, ProgressEvent{RunID: runID, State: StatePolling, Attempt: attempt, Status: status})
		}
	}

	p.logger.Warn("Scrape run exceeded poll budget",
		zap.String("run_id", runID),
		zap.Int("max_attempts", p.maxAttempts),
	)
	p.report(ctx, ProgressEvent{RunID: runID, State: StateTimedOut, Attempt: p.maxAttempts})
	return nil, fmt.Errorf("%w: run %s after %d checks", utils.ErrJobTimedOut, runID, p.maxAttempts)
}

func (p *Poller) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *Poller) firstItem(ctx context.Context, runID string) (models.RawMetadata, error) {
	items, err := p.api.GetDatasetItems(ctx, runID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 || items[0] == nil {
		return nil, fmt.Errorf("%w: run %s", utils.ErrNoResults, runID)
	}
	return items[0], nil
}

// abort 尽力中止远端任务, 使用独立的短超时 ctx
func (p *Poller) abort(runID string) {
	ctx, cancel := context.WithTimeout(context.Background(), abortTimeout)
	defer cancel()

	if err := p.api.AbortRun(ctx, runID); err != nil {
		p.logger.Warn("Failed to abort scrape run", zap.String("run_id", runID), zap.Error(err))
		return
	}
	p.logger.Info("Scrape run aborted", zap.String("run_id", runID))
}

func (p *Poller) report(ctx context.Context, event ProgressEvent) {
	if p.reporter == nil {
		return
	}
	event.TaskID = TaskIDFromContext(ctx)
	event.MaxAttempts = p.maxAttempts
	p.reporter.Report(ctx, event)
}

// Package progress publishes scrape-job progress to Redis pub/sub.
package progress

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/seancondron/ReelLoop/internal/apify"
)

// ChannelPrefix 进度频道前缀
const ChannelPrefix = "progress:"

// Channel 任务对应的进度频道
func Channel(taskID string) string {
	return ChannelPrefix + taskID
}

// Publisher 进度发布器
type Publisher struct {
	redis  *redis.Client
	logger *zap.Logger
}

// NewPublisher 创建进度发布器
func NewPublisher(redisClient *redis.Client, logger *zap.Logger) *Publisher {
	return &Publisher{
		redis:  redisClient,
		logger: logger,
	}
}

// Publish 发布进度消息, 没有任务ID时使用 run ID
func (p *Publisher) Publish(ctx context.Context, event apify.ProgressEvent) error {
	taskID := event.TaskID
	if taskID == "" {
		taskID = event.RunID
	}
	channel := Channel(taskID)

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal progress message: %w", err)
	}

	if err := p.redis.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish progress: %w", err)
	}

	p.logger.Debug("Progress published",
		zap.String("channel", channel),
		zap.String("state", string(event.State)),
		zap.Int("attempt", event.Attempt),
	)
	return nil
}

// Report 实现 apify.ProgressReporter, 发布失败只记录日志
func (p *Publisher) Report(ctx context.Context, event apify.ProgressEvent) {
	if err := p.Publish(context.WithoutCancel(ctx), event); err != nil {
		p.logger.Warn("Failed to publish progress", zap.String("run_id", event.RunID), zap.Error(err))
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seancondron/ReelLoop/internal/adapter"
	"github.com/seancondron/ReelLoop/internal/detector"
	"github.com/seancondron/ReelLoop/internal/extractor"
	"github.com/seancondron/ReelLoop/internal/models"
	"github.com/seancondron/ReelLoop/internal/mq"
	"github.com/seancondron/ReelLoop/internal/normalizer"
	"github.com/seancondron/ReelLoop/internal/repository"
	"github.com/seancondron/ReelLoop/internal/utils"
)

const eventPublishTimeout = 5 * time.Second

// PreferenceStore 用户偏好读取
type PreferenceStore interface {
	SkipRestricted(ctx context.Context) bool
}

// EventPublisher 帖子事件发布
type EventPublisher interface {
	PublishPostEvent(ctx context.Context, event *mq.PostEvent) error
}

// PostService 帖子服务
type PostService struct {
	detector    *detector.PlatformDetector
	fetchers    map[models.Platform]adapter.Fetcher
	normalizer  *normalizer.Normalizer
	repo        repository.PostRepository
	preferences PreferenceStore
	events      EventPublisher
	logger      *zap.Logger
}

// PostServiceOptions 帖子服务依赖
type PostServiceOptions struct {
	Fetchers    map[models.Platform]adapter.Fetcher
	Normalizer  *normalizer.Normalizer
	Repository  repository.PostRepository
	Preferences PreferenceStore
	// Events 可为 nil, 此时不发布事件
	Events EventPublisher
	Logger *zap.Logger
}

// NewPostService 创建帖子服务
func NewPostService(opts PostServiceOptions) *PostService {
	if opts.Normalizer == nil {
		opts.Normalizer = normalizer.New(nil)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &PostService{
		detector:    detector.NewPlatformDetector(),
		fetchers:    opts.Fetchers,
		normalizer:  opts.Normalizer,
		repo:        opts.Repository,
		preferences: opts.Preferences,
		events:      opts.Events,
		logger:      opts.Logger,
	}
}

// AddPost 解析 URL 并保存帖子
// 受限内容且用户选择跳过时返回 ErrRestrictedContentSkipped
func (s *PostService) AddPost(ctx context.Context, url string) (*models.Post, error) {
	// 1. 检测平台
	platform := s.detector.Detect(url)
	if !platform.IsSupported() {
		return nil, fmt.Errorf("%w: %s", utils.ErrUnsupportedURL, url)
	}

	// 2. 提取帖子ID
	id, err := extractor.Extract(url, platform)
	if err != nil {
		return nil, err
	}

	fetcher, ok := s.fetchers[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not enabled", utils.ErrUnsupportedURL, platform)
	}

	s.logger.Info("Adding post",
		zap.String("url", url),
		zap.String("platform", platform.String()),
		zap.String("post_id", id.ID),
	)

	// 3. 获取元数据 (Instagram 会等待抓取任务完成)
	result, err := fetcher.Fetch(ctx, url, id)
	if err != nil {
		s.logger.Error("Metadata fetch failed",
			zap.String("url", url),
			zap.String("platform", platform.String()),
			zap.Error(err),
		)
		return nil, err
	}
	// 调用方已放弃时不保存降级结果
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 4. 受限内容策略, 5. 标准化
	var post models.Post
	if result.Restricted {
		decision := ApplyRestrictedPolicy(s.skipRestricted(ctx))
		s.logger.Info("Restricted post detected",
			zap.String("post_id", id.ID),
			zap.String("decision", decision.String()),
		)
		if decision == DecisionAbort {
			return nil, utils.ErrRestrictedContentSkipped
		}
		post = s.normalizer.Restricted(platform, id, url)
	} else {
		post = s.normalizer.Normalize(result.Metadata, platform, id, url)
	}

	// 6. 保存
	saved, err := s.repo.Insert(ctx, &post)
	if err != nil {
		s.logger.Error("Failed to save post", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", utils.ErrPersistenceFailed, err)
	}

	s.publish(ctx, mq.NewPostSavedEvent(saved, result.Restricted))

	s.logger.Info("Post saved",
		zap.String("id", saved.ID),
		zap.String("platform", platform.String()),
		zap.Bool("restricted", result.Restricted),
	)
	return saved, nil
}

// ListPosts 列出全部帖子, 读取失败时返回空列表
func (s *PostService) ListPosts(ctx context.Context) []models.Post {
	posts, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list posts", zap.Error(err))
		return []models.Post{}
	}
	return posts
}

// DeletePost 删除帖子, 失败时返回 false
func (s *PostService) DeletePost(ctx context.Context, id string) bool {
	deleted, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to delete post", zap.String("id", id), zap.Error(err))
		return false
	}
	if deleted {
		s.publish(ctx, mq.NewPostDeletedEvent(id))
	}
	return deleted
}

// ClearAll 逐条删除全部帖子, 返回删除的数量
func (s *PostService) ClearAll(ctx context.Context) int {
	removed := 0
	for _, post := range s.ListPosts(ctx) {
		if ctx.Err() != nil {
			break
		}
		if s.DeletePost(ctx, post.ID) {
			removed++
		}
	}
	s.logger.Info("Cleared saved posts", zap.Int("removed", removed))
	return removed
}

func (s *PostService) skipRestricted(ctx context.Context) bool {
	if s.preferences == nil {
		return false
	}
	return s.preferences.SkipRestricted(ctx)
}

func (s *PostService) publish(ctx context.Context, event *mq.PostEvent) {
	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
	defer cancel()

	if err := s.events.PublishPostEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish post event",
			zap.String("event", event.Event),
			zap.String("post_id", event.PostID),
			zap.Error(err),
		)
	}
}

// ErrorKind 返回错误对应的种类名称, 用于日志与响应
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Cancelled"
	case errors.Is(err, utils.ErrUnsupportedURL):
		return "UnsupportedUrl"
	case errors.Is(err, utils.ErrIdentifierExtraction):
		return "IdentifierExtractionFailed"
	case errors.Is(err, utils.ErrCredentialInvalid):
		return "CredentialInvalid"
	case errors.Is(err, utils.ErrJobFailed):
		return "JobFailed"
	case errors.Is(err, utils.ErrJobAborted):
		return "JobAborted"
	case errors.Is(err, utils.ErrJobTimedOut):
		return "JobTimedOut"
	case errors.Is(err, utils.ErrNoResults):
		return "NoResults"
	case errors.Is(err, utils.ErrProviderRequestFailed):
		return "ProviderRequestFailed"
	case errors.Is(err, utils.ErrRestrictedContentSkipped):
		return "RestrictedContentSkipped"
	case errors.Is(err, utils.ErrPersistenceFailed):
		return "PersistenceFailed"
	default:
		return "Internal"
	}
}

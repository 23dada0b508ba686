package adapter

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/seancondron/ReelLoop/internal/extractor"
	"github.com/seancondron/ReelLoop/internal/models"
	"github.com/seancondron/ReelLoop/internal/utils"
)

const restrictedPageError = "restricted_page"

// CredentialVerifier 抓取平台的凭证校验
type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context) error
}

// JobRunner 提交抓取任务并等待结果
type JobRunner interface {
	Run(ctx context.Context, postURL string) (models.RawMetadata, error)
}

// InstagramAdapter Instagram平台适配器 (异步抓取任务)
type InstagramAdapter struct {
	credentials CredentialVerifier
	jobs        JobRunner
	limiter     *utils.ConcurrencyLimiter
	logger      *zap.Logger
}

// NewInstagramAdapter 创建Instagram适配器
func NewInstagramAdapter(credentials CredentialVerifier, jobs JobRunner, maxConcurrentJobs int, logger *zap.Logger) *InstagramAdapter {
	return &InstagramAdapter{
		credentials: credentials,
		jobs:        jobs,
		limiter:     utils.NewConcurrencyLimiter(maxConcurrentJobs),
		logger:      logger,
	}
}

// Fetch 校验凭证后提交抓取任务并解析结果项
func (a *InstagramAdapter) Fetch(ctx context.Context, url string, id extractor.Identifier) (*FetchResult, error) {
	// 1. 校验凭证, 失败时不提交任务
	if err := a.credentials.VerifyCredentials(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !errors.Is(err, utils.ErrCredentialInvalid) {
			err = fmt.Errorf("%w: %w", utils.ErrCredentialInvalid, err)
		}
		return nil, err
	}

	// 2. 限制同时进行的抓取任务数
	if err := a.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer a.limiter.Release()

	// 3. 提交并轮询
	item, err := a.jobs.Run(ctx, url)
	if err != nil {
		return nil, err
	}

	// 4. 结果项级别的错误
	if itemErr, ok := item.String("error"); ok {
		if itemErr == restrictedPageError {
			a.logger.Info("Instagram post is restricted", zap.String("post_id", id.ID))
			return &FetchResult{Metadata: item, Restricted: true, Origin: OriginScrape}, nil
		}
		desc, _ := item.String("errorDescription")
		return nil, fmt.Errorf("%w: %s: %s", utils.ErrProviderRequestFailed, itemErr, desc)
	}

	return &FetchResult{Metadata: item, Origin: OriginScrape}, nil
}

// Package preference persists user preferences that change how posts are saved.
package preference

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const skipRestrictedKey = "reelloop:pref:skip_restricted"

// Store Redis 偏好设置存储
type Store struct {
	redis       *redis.Client
	defaultSkip bool
	logger      *zap.Logger
}

// NewStore 创建偏好设置存储
func NewStore(redisClient *redis.Client, defaultSkip bool, logger *zap.Logger) *Store {
	return &Store{
		redis:       redisClient,
		defaultSkip: defaultSkip,
		logger:      logger,
	}
}

// SkipRestricted 是否跳过受限内容; 未设置或读取失败时返回默认值
func (s *Store) SkipRestricted(ctx context.Context) bool {
	val, err := s.redis.Get(ctx, skipRestrictedKey).Result()
	if errors.Is(err, redis.Nil) {
		return s.defaultSkip
	}
	if err != nil {
		s.logger.Warn("Failed to read skip-restricted preference, using default",
			zap.Bool("default", s.defaultSkip),
			zap.Error(err),
		)
		return s.defaultSkip
	}

	skip, err := strconv.ParseBool(val)
	if err != nil {
		s.logger.Warn("Invalid skip-restricted preference value", zap.String("value", val))
		return s.defaultSkip
	}
	return skip
}

// SetSkipRestricted 保存跳过受限内容的设置
func (s *Store) SetSkipRestricted(ctx context.Context, skip bool) error {
	if err := s.redis.Set(ctx, skipRestrictedKey, strconv.FormatBool(skip), 0).Err(); err != nil {
		return fmt.Errorf("failed to save preference: %w", err)
	}
	return nil
}

// StaticStore 进程内的偏好设置, 用于未配置 Redis 的部署
type StaticStore struct {
	skip atomic.Bool
}

// NewStaticStore 创建进程内偏好设置
func NewStaticStore(defaultSkip bool) *StaticStore {
	s := &StaticStore{}
	s.skip.Store(defaultSkip)
	return s
}

// SkipRestricted 返回当前值
func (s *StaticStore) SkipRestricted(ctx context.Context) bool {
	return s.skip.Load()
}

// SetSkipRestricted 修改当前值, 重启后丢失
func (s *StaticStore) SetSkipRestricted(ctx context.Context, skip bool) error {
	s.skip.Store(skip)
	return nil
}

package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/seancondron/ReelLoop/internal/models"
	"github.com/seancondron/ReelLoop/internal/utils"
)

// LoadFunc 缓存未命中时加载元数据; cacheable=false 表示结果不写入缓存
type LoadFunc func(ctx context.Context) (meta models.RawMetadata, cacheable bool, err error)

// Service 元数据缓存服务
type Service struct {
	redis  *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// NewService 创建缓存服务
func NewService(redisClient *redis.Client, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{
		redis:  redisClient,
		ttl:    ttl,
		logger: logger,
	}
}

// Get 从缓存获取元数据
func (s *Service) Get(ctx context.Context, provider, url string) (models.RawMetadata, error) {
	key := generateCacheKey(provider, url)

	data, err := s.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, utils.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var meta models.RawMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}

	return meta, nil
}

// Set 将元数据写入缓存
func (s *Service) Set(ctx context.Context, provider, url string, meta models.RawMetadata) error {
	key := generateCacheKey(provider, url)

	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

// Delete 删除缓存
func (s *Service) Delete(ctx context.Context, provider, url string) error {
	return s.redis.Del(ctx, generateCacheKey(provider, url)).Err()
}

// GetOrLoad 读缓存, 未命中时合并并发的相同请求后调用 load
// 缓存读写错误只记录日志, 不影响结果
func (s *Service) GetOrLoad(ctx context.Context, provider, url string, load LoadFunc) (models.RawMetadata, error) {
	meta, err := s.Get(ctx, provider, url)
	if err == nil {
		return meta, nil
	}
	if !errors.Is(err, utils.ErrCacheMiss) {
		s.logger.Warn("Metadata cache read failed", zap.String("provider", provider), zap.Error(err))
	}

	// 合并后的加载不能随任一调用方取消, 否则其余调用方会拿到降级结果
	flightCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(generateCacheKey(provider, url), func() (interface{}, error) {
		loaded, cacheable, err := load(flightCtx)
		if err != nil {
			return nil, err
		}
		if cacheable {
			if err := s.Set(flightCtx, provider, url, loaded); err != nil {
				s.logger.Warn("Metadata cache write failed", zap.String("provider", provider), zap.Error(err))
			}
		}
		return loaded, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(models.RawMetadata), nil
	}
}

// generateCacheKey 生成缓存key
func generateCacheKey(provider, url string) string {
	hash := md5.Sum([]byte(provider + "|" + url))
	return fmt.Sprintf("reelloop:oembed:%x", hash)
}

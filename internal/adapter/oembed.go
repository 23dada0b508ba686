package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/seancondron/ReelLoop/internal/models"
)

const (
	DefaultTikTokOEmbedURL  = "https://www.tiktok.com/oembed"
	DefaultYouTubeOEmbedURL = "https://www.youtube.com/oembed"

	defaultRequestTimeout = 15 * time.Second
)

// OEmbedConfig oEmbed 客户端配置
type OEmbedConfig struct {
	Provider string
	Endpoint string
	// Params 附加查询参数, 例如 format=json
	Params  map[string]string
	Timeout time.Duration
}

// OEmbedClient oEmbed 查询客户端, 失败时降级为空元数据
type OEmbedClient struct {
	http     *resty.Client
	provider string
	endpoint string
	params   map[string]string
	timeout  time.Duration
	cache    MetadataCache
	logger   *zap.Logger
}

// NewOEmbedClient 创建 oEmbed 客户端, metaCache 可为 nil
func NewOEmbedClient(cfg OEmbedConfig, metaCache MetadataCache, logger *zap.Logger) *OEmbedClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRequestTimeout
	}
	return &OEmbedClient{
		http: resty.New().
			SetTimeout(cfg.Timeout).
			SetHeader("Accept", "application/json"),
		provider: cfg.Provider,
		endpoint: cfg.Endpoint,
		params:   cfg.Params,
		timeout:  cfg.Timeout,
		cache:    metaCache,
		logger:   logger,
	}
}

// Lookup 查询帖子的 oEmbed 元数据, 从不返回错误
func (c *OEmbedClient) Lookup(ctx context.Context, postURL string) models.RawMetadata {
	if c.cache == nil {
		meta, _ := c.load(ctx, postURL)
		return meta
	}

	meta, err := c.cache.GetOrLoad(ctx, c.provider, postURL, func(ctx context.Context) (models.RawMetadata, bool, error) {
		meta, ok := c.load(ctx, postURL)
		return meta, ok, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return models.RawMetadata{}
		}
		c.logger.Warn("oEmbed cache lookup failed", zap.String("provider", c.provider), zap.Error(err))
		meta, _ = c.load(ctx, postURL)
	}
	return meta
}

// load 发起一次请求, ok=false 表示已降级
func (c *OEmbedClient) load(ctx context.Context, postURL string) (models.RawMetadata, bool) {
	meta, err := c.request(ctx, postURL)
	if err != nil {
		c.logger.Warn("oEmbed lookup degraded to empty metadata",
			zap.String("provider", c.provider),
			zap.String("url", postURL),
			zap.Error(err),
		)
		return models.RawMetadata{}, false
	}
	return meta, true
}

func (c *OEmbedClient) request(ctx context.Context, postURL string) (models.RawMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("url", postURL).
		SetQueryParams(c.params).
		Get(c.endpoint)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("oembed returned %d", resp.StatusCode())
	}

	var meta models.RawMetadata
	if err := json.Unmarshal(resp.Body(), &meta); err != nil {
		return nil, fmt.Errorf("decode oembed: %w", err)
	}
	if meta == nil {
		meta = models.RawMetadata{}
	}
	return meta, nil
}

package adapter

import (
	"context"

	"github.com/seancondron/ReelLoop/internal/cache"
	"github.com/seancondron/ReelLoop/internal/extractor"
	"github.com/seancondron/ReelLoop/internal/models"
)

// 元数据来源
const (
	OriginOEmbed = "oembed"
	OriginScrape = "scrape"
)

// FetchResult 适配器返回的原始元数据
type FetchResult struct {
	Metadata   models.RawMetadata
	Restricted bool
	Origin     string
}

// Fetcher 平台适配器接口
type Fetcher interface {
	// Fetch 获取帖子的原始元数据
	Fetch(ctx context.Context, url string, id extractor.Identifier) (*FetchResult, error)
}

// MetadataCache oEmbed 结果缓存
type MetadataCache interface {
	GetOrLoad(ctx context.Context, provider, url string, load cache.LoadFunc) (models.RawMetadata, error)
}

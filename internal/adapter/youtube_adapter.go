package adapter

import (
	"context"

	"github.com/seancondron/ReelLoop/internal/extractor"
)

// YouTubeAdapter YouTube平台适配器
type YouTubeAdapter struct {
	oembed *OEmbedClient
}

// NewYouTubeAdapter 创建YouTube适配器
func NewYouTubeAdapter(oembed *OEmbedClient) *YouTubeAdapter {
	return &YouTubeAdapter{oembed: oembed}
}

// Fetch 通过 oEmbed 获取元数据
func (a *YouTubeAdapter) Fetch(ctx context.Context, url string, id extractor.Identifier) (*FetchResult, error) {
	return &FetchResult{
		Metadata: a.oembed.Lookup(ctx, url),
		Origin:   OriginOEmbed,
	}, nil
}

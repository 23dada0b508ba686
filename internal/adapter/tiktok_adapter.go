package adapter

import (
	"context"

	"github.com/seancondron/ReelLoop/internal/extractor"
)

// TikTokAdapter TikTok平台适配器
type TikTokAdapter struct {
	oembed *OEmbedClient
}

// NewTikTokAdapter 创建TikTok适配器
func NewTikTokAdapter(oembed *OEmbedClient) *TikTokAdapter {
	return &TikTokAdapter{oembed: oembed}
}

// Fetch 通过 oEmbed 获取元数据, 接口不可用时返回空元数据
func (a *TikTokAdapter) Fetch(ctx context.Context, url string, id extractor.Identifier) (*FetchResult, error) {
	return &FetchResult{
		Metadata: a.oembed.Lookup(ctx, url),
		Origin:   OriginOEmbed,
	}, nil
}

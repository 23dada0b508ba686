// Package normalizer maps provider metadata onto the canonical Post shape.
package normalizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/seancondron/ReelLoop/internal/extractor"
	"github.com/seancondron/ReelLoop/internal/models"
	"github.com/seancondron/ReelLoop/internal/utils"
)

const (
	unknownAuthor = "Unknown"

	// 受限内容的占位标记, 展示层据此识别
	restrictedTitleSuffix = "(Restricted Access)"
)

// Normalizer 元数据标准化器
type Normalizer struct {
	now func() time.Time
}

// New 创建标准化器, now 为空时使用 time.Now
func New(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

// Normalize 将原始元数据映射为标准 Post (不含 ID 与时间戳)
func (n *Normalizer) Normalize(raw models.RawMetadata, platform models.Platform, id extractor.Identifier, url string) models.Post {
	if raw == nil {
		raw = models.RawMetadata{}
	}

	switch platform {
	case models.PlatformInstagram:
		return n.normalizeInstagram(raw, id, url)
	case models.PlatformYouTube:
		post := n.normalizeOEmbed(raw, platform, id, url, YouTubeThumbnailURL(id.ID))
		// YouTube 无法从URL得到频道ID
		post.AuthorID = nil
		post.Location = models.StringPtr(guessLocation(oembedTitle(raw), youtubeLocationPatterns))
		return post
	default:
		post := n.normalizeOEmbed(raw, platform, id, url, TikTokThumbnailURL(id.ID))
		post.AuthorID = models.StringPtr(id.AuthorHandle)
		post.Location = models.StringPtr(guessLocation(oembedTitle(raw), tiktokLocationPatterns))
		return post
	}
}

// Restricted 生成受限内容的占位 Post
func (n *Normalizer) Restricted(platform models.Platform, id extractor.Identifier, url string) models.Post {
	notice := fmt.Sprintf("This %s post is private or restricted. Limited information available.", platform)
	return models.Post{
		URL:         url,
		Source:      platform,
		Type:        platform.Type(),
		Title:       fmt.Sprintf("%s Post %s", platform, restrictedTitleSuffix),
		Captions:    notice,
		Description: notice,
		PostID:      id.ID,
		Author:      unknownAuthor,
	}
}

// IsRestrictedPlaceholder 判断 Post 是否为受限内容占位
func IsRestrictedPlaceholder(post models.Post) bool {
	return strings.HasSuffix(post.Title, restrictedTitleSuffix)
}

func (n *Normalizer) normalizeOEmbed(raw models.RawMetadata, platform models.Platform, id extractor.Identifier, url, fallbackThumb string) models.Post {
	title := oembedTitle(raw)
	captions := title
	if title == "" {
		title = fmt.Sprintf("%s Video - %s", platform, n.now().Format("1/2/2006"))
	}

	author, ok := raw.String(oembedFields.Author...)
	switch {
	case ok:
		author = utils.SanitizeString(author)
	case id.AuthorHandle != "":
		author = "@" + id.AuthorHandle
	default:
		author = unknownAuthor
	}

	thumbnail, ok := raw.String(oembedFields.Thumbnail...)
	if !ok {
		thumbnail = fallbackThumb
	}

	return models.Post{
		URL:          url,
		Source:       platform,
		Type:         platform.Type(),
		Title:        title,
		Captions:     captions,
		Description:  captions,
		ThumbnailURL: models.StringPtr(thumbnail),
		PostID:       id.ID,
		Author:       author,
	}
}

func (n *Normalizer) normalizeInstagram(raw models.RawMetadata, id extractor.Identifier, url string) models.Post {
	owner, hasOwner := raw.String(instagramFields.Owner...)
	handle := owner
	if !hasOwner {
		handle = "unknown"
	}

	title := fmt.Sprintf("Instagram Post by @%s", handle)
	captions := fmt.Sprintf("Instagram post by @%s", handle)
	if caption, ok := raw.String(instagramFields.Caption...); ok {
		title = utils.SanitizeString(caption)
		captions = caption
	}

	author := unknownAuthor
	if hasOwner {
		author = owner
	}

	thumbnail, _ := raw.String(instagramFields.Thumbnail...)
	location, _ := raw.String(instagramFields.Location...)
	duration, _ := raw.Float(instagramFields.Duration...)
	if duration < 0 {
		duration = 0
	}

	return models.Post{
		URL:          url,
		Source:       models.PlatformInstagram,
		Type:         models.PlatformInstagram.Type(),
		Title:        title,
		Captions:     captions,
		Description:  captions,
		ThumbnailURL: models.StringPtr(thumbnail),
		PostID:       id.ID,
		Author:       author,
		AuthorID:     models.StringPtr(owner),
		Location:     models.StringPtr(location),
		CommentCount: raw.Count(instagramFields.CommentCount...),
		PlayCount:    raw.Count(instagramFields.PlayCount...),
		LikeCount:    raw.Count(instagramFields.LikeCount...),
		Duration:     duration,
	}
}

func oembedTitle(raw models.RawMetadata) string {
	title, _ := raw.String(oembedFields.Title...)
	return utils.SanitizeString(title)
}

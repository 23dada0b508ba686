package models

import (
	"strings"
	"time"
)

// Platform 帖子来源平台
type Platform string

const (
	PlatformUnsupported Platform = ""
	PlatformTikTok      Platform = "TikTok"
	PlatformInstagram   Platform = "Instagram"
	PlatformYouTube     Platform = "YouTube"
)

// Platforms 所有支持的平台
var Platforms = []Platform{PlatformTikTok, PlatformInstagram, PlatformYouTube}

// IsSupported 是否为支持的平台
func (p Platform) IsSupported() bool {
	switch p {
	case PlatformTikTok, PlatformInstagram, PlatformYouTube:
		return true
	}
	return false
}

// Type 返回小写的平台标签, 对应 Post.Type
func (p Platform) Type() string {
	return strings.ToLower(string(p))
}

func (p Platform) String() string {
	if p == PlatformUnsupported {
		return "unsupported"
	}
	return string(p)
}

// Post 标准化后的社交媒体帖子
type Post struct {
	ID           string    `json:"id" bson:"_id"`
	URL          string    `json:"url" bson:"url"`
	Source       Platform  `json:"source" bson:"source"`
	Type         string    `json:"type" bson:"type"`
	Title        string    `json:"title" bson:"title"`
	Captions     string    `json:"captions" bson:"captions"`
	Description  string    `json:"description" bson:"description"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty" bson:"thumbnail_url,omitempty"`
	PostID       string    `json:"post_id" bson:"post_id"`
	Author       string    `json:"author" bson:"author"`
	AuthorID     *string   `json:"author_id,omitempty" bson:"author_id,omitempty"`
	Location     *string   `json:"location,omitempty" bson:"location,omitempty"`
	PlayCount    int64     `json:"play_count" bson:"play_count"`
	DiggCount    int64     `json:"digg_count" bson:"digg_count"`
	CommentCount int64     `json:"comment_count" bson:"comment_count"`
	ShareCount   int64     `json:"share_count" bson:"share_count"`
	LikeCount    int64     `json:"like_count" bson:"like_count"`
	Duration     float64   `json:"duration" bson:"duration"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// StringPtr 返回非空字符串的指针, 空串返回 nil
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

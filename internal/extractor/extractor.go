// Package extractor derives platform-native post identifiers from URL text.
package extractor

import (
	"fmt"
	"regexp"

	"github.com/seancondron/ReelLoop/internal/models"
	"github.com/seancondron/ReelLoop/internal/utils"
)

// Identifier 从URL中提取的帖子标识
type Identifier struct {
	ID           string
	AuthorHandle string
}

var (
	tiktokIDPattern     = regexp.MustCompile(`/(?:v|@[\w.-]+/video)/(\d+)`)
	tiktokHandlePattern = regexp.MustCompile(`@([^/]+)`)

	instagramIDPattern     = regexp.MustCompile(`/(?:p|reel|tv)/([A-Za-z0-9_-]+)`)
	instagramHandlePattern = regexp.MustCompile(`instagram\.com/([^/?#]+)`)

	// 按顺序尝试, 第一个命中的生效
	youtubeIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|m\.youtube\.com/watch\?v=)([\w-]+)`),
		regexp.MustCompile(`youtube\.com/embed/([\w-]+)`),
		regexp.MustCompile(`youtube\.com/v/([\w-]+)`),
		regexp.MustCompile(`youtube\.com/shorts/([\w-]+)`),
	}
)

var instagramContentSegments = map[string]bool{"p": true, "reel": true, "tv": true}

// Extract 按平台规则提取帖子ID, 未命中返回 ErrIdentifierExtraction
func Extract(url string, platform models.Platform) (Identifier, error) {
	switch platform {
	case models.PlatformTikTok:
		return extractTikTok(url)
	case models.PlatformInstagram:
		return extractInstagram(url)
	case models.PlatformYouTube:
		return extractYouTube(url)
	default:
		return Identifier{}, fmt.Errorf("%w: %s", utils.ErrUnsupportedURL, url)
	}
}

func extractTikTok(url string) (Identifier, error) {
	m := tiktokIDPattern.FindStringSubmatch(url)
	if len(m) < 2 {
		return Identifier{}, fmt.Errorf("%w: no TikTok video id in %s", utils.ErrIdentifierExtraction, url)
	}

	id := Identifier{ID: m[1]}
	if h := tiktokHandlePattern.FindStringSubmatch(url); len(h) == 2 {
		id.AuthorHandle = h[1]
	}
	return id, nil
}

func extractInstagram(url string) (Identifier, error) {
	m := instagramIDPattern.FindStringSubmatch(url)
	if len(m) < 2 {
		return Identifier{}, fmt.Errorf("%w: no Instagram post id in %s", utils.ErrIdentifierExtraction, url)
	}

	id := Identifier{ID: m[1]}
	// instagram.com/<user>/p/<id> 形式才带作者
	if h := instagramHandlePattern.FindStringSubmatch(url); len(h) == 2 && !instagramContentSegments[h[1]] {
		id.AuthorHandle = h[1]
	}
	return id, nil
}

func extractYouTube(url string) (Identifier, error) {
	for _, pattern := range youtubeIDPatterns {
		if m := pattern.FindStringSubmatch(url); len(m) == 2 && m[1] != "" {
			return Identifier{ID: m[1]}, nil
		}
	}
	return Identifier{}, fmt.Errorf("%w: no YouTube video id in %s", utils.ErrIdentifierExtraction, url)
}

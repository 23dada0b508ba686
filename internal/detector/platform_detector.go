package detector

import (
	"regexp"

	"github.com/seancondron/ReelLoop/internal/models"
)

// PlatformDetector 平台检测器
type PlatformDetector struct {
	patterns map[models.Platform]*regexp.Regexp
}

// NewPlatformDetector 创建平台检测器
func NewPlatformDetector() *PlatformDetector {
	return &PlatformDetector{
		patterns: map[models.Platform]*regexp.Regexp{
			models.PlatformTikTok:    regexp.MustCompile(`^https?://(www\.)?(tiktok\.com|vm\.tiktok\.com|vt\.tiktok\.com)`),
			models.PlatformInstagram: regexp.MustCompile(`^https?://(www\.)?(instagram\.com|instagr\.am)`),
			models.PlatformYouTube:   regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com/(watch\?v=|shorts/)|youtu\.be/|m\.youtube\.com/(watch\?v=|shorts/))[\w-]+`),
		},
	}
}

// Detect 检测URL所属平台, 未匹配返回 PlatformUnsupported
func (d *PlatformDetector) Detect(url string) models.Platform {
	// 各平台域名互不相交, 遍历顺序无关
	for platform, pattern := range d.patterns {
		if pattern.MatchString(url) {
			return platform
		}
	}
	return models.PlatformUnsupported
}

package normalizer

import (
	"regexp"
	"strings"
)

var (
	tiktokLocationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`in\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
		regexp.MustCompile(`at\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
		regexp.MustCompile(`#([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
	}

	youtubeLocationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)@\s*([^,]+)`),
		regexp.MustCompile(`(?i)in\s+([^,]+)`),
		regexp.MustCompile(`(?i)from\s+([^,]+)`),
	}
)

// guessLocation 从标题中猜测地点, 失败返回空串
func guessLocation(title string, patterns []*regexp.Regexp) string {
	if title == "" {
		return ""
	}
	for _, pattern := range patterns {
		if m := pattern.FindStringSubmatch(title); len(m) == 2 {
			if loc := strings.TrimSpace(m[1]); loc != "" {
				return loc
			}
		}
	}
	return ""
}

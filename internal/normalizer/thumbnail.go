package normalizer

import "fmt"

// TikTokThumbnailCandidates 根据视频ID推导的缩略图候选地址
func TikTokThumbnailCandidates(videoID string) []string {
	return []string{
		fmt.Sprintf("https://p16-sign-va.tiktokcdn-us.com/obj/tos-useast2a-p-0068-tx/placeholder_%s.jpeg", videoID),
		fmt.Sprintf("https://p16-sign.tiktokcdn-us.com/obj/tos-useast2a-p-0068-tx/%s_1.jpeg", videoID),
		fmt.Sprintf("https://p16-sign-va.tiktokcdn-us.com/obj/tos-useast2a-p-0068-tx/%s_1.jpeg", videoID),
		fmt.Sprintf("https://p16-sign.tiktokcdn-us.com/obj/tos-useast2a-p-0068-tx/%s.jpeg", videoID),
	}
}

// TikTokThumbnailURL 只取第一个候选, 不做可用性探测
func TikTokThumbnailURL(videoID string) string {
	return TikTokThumbnailCandidates(videoID)[0]
}

// YouTubeThumbnailURL YouTube 默认缩略图
func YouTubeThumbnailURL(videoID string) string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", videoID)
}

package normalizer

// 各平台字段的候选键, 按优先级排列, 第一个存在的值生效

var oembedFields = struct {
	Title     []string
	Author    []string
	Thumbnail []string
}{
	Title:     []string{"title"},
	Author:    []string{"author_name"},
	Thumbnail: []string{"thumbnail_url"},
}

var instagramFields = struct {
	Caption      []string
	Owner        []string
	Thumbnail    []string
	Location     []string
	CommentCount []string
	PlayCount    []string
	LikeCount    []string
	Duration     []string
}{
	Caption:      []string{"caption", "text"},
	Owner:        []string{"ownerUsername", "username"},
	Thumbnail:    []string{"displayUrl", "imageUrl", "thumbnailUrl"},
	Location:     []string{"locationName", "location"},
	CommentCount: []string{"commentsCount", "commentCount"},
	PlayCount:    []string{"videoViewCount", "viewCount"},
	LikeCount:    []string{"likesCount", "likeCount"},
	Duration:     []string{"videoDuration", "duration"},
}

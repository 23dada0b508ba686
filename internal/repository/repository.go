package repository

import (
	"context"

	"github.com/seancondron/ReelLoop/internal/models"
)

// PostRepository 帖子存储接口
type PostRepository interface {
	// Insert 保存帖子, 由存储分配 ID 与时间戳
	Insert(ctx context.Context, post *models.Post) (*models.Post, error)
	// ListAll 按创建时间倒序返回全部帖子
	ListAll(ctx context.Context) ([]models.Post, error)
	// DeleteByID 删除帖子, 返回是否确有记录被删除
	DeleteByID(ctx context.Context, id string) (bool, error)
}

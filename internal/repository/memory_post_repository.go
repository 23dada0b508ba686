package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seancondron/ReelLoop/internal/models"
)

// MemoryPostRepository 进程内帖子存储, 用于开发与测试
type MemoryPostRepository struct {
	mu    sync.RWMutex
	posts map[string]models.Post
	now   func() time.Time
}

// NewMemoryPostRepository 创建进程内仓储
func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{
		posts: make(map[string]models.Post),
		now:   time.Now,
	}
}

// Insert 保存帖子
func (r *MemoryPostRepository) Insert(ctx context.Context, post *models.Post) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	saved := *post
	saved.ID = uuid.NewString()
	saved.CreatedAt = r.now().UTC()
	saved.UpdatedAt = saved.CreatedAt

	r.mu.Lock()
	r.posts[saved.ID] = saved
	r.mu.Unlock()

	return &saved, nil
}

// ListAll 按创建时间倒序列出帖子
func (r *MemoryPostRepository) ListAll(ctx context.Context) ([]models.Post, error) {
	r.mu.RLock()
	posts := make([]models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		posts = append(posts, p)
	}
	r.mu.RUnlock()

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

// DeleteByID 删除帖子
func (r *MemoryPostRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return false, nil
	}
	delete(r.posts, id)
	return true, nil
}

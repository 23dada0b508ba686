package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/seancondron/ReelLoop/internal/models"
)

// MongoPostRepository 帖子数据访问层 (MongoDB)
type MongoPostRepository struct {
	col *mongo.Collection
}

// NewMongoPostRepository 创建帖子仓储
func NewMongoPostRepository(db *mongo.Database, collection string) *MongoPostRepository {
	return &MongoPostRepository{col: db.Collection(collection)}
}

// EnsureIndexes 创建列表排序所需的索引
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

// Insert 插入帖子
func (r *MongoPostRepository) Insert(ctx context.Context, post *models.Post) (*models.Post, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)

	saved := *post
	saved.ID = uuid.NewString()
	saved.CreatedAt = now
	saved.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, &saved); err != nil {
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}
	return &saved, nil
}

// ListAll 按创建时间倒序列出帖子
func (r *MongoPostRepository) ListAll(ctx context.Context) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer cur.Close(ctx)

	posts := make([]models.Post, 0)
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	return posts, nil
}

// DeleteByID 删除帖子
func (r *MongoPostRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("failed to delete post: %w", err)
	}
	return res.DeletedCount > 0, nil
}

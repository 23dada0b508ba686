package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/seancondron/ReelLoop/internal/models"
)

const postColumns = `id, url, source, type, title, captions, description, thumbnail_url, post_id,
		author, author_id, location, play_count, digg_count, comment_count, share_count, like_count,
		duration, created_at, updated_at`

// PostgresPostRepository 帖子数据访问层 (PostgreSQL)
type PostgresPostRepository struct {
	db *sql.DB
}

// NewPostgresPostRepository 创建帖子仓储
func NewPostgresPostRepository(db *sql.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// Insert 插入帖子, ID 与时间戳由数据库生成
func (r *PostgresPostRepository) Insert(ctx context.Context, post *models.Post) (*models.Post, error) {
	query := `
		INSERT INTO social_posts (url, source, type, title, captions, description, thumbnail_url, post_id,
			author, author_id, location, play_count, digg_count, comment_count, share_count, like_count, duration)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, updated_at
	`

	saved := *post
	err := r.db.QueryRowContext(
		ctx, query,
		post.URL,
		string(post.Source),
		post.Type,
		post.Title,
		post.Captions,
		post.Description,
		post.ThumbnailURL,
		post.PostID,
		post.Author,
		post.AuthorID,
		post.Location,
		post.PlayCount,
		post.DiggCount,
		post.CommentCount,
		post.ShareCount,
		post.LikeCount,
		post.Duration,
	).Scan(&saved.ID, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}

	return &saved, nil
}

// ListAll 按创建时间倒序列出帖子
func (r *PostgresPostRepository) ListAll(ctx context.Context) ([]models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM social_posts ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}

	return posts, nil
}

// DeleteByID 删除帖子
func (r *PostgresPostRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	// 非法 UUID 不可能存在
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM social_posts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete post: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

func scanPost(rows *sql.Rows) (*models.Post, error) {
	var (
		post                          models.Post
		source                        string
		thumbnail, authorID, location sql.NullString
	)

	err := rows.Scan(
		&post.ID,
		&post.URL,
		&source,
		&post.Type,
		&post.Title,
		&post.Captions,
		&post.Description,
		&thumbnail,
		&post.PostID,
		&post.Author,
		&authorID,
		&location,
		&post.PlayCount,
		&post.DiggCount,
		&post.CommentCount,
		&post.ShareCount,
		&post.LikeCount,
		&post.Duration,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	post.Source = models.Platform(source)
	post.ThumbnailURL = nullStringPtr(thumbnail)
	post.AuthorID = nullStringPtr(authorID)
	post.Location = nullStringPtr(location)
	return &post, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return models.StringPtr(ns.String)
}

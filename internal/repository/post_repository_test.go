package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seancondron/ReelLoop/internal/models"
)

var listColumns = []string{
	"id", "url", "source", "type", "title", "captions", "description", "thumbnail_url", "post_id",
	"author", "author_id", "location", "play_count", "digg_count", "comment_count", "share_count", "like_count",
	"duration", "created_at", "updated_at",
}

func newMockRepo(t *testing.T) (*PostgresPostRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresPostRepository(db), mock
}

func TestPostgresInsert(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	thumb := "https://img.youtube.com/vi/abc/maxresdefault.jpg"

	post := &models.Post{
		URL:          "https://youtu.be/abc",
		Source:       models.PlatformYouTube,
		Type:         "youtube",
		Title:        "Clip",
		ThumbnailURL: &thumb,
		PostID:       "abc",
		Author:       "Channel",
	}

	mock.ExpectQuery("INSERT INTO social_posts").
		WithArgs(post.URL, "YouTube", "youtube", "Clip", "", "", thumb, "abc", "Channel",
			nil, nil, int64(0), int64(0), int64(0), int64(0), int64(0), float64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("5f0c6f1e-8f6a-4c53-9d43-1f7f1c1a2b3c", created, created))

	saved, err := repo.Insert(context.Background(), post)
	require.NoError(t, err)
	assert.Equal(t, "5f0c6f1e-8f6a-4c53-9d43-1f7f1c1a2b3c", saved.ID)
	assert.Equal(t, created, saved.CreatedAt)
	assert.Empty(t, post.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresInsertError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("INSERT INTO social_posts").WillReturnError(errors.New("connection reset"))

	_, err := repo.Insert(context.Background(), &models.Post{Source: models.PlatformTikTok})
	assert.Error(t, err)
}

func TestPostgresListAll(t *testing.T) {
	repo, mock := newMockRepo(t)
	newer := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	rows := sqlmock.NewRows(listColumns).
		AddRow("id-2", "u2", "TikTok", "tiktok", "t2", "", "", "https://thumb", "2",
			"@me", "me", nil, 0, 0, 0, 0, 0, 0.0, newer, newer).
		AddRow("id-1", "u1", "Instagram", "instagram", "t1", "c", "c", nil, "1",
			"owner", "owner", "Paris", 10, 0, 2, 0, 5, 12.5, older, older)
	mock.ExpectQuery(regexp.QuoteMeta("FROM social_posts ORDER BY created_at DESC")).WillReturnRows(rows)

	posts, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "id-2", posts[0].ID)
	assert.Equal(t, models.PlatformTikTok, posts[0].Source)
	assert.Equal(t, "https://thumb", *posts[0].ThumbnailURL)
	assert.Nil(t, posts[0].Location)

	assert.Equal(t, models.PlatformInstagram, posts[1].Source)
	assert.Nil(t, posts[1].ThumbnailURL)
	assert.Equal(t, "Paris", *posts[1].Location)
	assert.EqualValues(t, 5, posts[1].LikeCount)
	assert.Equal(t, 12.5, posts[1].Duration)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeleteByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := "5f0c6f1e-8f6a-4c53-9d43-1f7f1c1a2b3c"

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM social_posts WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM social_posts WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.DeleteByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeleteByID(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, deleted)

	// 非法 ID 不访问数据库
	deleted, err = repo.DeleteByID(context.Background(), "not-a-uuid")
	require.NoError(t, err)
	assert.False(t, deleted)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryRepository(t *testing.T) {
	repo := NewMemoryPostRepository()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	ctx := context.Background()

	first, err := repo.Insert(ctx, &models.Post{Title: "first"})
	require.NoError(t, err)
	second, err := repo.Insert(ctx, &models.Post{Title: "second"})
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)

	posts, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "second", posts[0].Title)
	assert.Equal(t, "first", posts[1].Title)

	deleted, err := repo.DeleteByID(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeleteByID(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	posts, err = repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

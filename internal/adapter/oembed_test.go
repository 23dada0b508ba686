package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seancondron/ReelLoop/internal/cache"
	"github.com/seancondron/ReelLoop/internal/extractor"
)

func TestTikTokAdapterReturnsOEmbedMetadata(t *testing.T) {
	var gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.Query().Get("url")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"Dance","author_name":"creator","thumbnail_url":"https://img/t.jpg"}`))
	}))
	defer srv.Close()

	client := NewOEmbedClient(OEmbedConfig{Provider: "tiktok", Endpoint: srv.URL}, nil, zap.NewNop())
	result, err := NewTikTokAdapter(client).Fetch(context.Background(), "https://www.tiktok.com/@a/video/1?lang=en&x=1", extractor.Identifier{ID: "1"})

	require.NoError(t, err)
	assert.Equal(t, "https://www.tiktok.com/@a/video/1?lang=en&x=1", gotURL)
	assert.Equal(t, OriginOEmbed, result.Origin)
	assert.False(t, result.Restricted)
	assert.Equal(t, "Dance", result.Metadata["title"])
}

func TestYouTubeAdapterSendsFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		_, _ = w.Write([]byte(`{"title":"Clip"}`))
	}))
	defer srv.Close()

	client := NewOEmbedClient(OEmbedConfig{
		Provider: "youtube",
		Endpoint: srv.URL,
		Params:   map[string]string{"format": "json"},
	}, nil, zap.NewNop())
	result, err := NewYouTubeAdapter(client).Fetch(context.Background(), "https://youtu.be/abc", extractor.Identifier{ID: "abc"})

	require.NoError(t, err)
	assert.Equal(t, "Clip", result.Metadata["title"])
}

func TestOEmbedDegradesToEmptyMetadata(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		client := NewOEmbedClient(OEmbedConfig{Provider: "tiktok", Endpoint: srv.URL}, nil, zap.NewNop())
		result, err := NewTikTokAdapter(client).Fetch(context.Background(), "https://www.tiktok.com/@a/video/1", extractor.Identifier{ID: "1"})

		require.NoError(t, err)
		assert.Empty(t, result.Metadata)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		endpoint := srv.URL
		srv.Close()

		client := NewOEmbedClient(OEmbedConfig{Provider: "tiktok", Endpoint: endpoint, Timeout: time.Second}, nil, zap.NewNop())
		result, err := NewTikTokAdapter(client).Fetch(context.Background(), "https://www.tiktok.com/@a/video/1", extractor.Identifier{ID: "1"})

		require.NoError(t, err)
		assert.NotNil(t, result.Metadata)
		assert.Empty(t, result.Metadata)
	})

	t.Run("slow provider", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(300 * time.Millisecond)
			_, _ = w.Write([]byte(`{"title":"late"}`))
		}))
		defer srv.Close()

		client := NewOEmbedClient(OEmbedConfig{Provider: "tiktok", Endpoint: srv.URL, Timeout: 50 * time.Millisecond}, nil, zap.NewNop())
		meta := client.Lookup(context.Background(), "https://www.tiktok.com/@a/video/1")

		assert.Empty(t, meta)
	})
}

func TestOEmbedUsesCache(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(`{"title":"cached"}`))
	}))
	defer srv.Close()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	metaCache := cache.NewService(rdb, time.Hour, zap.NewNop())

	client := NewOEmbedClient(OEmbedConfig{Provider: "tiktok", Endpoint: srv.URL}, metaCache, zap.NewNop())
	for i := 0; i < 3; i++ {
		meta := client.Lookup(context.Background(), "https://www.tiktok.com/@a/video/1")
		assert.Equal(t, "cached", meta["title"])
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestOEmbedDoesNotCacheFailures(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	client := NewOEmbedClient(OEmbedConfig{Provider: "tiktok", Endpoint: srv.URL}, cache.NewService(rdb, time.Hour, zap.NewNop()), zap.NewNop())
	client.Lookup(context.Background(), "u")
	client.Lookup(context.Background(), "u")

	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
	assert.Empty(t, mr.Keys())
}

func TestOEmbedSharedLookupSurvivesCancelledCaller(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{"title":"Real title"}`))
	}))
	defer srv.Close()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	client := NewOEmbedClient(OEmbedConfig{Provider: "tiktok", Endpoint: srv.URL}, cache.NewService(rdb, time.Hour, zap.NewNop()), zap.NewNop())

	const postURL = "https://www.tiktok.com/@a/video/1"
	firstCtx, cancel := context.WithCancel(context.Background())
	first := make(chan map[string]any, 1)
	go func() { first <- client.Lookup(firstCtx, postURL) }()
	time.Sleep(50 * time.Millisecond)

	second := make(chan map[string]any, 1)
	go func() { second <- client.Lookup(context.Background(), postURL) }()
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.Empty(t, <-first)
	assert.Equal(t, "Real title", (<-second)["title"])
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

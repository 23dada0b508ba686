package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seancondron/ReelLoop/internal/extractor"
	"github.com/seancondron/ReelLoop/internal/models"
	"github.com/seancondron/ReelLoop/internal/utils"
)

type stubCredentials struct{ err error }

func (s stubCredentials) VerifyCredentials(ctx context.Context) error { return s.err }

type stubJobs struct {
	item  models.RawMetadata
	err   error
	calls int
}

func (s *stubJobs) Run(ctx context.Context, postURL string) (models.RawMetadata, error) {
	s.calls++
	return s.item, s.err
}

const igURL = "https://www.instagram.com/p/Cabc/"

func TestInstagramAdapterCredentialFailureSubmitsNothing(t *testing.T) {
	tests := []error{
		utils.ErrCredentialInvalid,
		errors.New("dial tcp: refused"),
	}

	for _, credErr := range tests {
		jobs := &stubJobs{}
		a := NewInstagramAdapter(stubCredentials{err: credErr}, jobs, 1, zap.NewNop())

		_, err := a.Fetch(context.Background(), igURL, extractor.Identifier{ID: "Cabc"})

		assert.ErrorIs(t, err, utils.ErrCredentialInvalid)
		assert.Zero(t, jobs.calls)
	}
}

func TestInstagramAdapterReturnsItem(t *testing.T) {
	jobs := &stubJobs{item: models.RawMetadata{"caption": "hello", "ownerUsername": "me"}}
	a := NewInstagramAdapter(stubCredentials{}, jobs, 2, zap.NewNop())

	result, err := a.Fetch(context.Background(), igURL, extractor.Identifier{ID: "Cabc"})

	require.NoError(t, err)
	assert.Equal(t, OriginScrape, result.Origin)
	assert.False(t, result.Restricted)
	assert.Equal(t, "hello", result.Metadata["caption"])
	assert.Equal(t, 1, jobs.calls)
}

func TestInstagramAdapterRestrictedPage(t *testing.T) {
	jobs := &stubJobs{item: models.RawMetadata{"error": "restricted_page", "errorDescription": "login required"}}
	a := NewInstagramAdapter(stubCredentials{}, jobs, 1, zap.NewNop())

	result, err := a.Fetch(context.Background(), igURL, extractor.Identifier{ID: "Cabc"})

	require.NoError(t, err)
	assert.True(t, result.Restricted)
}

func TestInstagramAdapterItemError(t *testing.T) {
	jobs := &stubJobs{item: models.RawMetadata{"error": "not_found", "errorDescription": "Post does not exist"}}
	a := NewInstagramAdapter(stubCredentials{}, jobs, 1, zap.NewNop())

	_, err := a.Fetch(context.Background(), igURL, extractor.Identifier{ID: "Cabc"})

	assert.ErrorIs(t, err, utils.ErrProviderRequestFailed)
	assert.Contains(t, err.Error(), "not_found")
	assert.Contains(t, err.Error(), "Post does not exist")
}

func TestInstagramAdapterPropagatesJobErrors(t *testing.T) {
	jobs := &stubJobs{err: utils.ErrJobTimedOut}
	a := NewInstagramAdapter(stubCredentials{}, jobs, 1, zap.NewNop())

	_, err := a.Fetch(context.Background(), igURL, extractor.Identifier{ID: "Cabc"})

	assert.ErrorIs(t, err, utils.ErrJobTimedOut)
}

func TestInstagramAdapterRespectsCancelledLimiter(t *testing.T) {
	jobs := &stubJobs{item: models.RawMetadata{}}
	a := NewInstagramAdapter(stubCredentials{}, jobs, 1, zap.NewNop())
	require.NoError(t, a.limiter.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Fetch(ctx, igURL, extractor.Identifier{ID: "Cabc"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, jobs.calls)
}

func TestInstagramAdapterCancelledDuringCredentialCheck(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := &stubJobs{}
	a := NewInstagramAdapter(stubCredentials{err: errors.New("token check: context canceled")}, jobs, 1, zap.NewNop())
	_, err := a.Fetch(ctx, igURL, extractor.Identifier{ID: "Cabc"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, utils.ErrCredentialInvalid)
	assert.Zero(t, jobs.calls)
}

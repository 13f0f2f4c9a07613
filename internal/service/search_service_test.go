package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmednasr/issue-retriever/internal/models"
)

type recordingSearcher struct {
	repo  string
	vec   []float32
	k     int
	calls int
	hits  []models.ChunkHit
	err   error
}

func (r *recordingSearcher) SearchChunks(_ context.Context, repo string, vec []float32, k int) ([]models.ChunkHit, error) {
	r.calls++
	r.repo, r.vec, r.k = repo, vec, k
	return r.hits, r.err
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("quota exceeded")
}

func TestSearchService_Search(t *testing.T) {
	searcher := &recordingSearcher{hits: []models.ChunkHit{
		{Repo: "octocat/Hello-World", IssueNumber: 3, Index: 0, Text: "crash on start", Score: 0.91},
	}}
	svc := NewSearchService(searcher, lengthEmbedder{}, nil)

	hits, err := svc.Search(context.Background(), models.ChunkSearchRequest{
		Query: "  crash  ",
		Repo:  "octocat/Hello-World",
	})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 3, hits[0].IssueNumber)

	assert.Equal(t, "octocat/Hello-World", searcher.repo)
	assert.Equal(t, []float32{5}, searcher.vec, "query is trimmed before embedding")
	assert.Equal(t, DefaultSearchTopK, searcher.k)
}

func TestSearchService_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  models.ChunkSearchRequest
	}{
		{"empty query", models.ChunkSearchRequest{Query: "   "}},
		{"negative k", models.ChunkSearchRequest{Query: "q", TopK: -1}},
		{"k too large", models.ChunkSearchRequest{Query: "q", TopK: MaxSearchTopK + 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &recordingSearcher{}
			svc := NewSearchService(searcher, lengthEmbedder{}, nil)

			_, err := svc.Search(context.Background(), tt.req)
			require.ErrorIs(t, err, ErrInvalidSearch)
			assert.Zero(t, searcher.calls)
		})
	}
}

func TestSearchService_Disabled(t *testing.T) {
	_, err := NewSearchService(nil, lengthEmbedder{}, nil).Search(context.Background(), models.ChunkSearchRequest{Query: "q"})
	assert.ErrorIs(t, err, ErrSearchDisabled)

	_, err = NewSearchService(&recordingSearcher{}, nil, nil).Search(context.Background(), models.ChunkSearchRequest{Query: "q"})
	assert.ErrorIs(t, err, ErrSearchDisabled)
}

func TestSearchService_Failures(t *testing.T) {
	searcher := &recordingSearcher{}
	_, err := NewSearchService(searcher, failingEmbedder{}, nil).Search(context.Background(), models.ChunkSearchRequest{Query: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Zero(t, searcher.calls)

	searcher = &recordingSearcher{err: errors.New("index missing")}
	_, err = NewSearchService(searcher, lengthEmbedder{}, nil).Search(context.Background(), models.ChunkSearchRequest{Query: "q", TopK: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vector search failed")
	assert.Equal(t, 2, searcher.k)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ahmednasr/issue-retriever/internal/models"
)

// Result size bounds for chunk search.
const (
	DefaultSearchTopK = 5
	MaxSearchTopK     = 50
)

var (
	// ErrSearchDisabled is returned when no vector store or embedder is configured.
	ErrSearchDisabled = errors.New("chunk search not configured")
	// ErrInvalidSearch is returned for an empty query or an out-of-range k.
	ErrInvalidSearch = errors.New("invalid search request")
)

// ---- Repository contract ---------------------------------------------------

// ChunkSearcher exposes vector search over stored chunk embeddings.
type ChunkSearcher interface {
	// SearchChunks returns the top‑k chunks whose stored embedding is most
	// similar to queryVec, restricted to repo when it is non-empty.
	SearchChunks(ctx context.Context, repo string, queryVec []float32, k int) ([]models.ChunkHit, error)
}

// ---- Service interface + implementation ------------------------------------

// SearchService converts natural‑language queries into embeddings and performs
// K‑NN searches over the chunks persisted by RetrieverService.
type SearchService interface {
	Search(ctx context.Context, req models.ChunkSearchRequest) ([]models.ChunkHit, error)
}

type searchService struct {
	chunks   ChunkSearcher
	embedder Embedder
	log      *zap.Logger
}

// NewSearchService wires the chunk store and a query embedder. Either may be
// nil, in which case Search reports ErrSearchDisabled.
func NewSearchService(chunks ChunkSearcher, embedder Embedder, log *zap.Logger) SearchService {
	if log == nil {
		log = zap.NewNop()
	}
	return &searchService{
		chunks:   chunks,
		embedder: embedder,
		log:      log,
	}
}

// Search embeds the query string and calls the store's SearchChunks method.
func (s *searchService) Search(ctx context.Context, req models.ChunkSearchRequest) ([]models.ChunkHit, error) {
	if s.chunks == nil || s.embedder == nil {
		return nil, ErrSearchDisabled
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: query cannot be empty", ErrInvalidSearch)
	}
	k := req.TopK
	if k == 0 {
		k = DefaultSearchTopK
	}
	if k < 0 || k > MaxSearchTopK {
		return nil, fmt.Errorf("%w: k must be between 1 and %d", ErrInvalidSearch, MaxSearchTopK)
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	hits, err := s.chunks.SearchChunks(ctx, req.Repo, vec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	s.log.Debug("chunk search",
		zap.String("repo", req.Repo),
		zap.Int("k", k),
		zap.Int("hits", len(hits)))

	return hits, nil
}

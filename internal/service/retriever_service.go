package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ahmednasr/issue-retriever/internal/models"
)

// ---- Repository layer contracts -------------------------------------------

// RecordStore persists processed issues and their chunks.
type RecordStore interface {
	// FindRecord returns the stored record, or a zero StoredRecord and a nil
	// error when none exists.
	FindRecord(ctx context.Context, id string) (models.StoredRecord, error)
	UpsertRecord(ctx context.Context, rec models.StoredRecord) error
	// ReplaceChunks stores chunks for one issue and drops any stale ones.
	ReplaceChunks(ctx context.Context, repo string, issueNumber int, chunks []models.StoredChunk) error
}

// Retriever is the issue pipeline as seen by the service.
type Retriever interface {
	Retrieve(ctx context.Context, req models.RetrieveRequest) (*models.RetrievalResponse, error)
}

// ---- Service interface + implementation ------------------------------------

var (
	// ErrRecordNotFound is returned by GetRecord for unknown issues.
	ErrRecordNotFound = errors.New("record not found")
	// ErrStoreDisabled is returned by GetRecord when no store is configured.
	ErrStoreDisabled = errors.New("record store not configured")
)

// RetrieverService runs the pipeline and keeps its results.
type RetrieverService interface {
	Retrieve(ctx context.Context, req models.RetrieveRequest) (*models.RetrievalResponse, error)
	GetRecord(ctx context.Context, repo string, number int) (models.StoredRecord, error)
}

type retrieverService struct {
	pipeline Retriever
	store    RecordStore // optional
	embedder Embedder    // optional, only used with a store
	log      *zap.Logger
}

// NewRetrieverService wires dependencies. store and embedder may be nil.
func NewRetrieverService(pipeline Retriever, store RecordStore, embedder Embedder, log *zap.Logger) RetrieverService {
	if log == nil {
		log = zap.NewNop()
	}
	return &retrieverService{
		pipeline: pipeline,
		store:    store,
		embedder: embedder,
		log:      log,
	}
}

// Retrieve runs the pipeline, then persists every record. Persistence problems
// are logged; the caller still gets the response.
func (s *retrieverService) Retrieve(ctx context.Context, req models.RetrieveRequest) (*models.RetrievalResponse, error) {
	resp, err := s.pipeline.Retrieve(ctx, req)
	if err != nil {
		return nil, err
	}
	if s.store == nil {
		return resp, nil
	}

	for _, rec := range resp.Issues {
		if err := s.persist(ctx, req.Repo, rec); err != nil {
			s.log.Warn("persist issue record",
				zap.String("repo", req.Repo),
				zap.Int("issue_number", rec.IssueNumber),
				zap.Error(err))
		}
	}
	return resp, nil
}

func (s *retrieverService) persist(ctx context.Context, repo string, rec models.IssueRecord) error {
	chunks := make([]models.StoredChunk, len(rec.Chunks))
	for i, c := range rec.Chunks {
		chunks[i] = models.StoredChunk{
			ID:          fmt.Sprintf("%s:%d", RecordID(repo, rec.IssueNumber), c.Index),
			Repo:        repo,
			IssueNumber: rec.IssueNumber,
			Index:       c.Index,
			Text:        c.Text,
		}
		if s.embedder == nil {
			continue
		}
		vec, err := s.embedder.Embed(ctx, c.Text)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", c.Index, err)
		}
		chunks[i].Embedding = vec
	}

	if err := s.store.UpsertRecord(ctx, models.StoredRecord{
		ID:        RecordID(repo, rec.IssueNumber),
		Repo:      repo,
		Record:    rec,
		UpdatedAt: time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	if err := s.store.ReplaceChunks(ctx, repo, rec.IssueNumber, chunks); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}
	return nil
}

// GetRecord returns a previously stored record.
func (s *retrieverService) GetRecord(ctx context.Context, repo string, number int) (models.StoredRecord, error) {
	if s.store == nil {
		return models.StoredRecord{}, ErrStoreDisabled
	}
	rec, err := s.store.FindRecord(ctx, RecordID(repo, number))
	if err != nil {
		return models.StoredRecord{}, err
	}
	if rec.ID == "" {
		return models.StoredRecord{}, ErrRecordNotFound
	}
	return rec, nil
}

// RecordID formats the storage key "owner/name#number".
func RecordID(repo string, number int) string {
	return fmt.Sprintf("%s#%d", repo, number)
}

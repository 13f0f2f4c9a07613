// Package pipeline turns tracker issues into summarized, chunked records.
//
// For every issue it assembles the canonical text, extracts and fetches the
// linked pages, asks a Summarizer for a bullet summary and splits the text
// into overlapping chunks. Issues are processed one after another; only the
// link fetches of a single issue run concurrently.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ahmednasr/issue-retriever/internal/links"
	"github.com/ahmednasr/issue-retriever/internal/models"
)

// DefaultWebBaseURL prefixes the canonical repository URL added to every issue's links.
const DefaultWebBaseURL = "https://github.com"

// IssueTracker reads issues and their comment threads.
type IssueTracker interface {
	GetIssue(ctx context.Context, owner, name string, number int) (models.Issue, error)
	ListIssues(ctx context.Context, owner, name, state string) ([]models.Issue, error)
	ListComments(ctx context.Context, owner, name string, number int) ([]models.Comment, error)
}

// LinkFetcher retrieves link content. It must return one document per URL, in order.
type LinkFetcher interface {
	FetchAll(ctx context.Context, urls []string) []models.LinkDocument
}

// Summarizer produces a bullet summary of an issue's canonical text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Config tunes a Pipeline. Zero timeouts disable the corresponding deadline.
type Config struct {
	WebBaseURL     string
	TrackerTimeout time.Duration
	SummaryTimeout time.Duration
	// SkipFailedSummaries drops an issue whose summary failed and records it in
	// RetrievalResponse.Omitted. When false the whole request fails instead.
	SkipFailedSummaries bool
}

// Pipeline runs the retrieve operation.
type Pipeline struct {
	tracker    IssueTracker
	fetcher    LinkFetcher
	summarizer Summarizer
	cfg        Config
	log        *zap.Logger
}

// New wires a Pipeline. A nil logger is replaced with a no-op logger.
func New(tracker IssueTracker, fetcher LinkFetcher, summarizer Summarizer, cfg Config, log *zap.Logger) *Pipeline {
	if cfg.WebBaseURL == "" {
		cfg.WebBaseURL = DefaultWebBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		tracker:    tracker,
		fetcher:    fetcher,
		summarizer: summarizer,
		cfg:        cfg,
		log:        log,
	}
}

// Result carries the outcome of RetrieveAsync.
type Result struct {
	Response *models.RetrievalResponse
	Err      error
}

// RetrieveAsync runs Retrieve in a goroutine and delivers its result on the
// returned channel. Issues are still processed sequentially.
func (p *Pipeline) RetrieveAsync(ctx context.Context, req models.RetrieveRequest) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		resp, err := p.Retrieve(ctx, req)
		out <- Result{Response: resp, Err: err}
	}()
	return out
}

// Retrieve processes the requested issues and returns one record per issue in
// fetch order. Tracker failures abort the call; summary failures abort it too
// unless SkipFailedSummaries is set. No partial response accompanies an error.
func (p *Pipeline) Retrieve(ctx context.Context, req models.RetrieveRequest) (*models.RetrievalResponse, error) {
	t, err := parseRequest(req)
	if err != nil {
		return nil, err
	}

	log := p.log.With(zap.String("repo", t.repo()))

	issues, err := p.resolveIssues(ctx, t)
	if err != nil {
		return nil, err
	}
	log.Info("issues resolved", zap.Int("count", len(issues)), zap.String("state", t.state), zap.Int("issue_number", t.number))

	resp := &models.RetrievalResponse{Issues: make([]models.IssueRecord, 0, len(issues))}
	for _, issue := range issues {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := p.processIssue(ctx, t, issue)
		switch {
		case err == nil:
			resp.Issues = append(resp.Issues, record)
		case p.cfg.SkipFailedSummaries && isSummaryError(err):
			log.Warn("issue omitted", zap.Int("issue_number", issue.Number), zap.Error(err))
			resp.Omitted = append(resp.Omitted, models.OmittedIssue{IssueNumber: issue.Number, Reason: err.Error()})
		default:
			return nil, err
		}
	}

	return resp, nil
}

func (p *Pipeline) resolveIssues(ctx context.Context, t target) ([]models.Issue, error) {
	ctx, cancel := withTimeout(ctx, p.cfg.TrackerTimeout)
	defer cancel()

	if t.number > 0 {
		issue, err := p.tracker.GetIssue(ctx, t.owner, t.name, t.number)
		if err != nil {
			return nil, fmt.Errorf("%w: get issue %s#%d: %w", ErrTracker, t.repo(), t.number, err)
		}
		return []models.Issue{issue}, nil
	}

	issues, err := p.tracker.ListIssues(ctx, t.owner, t.name, t.state)
	if err != nil {
		return nil, fmt.Errorf("%w: list %s issues of %s: %w", ErrTracker, t.state, t.repo(), err)
	}
	return issues, nil
}

func (p *Pipeline) processIssue(ctx context.Context, t target, issue models.Issue) (models.IssueRecord, error) {
	log := p.log.With(zap.String("repo", t.repo()), zap.Int("issue_number", issue.Number))

	comments, err := p.listComments(ctx, t, issue.Number)
	if err != nil {
		return models.IssueRecord{}, err
	}
	text := AssembleText(issue, comments)

	urls := links.WithCanonical(links.Dedupe(links.Extract(text)), p.canonicalURL(t))
	docs := p.fetcher.FetchAll(ctx, urls)
	log.Debug("links fetched", zap.Int("links", len(docs)), zap.Int("comments", len(comments)))

	summary, err := p.summarize(ctx, text)
	if err != nil {
		return models.IssueRecord{}, fmt.Errorf("%w: %s#%d: %w", ErrSummarize, t.repo(), issue.Number, err)
	}

	pieces := t.splitter.Split(text)
	chunks := make([]models.TextChunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = models.TextChunk{IssueNumber: issue.Number, Index: i, Text: piece}
	}

	log.Info("issue processed", zap.Int("links", len(docs)), zap.Int("chunks", len(chunks)))
	return models.IssueRecord{
		IssueNumber: issue.Number,
		Summary:     summary,
		Links:       docs,
		Chunks:      chunks,
	}, nil
}

func (p *Pipeline) listComments(ctx context.Context, t target, number int) ([]models.Comment, error) {
	ctx, cancel := withTimeout(ctx, p.cfg.TrackerTimeout)
	defer cancel()

	comments, err := p.tracker.ListComments(ctx, t.owner, t.name, number)
	if err != nil {
		return nil, fmt.Errorf("%w: list comments of %s#%d: %w", ErrTracker, t.repo(), number, err)
	}
	return comments, nil
}

func (p *Pipeline) summarize(ctx context.Context, text string) (string, error) {
	ctx, cancel := withTimeout(ctx, p.cfg.SummaryTimeout)
	defer cancel()
	return p.summarizer.Summarize(ctx, text)
}

func (p *Pipeline) canonicalURL(t target) string {
	return strings.TrimRight(p.cfg.WebBaseURL, "/") + "/" + t.repo()
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

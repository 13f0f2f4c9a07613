package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ahmednasr/issue-retriever/internal/models"
)

// SummaryPrompt is the fixed system instruction sent with every issue.
const SummaryPrompt = `Summarize the following GitHub issue and its comments
into concise bullet points. Reply with JSON matching the given schema; put the
bullet points in "summary" and leave the other fields empty.`

// ErrMalformedSummary means the model answered but not with a usable record.
var ErrMalformedSummary = errors.New("malformed summary output")

// Summarizer turns an issue's canonical text into a bullet summary.
// It does not retry; any failure is returned to the caller.
type Summarizer struct {
	llm StructuredLLM
	log *zap.Logger
}

// NewSummarizer wires the model backend.
func NewSummarizer(llm StructuredLLM, log *zap.Logger) *Summarizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Summarizer{llm: llm, log: log}
}

// Summarize returns the summary field of the model's structured answer.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	raw, err := s.llm.GenerateRecord(ctx, SummaryPrompt, text)
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}

	var record models.IssueRecord
	if err := json.Unmarshal(stripCodeFence(raw), &record); err != nil {
		s.log.Debug("undecodable model output", zap.ByteString("output", raw))
		return "", fmt.Errorf("%w: %w", ErrMalformedSummary, err)
	}

	summary := strings.TrimSpace(record.Summary)
	if summary == "" {
		return "", fmt.Errorf("%w: empty summary", ErrMalformedSummary)
	}
	return summary, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add despite JSON mode.
func stripCodeFence(raw []byte) []byte {
	b := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	b = bytes.TrimPrefix(b, []byte("```"))
	if nl := bytes.IndexByte(b, '\n'); nl >= 0 {
		b = b[nl+1:]
	}
	b = bytes.TrimSuffix(bytes.TrimSpace(b), []byte("```"))
	return bytes.TrimSpace(b)
}

package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ahmednasr/issue-retriever/internal/models"
)

// dummyLLM answers without a model: the summary is the first line of the text.
// It lets the pipeline run end to end when no model is available.
type dummyLLM struct{}

// NewDummyLLM returns a StructuredLLM that never calls a model.
func NewDummyLLM() StructuredLLM {
	return dummyLLM{}
}

func (dummyLLM) GenerateRecord(_ context.Context, _ string, userText string) ([]byte, error) {
	title, _, _ := strings.Cut(userText, "\n")
	return json.Marshal(models.IssueRecord{
		Summary: "- " + strings.TrimSpace(title),
		Links:   []models.LinkDocument{},
		Chunks:  []models.TextChunk{},
	})
}

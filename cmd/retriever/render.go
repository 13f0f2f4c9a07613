package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/ahmednasr/issue-retriever/internal/models"
)

const (
	previewChunks = 3
	previewRunes  = 100
)

var rule = strings.Repeat("=", 60)

// printResponse writes a human-readable view of resp: each issue's summary,
// its links and a preview of the first chunks.
func printResponse(w io.Writer, resp *models.RetrievalResponse) {
	for _, rec := range resp.Issues {
		fmt.Fprintf(w, "\n%s\nIssue #%d\n%s\n", rule, rec.IssueNumber, rule)

		fmt.Fprintf(w, "\nSummary:\n%s\n", rec.Summary)

		fmt.Fprintf(w, "\nLinks found: %d\n", len(rec.Links))
		for _, l := range rec.Links {
			fmt.Fprintf(w, "   • %s\n", l.URL)
		}

		fmt.Fprintf(w, "\nText chunks: %d\n", len(rec.Chunks))
		for i, c := range rec.Chunks {
			if i == previewChunks {
				break
			}
			fmt.Fprintf(w, "   Chunk %d: %s...\n", i+1, preview(c.Text))
		}
	}

	for _, o := range resp.Omitted {
		fmt.Fprintf(w, "\nSkipped issue #%d: %s\n", o.IssueNumber, o.Reason)
	}
}

func preview(s string) string {
	r := []rune(s)
	if len(r) > previewRunes {
		r = r[:previewRunes]
	}
	return string(r)
}

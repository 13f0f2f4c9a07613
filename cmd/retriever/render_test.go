package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ahmednasr/issue-retriever/internal/models"
)

func TestPrintResponse(t *testing.T) {
	long := strings.Repeat("é", 150)
	resp := &models.RetrievalResponse{
		Issues: []models.IssueRecord{{
			IssueNumber: 1,
			Summary:     "- Found a bug",
			Links: []models.LinkDocument{
				{URL: "https://github.com/octocat/Hello-World/issues/1"},
				{URL: "https://example.com/log"},
			},
			Chunks: []models.TextChunk{
				{Index: 0, Text: "first"},
				{Index: 1, Text: long},
				{Index: 2, Text: "third"},
				{Index: 3, Text: "fourth"},
			},
		}},
		Omitted: []models.OmittedIssue{{IssueNumber: 2, Reason: "model timeout"}},
	}

	var buf bytes.Buffer
	printResponse(&buf, resp)
	out := buf.String()

	assert.Contains(t, out, "Issue #1")
	assert.Contains(t, out, "Summary:\n- Found a bug")
	assert.Contains(t, out, "Links found: 2")
	assert.Contains(t, out, "   • https://example.com/log")
	assert.Contains(t, out, "Text chunks: 4")
	assert.Contains(t, out, "   Chunk 1: first...")
	assert.Contains(t, out, "   Chunk 2: "+strings.Repeat("é", 100)+"...\n")
	assert.Contains(t, out, "   Chunk 3: third...")
	assert.NotContains(t, out, "fourth")
	assert.Contains(t, out, "Skipped issue #2: model timeout")
}

func TestRootCmd_Flags(t *testing.T) {
	cmd := newRootCmd()

	for _, name := range []string{"config", "init-config", "repo", "state", "issue", "chunk-size", "chunk-overlap", "json"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "open", cmd.Flags().Lookup("state").DefValue)
	assert.Equal(t, "1000", cmd.Flags().Lookup("chunk-size").DefValue)
	assert.Equal(t, "100", cmd.Flags().Lookup("chunk-overlap").DefValue)
}

func TestRootCmd_InitConfig(t *testing.T) {
	path := t.TempDir() + "/config.yaml"

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--init-config", "--config", path, "--repo", "o/r"})

	assert.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Wrote "+path)
	assert.FileExists(t, path)
}

package pipeline

import (
	"strings"

	"github.com/ahmednasr/issue-retriever/internal/models"
)

// CommentMarker introduces every comment in the canonical text.
const CommentMarker = "\n\n[Comment]\n"

// AssembleText builds the canonical text of an issue: the title, a blank line,
// the body, then each comment in tracker order behind CommentMarker.
func AssembleText(issue models.Issue, comments []models.Comment) string {
	var sb strings.Builder
	sb.WriteString(issue.Title)
	sb.WriteString("\n\n")
	sb.WriteString(issue.BodyText())
	for _, c := range comments {
		sb.WriteString(CommentMarker)
		sb.WriteString(c.Body)
	}
	return sb.String()
}

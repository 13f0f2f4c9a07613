package pipeline

import (
	"fmt"
	"strings"

	"github.com/ahmednasr/issue-retriever/internal/chunker"
	"github.com/ahmednasr/issue-retriever/internal/models"
)

// target is a validated RetrieveRequest.
type target struct {
	owner    string
	name     string
	state    string
	number   int // 0 means "every issue matching state"
	splitter *chunker.Splitter
}

func (t target) repo() string { return t.owner + "/" + t.name }

// parseRequest validates req without touching the network.
func parseRequest(req models.RetrieveRequest) (target, error) {
	owner, name, err := SplitRepo(req.Repo)
	if err != nil {
		return target{}, err
	}

	t := target{owner: owner, name: name}

	if req.IssueNumber != nil {
		if *req.IssueNumber <= 0 {
			return target{}, fmt.Errorf("%w: issue number must be positive, got %d", ErrInvalidRequest, *req.IssueNumber)
		}
		t.number = *req.IssueNumber
	} else {
		state := strings.ToLower(strings.TrimSpace(req.State))
		switch state {
		case "":
			state = models.StateOpen
		case models.StateOpen, models.StateClosed, models.StateAll:
		default:
			return target{}, fmt.Errorf("%w: state must be open, closed or all, got %q", ErrInvalidRequest, req.State)
		}
		t.state = state
	}

	t.splitter, err = chunker.New(req.ChunkSize, req.ChunkOverlap)
	if err != nil {
		return target{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return t, nil
}

// SplitRepo parses an "owner/name" repository identifier.
func SplitRepo(repo string) (owner, name string, err error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" || strings.ContainsAny(repo, " \t\r\n") {
		return "", "", fmt.Errorf("%w: repo must be in owner/name format, got %q", ErrInvalidRequest, repo)
	}
	return parts[0], parts[1], nil
}

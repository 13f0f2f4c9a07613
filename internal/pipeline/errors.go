package pipeline

import "errors"

// Error kinds returned by Retrieve. Match them with errors.Is.
var (
	// ErrInvalidRequest is raised before any network activity.
	ErrInvalidRequest = errors.New("invalid retrieve request")
	// ErrTracker wraps issue tracker failures; the whole call is aborted.
	ErrTracker = errors.New("issue tracker lookup failed")
	// ErrSummarize wraps language model failures for a single issue.
	ErrSummarize = errors.New("issue summarization failed")
)

func isSummaryError(err error) bool {
	return errors.Is(err, ErrSummarize)
}

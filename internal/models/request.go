package models

// Issue state filters accepted by RetrieveRequest.
const (
	StateOpen   = "open"
	StateClosed = "closed"
	StateAll    = "all"
)

// Defaults applied by NewRetrieveRequest.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
)

// RetrieveRequest describes which issues to process and how to chunk them.
// State is ignored when IssueNumber is set.
type RetrieveRequest struct {
	Repo         string `json:"repo"`
	State        string `json:"state"`
	IssueNumber  *int   `json:"issue_number,omitempty"`
	ChunkSize    int    `json:"chunk_size"`
	ChunkOverlap int    `json:"chunk_overlap"`
}

// NewRetrieveRequest returns a request for repo with every optional field at its default.
func NewRetrieveRequest(repo string) RetrieveRequest {
	return RetrieveRequest{
		Repo:         repo,
		State:        StateOpen,
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
	}
}

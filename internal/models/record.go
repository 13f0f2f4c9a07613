package models

import "time"

// LinkDocument pairs a URL found in an issue with a capped snapshot of its content.
// Content is empty when the fetch failed.
type LinkDocument struct {
	URL     string `json:"url"     bson:"url"`
	Content string `json:"content" bson:"content"`
}

// TextChunk is a bounded slice of an issue's canonical text.
type TextChunk struct {
	IssueNumber int    `json:"issue_number" bson:"issue_number"`
	Index       int    `json:"chunk_index"  bson:"chunk_index"`
	Text        string `json:"text"         bson:"text"`
}

// IssueRecord holds everything derived from one issue.
type IssueRecord struct {
	IssueNumber int            `json:"issue_number" bson:"issue_number"`
	Summary     string         `json:"summary"      bson:"summary"`
	Links       []LinkDocument `json:"links"        bson:"links"`
	Chunks      []TextChunk    `json:"chunks"       bson:"chunks"`
}

// OmittedIssue records an issue dropped from a response because its summary failed.
type OmittedIssue struct {
	IssueNumber int    `json:"issue_number"`
	Reason      string `json:"reason"`
}

// RetrievalResponse is the aggregate result of one retrieve call, in issue-fetch order.
type RetrievalResponse struct {
	Issues  []IssueRecord  `json:"issues"`
	Omitted []OmittedIssue `json:"omitted,omitempty"`
}

// StoredRecord is the persisted form of an IssueRecord.
type StoredRecord struct {
	ID        string      `bson:"_id"        json:"id"` // "owner/name#number"
	Repo      string      `bson:"repo"       json:"repo"`
	Record    IssueRecord `bson:"record"     json:"record"`
	UpdatedAt time.Time   `bson:"updated_at" json:"updated_at"`
}

// StoredChunk is one chunk document, optionally carrying its embedding vector.
type StoredChunk struct {
	ID          string    `bson:"_id"                 json:"id"` // "owner/name#number:index"
	Repo        string    `bson:"repo"                json:"repo"`
	IssueNumber int       `bson:"issue_number"        json:"issue_number"`
	Index       int       `bson:"chunk_index"         json:"chunk_index"`
	Text        string    `bson:"text"                json:"text"`
	Embedding   []float32 `bson:"embedding,omitempty" json:"-"`
}

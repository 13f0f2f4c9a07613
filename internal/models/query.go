package models

// ChunkSearchRequest is the payload for GET /search (query parameters).
type ChunkSearchRequest struct {
	Query string `json:"q"    query:"q"`    // natural-language query
	Repo  string `json:"repo" query:"repo"` // optional "owner/name" filter
	TopK  int    `json:"k"    query:"k"`    // optional; default handled in the service
}

// ChunkHit is one stored chunk returned by a similarity search.
type ChunkHit struct {
	Repo        string  `bson:"repo"         json:"repo"`
	IssueNumber int     `bson:"issue_number" json:"issue_number"`
	Index       int     `bson:"chunk_index"  json:"chunk_index"`
	Text        string  `bson:"text"         json:"text"`
	Score       float64 `bson:"score"        json:"score"`
}

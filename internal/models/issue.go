package models

// Issue captures the fields of a tracker issue the pipeline cares about.
// Body is nil when the tracker returned no description.
type Issue struct {
	Number  int     `json:"number"   bson:"number"`
	Title   string  `json:"title"    bson:"title"`
	Body    *string `json:"body"     bson:"body"`
	State   string  `json:"state"    bson:"state"`
	HTMLURL string  `json:"html_url" bson:"html_url"`
}

// BodyText returns the issue body, or "" when it is absent.
func (i Issue) BodyText() string {
	if i.Body == nil {
		return ""
	}
	return *i.Body
}

// Comment is one entry of an issue's comment thread.
type Comment struct {
	ID   int64  `json:"id"   bson:"id"`
	Body string `json:"body" bson:"body"`
}

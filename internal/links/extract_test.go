package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "no links", text: "nothing to see here", want: nil},
		{
			name: "single link",
			text: "see https://example.com/docs for details",
			want: []string{"https://example.com/docs"},
		},
		{
			name: "repeated links keep first-occurrence order",
			text: "http://a.test then https://b.test then http://a.test again",
			want: []string{"http://a.test", "https://b.test", "http://a.test"},
		},
		{
			name: "trailing punctuation stays attached",
			text: "(see https://example.com/x). Also https://example.com/y,",
			want: []string{"https://example.com/x).", "https://example.com/y,"},
		},
		{
			name: "scheme required",
			text: "ftp://files.test and www.example.com",
			want: nil,
		},
		{
			name: "newline terminates a link",
			text: "https://example.com/a\nhttps://example.com/b",
			want: []string{"https://example.com/a", "https://example.com/b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Extract(tt.text))
		})
	}
}

func TestDedupe(t *testing.T) {
	t.Parallel()

	got := Dedupe([]string{"https://a", "https://b", "https://a", "https://c", "https://b"})
	assert.Equal(t, []string{"https://a", "https://b", "https://c"}, got)
	assert.Empty(t, Dedupe(nil))
}

func TestWithCanonical(t *testing.T) {
	t.Parallel()

	const repoURL = "https://github.com/octocat/Hello-World"

	assert.Equal(t, []string{"https://a", repoURL}, WithCanonical([]string{"https://a"}, repoURL))
	assert.Equal(t, []string{repoURL, "https://a"}, WithCanonical([]string{repoURL, "https://a"}, repoURL))
	assert.Equal(t, []string{repoURL}, WithCanonical(nil, repoURL))
}

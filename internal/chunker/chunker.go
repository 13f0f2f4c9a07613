// Package chunker splits text into fixed-size chunks that overlap by an exact
// number of characters.
//
// Cut points prefer natural boundaries: a paragraph break first, then a line
// break, a sentence end, a space, and finally a hard cut at the chunk size.
// Because every chunk after the first starts exactly Overlap characters before
// the end of its predecessor, dropping the first Overlap characters of each
// later chunk and concatenating reconstructs the input.
package chunker

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig reports chunk parameters that cannot produce a valid split.
var ErrInvalidConfig = errors.New("invalid chunk configuration")

// DefaultSeparators lists boundaries from coarsest to finest.
var DefaultSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", " "}

// Splitter cuts text into overlapping chunks. Sizes are counted in characters (runes).
type Splitter struct {
	size       int
	overlap    int
	separators [][]rune
}

// New validates size and overlap and returns a Splitter using DefaultSeparators.
func New(size, overlap int) (*Splitter, error) {
	return NewWithSeparators(size, overlap, DefaultSeparators)
}

// NewWithSeparators is New with a caller-supplied separator order.
func NewWithSeparators(size, overlap int, separators []string) (*Splitter, error) {
	if err := Validate(size, overlap); err != nil {
		return nil, err
	}
	seps := make([][]rune, 0, len(separators))
	for _, s := range separators {
		if s != "" {
			seps = append(seps, []rune(s))
		}
	}
	return &Splitter{size: size, overlap: overlap, separators: seps}, nil
}

// Validate checks that size is positive and 0 <= overlap < size.
func Validate(size, overlap int) error {
	switch {
	case size <= 0:
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, size)
	case overlap < 0:
		return fmt.Errorf("%w: chunk overlap must not be negative, got %d", ErrInvalidConfig, overlap)
	case overlap >= size:
		return fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d", ErrInvalidConfig, overlap, size)
	}
	return nil
}

// Size returns the maximum chunk length.
func (s *Splitter) Size() int { return s.size }

// Overlap returns the number of characters shared by neighbouring chunks.
func (s *Splitter) Overlap() int { return s.overlap }

// Split returns the chunks of text in order. Empty text yields no chunks.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for {
		if len(runes)-start <= s.size {
			chunks = append(chunks, string(runes[start:]))
			return chunks
		}
		end := s.cut(runes, start)
		chunks = append(chunks, string(runes[start:end]))
		start = end - s.overlap
	}
}

// cut picks the end of the chunk beginning at start. The result always lies in
// (start+overlap, start+size], so every chunk adds new text.
func (s *Splitter) cut(runes []rune, start int) int {
	limit := start + s.size
	// Separator cuts must land in the back half of the window, otherwise an
	// early paragraph break would produce a run of tiny chunks.
	floor := max(start+s.overlap+1, start+s.size/2)

	for _, sep := range s.separators {
		if end := lastBoundary(runes, sep, floor, limit); end > 0 {
			return end
		}
	}
	return limit
}

// lastBoundary returns the largest end in [floor, limit] such that
// runes[end-len(sep):end] equals sep, or 0 when there is none.
func lastBoundary(runes, sep []rune, floor, limit int) int {
	for end := limit; end >= floor && end >= len(sep); end-- {
		if hasSuffixAt(runes, sep, end) {
			return end
		}
	}
	return 0
}

func hasSuffixAt(runes, sep []rune, end int) bool {
	off := end - len(sep)
	for i, r := range sep {
		if runes[off+i] != r {
			return false
		}
	}
	return true
}

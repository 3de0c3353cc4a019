package processor

import (
	"fmt"
	"strings"
)

type SplitterConfig struct {
	ChunkSize    int // maximum characters per chunk
	ChunkOverlap int // characters shared between consecutive chunks
}

// Splitter cuts text into overlapping fixed-size windows. Consecutive
// chunks share ChunkOverlap trailing/leading characters so context survives
// the cut; together the chunks cover the input without gaps.
type Splitter struct {
	config SplitterConfig
}

func NewWithConfig(config SplitterConfig) (*Splitter, error) {
	if config.ChunkSize == 0 {
		config.ChunkSize = 1000
	}
	if config.ChunkOverlap == 0 {
		config.ChunkOverlap = 200
	}
	if config.ChunkSize < 1 {
		return nil, fmt.Errorf("chunk_size must be positive, got %d", config.ChunkSize)
	}
	if config.ChunkOverlap < 0 || config.ChunkOverlap >= config.ChunkSize {
		return nil, fmt.Errorf("chunk_overlap must be non-negative and less than chunk_size, got %d", config.ChunkOverlap)
	}

	return &Splitter{config: config}, nil
}

// Split returns the chunks for text, in order. Empty or whitespace-only
// input yields zero chunks; callers must treat that as "nothing to embed".
func (s *Splitter) Split(text string) []string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	step := s.config.ChunkSize - s.config.ChunkOverlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + s.config.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

package processor_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockrag/pkg/processor"
)

func TestSplitterRejectsInvalidOverlap(t *testing.T) {
	tests := []struct {
		name   string
		config processor.SplitterConfig
	}{
		{"overlap equals size", processor.SplitterConfig{ChunkSize: 100, ChunkOverlap: 100}},
		{"overlap exceeds size", processor.SplitterConfig{ChunkSize: 100, ChunkOverlap: 150}},
		{"negative overlap", processor.SplitterConfig{ChunkSize: 100, ChunkOverlap: -1}},
		{"negative size", processor.SplitterConfig{ChunkSize: -5, ChunkOverlap: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := processor.NewWithConfig(tt.config)
			assert.Error(t, err)
		})
	}
}

func TestSplitEmptyText(t *testing.T) {
	s, err := processor.NewWithConfig(processor.SplitterConfig{ChunkSize: 100, ChunkOverlap: 20})
	require.NoError(t, err)

	assert.Empty(t, s.Split(""))
	assert.Empty(t, s.Split("   \n\t  "))
}

func TestSplitShortTextIsSingleChunk(t *testing.T) {
	s, err := processor.NewWithConfig(processor.SplitterConfig{ChunkSize: 100, ChunkOverlap: 20})
	require.NoError(t, err)

	chunks := s.Split("a brief note")
	require.Len(t, chunks, 1)
	assert.Equal(t, "a brief note", chunks[0])
}

func TestSplitCoversInputWithOverlap(t *testing.T) {
	s, err := processor.NewWithConfig(processor.SplitterConfig{ChunkSize: 50, ChunkOverlap: 10})
	require.NoError(t, err)

	text := strings.Repeat("abcdefghij", 20) // 200 chars
	chunks := s.Split(text)
	require.NotEmpty(t, chunks)

	// Dropping each chunk's leading overlap reconstructs the original.
	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0])
	for _, chunk := range chunks[1:] {
		rebuilt.WriteString(chunk[10:])
	}
	assert.Equal(t, text, rebuilt.String())

	// Consecutive chunks share the overlap region.
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		assert.Equal(t, prev[len(prev)-10:], chunks[i][:10])
	}

	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 50)
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	s, err := processor.NewWithConfig(processor.SplitterConfig{ChunkSize: 30, ChunkOverlap: 5})
	require.NoError(t, err)

	text := "The central bank held rates steady while signaling cuts later in the year."
	assert.Equal(t, s.Split(text), s.Split(text))
}

func TestSplitArticleAtDefaults(t *testing.T) {
	s, err := processor.NewWithConfig(processor.SplitterConfig{ChunkSize: 1000, ChunkOverlap: 200})
	require.NoError(t, err)

	chunks := s.Split(strings.Repeat("x", 1500))
	assert.Len(t, chunks, 2)
	assert.Len(t, chunks[0], 1000)
	assert.Len(t, chunks[1], 700)
}

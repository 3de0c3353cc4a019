package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockrag/internal/models"
)

type stubRetriever struct {
	passages []models.RetrievedPassage
	err      error
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievedPassage, error) {
	return s.passages, s.err
}

type stubMarket struct {
	snapshot models.MarketSnapshot
}

func (s *stubMarket) FetchSnapshot(ctx context.Context, symbol string) models.MarketSnapshot {
	snapshot := s.snapshot
	snapshot.Symbol = symbol
	return snapshot
}

type stubGenerator struct {
	answer string
	err    error
	prompt string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.prompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

var nvidiaPassages = []models.RetrievedPassage{
	{Title: "NVIDIA Results", Content: "data center revenue doubled", Score: 0.92},
	{Title: "Chip Supply", Content: "foundry capacity remains tight", Score: 0.81},
}

func TestAnswerFusesAllThreeContextSlots(t *testing.T) {
	gen := &stubGenerator{answer: "revenue growth supports the stock"}
	e := New(
		&stubRetriever{passages: nvidiaPassages},
		&stubMarket{snapshot: models.MarketSnapshot{OHLCV: "NVDA up 4%", Fundamentals: "PER 60"}},
		gen, 5, nil,
	)

	result, err := e.Answer(context.Background(), "how is nvidia doing?", "NVDA")
	require.NoError(t, err)

	assert.Equal(t, "revenue growth supports the stock", result.Answer)
	assert.Contains(t, gen.prompt, "NVDA up 4%")
	assert.Contains(t, gen.prompt, "PER 60")
	assert.Contains(t, gen.prompt, "NVIDIA Results")
	assert.Contains(t, gen.prompt, "how is nvidia doing?")

	require.Len(t, result.References, 2)
	assert.Equal(t, "NVIDIA Results", result.References[0].Title)
	assert.Equal(t, "data center revenue doubled", result.References[0].Content)
}

func TestAnswerMarketFailureDegradesToPlaceholder(t *testing.T) {
	gen := &stubGenerator{answer: "based on news alone"}
	e := New(
		&stubRetriever{passages: nvidiaPassages},
		&stubMarket{}, // empty snapshot == both sub-fetches failed
		gen, 5, nil,
	)

	result, err := e.Answer(context.Background(), "outlook for apple?", "AAPL")
	require.NoError(t, err)

	assert.Contains(t, gen.prompt, noMarketPlaceholder)
	assert.Equal(t, "based on news alone", result.Answer)
	require.Len(t, result.References, 2)
}

func TestAnswerWithoutSymbolUsesSymbolPlaceholder(t *testing.T) {
	gen := &stubGenerator{answer: "ok"}
	e := New(&stubRetriever{passages: nvidiaPassages}, &stubMarket{}, gen, 5, nil)

	_, err := e.Answer(context.Background(), "general market mood?", "")
	require.NoError(t, err)
	assert.Contains(t, gen.prompt, noSymbolPlaceholder)
}

func TestAnswerNoPassagesUsesNewsPlaceholder(t *testing.T) {
	gen := &stubGenerator{answer: "no news to speak of"}
	e := New(&stubRetriever{}, &stubMarket{}, gen, 5, nil)

	result, err := e.Answer(context.Background(), "anything new?", "")
	require.NoError(t, err)
	assert.Contains(t, gen.prompt, noNewsPlaceholder)
	assert.Empty(t, result.References)
}

func TestAnswerRetrievalFailureIsFatal(t *testing.T) {
	retrievalErr := errors.New("retrieval failed: store down")
	e := New(&stubRetriever{err: retrievalErr}, &stubMarket{}, &stubGenerator{}, 5, nil)

	_, err := e.Answer(context.Background(), "anything?", "AAPL")
	assert.ErrorIs(t, err, retrievalErr)
}

func TestAnswerGenerationFailureIsFatal(t *testing.T) {
	genErr := errors.New("generation failed: model timeout")
	e := New(&stubRetriever{passages: nvidiaPassages}, &stubMarket{}, &stubGenerator{err: genErr}, 5, nil)

	_, err := e.Answer(context.Background(), "anything?", "")
	assert.ErrorIs(t, err, genErr)
}

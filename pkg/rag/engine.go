package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"stockrag/internal/models"
	"stockrag/internal/types"
)

// Placeholder strings rendered into the prompt when a context section is
// absent or degraded. Internally absence is always an empty value; text is
// substituted only here, at the formatting boundary.
const (
	noNewsPlaceholder   = "No relevant news articles were found."
	noSymbolPlaceholder = "No ticker symbol was provided."
	noMarketPlaceholder = "Market data is currently unavailable."
)

const promptTemplate = `Use the market data and related news below to answer the question.

[Market Data]
%s

[Related News]
%s

Question: %s`

// Engine fuses retrieved news passages and live market context into one
// prompt and invokes the language model. Retrieval and generation errors
// are fatal to the request; missing market data only degrades it.
type Engine struct {
	retriever types.Retriever
	market    types.MarketData
	generator types.Generator
	topK      int
	log       *log.Logger
}

func New(retriever types.Retriever, market types.MarketData, generator types.Generator, topK int, logger *log.Logger) *Engine {
	if topK <= 0 {
		topK = 5
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		retriever: retriever,
		market:    market,
		generator: generator,
		topK:      topK,
		log:       logger,
	}
}

// Answer resolves query against the stored news corpus, optionally enriched
// with market data for symbol. Retrieval and the market fetch have no
// ordering dependency and run concurrently.
func (e *Engine) Answer(ctx context.Context, query, symbol string) (models.AnswerResult, error) {
	marketCh := make(chan models.MarketSnapshot, 1)
	go func() {
		if symbol == "" {
			marketCh <- models.MarketSnapshot{}
			return
		}
		marketCh <- e.market.FetchSnapshot(ctx, symbol)
	}()

	passages, err := e.retriever.Retrieve(ctx, query, e.topK)
	if err != nil {
		<-marketCh
		return models.AnswerResult{}, err
	}
	snapshot := <-marketCh

	prompt := buildPrompt(query, symbol, snapshot, passages)

	answer, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return models.AnswerResult{}, err
	}

	references := make([]models.SourceDoc, 0, len(passages))
	for _, p := range passages {
		references = append(references, models.SourceDoc{Title: p.Title, Content: p.Content})
	}

	e.log.Info("answer generated", "query", query, "symbol", symbol, "passages", len(passages))
	return models.AnswerResult{Answer: answer, References: references}, nil
}

func buildPrompt(query, symbol string, snapshot models.MarketSnapshot, passages []models.RetrievedPassage) string {
	marketContext := noSymbolPlaceholder
	if symbol != "" {
		if snapshot.Empty() {
			marketContext = noMarketPlaceholder
		} else {
			marketContext = strings.TrimSpace(snapshot.OHLCV + "\n" + snapshot.Fundamentals)
		}
	}

	newsContext := noNewsPlaceholder
	if len(passages) > 0 {
		parts := make([]string, len(passages))
		for i, p := range passages {
			parts[i] = fmt.Sprintf("Article %d (%s): %s", i+1, p.Title, p.Content)
		}
		newsContext = strings.Join(parts, "\n\n")
	}

	return fmt.Sprintf(promptTemplate, marketContext, newsContext, query)
}

package models

import "time"

// Article is one raw news record as delivered by the upstream feed.
type Article struct {
	Headline string
	Summary  string
	URL      string
}

// Chunk is the persisted unit of ingested news. Rows are append-only and
// never updated; Embedding length must equal the embedder's dimension.
type Chunk struct {
	ID        string
	Title     string
	URL       string
	Content   string
	Embedding []float32
	CreatedAt time.Time
}

// RetrievedPassage is a read-only projection returned by similarity search,
// ordered by descending score.
type RetrievedPassage struct {
	Title   string
	Content string
	Score   float32
}

// MarketSnapshot carries the textual market context for one symbol. It is
// fetched fresh per query and never persisted; an empty field means the
// corresponding sub-fetch was unavailable.
type MarketSnapshot struct {
	Symbol       string
	OHLCV        string
	Fundamentals string
}

// Empty reports whether no market data at all could be fetched.
func (s MarketSnapshot) Empty() bool {
	return s.OHLCV == "" && s.Fundamentals == ""
}

// SourceDoc identifies one passage cited by an answer.
type SourceDoc struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// AnswerResult is the terminal output of the answering pipeline.
type AnswerResult struct {
	Answer     string      `json:"answer"`
	References []SourceDoc `json:"references"`
}

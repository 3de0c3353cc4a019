package news

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"stockrag/internal/models"
)

type ClientConfig struct {
	BaseURL   string
	APIKey    string
	RateLimit float64 // requests per second
	Timeout   time.Duration
}

// Client reads the Finnhub general-news feed. Rate limiting keeps batch
// runs inside the upstream quota.
type Client struct {
	config  ClientConfig
	client  *resty.Client
	limiter *rate.Limiter
}

func NewWithConfig(config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "https://finnhub.io/api/v1"
	}
	if config.RateLimit == 0 {
		config.RateLimit = 0.5
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetQueryParam("token", config.APIKey)

	return &Client{
		config:  config,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}
}

// article is the subset of the Finnhub news payload the pipeline consumes.
type article struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// FetchNews returns the latest articles for a feed category. Articles keep
// their raw summary; filtering of empty summaries is the batch driver's
// responsibility.
func (c *Client) FetchNews(ctx context.Context, category string) ([]models.Article, error) {
	if category == "" {
		category = "general"
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("fetch news: %w", err)
	}

	var payload []article
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("category", category).
		SetResult(&payload).
		Get("/news")
	if err != nil {
		return nil, fmt.Errorf("fetch news: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch news: %s", resp.Status())
	}

	articles := make([]models.Article, 0, len(payload))
	for _, a := range payload {
		headline := a.Headline
		if headline == "" {
			headline = "No Title"
		}
		articles = append(articles, models.Article{
			Headline: headline,
			Summary:  a.Summary,
			URL:      a.URL,
		})
	}
	return articles, nil
}

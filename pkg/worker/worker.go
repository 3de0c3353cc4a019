package worker

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"stockrag/internal/types"
)

type Config struct {
	Category string
	Schedule string // cron expression
}

// Worker is the batch driver for ingestion: it pulls the news feed and runs
// each article through the pipeline. One bad article never blocks its
// siblings; failures are logged and counted, not propagated.
type Worker struct {
	source   types.NewsSource
	ingester types.Ingester
	config   Config
	cron     *cron.Cron
	log      *log.Logger
}

func New(source types.NewsSource, ingester types.Ingester, config Config, logger *log.Logger) *Worker {
	if config.Category == "" {
		config.Category = "general"
	}
	if config.Schedule == "" {
		config.Schedule = "0 * * * *" // hourly
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Worker{
		source:   source,
		ingester: ingester,
		config:   config,
		cron:     cron.New(),
		log:      logger,
	}
}

// RunOnce fetches the feed and ingests every article with a non-empty
// summary. It returns aggregate counts; only a feed-level fetch error is
// reported as an error.
func (w *Worker) RunOnce(ctx context.Context) (processed, failed int, err error) {
	articles, err := w.source.FetchNews(ctx, w.config.Category)
	if err != nil {
		return 0, 0, fmt.Errorf("fetch news feed: %w", err)
	}

	for _, a := range articles {
		if strings.TrimSpace(a.Summary) == "" {
			continue
		}
		if err := w.ingester.Ingest(ctx, a.Headline, a.Summary, a.URL); err != nil {
			w.log.Error("article ingest failed", "title", a.Headline, "err", err)
			failed++
			continue
		}
		processed++
	}

	w.log.Info("news ingestion run complete",
		"category", w.config.Category, "processed", processed, "failed", failed)
	return processed, failed, nil
}

// Start registers the schedule and begins running ingestion in the
// background.
func (w *Worker) Start() error {
	_, err := w.cron.AddFunc(w.config.Schedule, func() {
		if _, _, err := w.RunOnce(context.Background()); err != nil {
			w.log.Error("scheduled ingestion failed", "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("register schedule %q: %w", w.config.Schedule, err)
	}
	w.cron.Start()
	return nil
}

// Stop halts the schedule; a run already in flight finishes on its own.
func (w *Worker) Stop() {
	w.cron.Stop()
}

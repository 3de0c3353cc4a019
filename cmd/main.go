package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"

	"stockrag/internal/types"
	cfgPkg "stockrag/pkg/config"
	"stockrag/pkg/ingest"
	"stockrag/pkg/llm"
	"stockrag/pkg/market"
	"stockrag/pkg/news"
	"stockrag/pkg/processor"
	"stockrag/pkg/rag"
	"stockrag/pkg/retrieval"
	"stockrag/pkg/store"
	"stockrag/pkg/worker"
	"stockrag/server"
)

type options struct {
	configPath string
	serve      bool
	ingestOnce bool
	symbol     string
}

func main() {
	godotenv.Load()

	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to config file")
	flag.BoolVar(&opts.serve, "serve", false, "Run the HTTP server with scheduled ingestion")
	flag.BoolVar(&opts.ingestOnce, "ingest", false, "Fetch the news feed once, ingest it, and exit")
	flag.StringVar(&opts.symbol, "symbol", "", "Ticker symbol for the interactive chat session")
	flag.Parse()

	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

func run(opts options) error {
	config, err := cfgPkg.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if errs := config.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config error: %v", e)
		}
		return fmt.Errorf("invalid configuration")
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	splitter, err := processor.NewWithConfig(processor.SplitterConfig{
		ChunkSize:    config.Processor.ChunkSize,
		ChunkOverlap: config.Processor.ChunkOverlap,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize splitter: %w", err)
	}

	embedder, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Model:     config.Embedding.Model,
		BaseURL:   config.Embedding.BaseURL,
		Dimension: config.Embedding.Dimension,
	})
	if err != nil {
		return err
	}

	chatEngine, err := llm.NewWithConfig(llm.ChatConfig{
		Model:       config.LLM.Model,
		MaxTokens:   config.LLM.MaxTokens,
		Temperature: config.LLM.Temperature,
		BaseURL:     config.LLM.BaseURL,
	})
	if err != nil {
		return err
	}

	// Without a database URL the corpus lives in memory for the session.
	var vectorStore types.VectorStore
	if config.Database.URL != "" {
		vectorStore, err = store.NewWithConfig(context.Background(), store.VectorStoreConfig{
			ConnString: config.Database.URL,
			TableName:  config.Database.TableName,
			VectorDim:  config.Embedding.Dimension,
			TopK:       config.Retrieval.TopK,
		})
		if err != nil {
			return err
		}
	} else {
		logger.Warn("no database URL configured, using in-memory store")
		vectorStore = store.NewMemoryStore()
	}
	defer vectorStore.Close()

	ingester := ingest.New(splitter, embedder, vectorStore, logger)
	retriever := retrieval.New(embedder, vectorStore, config.Retrieval.TopK)
	gateway := market.NewWithConfig(market.GatewayConfig{
		BaseURL: config.Market.BaseURL,
		APIKey:  config.Market.APIKey,
		Days:    config.Market.Days,
	}, logger)
	engine := rag.New(retriever, gateway, chatEngine, config.Retrieval.TopK, logger)

	newsClient := news.NewWithConfig(news.ClientConfig{
		BaseURL:   config.News.BaseURL,
		APIKey:    config.News.APIKey,
		RateLimit: config.News.RateLimit,
	})

	if opts.ingestOnce {
		return ingestOnce(newsClient, ingester, config.News.Category)
	}

	if opts.serve {
		w := worker.New(newsClient, ingester, worker.Config{
			Category: config.News.Category,
			Schedule: config.News.Schedule,
		}, logger)
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()

		srv := server.New(server.Config{Port: config.Server.Port}, engine, w, logger)
		return srv.ListenAndServe()
	}

	return chatLoop(engine, opts.symbol)
}

func ingestOnce(client *news.Client, ingester *ingest.Ingester, category string) error {
	ctx := context.Background()

	articles, err := client.FetchNews(ctx, category)
	if err != nil {
		return err
	}
	color.Blue("Fetched %d articles from the %q feed", len(articles), category)

	bar := progressbar.NewOptions(len(articles),
		progressbar.OptionSetDescription(color.BlueString("Ingesting articles...")),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)

	var processed, failed, skipped int
	for _, a := range articles {
		bar.Add(1)
		if strings.TrimSpace(a.Summary) == "" {
			skipped++
			continue
		}
		if err := ingester.Ingest(ctx, a.Headline, a.Summary, a.URL); err != nil {
			failed++
			continue
		}
		processed++
	}
	bar.Finish()

	fmt.Println()
	color.Green("✓ Ingested %d articles (%d failed, %d skipped)", processed, failed, skipped)
	return nil
}

func chatLoop(engine types.Answerer, symbol string) error {
	if symbol != "" {
		color.Cyan("\nAsk about the market (symbol %s, type 'exit' to quit)", symbol)
	} else {
		color.Cyan("\nAsk about the market (type 'exit' to quit)")
	}

	scanner := bufio.NewScanner(os.Stdin)
	userPrompt := color.New(color.FgGreen).PrintfFunc()
	assistantPrompt := color.New(color.FgCyan).PrintfFunc()

	for {
		userPrompt("\nYou: ")
		if !scanner.Scan() {
			break
		}

		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if strings.ToLower(query) == "exit" {
			break
		}

		result, err := engine.Answer(context.Background(), query, symbol)
		if err != nil {
			color.Red("Error: %v", err)
			continue
		}

		assistantPrompt("\nAssistant: %s\n", result.Answer)
		if len(result.References) > 0 {
			color.Yellow("\nSources:")
			for _, ref := range result.References {
				color.Yellow("  - %s", ref.Title)
			}
		}
	}

	return nil
}

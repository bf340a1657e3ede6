package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xhad/jaundice/internal/logging"
	"github.com/xhad/jaundice/internal/types"
	"github.com/xhad/jaundice/pkg/adapters/inosmi"
	"github.com/xhad/jaundice/pkg/analyzer"
	"github.com/xhad/jaundice/pkg/config"
	"github.com/xhad/jaundice/pkg/dictionary"
	"github.com/xhad/jaundice/pkg/morph"
	"github.com/xhad/jaundice/pkg/processor"
	"github.com/xhad/jaundice/pkg/scraper"
	"github.com/xhad/jaundice/pkg/store"
)

// app holds the process wide collaborators. The lemma dictionary, charged
// words and HTTP transport are built once and shared by every batch.
type app struct {
	logger   *slog.Logger
	analyzer *analyzer.Analyzer
	history  types.HistoryStore
}

func bootstrap(ctx context.Context, cfg *config.Config, opts ...analyzer.Option) (*app, error) {
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	tlsConfig, err := scraper.NewTLSConfig(cfg.Fetcher.CAFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize TLS: %w", err)
	}

	fetcher, err := scraper.NewWithConfig(scraper.ScraperConfig{
		UserAgent:    cfg.Fetcher.UserAgent,
		RateLimit:    cfg.Fetcher.RateLimit,
		Burst:        cfg.Fetcher.Burst,
		MaxBodyBytes: cfg.Fetcher.MaxBodyBytes,
		TLSConfig:    tlsConfig,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fetcher: %w", err)
	}

	fallback, err := morph.FallbackByName(cfg.Dictionaries.Fallback)
	if err != nil {
		return nil, err
	}
	lemmas, err := morph.LoadDictionary(cfg.Dictionaries.Lemmas, fallback)
	if err != nil {
		return nil, fmt.Errorf("failed to load lemma dictionary: %w", err)
	}

	charged, err := dictionary.Load(cfg.Dictionaries.Charged)
	if err != nil {
		return nil, fmt.Errorf("failed to load charged words: %w", err)
	}
	charged = charged.Normalize(lemmas.Normalize)
	logger.Debug("dictionaries loaded", "lemmas", lemmas.Len(), "charged", charged.Len())

	base := []analyzer.Option{
		analyzer.WithFetchTimeout(cfg.Pipeline.FetchTimeout),
		analyzer.WithProcessTimeout(cfg.Pipeline.ProcessTimeout),
		analyzer.WithLogger(logger),
	}

	a := &app{
		logger: logger,
		analyzer: analyzer.New(
			fetcher,
			inosmi.New(),
			processor.New(lemmas, charged),
			append(base, opts...)...,
		),
	}

	if cfg.Database.URL != "" {
		history, err := store.NewWithConfig(ctx, store.HistoryStoreConfig{
			ConnString: cfg.Database.URL,
			TableName:  cfg.Database.TableName,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize history store: %w", err)
		}
		a.history = history
	}

	return a, nil
}

func (a *app) Close() {
	if a.history != nil {
		a.history.Close()
	}
}

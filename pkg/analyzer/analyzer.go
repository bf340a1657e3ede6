// Package analyzer runs the per-article pipeline (fetch, sanitize, score)
// and the bounded batch orchestrator on top of it.
package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/xhad/jaundice/internal/logging"
	"github.com/xhad/jaundice/internal/models"
	"github.com/xhad/jaundice/internal/types"
	"github.com/xhad/jaundice/pkg/adapters"
	"github.com/xhad/jaundice/pkg/processor"
	"github.com/xhad/jaundice/pkg/scraper"
)

const (
	DefaultFetchTimeout   = 10 * time.Second
	DefaultProcessTimeout = 3 * time.Second
)

type Analyzer struct {
	fetcher        types.Fetcher
	sanitizer      types.Sanitizer
	processor      *processor.Processor
	logger         *slog.Logger
	fetchTimeout   time.Duration
	processTimeout time.Duration
	onOutcome      func(models.ArticleOutcome)
}

type Option func(*Analyzer)

func WithFetchTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.fetchTimeout = d
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.processTimeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithOutcomeHook registers fn to be called with every outcome as soon as
// its pipeline completes. fn is called from several goroutines at once.
func WithOutcomeHook(fn func(models.ArticleOutcome)) Option {
	return func(a *Analyzer) {
		a.onOutcome = fn
	}
}

func New(fetcher types.Fetcher, sanitizer types.Sanitizer, proc *processor.Processor, opts ...Option) *Analyzer {
	a := &Analyzer{
		fetcher:        fetcher,
		sanitizer:      sanitizer,
		processor:      proc,
		logger:         logging.Discard(),
		fetchTimeout:   DefaultFetchTimeout,
		processTimeout: DefaultProcessTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "analyzer")
	return a
}

// With returns a copy of a with opts applied on top. The copy shares the
// fetcher, sanitizer and processor.
func (a *Analyzer) With(opts ...Option) *Analyzer {
	clone := *a
	for _, opt := range opts {
		opt(&clone)
	}
	return &clone
}

type processResult struct {
	article   string
	score     float64
	wordCount int
	err       error
}

// ProcessArticle scores a single URL. Expected failures are reported as an
// outcome status; a non-nil error means the failure is not one the
// pipeline knows how to classify, including cancellation of ctx itself.
func (a *Analyzer) ProcessArticle(ctx context.Context, url string) (models.ArticleOutcome, error) {
	page, err := a.fetch(ctx, url)
	if err != nil {
		return a.fail(ctx, url, err)
	}

	start := time.Now()
	res := a.process(ctx, page)
	elapsed := time.Since(start)
	if res.err != nil {
		return a.fail(ctx, url, res.err)
	}

	outcome := models.Succeeded(url, res.score, res.wordCount, elapsed)
	a.logger.Debug("analysis finished",
		"url", url,
		"status", outcome.Status,
		"score", res.score,
		"words", res.wordCount,
		"elapsed", math.Round(elapsed.Seconds()*100)/100,
	)
	return outcome, nil
}

// Article fetches url and returns the sanitized article HTML.
func (a *Analyzer) Article(ctx context.Context, url string) (string, error) {
	page, err := a.fetch(ctx, url)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, a.processTimeout)
	defer cancel()

	done := make(chan processResult, 1)
	go func() {
		article, err := a.sanitizer.Sanitize(page, false)
		done <- processResult{article: article, err: err}
	}()

	select {
	case res := <-done:
		return res.article, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (a *Analyzer) fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancel()
	return a.fetcher.Fetch(ctx, url)
}

// process runs the CPU bound part in its own goroutine so that a sanitizer
// ignoring ctx still cannot hold the pipeline past the deadline.
func (a *Analyzer) process(ctx context.Context, page string) processResult {
	ctx, cancel := context.WithTimeout(ctx, a.processTimeout)
	defer cancel()

	done := make(chan processResult, 1)
	go func() {
		text, err := a.sanitizer.Sanitize(page, true)
		if err != nil {
			done <- processResult{err: err}
			return
		}
		score, wordCount, err := a.processor.Process(ctx, text)
		done <- processResult{score: score, wordCount: wordCount, err: err}
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		return processResult{err: ctx.Err()}
	}
}

func (a *Analyzer) fail(ctx context.Context, url string, err error) (models.ArticleOutcome, error) {
	status, ok := classify(ctx, err)
	if !ok {
		a.logger.Error("analysis failed", "url", url, "error", err)
		return models.ArticleOutcome{}, err
	}

	a.logger.Info("analysis finished", "url", url, "status", status, "reason", err)
	return models.Failed(url, status), nil
}

// classify maps a pipeline error to an outcome status. ok is false for
// errors that must abort the batch.
func classify(parent context.Context, err error) (models.ProcessingStatus, bool) {
	switch {
	case parent.Err() != nil:
		return "", false
	case errors.Is(err, adapters.ErrArticleNotFound):
		return models.StatusParsingError, true
	case errors.Is(err, context.DeadlineExceeded):
		return models.StatusTimeout, true
	case scraper.IsFetchError(err):
		return models.StatusFetchError, true
	default:
		return "", false
	}
}

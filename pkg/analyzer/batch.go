package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/xhad/jaundice/internal/models"
)

// MaxURLs bounds the size of one batch.
const MaxURLs = 10

var ErrTooManyURLs = fmt.Errorf("too many urls in request, should be %d or less", MaxURLs)

// ErrNoURLs is returned by ParseURLs when the input names no URL at all.
var ErrNoURLs = errors.New("urls parameter not found in request")

// Run scores every URL concurrently and returns one outcome per URL in
// completion order. If any pipeline fails with an error it cannot classify,
// the remaining pipelines are cancelled and only that error is returned.
func (a *Analyzer) Run(ctx context.Context, urls []string) ([]models.ArticleOutcome, error) {
	if len(urls) > MaxURLs {
		return nil, ErrTooManyURLs
	}

	g, gctx := errgroup.WithContext(ctx)
	results := make(chan models.ArticleOutcome, len(urls))

	for _, url := range urls {
		url := url
		g.Go(func() error {
			outcome, err := a.ProcessArticle(gctx, url)
			if err != nil {
				return fmt.Errorf("analyze %s: %w", url, err)
			}
			if a.onOutcome != nil {
				a.onOutcome(outcome)
			}
			results <- outcome
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(results)

	outcomes := make([]models.ArticleOutcome, 0, len(urls))
	for outcome := range results {
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

// ParseURLs splits a comma separated URL list as accepted by the HTTP API.
// Surrounding whitespace and empty items are dropped.
func ParseURLs(raw string) ([]string, error) {
	var urls []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			urls = append(urls, item)
		}
	}

	if len(urls) == 0 {
		return nil, ErrNoURLs
	}
	if len(urls) > MaxURLs {
		return nil, ErrTooManyURLs
	}
	return urls, nil
}

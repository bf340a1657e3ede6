package types

import (
	"context"

	"github.com/xhad/jaundice/internal/models"
)

// Fetcher downloads the raw document behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Sanitizer extracts article text from a publisher page. In plaintext mode
// all markup is removed; otherwise cleaned article HTML is returned.
type Sanitizer interface {
	Sanitize(html string, plaintext bool) (string, error)
}

// Lemmatizer maps a cleaned token to its dictionary base form.
// Implementations are shared by all pipelines and must be safe for
// concurrent use.
type Lemmatizer interface {
	Normalize(word string) string
}

// HistoryStore keeps an append-only log of scored articles.
type HistoryStore interface {
	Append(ctx context.Context, outcomes []models.ArticleOutcome) error
	Recent(ctx context.Context, url string, limit int) ([]models.ScoreRecord, error)
	Close()
}

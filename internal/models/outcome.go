package models

import "time"

// ProcessingStatus is the terminal state of a single article pipeline.
type ProcessingStatus string

const (
	StatusOK           ProcessingStatus = "OK"
	StatusFetchError   ProcessingStatus = "FETCH_ERROR"
	StatusParsingError ProcessingStatus = "PARSING_ERROR"
	StatusTimeout      ProcessingStatus = "TIMEOUT"
)

// Statuses lists every ProcessingStatus in report order.
var Statuses = []ProcessingStatus{
	StatusOK,
	StatusFetchError,
	StatusParsingError,
	StatusTimeout,
}

func (s ProcessingStatus) String() string {
	return string(s)
}

// Valid reports whether s is one of the known statuses.
func (s ProcessingStatus) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ArticleOutcome is the result of scoring one URL. Score and WordCount are
// set only when Status is StatusOK.
type ArticleOutcome struct {
	URL       string
	Status    ProcessingStatus
	Score     *float64
	WordCount *int
	Elapsed   time.Duration
}

// Succeeded builds an OK outcome.
func Succeeded(url string, score float64, wordCount int, elapsed time.Duration) ArticleOutcome {
	return ArticleOutcome{
		URL:       url,
		Status:    StatusOK,
		Score:     &score,
		WordCount: &wordCount,
		Elapsed:   elapsed,
	}
}

// Failed builds an outcome without score and word count.
func Failed(url string, status ProcessingStatus) ArticleOutcome {
	return ArticleOutcome{
		URL:    url,
		Status: status,
	}
}

// ScoreRecord is a stored outcome with the time it was produced.
type ScoreRecord struct {
	ArticleOutcome
	CheckedAt time.Time
}

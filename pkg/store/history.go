// Package store persists scored articles in PostgreSQL.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xhad/jaundice/internal/models"
)

const DefaultRecentLimit = 20

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type HistoryStoreConfig struct {
	ConnString string
	TableName  string
	BatchSize  int
}

// HistoryStore is an append-only log of outcomes. It is never consulted
// before scoring; every batch is scored afresh.
type HistoryStore struct {
	config HistoryStoreConfig
	pool   *pgxpool.Pool
}

func NewWithConfig(ctx context.Context, config HistoryStoreConfig) (*HistoryStore, error) {
	if config.TableName == "" {
		config.TableName = "article_scores"
	}
	if config.BatchSize == 0 {
		config.BatchSize = 100
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	hs := &HistoryStore{
		config: config,
		pool:   pool,
	}

	if err := hs.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return hs, nil
}

func (hs *HistoryStore) initialize(ctx context.Context) error {
	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			url TEXT NOT NULL,
			status TEXT NOT NULL,
			score DOUBLE PRECISION,
			word_count INTEGER,
			elapsed_ms BIGINT NOT NULL DEFAULT 0,
			checked_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, hs.config.TableName)

	if _, err := hs.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_url_checked_idx
		ON %s (url, checked_at DESC)`,
		hs.config.TableName, hs.config.TableName)

	if _, err := hs.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// Append stores outcomes in one transaction, BatchSize rows per statement.
func (hs *HistoryStore) Append(ctx context.Context, outcomes []models.ArticleOutcome) error {
	if len(outcomes) == 0 {
		return nil
	}

	tx, err := hs.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	checkedAt := time.Now().UTC()
	for start := 0; start < len(outcomes); start += hs.config.BatchSize {
		end := min(start+hs.config.BatchSize, len(outcomes))

		query, args, err := insertQuery(hs.config.TableName, outcomes[start:end], checkedAt)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert outcomes: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Recent returns the latest records for url, newest first.
func (hs *HistoryStore) Recent(ctx context.Context, url string, limit int) ([]models.ScoreRecord, error) {
	query, args, err := recentQuery(hs.config.TableName, url, limit)
	if err != nil {
		return nil, err
	}

	rows, err := hs.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	records := []models.ScoreRecord{}
	for rows.Next() {
		var (
			record    models.ScoreRecord
			status    string
			elapsedMS int64
		)
		err := rows.Scan(
			&record.URL,
			&status,
			&record.Score,
			&record.WordCount,
			&elapsedMS,
			&record.CheckedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		record.Status = models.ProcessingStatus(status)
		record.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return records, nil
}

func (hs *HistoryStore) Close() {
	if hs.pool != nil {
		hs.pool.Close()
	}
}

func insertQuery(table string, outcomes []models.ArticleOutcome, checkedAt time.Time) (string, []interface{}, error) {
	builder := psql.Insert(table).
		Columns("url", "status", "score", "word_count", "elapsed_ms", "checked_at")

	for _, outcome := range outcomes {
		builder = builder.Values(
			strings.ToValidUTF8(outcome.URL, ""),
			outcome.Status.String(),
			outcome.Score,
			outcome.WordCount,
			outcome.Elapsed.Milliseconds(),
			checkedAt,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build insert: %w", err)
	}
	return query, args, nil
}

func recentQuery(table, url string, limit int) (string, []interface{}, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	query, args, err := psql.
		Select("url", "status", "score", "word_count", "elapsed_ms", "checked_at").
		From(table).
		Where(sq.Eq{"url": url}).
		OrderBy("checked_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build select: %w", err)
	}
	return query, args, nil
}

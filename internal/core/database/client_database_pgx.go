package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/umccanna/regulation-summarization/internal/config"
	"github.com/umccanna/regulation-summarization/internal/core"
	"github.com/umccanna/regulation-summarization/internal/models"
)

var (
	_ core.DocumentStore     = (*DatabaseClient)(nil)
	_ core.ConversationStore = (*DatabaseClient)(nil)
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	dsn := cfg.DatabaseURL
	if cfg.SslCertPath != "" {
		u, err := url.Parse(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		q := u.Query()
		q.Set("sslmode", "verify-ca")
		q.Set("sslrootcert", cfg.SslCertPath)
		u.RawQuery = q.Encode()
		dsn = u.String()
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// UpsertDocument writes one stored chunk. The (partition_key, id) conflict
// target is what makes a from-scratch re-ingestion overwrite prior records.
func (c *DatabaseClient) UpsertDocument(ctx context.Context, doc *models.StoredDocument) error {
	if doc == nil {
		return errors.New("nil document")
	}
	const q = `
		INSERT INTO regulation_chunks
			(id, partition_key, document_type, page_index, text, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (partition_key, id) DO UPDATE
		SET document_type = EXCLUDED.document_type,
		    page_index    = EXCLUDED.page_index,
		    text          = EXCLUDED.text,
		    embedding     = EXCLUDED.embedding
	`
	vec := pgvector.NewVector(doc.Embedding)
	_, err := c.db.ExecContext(ctx, q,
		doc.ID, doc.PartitionKey, doc.DocumentType, doc.PageIndex, doc.Text, vec)
	return err
}

// SearchDocuments runs the partition-scoped top-K similarity query. Score is
// the pgvector L2 distance; rows come back most similar first.
func (c *DatabaseClient) SearchDocuments(ctx context.Context, partitionKey string, queryVec []float32, limit int) ([]models.RetrievedMatch, error) {
	const q = `
		SELECT id, partition_key, document_type, text, embedding <-> $2 AS score
		FROM regulation_chunks
		WHERE partition_key = $1
		ORDER BY embedding <-> $2
		LIMIT $3
	`
	vec := pgvector.NewVector(queryVec)
	rows, err := c.db.QueryContext(ctx, q, partitionKey, vec, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RetrievedMatch
	for rows.Next() {
		var m models.RetrievedMatch
		if err := rows.Scan(&m.ID, &m.PartitionKey, &m.DocumentType, &m.Text, &m.Score); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetFactSheetPages returns fact sheet page texts in page order.
func (c *DatabaseClient) GetFactSheetPages(ctx context.Context, partitionKey string, limit int) ([]string, error) {
	const q = `
		SELECT text
		FROM regulation_chunks
		WHERE partition_key = $1 AND document_type = $2
		ORDER BY page_index ASC
		LIMIT $3
	`
	rows, err := c.db.QueryContext(ctx, q, partitionKey, models.DocumentTypeFactSheet, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) DeleteDocumentsByType(ctx context.Context, partitionKey, documentType string) (int, error) {
	const q = `
		DELETE FROM regulation_chunks
		WHERE partition_key = $1 AND document_type = $2
	`
	res, err := c.db.ExecContext(ctx, q, partitionKey, documentType)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// UpsertRegulation registers a regulation collection, or refreshes its title
// and fact sheet flag when it already exists.
func (c *DatabaseClient) UpsertRegulation(ctx context.Context, reg *models.Regulation) error {
	if reg == nil {
		return errors.New("nil regulation")
	}
	const q = `
		INSERT INTO regulations (partition_key, title, has_fact_sheet)
		VALUES ($1, $2, $3)
		ON CONFLICT (partition_key) DO UPDATE
		SET title          = EXCLUDED.title,
		    has_fact_sheet = regulations.has_fact_sheet OR EXCLUDED.has_fact_sheet
	`
	_, err := c.db.ExecContext(ctx, q, reg.PartitionKey, reg.Title, reg.HasFactSheet)
	return err
}

func (c *DatabaseClient) ListRegulations(ctx context.Context) ([]models.Regulation, error) {
	const q = `
		SELECT partition_key, title, has_fact_sheet
		FROM regulations
		ORDER BY title ASC
	`
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Regulation
	for rows.Next() {
		var r models.Regulation
		if err := rows.Scan(&r.PartitionKey, &r.Title, &r.HasFactSheet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

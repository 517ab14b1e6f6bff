package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

// PostgresStore stores all collections in a single JSONB table.
//
// Table:
//
//	documents(seq, collection, id, data)  UNIQUE (collection, id)
//
// seq preserves insertion order; filters use JSONB containment.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS documents (
	seq        BIGSERIAL PRIMARY KEY,
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       JSONB NOT NULL,
	UNIQUE (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_data_idx ON documents USING GIN (data jsonb_path_ops);
`

// NewPostgresStore creates a connection pool and ensures the documents table exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) CreateDocument(ctx context.Context, collection string, doc Document) (string, error) {
	id := ulid.Make().String()
	stored := merge(doc, Document{IDField: id})

	data, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`,
		collection, id, data,
	)
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	return id, nil
}

func (s *PostgresStore) GetDocuments(ctx context.Context, collection string, filter Filter, limit int64) ([]Document, error) {
	want, err := filterJSON(filter)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT data FROM documents
		WHERE collection = $1 AND data @> $2::jsonb
		ORDER BY seq
	`
	args := []any{collection, want}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", collection, err)
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("unmarshal document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) FindOne(ctx context.Context, collection string, filter Filter) (Document, error) {
	want, err := filterJSON(filter)
	if err != nil {
		return nil, err
	}

	var raw []byte
	err = s.pool.QueryRow(ctx, `
		SELECT data FROM documents
		WHERE collection = $1 AND data @> $2::jsonb
		ORDER BY seq
		LIMIT 1
	`, collection, want).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoDocuments
		}
		return nil, fmt.Errorf("find one in %s: %w", collection, err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) UpsertOne(ctx context.Context, collection string, filter Filter, set Document) error {
	want, err := filterJSON(filter)
	if err != nil {
		return err
	}
	patch, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var seq int64
		err := tx.QueryRow(ctx, `
			SELECT seq FROM documents
			WHERE collection = $1 AND data @> $2::jsonb
			ORDER BY seq
			LIMIT 1
			FOR UPDATE
		`, collection, want).Scan(&seq)

		switch {
		case err == nil:
			if _, err := tx.Exec(ctx,
				`UPDATE documents SET data = data || $1::jsonb WHERE seq = $2`,
				patch, seq,
			); err != nil {
				return fmt.Errorf("update in %s: %w", collection, err)
			}
			return nil
		case errors.Is(err, pgx.ErrNoRows):
			id := ulid.Make().String()
			doc := merge(merge(filter, set), Document{IDField: id})
			data, err := json.Marshal(doc)
			if err != nil {
				return fmt.Errorf("marshal document: %w", err)
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`,
				collection, id, data,
			); err != nil {
				return fmt.Errorf("insert into %s: %w", collection, err)
			}
			return nil
		default:
			return fmt.Errorf("find for upsert in %s: %w", collection, err)
		}
	})
}

func (s *PostgresStore) ListCollections(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT DISTINCT collection FROM documents ORDER BY collection")
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Name() string {
	return s.pool.Config().ConnConfig.Database
}

func (s *PostgresStore) Available() bool { return true }

func (s *PostgresStore) Close(context.Context) error {
	s.pool.Close()
	return nil
}

func filterJSON(filter Filter) ([]byte, error) {
	if filter == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("marshal filter: %w", err)
	}
	return b, nil
}

package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

// SQLiteStore stores all collections in a single SQLite database.
//
// Table:
//
//	documents(seq, collection, id, data)  UNIQUE (collection, id)
//
// Filters are evaluated with json_extract on the data column.
type SQLiteStore struct {
	mu   sync.RWMutex
	db   *sqlx.DB
	name string
}

// NewSQLiteStore opens (or creates) the database file at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	db, err := sqlx.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		data TEXT NOT NULL,
		UNIQUE (collection, id)
	)`); err != nil {
		db.Close()
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(dbPath), filepath.Ext(dbPath))
	return &SQLiteStore{db: db, name: name}, nil
}

func (s *SQLiteStore) CreateDocument(ctx context.Context, collection string, doc Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := ulid.Make().String()
	if err := s.insert(ctx, s.db, collection, id, merge(doc, Document{IDField: id})); err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLiteStore) GetDocuments(ctx context.Context, collection string, filter Filter, limit int64) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args := sqliteWhere(collection, filter)
	query := "SELECT data FROM documents WHERE " + where + " ORDER BY seq"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows []string
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("find in %s: %w", collection, err)
	}

	docs := make([]Document, 0, len(rows))
	for _, raw := range rows {
		var doc Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("unmarshal document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *SQLiteStore) FindOne(ctx context.Context, collection string, filter Filter) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, doc, err := s.findOne(ctx, s.db, collection, filter)
	return doc, err
}

func (s *SQLiteStore) UpsertOne(ctx context.Context, collection string, filter Filter, set Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	seq, existing, err := s.findOne(ctx, tx, collection, filter)
	switch {
	case err == nil:
		data, err := json.Marshal(merge(existing, set))
		if err != nil {
			return fmt.Errorf("marshal document: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "UPDATE documents SET data = ? WHERE seq = ?", string(data), seq); err != nil {
			return fmt.Errorf("update in %s: %w", collection, err)
		}
	case errors.Is(err, ErrNoDocuments):
		id := ulid.Make().String()
		doc := merge(merge(filter, set), Document{IDField: id})
		if err := s.insert(ctx, tx, collection, id, doc); err != nil {
			return err
		}
	default:
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStore) ListCollections(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	if err := s.db.SelectContext(ctx, &names, "SELECT DISTINCT collection FROM documents ORDER BY collection"); err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return names, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Name() string { return s.name }

func (s *SQLiteStore) Available() bool { return true }

func (s *SQLiteStore) Close(context.Context) error {
	return s.db.Close()
}

func (s *SQLiteStore) insert(ctx context.Context, ex sqlx.ExecerContext, collection, id string, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if _, err := ex.ExecContext(ctx,
		"INSERT INTO documents (collection, id, data) VALUES (?, ?, ?)",
		collection, id, string(data),
	); err != nil {
		return fmt.Errorf("insert into %s: %w", collection, err)
	}
	return nil
}

// sqliteRow is one documents row as read by findOne.
type sqliteRow struct {
	Seq  int64  `db:"seq"`
	Data string `db:"data"`
}

func (s *SQLiteStore) findOne(ctx context.Context, q sqlx.QueryerContext, collection string, filter Filter) (int64, Document, error) {
	where, args := sqliteWhere(collection, filter)

	var row sqliteRow
	err := sqlx.GetContext(ctx, q, &row, "SELECT seq, data FROM documents WHERE "+where+" ORDER BY seq LIMIT 1", args...)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil, ErrNoDocuments
	}
	if err != nil {
		return 0, nil, fmt.Errorf("find one in %s: %w", collection, err)
	}

	var doc Document
	if err := json.Unmarshal([]byte(row.Data), &doc); err != nil {
		return 0, nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return row.Seq, doc, nil
}

// sqliteWhere builds an equality filter over JSON fields. Keys are passed as
// bound JSON paths, never interpolated.
func sqliteWhere(collection string, filter Filter) (string, []any) {
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := []string{"collection = ?"}
	args := []any{collection}
	for _, k := range keys {
		path := `$."` + strings.ReplaceAll(k, `"`, `\"`) + `"`
		if filter[k] == nil {
			clauses = append(clauses, "json_extract(data, ?) IS NULL")
			args = append(args, path)
			continue
		}
		clauses = append(clauses, "json_extract(data, ?) = ?")
		args = append(args, path, filter[k])
	}
	return strings.Join(clauses, " AND "), args
}

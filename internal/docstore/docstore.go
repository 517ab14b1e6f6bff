// Package docstore provides a small document-store layer over named
// collections of schemaless documents.
//
// Backends:
//
//	"mongo"    - MongoDB (default)
//	"postgres" - PostgreSQL, one JSONB table
//	"sqlite"   - SQLite, one JSON text table
//	"memory"   - in-memory (ephemeral, for tests and local runs)
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// IDField is the key holding a document's store-assigned identifier.
// Backends always return it as a string.
const IDField = "_id"

// Document is a single schemaless record.
type Document map[string]any

// Filter selects documents by exact equality on every listed field.
type Filter map[string]any

// Common store errors.
var (
	ErrUnavailable   = errors.New("document store not available")
	ErrNoDocuments   = errors.New("no matching document")
	ErrNotConfigured = errors.New("database url not configured")
)

// Store is the interface that all document store backends implement.
type Store interface {
	// CreateDocument inserts doc into collection and returns the new identifier.
	CreateDocument(ctx context.Context, collection string, doc Document) (string, error)

	// GetDocuments returns up to limit documents matching filter, in the
	// backend's natural order.
	GetDocuments(ctx context.Context, collection string, filter Filter, limit int64) ([]Document, error)

	// FindOne returns the first document matching filter, or ErrNoDocuments.
	FindOne(ctx context.Context, collection string, filter Filter) (Document, error)

	// UpsertOne merges set into the first document matching filter. When nothing
	// matches, a new document made of filter and set is inserted.
	UpsertOne(ctx context.Context, collection string, filter Filter, set Document) error

	// ListCollections returns the names of collections holding data.
	ListCollections(ctx context.Context) ([]string, error)

	// Ping checks connectivity.
	Ping(ctx context.Context) error

	// Name returns the database name.
	Name() string

	// Available reports whether the store is connected.
	Available() bool

	// Close releases the connection.
	Close(ctx context.Context) error
}

// Options selects and configures a backend.
type Options struct {
	Backend        string
	URL            string
	Database       string
	SQLitePath     string
	ConnectTimeout time.Duration
}

// Open connects to the backend named in opts. Callers that want to keep
// serving without a database wrap the error with Unavailable.
func Open(ctx context.Context, opts Options) (Store, error) {
	if opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.ConnectTimeout)
		defer cancel()
	}

	switch opts.Backend {
	case "mongo", "":
		if opts.URL == "" {
			return nil, ErrNotConfigured
		}
		return NewMongoStore(ctx, opts.URL, opts.Database)
	case "postgres":
		if opts.URL == "" {
			return nil, ErrNotConfigured
		}
		return NewPostgresStore(ctx, opts.URL)
	case "sqlite":
		return NewSQLiteStore(opts.SQLitePath)
	case "memory":
		return NewMemoryStore(opts.Database), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q (supported: mongo, postgres, sqlite, memory)", opts.Backend)
	}
}

// Encode converts a tagged struct into a Document using its JSON field names.
func Encode(v any) (Document, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return doc, nil
}

// Decode fills out from doc using out's JSON field names.
func Decode(doc Document, out any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// deepCopy returns a deep copy of a document by round-tripping through JSON.
func deepCopy(src map[string]any) Document {
	if src == nil {
		return nil
	}
	b, _ := json.Marshal(src)
	var dst Document
	_ = json.Unmarshal(b, &dst)
	return dst
}

// merge returns a copy of base with every key of set applied on top.
func merge(base map[string]any, set map[string]any) Document {
	out := make(Document, len(base)+len(set))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range set {
		out[k] = v
	}
	return out
}

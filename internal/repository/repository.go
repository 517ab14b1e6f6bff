// Package repository provides typed access to the document store.
package repository

import (
	"context"

	"github.com/dropline/dropline/internal/docstore"
)

// Collection names.
const (
	UsersCollection    = "appuser"
	RequestsCollection = "request"
)

// Repository maps domain entities to documents in the store.
type Repository struct {
	store docstore.Store
}

// New creates a Repository over store. store may be unavailable; operations
// then fail with docstore.ErrUnavailable.
func New(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// Ping checks store connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// Available reports whether the underlying store is connected.
func (r *Repository) Available() bool {
	return r.store.Available()
}

// optional turns a nil pointer into an untyped nil so documents hold plain values.
func optional[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

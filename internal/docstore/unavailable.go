package docstore

import (
	"context"
	"fmt"
)

// unavailableStore stands in for a store that failed to connect.
// Every operation fails with ErrUnavailable.
type unavailableStore struct {
	err error
}

// Unavailable returns a Store whose operations all fail with ErrUnavailable.
// reason is kept in the error text; it may be nil.
func Unavailable(reason error) Store {
	err := ErrUnavailable
	if reason != nil {
		err = fmt.Errorf("%w: %v", ErrUnavailable, reason)
	}
	return &unavailableStore{err: err}
}

func (u *unavailableStore) CreateDocument(context.Context, string, Document) (string, error) {
	return "", u.err
}

func (u *unavailableStore) GetDocuments(context.Context, string, Filter, int64) ([]Document, error) {
	return nil, u.err
}

func (u *unavailableStore) FindOne(context.Context, string, Filter) (Document, error) {
	return nil, u.err
}

func (u *unavailableStore) UpsertOne(context.Context, string, Filter, Document) error {
	return u.err
}

func (u *unavailableStore) ListCollections(context.Context) ([]string, error) {
	return nil, u.err
}

func (u *unavailableStore) Ping(context.Context) error { return u.err }

func (u *unavailableStore) Name() string { return "" }

func (u *unavailableStore) Available() bool { return false }

func (u *unavailableStore) Close(context.Context) error { return nil }

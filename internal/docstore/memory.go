package docstore

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"github.com/oklog/ulid/v2"
)

// MemoryStore keeps every collection in memory, in insertion order.
// Data is lost on restart. Safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	name        string
	collections map[string][]Document
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(name string) *MemoryStore {
	if name == "" {
		name = "memory"
	}
	return &MemoryStore{
		name:        name,
		collections: make(map[string][]Document),
	}
}

func (m *MemoryStore) CreateDocument(_ context.Context, collection string, doc Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := deepCopy(doc)
	if stored == nil {
		stored = Document{}
	}
	id := ulid.Make().String()
	stored[IDField] = id
	m.collections[collection] = append(m.collections[collection], stored)
	return id, nil
}

func (m *MemoryStore) GetDocuments(_ context.Context, collection string, filter Filter, limit int64) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	want := deepCopy(filter)
	result := make([]Document, 0)
	for _, doc := range m.collections[collection] {
		if limit > 0 && int64(len(result)) >= limit {
			break
		}
		if matches(doc, want) {
			result = append(result, deepCopy(doc))
		}
	}
	return result, nil
}

func (m *MemoryStore) FindOne(_ context.Context, collection string, filter Filter) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.indexOf(collection, deepCopy(filter)); i >= 0 {
		return deepCopy(m.collections[collection][i]), nil
	}
	return nil, ErrNoDocuments
}

func (m *MemoryStore) UpsertOne(_ context.Context, collection string, filter Filter, set Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	want := deepCopy(filter)
	patch := deepCopy(set)
	if i := m.indexOf(collection, want); i >= 0 {
		m.collections[collection][i] = merge(m.collections[collection][i], patch)
		return nil
	}

	doc := merge(want, patch)
	doc[IDField] = ulid.Make().String()
	m.collections[collection] = append(m.collections[collection], doc)
	return nil
}

func (m *MemoryStore) ListCollections(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.collections))
	for name, docs := range m.collections {
		if len(docs) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Name() string { return m.name }

func (m *MemoryStore) Available() bool { return true }

func (m *MemoryStore) Close(context.Context) error { return nil }

// indexOf returns the position of the first document matching want, or -1.
// Callers hold m.mu.
func (m *MemoryStore) indexOf(collection string, want Document) int {
	for i, doc := range m.collections[collection] {
		if matches(doc, want) {
			return i
		}
	}
	return -1
}

// matches reports whether doc has every field of want with an equal value.
// Both sides have been through deepCopy, so values share JSON types.
func matches(doc, want Document) bool {
	for k, v := range want {
		got, ok := doc[k]
		if !ok && v != nil {
			return false
		}
		if !reflect.DeepEqual(got, v) {
			return false
		}
	}
	return true
}

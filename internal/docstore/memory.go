package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory keeps documents as JSON blobs in process memory.  Encoding on
// every write means callers never share mutable state with the store.
// It backs DOCSTORE_DRIVER=memory and the test suites.
type Memory struct {
	mu    sync.RWMutex
	colls map[string]map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{colls: make(map[string]map[string][]byte)}
}

type jsonSnapshot struct {
	id   string
	data []byte
}

func (s jsonSnapshot) ID() string { return s.id }

func (s jsonSnapshot) DataTo(dst any) error { return json.Unmarshal(s.data, dst) }

func (m *Memory) Save(ctx context.Context, collection, id string, doc any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode %s document: %w", collection, err)
	}
	if id == "" {
		id = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.colls[collection]
	if !ok {
		c = make(map[string][]byte)
		m.colls[collection] = c
	}
	c[id] = b
	return id, nil
}

func (m *Memory) Get(ctx context.Context, collection, id string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.colls[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return jsonSnapshot{id: id, data: b}, nil
}

// GetAll returns the collection ordered by id so listings are stable.
func (m *Memory) GetAll(ctx context.Context, collection string) ([]Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	c := m.colls[collection]
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Snapshot, 0, len(ids))
	for _, id := range ids {
		out = append(out, jsonSnapshot{id: id, data: c[id]})
	}
	return out, nil
}

func (m *Memory) QueryEqual(ctx context.Context, collection, field string, value any) ([]Snapshot, error) {
	want, err := normalize(value)
	if err != nil {
		return nil, err
	}
	all, err := m.GetAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]Snapshot, 0)
	for _, s := range all {
		var fields map[string]any
		if err := s.DataTo(&fields); err != nil {
			return nil, err
		}
		if got, ok := fields[field]; ok && reflect.DeepEqual(got, want) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.colls[collection], id)
	return nil
}

func (m *Memory) Exists(ctx context.Context, collection, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.colls[collection][id]
	return ok, nil
}

func (m *Memory) Close() error { return nil }

// normalize runs value through a JSON round trip so it compares equal to
// a decoded field of the same logical value (typed strings, ints vs floats).
func normalize(value any) (any, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return v, nil
}

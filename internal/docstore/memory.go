package docstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memEntry struct {
	seq    int64
	fields map[string]any
}

// MemoryStore keeps collections in process memory. Documents are copied on
// the way in and out so callers never share maps with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	seq         int64
	collections map[string]map[string]*memEntry
	newID       func() string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]*memEntry),
		newID:       func() string { return uuid.NewString() },
	}
}

func (s *MemoryStore) Create(_ context.Context, collection string, fields map[string]any) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]*memEntry)
		s.collections[collection] = coll
	}

	id := s.newID()
	for coll[id] != nil {
		id = s.newID()
	}
	s.seq++
	coll[id] = &memEntry{seq: s.seq, fields: copyFields(fields)}
	return Document{ID: id, Fields: copyFields(fields)}, nil
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.collections[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Fields: copyFields(e.fields)}, nil
}

func (s *MemoryStore) Update(_ context.Context, collection, id string, fields map[string]any) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.collections[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	for k, v := range copyFields(fields) {
		e.fields[k] = v
	}
	return Document{ID: id, Fields: copyFields(e.fields)}, nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll := s.collections[collection]
	if _, ok := coll[id]; !ok {
		return ErrNotFound
	}
	delete(coll, id)
	return nil
}

func (s *MemoryStore) Query(_ context.Context, collection string, q Query) ([]Document, error) {
	s.mu.RLock()
	type row struct {
		id string
		e  *memEntry
	}
	rows := make([]row, 0, len(s.collections[collection]))
	for id, e := range s.collections[collection] {
		rows = append(rows, row{id: id, e: e})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i].e, rows[j].e
		if q.OrderBy != "" {
			ta, aok := a.fields[q.OrderBy].(time.Time)
			tb, bok := b.fields[q.OrderBy].(time.Time)
			switch {
			case aok && bok && !ta.Equal(tb):
				if q.Desc {
					return ta.After(tb)
				}
				return ta.Before(tb)
			case aok != bok:
				// documents missing the field sort last
				return aok
			}
		}
		if q.Desc {
			return a.seq > b.seq
		}
		return a.seq < b.seq
	})

	docs := make([]Document, len(rows))
	for i, r := range rows {
		docs[i] = Document{ID: r.id, Fields: copyFields(r.e.fields)}
	}
	s.mu.RUnlock()
	return docs, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() {}

func copyFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyFields(val)
	case []any:
		s := make([]any, len(val))
		for i, inner := range val {
			s[i] = copyValue(inner)
		}
		return s
	default:
		return v
	}
}

// Package docstore is a small document store abstraction: schemaless documents
// grouped into named collections, addressed by a store-assigned id.
//
// Field values are JSON-like (string, bool, float64, nil, map[string]any, []any)
// plus time.Time, which is the store-native temporal type.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an id does not resolve to a document.
var ErrNotFound = errors.New("document not found")

type Document struct {
	ID     string
	Fields map[string]any
}

// Query selects every document of a collection. OrderBy names a timestamp
// field; documents with equal or missing values keep insertion order
// (reversed when Desc is set).
type Query struct {
	OrderBy string
	Desc    bool
}

type Store interface {
	Create(ctx context.Context, collection string, fields map[string]any) (Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	// Update merges fields into an existing document. The write only happens
	// if the document still exists; otherwise ErrNotFound.
	Update(ctx context.Context, collection, id string, fields map[string]any) (Document, error)
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	Ping(ctx context.Context) error
	Close()
}

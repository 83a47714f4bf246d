package docstore

import (
	"context"
	"errors"
	"time"

	"tasktracker/pkg/metrics"
	"tasktracker/pkg/otel"
)

type instrumented struct {
	next Store
}

// WithInstrumentation wraps a Store so every call records a latency sample
// and a client span. ErrNotFound counts as a successful call.
func WithInstrumentation(next Store) Store {
	return &instrumented{next: next}
}

func (s *instrumented) observe(ctx context.Context, op, collection string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := otel.StoreSpan(ctx, op, collection)
	return ctx, func(err error) {
		if errors.Is(err, ErrNotFound) {
			err = nil
		}
		metrics.RecordStoreOp(op, collection, err, time.Since(start))
		otel.EndSpan(span, err)
	}
}

func (s *instrumented) Create(ctx context.Context, collection string, fields map[string]any) (Document, error) {
	ctx, done := s.observe(ctx, "create", collection)
	doc, err := s.next.Create(ctx, collection, fields)
	done(err)
	return doc, err
}

func (s *instrumented) Get(ctx context.Context, collection, id string) (Document, error) {
	ctx, done := s.observe(ctx, "get", collection)
	doc, err := s.next.Get(ctx, collection, id)
	done(err)
	return doc, err
}

func (s *instrumented) Update(ctx context.Context, collection, id string, fields map[string]any) (Document, error) {
	ctx, done := s.observe(ctx, "update", collection)
	doc, err := s.next.Update(ctx, collection, id, fields)
	done(err)
	return doc, err
}

func (s *instrumented) Delete(ctx context.Context, collection, id string) error {
	ctx, done := s.observe(ctx, "delete", collection)
	err := s.next.Delete(ctx, collection, id)
	done(err)
	return err
}

func (s *instrumented) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	ctx, done := s.observe(ctx, "query", collection)
	docs, err := s.next.Query(ctx, collection, q)
	done(err)
	return docs, err
}

func (s *instrumented) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *instrumented) Close() {
	s.next.Close()
}

package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
    collection TEXT   NOT NULL,
    id         UUID   NOT NULL,
    seq        BIGSERIAL,
    data       JSONB  NOT NULL,
    PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_collection_seq_idx ON documents (collection, seq);
`

// PostgresStore keeps every collection in one JSONB table.
type PostgresStore struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresStore(db *pgxpool.Pool, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

// EnsureSchema creates the documents table if it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure documents schema: %w", err)
	}
	s.logger.Info("Document store schema ready")
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, collection string, fields map[string]any) (Document, error) {
	data, err := encodeFields(fields)
	if err != nil {
		return Document{}, fmt.Errorf("encode document: %w", err)
	}

	id := uuid.New()
	query := `
        INSERT INTO documents (collection, id, data)
        VALUES ($1, $2, $3)
        RETURNING data
    `
	var stored []byte
	if err := s.db.QueryRow(ctx, query, collection, id, data).Scan(&stored); err != nil {
		return Document{}, fmt.Errorf("insert into %s: %w", collection, err)
	}
	decoded, err := decodeFields(stored)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id.String(), Fields: decoded}, nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return Document{}, ErrNotFound
	}

	query := `SELECT data FROM documents WHERE collection = $1 AND id = $2`
	var data []byte
	if err := s.db.QueryRow(ctx, query, collection, docID).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	fields, err := decodeFields(data)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: docID.String(), Fields: fields}, nil
}

// Update merges fields with jsonb concatenation in a single statement, so a
// document deleted concurrently yields ErrNotFound instead of a resurrected row.
func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields map[string]any) (Document, error) {
	docID, err := uuid.Parse(id)
	if err != nil {
		return Document{}, ErrNotFound
	}
	patch, err := encodeFields(fields)
	if err != nil {
		return Document{}, fmt.Errorf("encode patch: %w", err)
	}

	query := `
        UPDATE documents
        SET data = data || $3::jsonb
        WHERE collection = $1 AND id = $2
        RETURNING data
    `
	var data []byte
	if err := s.db.QueryRow(ctx, query, collection, docID, patch).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	merged, err := decodeFields(data)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: docID.String(), Fields: merged}, nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	docID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, docID)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	query := `SELECT id, data FROM documents WHERE collection = $1 ORDER BY seq ASC`
	args := []any{collection}
	if q.OrderBy != "" {
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		query = fmt.Sprintf(`
            SELECT id, data FROM documents
            WHERE collection = $1
            ORDER BY data #>> $2::text[] %[1]s NULLS LAST, seq %[1]s
        `, dir)
		args = append(args, []string{q.OrderBy, tsKey})
	} else if q.Desc {
		query = `SELECT id, data FROM documents WHERE collection = $1 ORDER BY seq DESC`
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var (
			id   uuid.UUID
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", collection, err)
		}
		fields, err := decodeFields(data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: id.String(), Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}
	return docs, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

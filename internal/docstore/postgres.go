package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT  NOT NULL,
		id         TEXT  NOT NULL,
		body       JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (collection, id)
	);
	CREATE INDEX IF NOT EXISTS documents_body_gin ON documents USING GIN (body jsonb_path_ops);`

type postgresStore struct {
	db *sql.DB
}

// NewPostgres opens a lib/pq connection and ensures the documents table.
func NewPostgres(ctx context.Context, dsn string) (Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return &postgresStore{db: db}, nil
}

func (s *postgresStore) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = $1 AND id = $2`, collection, id,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return body, nil
}

// Find pushes the non-zero filter parts down as a jsonb containment test and
// applies the zero-value parts on the result.
func (s *postgresStore) Find(ctx context.Context, collection string, f Filter) ([][]byte, error) {
	norm, err := normalize(f)
	if err != nil {
		return nil, err
	}
	present, zero := split(norm)
	contains, err := json.Marshal(present)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM documents WHERE collection = $1 AND body @> $2::jsonb ORDER BY id`,
		collection, string(contains))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bodies [][]byte
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		bodies = append(bodies, body)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return filterBodies(bodies, zero)
}

func (s *postgresStore) Create(ctx context.Context, collection, id string, body []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, body) VALUES ($1, $2, $3::jsonb)`,
		collection, id, string(body))
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrConflict
	}
	return err
}

func (s *postgresStore) Put(ctx context.Context, collection, id string, body []byte) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET body = $3::jsonb, updated_at = NOW() WHERE collection = $1 AND id = $2`,
		collection, id, string(body))
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (s *postgresStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (s *postgresStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *postgresStore) Close() error { return s.db.Close() }

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

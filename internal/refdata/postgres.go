package refdata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresSource reads tables from the reference_tables relation created by
// the platform migrations.
type PostgresSource struct {
	db *sql.DB
}

// NewPostgresSource wraps an open database.
func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

// OpenPostgres connects to the database and checks it is reachable.
func OpenPostgres(ctx context.Context, url string) (*PostgresSource, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresSource{db: db}, nil
}

// DB returns the underlying connection pool.
func (s *PostgresSource) DB() *sql.DB {
	return s.db
}

func (s *PostgresSource) ReadTable(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM reference_tables WHERE path = $1`, name,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("query table %s: %w", name, err)
	}
	return data, nil
}

func (s *PostgresSource) PutTable(ctx context.Context, name string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reference_tables (path, content, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (path) DO UPDATE SET content = EXCLUDED.content, updated_at = now()`,
		name, data,
	)
	if err != nil {
		return fmt.Errorf("store table %s: %w", name, err)
	}
	return nil
}

// Close closes the database.
func (s *PostgresSource) Close() error {
	return s.db.Close()
}

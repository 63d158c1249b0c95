package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultPoolSize = 2

// PostgresStore keeps the history in the sent_listings table.
//
// The schema comes from RunMigrations (the migrate subcommand); the store
// does not create it on open.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and verifies the connection.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Migrate applies pending schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// AppliedMigrations returns the number of migrations recorded in
// schema_migrations.
func (s *PostgresStore) AppliedMigrations(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, queryPostgresMigrationCount).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting migrations: %w", err)
	}
	return n, nil
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Load returns every recorded url.
func (s *PostgresStore) Load(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx, queryPostgresLoad)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}

	urls, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collecting history rows: %w", err)
	}

	seen := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		seen[u] = struct{}{}
	}
	return seen, nil
}

// Append inserts urls as one batch inside a transaction.
func (s *PostgresStore) Append(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, u := range urls {
			batch.Queue(queryPostgresInsert, u)
		}

		br := tx.SendBatch(ctx, batch)
		for _, u := range urls {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("inserting %s: %w", u, err)
			}
		}
		return br.Close()
	})
}

// Count returns the number of recorded urls.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, queryPostgresCount).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting history: %w", err)
	}
	return n, nil
}

// Close shuts down the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

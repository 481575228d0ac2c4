package processed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/darshanbajgain/darshan-blog-temp/pkg/interfaces"
)

// Supported store providers.
const (
	ProviderMemory   = "memory"
	ProviderSQLite   = "sqlite"
	ProviderPostgres = "postgres"
)

var (
	// ErrEmptyFilename is returned when marking a blank filename.
	ErrEmptyFilename = errors.New("processed: filename is required")
	// ErrUnknownProvider is returned by Open for an unsupported provider.
	ErrUnknownProvider = errors.New("processed: unknown store provider")
	// ErrMissingDSN is returned by Open when a database provider has no DSN.
	ErrMissingDSN = errors.New("processed: dsn is required")
)

// Config selects and configures the store backend.
type Config struct {
	Provider string
	DSN      string
}

// Open builds the store described by cfg. The returned close function
// releases database handles and is safe to call for the memory store.
func Open(ctx context.Context, cfg Config) (interfaces.ProcessedStore, func() error, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderMemory
	}

	noop := func() error { return nil }

	switch provider {
	case ProviderMemory:
		return NewMemory(), noop, nil
	case ProviderSQLite, ProviderPostgres:
	default:
		return nil, noop, fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}

	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, noop, ErrMissingDSN
	}

	db, err := openDB(provider, cfg.DSN)
	if err != nil {
		return nil, noop, err
	}

	repo := NewBunRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, noop, fmt.Errorf("processed: migrate: %w", err)
	}
	return repo, db.Close, nil
}

func openDB(provider, dsn string) (*bun.DB, error) {
	switch provider {
	case ProviderPostgres:
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("processed: open postgres: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("processed: open sqlite: %w", err)
		}
		sqldb.SetMaxOpenConns(1)
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	}
}

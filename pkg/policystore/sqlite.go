package policystore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // driver "sqlite3", cgo
	_ "modernc.org/sqlite"          // driver "sqlite", pure Go
)

// Supported SQL drivers.
const (
	DriverModernc = "sqlite"
	DriverCGO     = "sqlite3"
)

// SQLiteConfig contains configuration for the SQLite backend.
type SQLiteConfig struct {
	// Path is the database file path. Parent directories are created.
	Path string

	// Driver selects the database/sql driver: "sqlite" (modernc.org/sqlite)
	// or "sqlite3" (github.com/mattn/go-sqlite3).
	// Default: "sqlite"
	Driver string

	// WALMode enables Write-Ahead Logging so readers do not block the writer.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		Path:        "data/policy_store.db",
		Driver:      DriverModernc,
		WALMode:     true,
		BusyTimeout: 5 * time.Second,
	}
}

// SQLiteBackend implements Backend on a SQLite database file.
type SQLiteBackend struct {
	db        *sql.DB
	config    SQLiteConfig
	logger    *slog.Logger
	closeOnce sync.Once
}

// NewSQLiteBackend opens (creating if needed) the database at cfg.Path and
// installs the schema.
func NewSQLiteBackend(cfg SQLiteConfig, logger *slog.Logger) (*SQLiteBackend, error) {
	if cfg.Path == "" {
		return nil, NewStoreError(cfg.Driver, "open", fmt.Errorf("db path cannot be empty"))
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverModernc
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "policystore.sqlite")

	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, NewStoreError(cfg.Driver, "open", err)
	}

	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, NewStoreError(cfg.Driver, "mkdir", err)
		}
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, NewStoreError(cfg.Driver, "open", err)
	}

	// One connection: SQLite has a single writer and the store serves reads
	// from memory.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	b := &SQLiteBackend{
		db:     db,
		config: cfg,
		logger: logger,
	}

	if err := b.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite policy store initialized",
		"path", cfg.Path,
		"driver", cfg.Driver,
		"wal_mode", cfg.WALMode,
	)

	return b, nil
}

// buildDSN encodes pragmas in the form each driver understands.
func buildDSN(cfg SQLiteConfig) (string, error) {
	ms := cfg.BusyTimeout.Milliseconds()

	switch cfg.Driver {
	case DriverModernc:
		dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=synchronous(FULL)&_txlock=immediate", cfg.Path, ms)
		if cfg.WALMode {
			dsn += "&_pragma=journal_mode(WAL)"
		}
		return dsn, nil
	case DriverCGO:
		dsn := fmt.Sprintf("%s?_busy_timeout=%d&_synchronous=FULL&_txlock=immediate", cfg.Path, ms)
		if cfg.WALMode {
			dsn += "&_journal_mode=WAL"
		}
		return dsn, nil
	default:
		return "", fmt.Errorf("unsupported sqlite driver %q (want %q or %q)", cfg.Driver, DriverModernc, DriverCGO)
	}
}

// initialize sets up the database schema and verifies its version.
func (b *SQLiteBackend) initialize() error {
	if _, err := b.db.Exec(Schema); err != nil {
		return NewStoreError(b.Name(), "create_schema", err)
	}
	b.logger.Debug("database schema created")

	if _, err := b.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return NewStoreError(b.Name(), "insert_schema_version", err)
	}

	var version int
	err := b.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return NewStoreError(b.Name(), "get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewStoreError(b.Name(), "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	b.logger.Debug("schema version verified", "version", version)
	return nil
}

// Name implements Backend.
func (b *SQLiteBackend) Name() string {
	return b.config.Driver
}

// EnsureCollection implements Backend.
func (b *SQLiteBackend) EnsureCollection(ctx context.Context, collection string, dims int) error {
	if _, err := b.db.ExecContext(ctx, insertCollection, collection, dims, time.Now().UnixNano()); err != nil {
		return err
	}

	var existing int
	if err := b.db.QueryRowContext(ctx, getCollectionDimensions, collection).Scan(&existing); err != nil {
		return err
	}
	if existing != dims {
		return fmt.Errorf("%w: collection %q has %d dimensions, embedder has %d", errDimension, collection, existing, dims)
	}
	return nil
}

// LoadAll implements Backend.
func (b *SQLiteBackend) LoadAll(ctx context.Context, collection string) ([]StoredChunk, error) {
	var dims int
	err := b.db.QueryRowContext(ctx, getCollectionDimensions, collection).Scan(&dims)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := b.db.QueryContext(ctx, selectChunks, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredChunk
	for rows.Next() {
		var (
			sc                   StoredChunk
			metadata             string
			blob                 []byte
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&sc.ID, &sc.DocumentID, &sc.Index, &sc.Text, &metadata, &blob, &sc.Seq, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if metadata != "" {
			if err := json.Unmarshal([]byte(metadata), &sc.Metadata); err != nil {
				return nil, fmt.Errorf("chunk %s: decode metadata: %w", sc.ID, err)
			}
		}
		sc.Embedding, err = decodeVector(blob, dims)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", sc.ID, err)
		}
		sc.CreatedAt = time.Unix(0, createdAt).UTC()
		sc.UpdatedAt = time.Unix(0, updatedAt).UTC()
		out = append(out, sc)
	}
	return out, rows.Err()
}

// Put implements Backend. The whole batch commits or none of it does.
func (b *SQLiteBackend) Put(ctx context.Context, collection string, chunks []StoredChunk) (err error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertChunk)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sc := range chunks {
		metadata, err := json.Marshal(sc.Metadata)
		if err != nil {
			return fmt.Errorf("chunk %s: encode metadata: %w", sc.ID, err)
		}
		_, err = stmt.ExecContext(ctx,
			collection, sc.ID, sc.DocumentID, sc.Index, sc.Text, string(metadata),
			encodeVector(sc.Embedding), sc.Seq,
			sc.CreatedAt.UnixNano(), sc.UpdatedAt.UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("chunk %s: %w", sc.ID, err)
		}
	}

	return tx.Commit()
}

// Delete implements Backend.
func (b *SQLiteBackend) Delete(ctx context.Context, collection string, ids []string) (removed int, err error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, deleteChunk)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, id := range ids {
		res, err := stmt.ExecContext(ctx, collection, id)
		if err != nil {
			return 0, fmt.Errorf("chunk %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		removed += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return removed, nil
}

// Ping implements Backend.
func (b *SQLiteBackend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

// Close implements Backend.
func (b *SQLiteBackend) Close() error {
	var err error
	b.closeOnce.Do(func() {
		err = b.db.Close()
		b.logger.Info("SQLite policy store closed")
	})
	return err
}

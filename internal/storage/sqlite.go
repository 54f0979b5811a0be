package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/meur/tierrank/internal/metrics"
	"github.com/meur/tierrank/internal/models"
	"github.com/meur/tierrank/internal/ranking"
	"github.com/meur/tierrank/pkg/logger"
)

// Store handles all database operations. Every mutating method runs as one
// BEGIN IMMEDIATE transaction on db, so concurrent writers are serialized by
// SQLite. Reads go through reader, a query-only pool with deferred
// transactions, so they never wait for the write lock.
type Store struct {
	db            *sql.DB
	reader        *sql.DB
	log           logger.Logger
	metrics       *metrics.Recorder
	maxNameLength int
	deletePolicy  ranking.DeletePolicy
	omitted       ranking.OmittedPolicy
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for committed mutations.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics records operation counts and durations on m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Store) { s.metrics = m }
}

// WithMaxNameLength bounds tier and item names.
func WithMaxNameLength(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxNameLength = n
		}
	}
}

// WithDeletePolicy selects what DeleteTier does with referencing items.
func WithDeletePolicy(p ranking.DeletePolicy) Option {
	return func(s *Store) { s.deletePolicy = p }
}

// WithOmittedPolicy selects what ApplyReorder does with unlisted items.
func WithOmittedPolicy(p ranking.OmittedPolicy) Option {
	return func(s *Store) { s.omitted = p }
}

const (
	writerParams = "?_foreign_keys=on&_journal_mode=WAL&_txlock=immediate&_busy_timeout=5000"
	readerParams = "?_foreign_keys=on&_busy_timeout=5000&_query_only=true"
)

// New creates a new Store with SQLite
func New(dbPath string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+writerParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:            db,
		log:           logger.Nop(),
		maxNameLength: ranking.DefaultMaxNameLength,
		deletePolicy:  ranking.DeleteReject,
		omitted:       ranking.OmitReject,
	}
	for _, opt := range opts {
		opt(store)
	}
	if !store.deletePolicy.Valid() {
		db.Close()
		return nil, fmt.Errorf("unknown delete policy %q", store.deletePolicy)
	}
	if !store.omitted.Valid() {
		db.Close()
		return nil, fmt.Errorf("unknown omitted-items policy %q", store.omitted)
	}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// The reader opens after migrate so the file is already in WAL mode.
	reader, err := sql.Open("sqlite3", dbPath+readerParams)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open read connection: %w", err)
	}
	store.reader = reader

	return store, nil
}

// Close closes both connection pools
func (s *Store) Close() error {
	return errors.Join(s.reader.Close(), s.db.Close())
}

// migrate runs database migrations
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS tiers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			color TEXT NOT NULL,
			rank INTEGER NOT NULL UNIQUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS items (
			name TEXT PRIMARY KEY,
			tier_id TEXT REFERENCES tiers(id),
			position INTEGER UNIQUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_tier ON items(tier_id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// withTx runs fn in one transaction and commits it. Any error from fn rolls
// the whole transaction back. fn receives a context detached from ctx
// cancellation: once begun, a transaction runs to commit or rollback.
func (s *Store) withTx(ctx context.Context, op string, fn func(ctx context.Context, tx *sql.Tx) error) (err error) {
	started := time.Now()
	defer func() { s.metrics.ObserveOperation(op, started, err) }()

	if err := ctx.Err(); err != nil {
		return err
	}
	txCtx := context.WithoutCancel(ctx)
	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback()

	if err := fn(txCtx, tx); err != nil {
		s.log.Debug(ctx, "rolled back", logger.String("op", op), logger.Error(err))
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	s.log.Debug(ctx, "committed", logger.String("op", op), logger.Duration("took", time.Since(started)))
	return nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// loadTiers returns all tiers ordered by ascending rank.
func loadTiers(ctx context.Context, q queryer) ([]models.Tier, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, color, rank FROM tiers ORDER BY rank`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tiers := []models.Tier{}
	for rows.Next() {
		var t models.Tier
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.Rank); err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}

// loadItems returns all items ordered by position, unpositioned items last.
func loadItems(ctx context.Context, q queryer) ([]models.Item, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT i.name, t.name, i.position
		FROM items i LEFT JOIN tiers t ON t.id = i.tier_id
		ORDER BY i.position IS NULL, i.position, i.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (models.Item, error) {
	var item models.Item
	var tier sql.NullString
	var position sql.NullInt64
	if err := row.Scan(&item.Name, &tier, &position); err != nil {
		return item, err
	}
	if tier.Valid {
		item.Tier = &tier.String
	}
	if position.Valid {
		p := int(position.Int64)
		item.Position = &p
	}
	return item, nil
}

// tierID resolves a tier name to its id.
func tierID(ctx context.Context, q queryer, name string) (string, error) {
	var id string
	err := q.QueryRowContext(ctx, `SELECT id FROM tiers WHERE name = ?`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return "", ranking.NotFound("tier", name)
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

// optionalTierID resolves a nullable tier reference.
func optionalTierID(ctx context.Context, q queryer, name *string) (sql.NullString, error) {
	if name == nil {
		return sql.NullString{}, nil
	}
	id, err := tierID(ctx, q, *name)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: id, Valid: true}, nil
}

// nextPosition is one past the highest position in use.
func nextPosition(ctx context.Context, q queryer) (int, error) {
	var next int
	err := q.QueryRowContext(ctx, `SELECT COALESCE(MAX(position) + 1, 0) FROM items`).Scan(&next)
	return next, err
}

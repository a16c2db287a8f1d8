package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mrosen/ebay-pricer/internal/model"
)

// Store is a SQLite-backed TTL cache for market records.
type Store struct {
	db     *sql.DB
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock overrides the time source. Used by tests to control expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open opens (or creates) the cache database at path. Schema initialization
// is idempotent; opening an existing store is safe.
func Open(path string, ttl time.Duration, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping cache db: %w", err)
	}

	s := &Store{
		db:     db,
		ttl:    ttl,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		s.logger.Warn("failed to set WAL mode", "error", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		s.logger.Warn("failed to set synchronous mode", "error", err)
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	// Timestamps are Unix nanoseconds so expiry comparisons stay numeric.
	const schema = `
		CREATE TABLE IF NOT EXISTS market_cache (
			cache_key  TEXT PRIMARY KEY,
			brand      TEXT NOT NULL,
			model      TEXT NOT NULL,
			condition  TEXT NOT NULL,
			data_json  TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create market_cache: %w", err)
	}
	if _, err := s.db.Exec("CREATE INDEX IF NOT EXISTS idx_expires_at ON market_cache(expires_at)"); err != nil {
		return fmt.Errorf("create expires index: %w", err)
	}
	return nil
}

// Key builds the cache key for a (brand, model, condition) triple: lowercase,
// whitespace collapsed, joined with underscores.
func Key(brand, model, condition string) string {
	b := strings.Join(strings.Fields(strings.ToLower(brand)), " ")
	m := strings.Join(strings.Fields(strings.ToLower(model)), " ")
	c := strings.TrimSpace(strings.ToLower(condition))
	return b + "_" + m + "_" + c
}

// Get returns the cached record for the triple, or (nil, nil) on a miss.
// Expired and corrupt entries are deleted and reported as misses. The
// returned record's DataAge is set to now minus its creation time.
func (s *Store) Get(brand, model, condition string) (*model.MarketRecord, error) {
	key := Key(brand, model, condition)

	var dataJSON string
	var createdNS, expiresNS int64
	err := s.db.QueryRow(
		"SELECT data_json, created_at, expires_at FROM market_cache WHERE cache_key = ?",
		key,
	).Scan(&dataJSON, &createdNS, &expiresNS)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query cache entry: %w", err)
	}

	now := s.now()
	if now.UnixNano() > expiresNS {
		s.logger.Debug("cache expired", "key", key)
		s.delete(key)
		return nil, nil
	}

	rec, err := decodeRecord([]byte(dataJSON))
	if err != nil {
		// Corrupt entries are never propagated; the pipeline refetches.
		s.logger.Warn("corrupt cache entry, dropping", "key", key, "error", err)
		s.delete(key)
		return nil, nil
	}

	created := time.Unix(0, createdNS)
	rec.CreatedAt = created
	rec.DataAge = now.Sub(created)

	s.logger.Debug("cache hit", "key", key, "age", rec.DataAge)
	return rec, nil
}

// Put stores a record, overwriting any existing entry for its key. The entry
// expires TTL from now.
func (s *Store) Put(rec *model.MarketRecord) error {
	key := Key(rec.Brand, rec.Model, rec.Condition)

	data, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	now := s.now()
	expires := now.Add(s.ttl)

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO market_cache
		(cache_key, brand, model, condition, data_json, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		key, rec.Brand, rec.Model, rec.Condition, string(data),
		now.UnixNano(), expires.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}

	s.logger.Debug("cached market record", "key", key, "expires", expires)
	return nil
}

// Sweep deletes entries whose expiry is older than now minus maxAge and
// returns the number removed.
func (s *Store) Sweep(maxAge time.Duration) (int64, error) {
	cutoff := s.now().Add(-maxAge)

	res, err := s.db.Exec("DELETE FROM market_cache WHERE expires_at < ?", cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("sweep cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Clear deletes all entries and returns the number removed.
func (s *Store) Clear() (int64, error) {
	res, err := s.db.Exec("DELETE FROM market_cache")
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Stats describes cache occupancy.
type Stats struct {
	Total int // All entries
	Valid int // Entries with expires_at >= now
	Stale int // Total - Valid
}

// CacheStats returns occupancy counts.
func (s *Store) CacheStats() (Stats, error) {
	var st Stats

	if err := s.db.QueryRow("SELECT COUNT(*) FROM market_cache").Scan(&st.Total); err != nil {
		return st, fmt.Errorf("count cache entries: %w", err)
	}
	if err := s.db.QueryRow(
		"SELECT COUNT(*) FROM market_cache WHERE expires_at >= ?",
		s.now().UnixNano(),
	).Scan(&st.Valid); err != nil {
		return st, fmt.Errorf("count valid entries: %w", err)
	}

	st.Stale = st.Total - st.Valid
	return st, nil
}

func (s *Store) delete(key string) {
	if _, err := s.db.Exec("DELETE FROM market_cache WHERE cache_key = ?", key); err != nil {
		s.logger.Warn("failed to delete cache entry", "key", key, "error", err)
	}
}

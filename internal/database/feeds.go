// file: internal/database/feeds.go
// version: 1.0.0
// guid: 94baa777-fd63-473b-a010-ea5f62ce42f0

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/jdfalk/newsdeck/internal/models"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported fallback drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// ErrFeedNotFound is returned when no mirrored feed exists for a key.
var ErrFeedNotFound = errors.New("feed not found")

// SQLStore is the relational fallback for news feeds, keyed by the same
// cache key the news client uses.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// OpenFeedStore opens the fallback store for the given driver and DSN.
// Driver "sqlite" takes a file path; "postgres" takes a lib/pq connection string.
func OpenFeedStore(driver, dsn string) (*SQLStore, error) {
	var sqlDriver string
	switch strings.ToLower(driver) {
	case DriverSQLite, "sqlite3":
		driver, sqlDriver = DriverSQLite, "sqlite3"
	case DriverPostgres, "postgresql":
		driver, sqlDriver = DriverPostgres, "postgres"
	default:
		return nil, fmt.Errorf("unsupported fallback driver %q", driver)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	store := &SQLStore{db: db, driver: driver}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	log.Printf("[INFO] Fallback feed store ready (%s)", driver)
	return store, nil
}

func (s *SQLStore) createTables() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS news_feeds (
		cache_key TEXT PRIMARY KEY,
		articles TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`)
	return err
}

// Driver returns the normalized driver name.
func (s *SQLStore) Driver() string { return s.driver }

// LookupFeed returns the mirrored article list for key.
func (s *SQLStore) LookupFeed(ctx context.Context, key string) ([]models.Article, time.Time, error) {
	var payload string
	var updatedAt time.Time
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT articles, updated_at FROM news_feeds WHERE cache_key = ?`), key)
	if err := row.Scan(&payload, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, time.Time{}, ErrFeedNotFound
		}
		return nil, time.Time{}, fmt.Errorf("failed to query feed %s: %w", key, err)
	}

	var articles []models.Article
	if err := json.Unmarshal([]byte(payload), &articles); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to decode feed %s: %w", key, err)
	}
	return articles, updatedAt, nil
}

// SaveFeed upserts the article list for key.
func (s *SQLStore) SaveFeed(ctx context.Context, key string, articles []models.Article) error {
	if articles == nil {
		articles = []models.Article{}
	}
	payload, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("failed to encode feed %s: %w", key, err)
	}
	query := s.rebind(`
	INSERT INTO news_feeds (cache_key, articles, updated_at) VALUES (?, ?, ?)
	ON CONFLICT (cache_key) DO UPDATE SET articles = excluded.articles, updated_at = excluded.updated_at`)
	if _, err := s.db.ExecContext(ctx, query, key, string(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save feed %s: %w", key, err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind converts ? placeholders to $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

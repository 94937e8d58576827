// Package clickhouse provides a catalog backend on ClickHouse.
// Every write appends a row; ReplacingMergeTree keeps the newest version
// per key and reads use FINAL so they never see a superseded list.
package clickhouse

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// Config holds ClickHouse connection configuration
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Debug    bool
}

// DefaultConfig returns default development configuration
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     9000,
		Database: "smartpricing",
		Username: "default",
		Password: "",
		Debug:    false,
	}
}

// Store implements the catalog key-value backend using ClickHouse
type Store struct {
	conn clickhouse.Conn
	cfg  *Config
	now  func() time.Time
}

// NewStore connects and ensures the catalog table exists
func NewStore(ctx context.Context, cfg *Config) (*Store, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: cfg.Debug,
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	s := &Store{conn: conn, cfg: cfg, now: time.Now}
	if err := s.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to reach ClickHouse: %w", err)
	}
	if err := s.initSchema(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	return s.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS catalog_entries (
			key        String,
			value      String,
			hash       String,
			version    UInt64,
			updated_at DateTime64(3)
		) ENGINE = ReplacingMergeTree(version)
		ORDER BY key
	`)
}

// Ping checks database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

// Get returns the newest stored value for key
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := `
		SELECT value, hash
		FROM catalog_entries FINAL
		WHERE key = ?
		ORDER BY version DESC
		LIMIT 1
	`
	var value, hash string
	err := s.conn.QueryRow(ctx, query, key).Scan(&value, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if hash != "" && hash != contentHash([]byte(value)) {
		return nil, false, fmt.Errorf("stored value for %s fails its content hash", key)
	}
	return []byte(value), true, nil
}

// Put appends a new version of key
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	now := s.now().UTC()
	query := `
		INSERT INTO catalog_entries (key, value, hash, version, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if err := s.conn.Exec(ctx, query,
		key,
		string(value),
		contentHash(value),
		uint64(now.UnixNano()),
		now,
	); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func contentHash(value []byte) string {
	sum := sha256.Sum256(value)
	return hex.EncodeToString(sum[:])
}

// Package txtcache keeps blobs of text under a string key. It is used
// as a memo for things that are expensive to get, like pdb headers
// from a remote server. Entries are written once and never expire.
package txtcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Store is what callers need from a cache. Get returns false if the
// key is not there. That is not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, text string) error
}

// Mem is a Store in memory. The zero value is ready to use.
type Mem struct {
	mu sync.RWMutex
	m  map[string]string
}

func (c *Mem) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.m[key]
	return s, ok, nil
}

// Put keeps the first text stored under a key.
func (c *Mem) Put(_ context.Context, key, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m == nil {
		c.m = make(map[string]string)
	}
	if _, ok := c.m[key]; !ok {
		c.m[key] = text
	}
	return nil
}

const schema = `CREATE TABLE IF NOT EXISTS text_cache (
	hash_key        TEXT PRIMARY KEY,
	text            TEXT NOT NULL,
	date_time_stamp TEXT NOT NULL
)`

// SQL is a Store in a database table. Two processes can share it.
type SQL struct {
	db *sql.DB
}

// NewSQL makes sure the table exists.
func NewSQL(ctx context.Context, db *sql.DB) (*SQL, error) {
	if db == nil {
		return nil, errors.New("txtcache: nil database")
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("txtcache: creating table: %w", err)
	}
	return &SQL{db: db}, nil
}

func (c *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	var s string
	err := c.db.QueryRowContext(ctx,
		`SELECT text FROM text_cache WHERE hash_key = ?`, key).Scan(&s)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("txtcache: get %s: %w", key, err)
	}
	return s, true, nil
}

// Put does nothing if the key is already there. Two writers racing on
// the same key should be writing the same text anyway.
func (c *SQL) Put(ctx context.Context, key, text string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO text_cache (hash_key, text, date_time_stamp) VALUES (?, ?, ?)`,
		key, text, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("txtcache: put %s: %w", key, err)
	}
	return nil
}

// Package stash is a local key/value cache for fetched documents such as
// OpenReview notes and SPARQL results, backed by BadgerDB.
package stash

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/agenthands/bibalign/internal/metrics"
)

type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path     string
	InMemory bool

	// TTL bounds the lifetime of every entry. Zero keeps entries forever.
	TTL time.Duration

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

type Stash struct {
	db      *badger.DB
	ttl     time.Duration
	metrics *metrics.Metrics
}

// badgerLogger routes badger's own logging to slog.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func Open(cfg Config) (*Stash, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("stash path is required")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create stash directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open stash: %w", err)
	}
	return &Stash{db: db, ttl: cfg.TTL, metrics: cfg.Metrics}, nil
}

func (s *Stash) Close() error {
	return s.db.Close()
}

// Get returns the value stored under key. ok is false for missing or
// expired keys.
func (s *Stash) Get(key string) (value []byte, ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		s.observe("miss")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("stash get %q: %w", key, err)
	}
	s.observe("hit")
	return value, true, nil
}

func (s *Stash) Put(key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), value)
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("stash put %q: %w", key, err)
	}
	return nil
}

func (s *Stash) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// GetJSON decodes the value under key into v.
func (s *Stash) GetJSON(key string, v any) (bool, error) {
	data, ok, err := s.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("stash decode %q: %w", key, err)
	}
	return true, nil
}

func (s *Stash) PutJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("stash encode %q: %w", key, err)
	}
	return s.Put(key, data)
}

// Keys lists stored keys with the given prefix.
func (s *Stash) Keys(prefix string) ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return keys, err
}

func (s *Stash) observe(result string) {
	if s.metrics != nil {
		s.metrics.StashLookups.WithLabelValues(result).Inc()
	}
}

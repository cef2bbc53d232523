// internal/store/badger.go
//
// BadgerDB implementation of the session Store.
//
// Sessions are stored as JSON under "session/<id>" and expire after the
// configured TTL, refreshed on every Save. An empty path opens an in-memory
// database (tests, throwaway servers).

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/fiveletters/internal/game"
)

const keyPrefix = "session/"

type badgerStore struct {
	db  *badger.DB
	ttl time.Duration
}

// zerologAdapter routes BadgerDB's internal logging through zerolog.
type zerologAdapter struct{ l zerolog.Logger }

func (a zerologAdapter) Errorf(format string, args ...interface{}) {
	a.l.Error().Msgf(format, args...)
}

func (a zerologAdapter) Warningf(format string, args ...interface{}) {
	a.l.Warn().Msgf(format, args...)
}

func (a zerologAdapter) Infof(format string, args ...interface{}) {
	a.l.Debug().Msgf(format, args...)
}

func (a zerologAdapter) Debugf(format string, args ...interface{}) {
	a.l.Trace().Msgf(format, args...)
}

// OpenBadger opens a session store at path. A ttl of zero keeps sessions forever.
func OpenBadger(path string, ttl time.Duration) (Store, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", path, err)
		}
		opts = badger.DefaultOptions(path).WithSyncWrites(true)
	}
	opts = opts.
		WithNumVersionsToKeep(1).
		WithLogger(zerologAdapter{l: log.With().Str("component", "badger").Logger()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &badgerStore{db: db, ttl: ttl}, nil
}

func (b *badgerStore) Save(ctx context.Context, s *game.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(key(s.ID), data)
		if b.ttl > 0 {
			e = e.WithTTL(b.ttl)
		}
		return txn.SetEntry(e)
	})
}

func (b *badgerStore) Get(ctx context.Context, id string) (*game.Session, error) {
	var s game.Session
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &s)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (b *badgerStore) Delete(ctx context.Context, id string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(id))
	})
}

func (b *badgerStore) Close() error { return b.db.Close() }

func key(id string) []byte { return []byte(keyPrefix + id) }

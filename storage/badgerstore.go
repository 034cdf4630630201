package storage

import (
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"
)

// BadgerStore is an implementation of Store backed by BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens the Badger database in dir. If dir is empty, the
// database lives in memory only, which is useful for tests.
func OpenBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{
		Entry: log.WithField("component", "badger"),
	})
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("could not open badger database in %q: %w", dir, err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Put(key, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(dup(key), nonNil(dup(value)))
	})
}

func (s *BadgerStore) Get(key []byte) (value []byte, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%.40q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return nonNil(value), nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// badgerLogger demotes badger's chatty info messages to debug.
type badgerLogger struct {
	*log.Entry
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.Entry.Debugf(format, args...)
}

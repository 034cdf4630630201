package main

import (
	"context"
	"path/filepath"

	"github.com/nicolagi/blogposts/storage"
	log "github.com/sirupsen/logrus"
)

// openStore returns the store selected by the configuration and the key the
// image is kept under. The returned function releases the store.
func openStore(c *config) (store storage.Store, key string, closeFunc func(), err error) {
	key = c.DataFile
	closeFunc = func() {}
	switch c.Backend {
	case backendFile:
		store = storage.NewFileStore(filepath.Dir(c.DataFile))
		key = filepath.Base(c.DataFile)
	case backendBolt:
		var bs *storage.BoltStore
		if bs, err = storage.OpenBoltStore(c.BoltFile); err != nil {
			return
		}
		store, closeFunc = bs, closer("bolt", bs.Close)
	case backendBadger:
		var bs *storage.BadgerStore
		if bs, err = storage.OpenBadgerStore(c.BadgerDir); err != nil {
			return
		}
		store, closeFunc = bs, closer("badger", bs.Close)
	case backendPostgres:
		var ps *storage.PostgresStore
		if ps, err = storage.NewPostgresStore(context.Background(), c.PostgresDSN); err != nil {
			return
		}
		store, closeFunc = ps, closer("postgres", ps.Close)
	}
	if c.Mirror != nil {
		mirror := storage.NewS3(c.Mirror.Profile, c.Mirror.Region, c.Mirror.Bucket,
			storage.WithS3Prefix(c.Mirror.Prefix),
			storage.WithS3PutRate(c.Mirror.PutsPerSecond),
		)
		paired := storage.NewPaired(store, mirror)
		closePrimary := closeFunc
		store = paired
		closeFunc = func() {
			closer("mirror", paired.Close)()
			closePrimary()
		}
		log.WithFields(log.Fields{
			"bucket": c.Mirror.Bucket,
			"prefix": c.Mirror.Prefix,
		}).Info("Will mirror the image to S3")
	}
	log.WithFields(log.Fields{
		"backend": c.Backend,
		"key":     key,
	}).Info("Will use storage backend")
	return store, key, closeFunc, nil
}

func closer(name string, f func() error) func() {
	return func() {
		if err := f(); err != nil {
			log.WithFields(log.Fields{
				"err":     err,
				"backend": name,
			}).Warn("Could not close storage")
		}
	}
}

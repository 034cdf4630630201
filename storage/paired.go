package storage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Paired implements Store wrapping a pair of stores, a primary and a mirror.
// Puts go to the primary synchronously and are propagated to the mirror in the
// background. Gets are served by the primary if possible, otherwise by the
// mirror (and in this case the value is also copied back to the primary, for
// next time).
//
// Only the latest pending value for each key is propagated: the collection
// rewrites its whole image on every change, so intermediate images need not
// reach the mirror.
type Paired struct {
	primary Store
	mirror  Store

	retryInterval time.Duration

	mu      sync.Mutex
	pending map[string][]byte
	wake    chan struct{}
	stop    chan struct{}
	done    chan struct{}
}

func NewPaired(primary, mirror Store) *Paired {
	p := &Paired{
		primary:       primary,
		mirror:        mirror,
		retryInterval: time.Second,
		pending:       make(map[string][]byte),
		wake:          make(chan struct{}, 1),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	go p.writeback()
	return p
}

func (s *Paired) Get(key []byte) (value []byte, err error) {
	value, err = s.primary.Get(key)
	if err == nil {
		return
	}
	if !errors.Is(err, ErrNotFound) {
		return
	}
	value, err = s.mirror.Get(key)
	if err != nil {
		return nil, err
	}
	logger := log.WithFields(log.Fields{
		"key": fmt.Sprintf("%.40s", key),
	})
	if perr := s.primary.Put(key, value); perr != nil {
		logger.WithField("err", perr).Warn("Could not propagate from mirror to primary")
	} else {
		logger.Debug("Propagated from mirror to primary")
	}
	return value, nil
}

func (s *Paired) Put(key, value []byte) (err error) {
	if err = s.primary.Put(key, value); err != nil {
		return err
	}
	s.mu.Lock()
	s.pending[string(key)] = dup(value)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

// Close stops propagation after flushing what is pending, unless the mirror
// keeps failing, in which case pending values are dropped.
func (s *Paired) Close() error {
	close(s.stop)
	<-s.done
	return nil
}

func (s *Paired) writeback() {
	defer close(s.done)
	for {
		select {
		case <-s.wake:
			s.flush(false)
		case <-s.stop:
			s.flush(true)
			return
		}
	}
}

func (s *Paired) flush(stopping bool) {
	s.mu.Lock()
	batch := s.pending
	s.pending = make(map[string][]byte)
	s.mu.Unlock()
	for key, value := range batch {
		s.writeback1([]byte(key), value, stopping)
	}
}

func (s *Paired) writeback1(key, value []byte, stopping bool) {
	logger := log.WithFields(log.Fields{
		"key": fmt.Sprintf("%.40s", key),
	})
	for {
		err := s.mirror.Put(key, value)
		if err == nil {
			logger.Debug("Propagated from primary to mirror")
			return
		}
		logger.WithFields(log.Fields{
			"err": err,
		}).Warn("Could not propagate from primary to mirror")
		if stopping {
			return
		}
		s.mu.Lock()
		_, superseded := s.pending[string(key)]
		s.mu.Unlock()
		if superseded {
			// A newer value will be propagated by the next flush.
			return
		}
		select {
		case <-s.stop:
			return
		case <-time.After(s.retryInterval):
		}
	}
}

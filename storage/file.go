package storage

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// FileStore implements Store keeping each value in a file named after its key,
// inside a directory. Values are replaced atomically (write to a temporary file,
// then rename), and writers hold an exclusive flock on a sidecar ".lock" file so
// that processes sharing the directory do not interleave their writes.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Put(key, value []byte) (err error) {
	valpath := s.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(valpath), 0755); err != nil {
		return fmt.Errorf("could not make dir for %q: %w", valpath, err)
	}
	unlock, err := lockFile(valpath, unix.LOCK_EX)
	if err != nil {
		return err
	}
	defer unlock()
	tmp, err := ioutil.TempFile(filepath.Dir(valpath), filepath.Base(valpath)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temporary file for %q: %w", valpath, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("could not write %q: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("could not close %q: %w", tmp.Name(), err)
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), valpath); err != nil {
		return fmt.Errorf("could not replace %q: %w", valpath, err)
	}
	return nil
}

func (s *FileStore) Get(key []byte) (value []byte, err error) {
	valpath := s.pathFor(key)
	if _, err := os.Stat(filepath.Dir(valpath)); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	unlock, err := lockFile(valpath, unix.LOCK_SH)
	if err != nil {
		return nil, err
	}
	defer unlock()
	value, err = ioutil.ReadFile(valpath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return nonNil(value), nil
}

func (s *FileStore) pathFor(key []byte) string {
	return filepath.Join(s.dir, string(key))
}

func lockFile(valpath string, how int) (unlock func(), err error) {
	lockpath := valpath + ".lock"
	f, err := os.OpenFile(lockpath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("could not open lock file %q: %w", lockpath, err)
	}
	if err := unix.Flock(int(f.Fd()), how); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("could not lock %q: %w", lockpath, err)
	}
	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		_ = f.Close()
	}, nil
}

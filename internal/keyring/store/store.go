package store

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github/chapool/go-hwkeyring/internal/keyring/session"
)

const snapshotPrefix = "snapshot:"

// Store persists keyring snapshots by keyring name.
type Store struct {
	db *leveldb.DB
}

// Open opens the database at path, recovering it if corrupted. An empty path keeps everything in memory.
func Open(path string) (*Store, error) {
	if path == "" {
		db, err := leveldb.Open(storage.NewMemStorage(), nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open in-memory store")
		}

		return &Store{db: db}, nil
	}

	db, err := leveldb.OpenFile(path, &opt.Options{OpenFilesCacheCapacity: 16})
	var corrupted *lerrors.ErrCorrupted
	if errors.As(err, &corrupted) {
		db, err = leveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open store at %s", path)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the snapshot saved under name; ok is false if there is none.
func (s *Store) Load(name string) (snap session.Snapshot, ok bool, err error) {
	data, err := s.db.Get(key(name), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return session.Snapshot{}, false, nil
	}
	if err != nil {
		return session.Snapshot{}, false, errors.Wrapf(err, "failed to read snapshot %q", name)
	}

	snap, err = session.ParseSnapshot(data)
	if err != nil {
		return session.Snapshot{}, false, errors.Wrapf(err, "failed to load snapshot %q", name)
	}

	return snap, true, nil
}

func (s *Store) Save(name string, snap session.Snapshot) error {
	data, err := snap.Marshal()
	if err != nil {
		return err
	}

	if err := s.db.Put(key(name), data, &opt.WriteOptions{Sync: true}); err != nil {
		return errors.Wrapf(err, "failed to write snapshot %q", name)
	}

	return nil
}

// Delete removes the snapshot of name. A missing snapshot is not an error.
func (s *Store) Delete(name string) error {
	if err := s.db.Delete(key(name), nil); err != nil {
		return errors.Wrapf(err, "failed to delete snapshot %q", name)
	}

	return nil
}

// Ping fails once the store is closed or its files are unusable.
func (s *Store) Ping() error {
	if _, err := s.db.GetProperty("leveldb.num-files-at-level0"); err != nil {
		return errors.Wrap(err, "snapshot store unavailable")
	}

	return nil
}

func key(name string) []byte {
	return []byte(snapshotPrefix + name)
}

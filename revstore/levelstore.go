package revstore

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	leveldbstorage "github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelStore implements RecordStore over goleveldb. LevelDB handles its own
// locking, so a LevelStore is safe for concurrent use.
type LevelStore struct {
	db *leveldb.DB
}

// NewLevelStore opens or creates a database at path. An empty path opens an
// in-memory database, which is what the tests use.
func NewLevelStore(path string) (*LevelStore, error) {
	var db *leveldb.DB
	var err error
	if path == "" {
		db, err = leveldb.Open(leveldbstorage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("opening record store at %q: %w", path, err)
	}
	return &LevelStore{db: db}, nil
}

func (ls *LevelStore) Get(key []byte) ([]byte, bool, error) {
	value, err := ls.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (ls *LevelStore) Put(key, value []byte) error {
	return ls.db.Put(key, value, nil)
}

func (ls *LevelStore) Delete(key []byte) error {
	return ls.db.Delete(key, nil)
}

// GetWithPrefix returns all pairs under prefix in ascending key order. Keys
// and values are copied out of the iterator.
func (ls *LevelStore) GetWithPrefix(prefix []byte) ([][2][]byte, error) {
	iter := ls.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	var pairs [][2][]byte
	for iter.Next() {
		pairs = append(pairs, [2][]byte{
			append([]byte(nil), iter.Key()...),
			append([]byte(nil), iter.Value()...),
		})
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return pairs, nil
}

func (ls *LevelStore) Close() error {
	return ls.db.Close()
}

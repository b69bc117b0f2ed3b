/*
Copyright Zhigui.com. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package leveldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
	"github.com/zhigui-projects/go-quizledger/common/db"
	"github.com/zhigui-projects/go-quizledger/common/db/memorydb"
	"github.com/zhigui-projects/go-quizledger/common/log"
	"go.etcd.io/etcd/pkg/fileutil"
)

var logger = log.GetLogger("module", "leveldb")

// DefaultCacheSize is the number of hot keys kept in the read cache.
const DefaultCacheSize = 4096

// Store is a db.Database on goleveldb with an LRU cache for reads.
type Store struct {
	db    *leveldb.DB
	cache *memorydb.LRUCache
}

// Open opens or creates the database under dir.
func Open(dir string, cacheSize int) (*Store, error) {
	if err := fileutil.TouchDirAll(dir); err != nil {
		return nil, errors.Wrapf(err, "error creating data dir [%s]", dir)
	}
	ldb, err := leveldb.OpenFile(dir, &opt.Options{})
	if lerrors.IsCorrupted(err) {
		logger.Warning("leveldb corrupted, attempting recovery", "dir", dir, "error", err)
		ldb, err = leveldb.RecoverFile(dir, nil)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error opening leveldb [%s]", dir)
	}
	logger.Info("opened leveldb", "dir", dir, "cacheSize", cacheSize)
	return newStore(ldb, cacheSize), nil
}

// OpenMemory opens a leveldb instance over in-memory storage.
func OpenMemory(cacheSize int) (*Store, error) {
	ldb, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return newStore(ldb, cacheSize), nil
}

func newStore(ldb *leveldb.DB, cacheSize int) *Store {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	return &Store{db: ldb, cache: memorydb.NewLRUCache(cacheSize)}
}

func (s *Store) Get(key []byte) ([]byte, error) {
	if v, err := s.cache.Get(string(key)); err == nil {
		return append([]byte(nil), v...), nil
	}
	v, err := s.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, db.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error reading key [%x]", key)
	}
	_ = s.cache.Put(string(key), append([]byte(nil), v...))
	return v, nil
}

func (s *Store) Has(key []byte) (bool, error) {
	if _, err := s.cache.Get(string(key)); err == nil {
		return true, nil
	}
	ok, err := s.db.Has(key, nil)
	return ok, errors.WithStack(err)
}

func (s *Store) Put(key []byte, value []byte) error {
	if err := s.db.Put(key, value, nil); err != nil {
		return errors.Wrapf(err, "error writing key [%x]", key)
	}
	return s.cache.Delete(string(key))
}

func (s *Store) Delete(key []byte) error {
	if err := s.db.Delete(key, nil); err != nil {
		return errors.Wrapf(err, "error deleting key [%x]", key)
	}
	return s.cache.Delete(string(key))
}

func (s *Store) NewBatch() db.Batch {
	return &batch{store: s, b: new(leveldb.Batch)}
}

func (s *Store) NewIterator(prefix []byte, start []byte) db.Iterator {
	r := util.BytesPrefix(prefix)
	r.Start = append(append([]byte(nil), prefix...), start...)
	return s.db.NewIterator(r, nil)
}

func (s *Store) Close() {
	if err := s.db.Close(); err != nil {
		logger.Error("error closing leveldb", "error", err)
	}
	s.cache.Purge()
}

type batch struct {
	store *Store
	b     *leveldb.Batch
	keys  []string
}

func (b *batch) Put(key []byte, value []byte) {
	b.b.Put(key, value)
	b.keys = append(b.keys, string(key))
}

func (b *batch) Delete(key []byte) {
	b.b.Delete(key)
	b.keys = append(b.keys, string(key))
}

func (b *batch) Len() int { return b.b.Len() }

func (b *batch) Reset() {
	b.b.Reset()
	b.keys = b.keys[:0]
}

func (b *batch) Write() error {
	if err := b.store.db.Write(b.b, &opt.WriteOptions{Sync: true}); err != nil {
		return errors.Wrap(err, "error writing batch")
	}
	for _, k := range b.keys {
		_ = b.store.cache.Delete(k)
	}
	return nil
}

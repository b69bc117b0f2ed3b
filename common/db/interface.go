package db

import "github.com/pkg/errors"

// ErrNotFound is returned by Get for missing keys.
var ErrNotFound = errors.New("key not found")

type Database interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	Put(key []byte, value []byte) error
	Delete(key []byte) error
	// NewBatch returns a batch whose writes are applied atomically by Write.
	NewBatch() Batch
	// NewIterator iterates keys with the given prefix in ascending order,
	// beginning at prefix+start.
	NewIterator(prefix []byte, start []byte) Iterator
	Close()
}

type Batch interface {
	Put(key []byte, value []byte)
	Delete(key []byte)
	Len() int
	Write() error
	Reset()
}

type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

package leveldb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zhigui-projects/go-quizledger/common/db"
)

func TestStoreReadWrite(t *testing.T) {
	s, err := OpenMemory(2)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get([]byte("missing"))
	assert.Equal(t, db.ErrNotFound, err)

	require.NoError(t, s.Put([]byte("alice"), []byte("10")))
	v, err := s.Get([]byte("alice"))
	require.NoError(t, err)
	assert.Equal(t, []byte("10"), v)

	// overwrite must not be served stale from the cache
	require.NoError(t, s.Put([]byte("alice"), []byte("11")))
	v, err = s.Get([]byte("alice"))
	require.NoError(t, err)
	assert.Equal(t, []byte("11"), v)

	require.NoError(t, s.Delete([]byte("alice")))
	ok, err := s.Has([]byte("alice"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreBatch(t *testing.T) {
	s, err := OpenMemory(0)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put([]byte("k/1"), []byte("a")))
	_, _ = s.Get([]byte("k/1"))

	b := s.NewBatch()
	b.Put([]byte("k/1"), []byte("b"))
	b.Put([]byte("k/2"), []byte("c"))
	require.NoError(t, b.Write())

	v, err := s.Get([]byte("k/1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), v)

	it := s.NewIterator([]byte("k/"), nil)
	defer it.Release()
	n := 0
	for it.Next() {
		n++
	}
	assert.NoError(t, it.Error())
	assert.Equal(t, 2, n)

	from := s.NewIterator([]byte("k/"), []byte("2"))
	defer from.Release()
	require.True(t, from.Next())
	assert.Equal(t, []byte("k/2"), from.Key())
	assert.False(t, from.Next())
}

func TestOpenPersists(t *testing.T) {
	dir, err := os.MkdirTemp("", "quizledger")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "chain")

	s, err := Open(path, 16)
	require.NoError(t, err)
	require.NoError(t, s.Put([]byte("x"), []byte("y")))
	s.Close()

	s, err = Open(path, 16)
	require.NoError(t, err)
	defer s.Close()
	v, err := s.Get([]byte("x"))
	require.NoError(t, err)
	assert.Equal(t, []byte("y"), v)
}

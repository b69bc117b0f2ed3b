package memorydb

import (
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/zhigui-projects/go-quizledger/common/db"
)

// MemoryDB is an ephemeral db.Database used by tests and --datadir less
// nodes.
type MemoryDB struct {
	mu     sync.RWMutex
	kv     map[string][]byte
	closed bool
}

func New() *MemoryDB {
	return &MemoryDB{kv: make(map[string][]byte)}
}

var errClosed = errors.New("memorydb closed")

func (m *MemoryDB) Get(key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, errClosed
	}
	v, ok := m.kv[string(key)]
	if !ok {
		return nil, db.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryDB) Has(key []byte) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return false, errClosed
	}
	_, ok := m.kv[string(key)]
	return ok, nil
}

func (m *MemoryDB) Put(key []byte, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}
	m.kv[string(key)] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryDB) Delete(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}
	delete(m.kv, string(key))
	return nil
}

func (m *MemoryDB) NewBatch() db.Batch {
	return &batch{db: m}
}

func (m *MemoryDB) NewIterator(prefix []byte, start []byte) db.Iterator {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it := &iterator{pos: -1}
	lower := string(prefix) + string(start)
	for k, v := range m.kv {
		if strings.HasPrefix(k, string(prefix)) && k >= lower {
			it.keys = append(it.keys, k)
			it.values = append(it.values, append([]byte(nil), v...))
		}
	}
	sort.Sort(it)
	return it
}

func (m *MemoryDB) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}

type op struct {
	key    string
	value  []byte
	delete bool
}

type batch struct {
	db  *MemoryDB
	ops []op
}

func (b *batch) Put(key []byte, value []byte) {
	b.ops = append(b.ops, op{key: string(key), value: append([]byte(nil), value...)})
}

func (b *batch) Delete(key []byte) {
	b.ops = append(b.ops, op{key: string(key), delete: true})
}

func (b *batch) Len() int { return len(b.ops) }

func (b *batch) Reset() { b.ops = b.ops[:0] }

func (b *batch) Write() error {
	b.db.mu.Lock()
	defer b.db.mu.Unlock()
	if b.db.closed {
		return errClosed
	}
	for _, o := range b.ops {
		if o.delete {
			delete(b.db.kv, o.key)
		} else {
			b.db.kv[o.key] = o.value
		}
	}
	return nil
}

// iterator walks a sorted snapshot taken at creation time.
type iterator struct {
	keys   []string
	values [][]byte
	pos    int
}

func (it *iterator) Len() int           { return len(it.keys) }
func (it *iterator) Less(i, j int) bool { return it.keys[i] < it.keys[j] }
func (it *iterator) Swap(i, j int) {
	it.keys[i], it.keys[j] = it.keys[j], it.keys[i]
	it.values[i], it.values[j] = it.values[j], it.values[i]
}

func (it *iterator) Next() bool {
	if it.pos+1 >= len(it.keys) {
		it.pos = len(it.keys)
		return false
	}
	it.pos++
	return true
}

func (it *iterator) Key() []byte {
	if it.pos < 0 || it.pos >= len(it.keys) {
		return nil
	}
	return []byte(it.keys[it.pos])
}

func (it *iterator) Value() []byte {
	if it.pos < 0 || it.pos >= len(it.keys) {
		return nil
	}
	return it.values[it.pos]
}

func (it *iterator) Release() {
	it.keys, it.values = nil, nil
}

func (it *iterator) Error() error { return nil }

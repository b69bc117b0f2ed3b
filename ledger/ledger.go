/*
Copyright Zhigui.com. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ledger is the state machine every service runs on: a single
// serialized sequence of atomic transactions over a key/value database,
// with an attested clock, native value transfers and an event journal.
package ledger

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/zhigui-projects/go-quizledger/api"
	"github.com/zhigui-projects/go-quizledger/common/crypto"
	"github.com/zhigui-projects/go-quizledger/common/db"
	"github.com/zhigui-projects/go-quizledger/common/log"
)

// TxFunc is the body of a transaction. Returning an error discards every
// write and event the body staged.
type TxFunc func(tx *Tx) error

type Option func(*Ledger)

// WithClock replaces the wall clock, e.g. with a fakeclock in tests.
func WithClock(c clock.Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

func WithLogger(lg log.Logger) Option {
	return func(l *Ledger) { l.logger = lg }
}

type Ledger struct {
	mu     sync.Mutex
	db     db.Database
	clock  clock.Clock
	logger log.Logger

	// next journal index
	seq uint64

	subMu  sync.Mutex
	subs   map[int]chan Log
	nextID int
}

// New opens a ledger over database, resuming the event journal where a
// previous process left it.
func New(database db.Database, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		db:     database,
		clock:  clock.NewClock(),
		logger: log.GetLogger("module", "ledger"),
		subs:   make(map[int]chan Log),
	}
	for _, opt := range opts {
		opt(l)
	}

	raw, err := database.Get(seqKey)
	switch {
	case err == db.ErrNotFound:
	case err != nil:
		return nil, api.StorageError(err, "error loading journal index")
	case len(raw) != 8:
		return nil, errors.Errorf("corrupted journal index length %d", len(raw))
	default:
		l.seq = binary.BigEndian.Uint64(raw)
	}
	return l, nil
}

// Now is the ledger timestamp: the clock truncated to whole seconds, the
// granularity every deadline is compared at.
func (l *Ledger) Now() time.Time {
	return time.Unix(l.clock.Now().Unix(), 0).UTC()
}

// Execute runs fn as one atomic transaction on behalf of caller.
// Transactions are totally ordered; fn observes its own staged writes and
// nothing of any concurrent caller.
func (l *Ledger) Execute(ctx context.Context, caller crypto.Address, fn TxFunc) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tx := newTx(l, caller, l.Now(), false)
	if nonce, ok := NonceFromContext(ctx); ok {
		if err := tx.useNonce(nonce); err != nil {
			return nil, err
		}
	}
	if err := fn(tx); err != nil {
		l.logger.Debug("transaction reverted", "caller", caller, "error", err)
		return nil, err
	}

	receipt := &Receipt{
		TxID:   uuid.New().String(),
		Caller: caller,
		Time:   tx.now,
		Events: tx.events,
	}
	logs, err := l.commit(tx, receipt)
	if err != nil {
		return nil, err
	}
	l.publish(logs)
	l.logger.Debug("transaction committed", "txId", receipt.TxID, "caller", caller,
		"writes", len(tx.writes), "events", len(tx.events))
	return receipt, nil
}

// View runs fn against the current state. Writes are rejected.
func (l *Ledger) View(ctx context.Context, fn TxFunc) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(newTx(l, crypto.ZeroAddress, l.Now(), true))
}

func (l *Ledger) commit(tx *Tx, receipt *Receipt) ([]Log, error) {
	batch := l.db.NewBatch()
	for k, v := range tx.writes {
		if v == nil {
			batch.Delete([]byte(k))
		} else {
			batch.Put([]byte(k), v)
		}
	}

	logs := make([]Log, 0, len(receipt.Events))
	seq := l.seq
	for _, ev := range receipt.Events {
		lg := Log{
			Index:  seq,
			TxID:   receipt.TxID,
			Time:   receipt.Time,
			Caller: receipt.Caller,
			Name:   ev.EventName(),
			Event:  ev,
		}
		raw, err := encodeLog(lg)
		if err != nil {
			return nil, err
		}
		batch.Put(journalKey(seq), raw)
		logs = append(logs, lg)
		seq++
	}
	if seq != l.seq {
		batch.Put(seqKey, encodeUint64(seq))
	}

	if batch.Len() > 0 {
		if err := batch.Write(); err != nil {
			return nil, api.StorageError(err, "error committing transaction")
		}
	}
	l.seq = seq
	return logs, nil
}

// Subscribe delivers every committed event log. A subscriber that does not
// keep up with its buffer misses logs; the journal stays authoritative.
func (l *Ledger) Subscribe(buffer int) (<-chan Log, func()) {
	ch := make(chan Log, buffer)
	l.subMu.Lock()
	id := l.nextID
	l.nextID++
	l.subs[id] = ch
	l.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			l.subMu.Lock()
			delete(l.subs, id)
			l.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (l *Ledger) publish(logs []Log) {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	for _, lg := range logs {
		for id, ch := range l.subs {
			select {
			case ch <- lg:
			default:
				l.logger.Warning("subscriber lagging, dropped event", "subscriber", id, "index", lg.Index)
			}
		}
	}
}

package ledger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/zhigui-projects/go-quizledger/api"
	"github.com/zhigui-projects/go-quizledger/common/crypto"
)

// Event is an observable side effect of a committed transaction.
type Event interface {
	EventName() string
}

// Receipt describes a committed transaction.
type Receipt struct {
	TxID   string
	Caller crypto.Address
	Time   time.Time
	Events []Event
}

// Log is one journaled event.
type Log struct {
	Index  uint64
	TxID   string
	Time   time.Time
	Caller crypto.Address
	Name   string
	Event  Event
}

// StoredLog is a journal entry read back from the database; the event
// payload stays JSON since its Go type is owned by the emitting service.
type StoredLog struct {
	Index  uint64          `json:"index"`
	TxID   string          `json:"txId"`
	Time   time.Time       `json:"time"`
	Caller crypto.Address  `json:"caller"`
	Name   string          `json:"name"`
	Data   json.RawMessage `json:"data"`
}

func encodeLog(lg Log) ([]byte, error) {
	data, err := json.Marshal(lg.Event)
	if err != nil {
		return nil, errors.Wrapf(err, "error encoding event %s", lg.Name)
	}
	return json.Marshal(StoredLog{
		Index:  lg.Index,
		TxID:   lg.TxID,
		Time:   lg.Time,
		Caller: lg.Caller,
		Name:   lg.Name,
		Data:   data,
	})
}

// Logs returns up to limit journal entries starting at index from.
func (l *Ledger) Logs(ctx context.Context, from uint64, limit int) ([]StoredLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	it := l.db.NewIterator(journalPrefix, encodeUint64(from))
	defer it.Release()

	var out []StoredLog
	for it.Next() {
		if limit > 0 && len(out) >= limit {
			break
		}
		var sl StoredLog
		if err := json.Unmarshal(it.Value(), &sl); err != nil {
			return nil, errors.Wrapf(err, "corrupted journal entry [%x]", it.Key())
		}
		out = append(out, sl)
	}
	if err := it.Error(); err != nil {
		return nil, api.StorageError(err, "error reading journal")
	}
	return out, nil
}

// FindEvent returns the first event in r with the given name.
func (r *Receipt) FindEvent(name string) (Event, bool) {
	if r == nil {
		return nil, false
	}
	for _, ev := range r.Events {
		if ev.EventName() == name {
			return ev, true
		}
	}
	return nil, false
}

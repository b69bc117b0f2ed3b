package ledger

import (
	"math/big"
	"time"

	"github.com/pkg/errors"
	"github.com/zhigui-projects/go-quizledger/api"
	"github.com/zhigui-projects/go-quizledger/common/crypto"
	"github.com/zhigui-projects/go-quizledger/common/db"
)

// ErrReadOnly is returned when a View body tries to write.
var ErrReadOnly = errors.New("write in read-only call")

// Tx is the view of the ledger a single transaction body gets. It is not
// safe for use outside the TxFunc it was passed to.
type Tx struct {
	ledger   *Ledger
	caller   crypto.Address
	now      time.Time
	readOnly bool

	// nil value marks a delete
	writes map[string][]byte
	events []Event
}

func newTx(l *Ledger, caller crypto.Address, now time.Time, readOnly bool) *Tx {
	return &Tx{
		ledger:   l,
		caller:   caller,
		now:      now,
		readOnly: readOnly,
		writes:   make(map[string][]byte),
	}
}

// Caller is the authenticated identity the transaction runs for.
func (tx *Tx) Caller() crypto.Address { return tx.caller }

// Now is the transaction timestamp, fixed for the whole body.
func (tx *Tx) Now() time.Time { return tx.now }

func (tx *Tx) ReadOnly() bool { return tx.readOnly }

// Get returns the value at key and whether it exists, reading staged writes
// first.
func (tx *Tx) Get(key []byte) ([]byte, bool, error) {
	if v, ok := tx.writes[string(key)]; ok {
		if v == nil {
			return nil, false, nil
		}
		return append([]byte(nil), v...), true, nil
	}
	v, err := tx.ledger.db.Get(key)
	if err == db.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, api.StorageError(err, "error reading state")
	}
	return v, true, nil
}

func (tx *Tx) Has(key []byte) (bool, error) {
	_, ok, err := tx.Get(key)
	return ok, err
}

func (tx *Tx) Put(key, value []byte) error {
	if tx.readOnly {
		return ErrReadOnly
	}
	if value == nil {
		value = []byte{}
	}
	tx.writes[string(key)] = append([]byte(nil), value...)
	return nil
}

func (tx *Tx) Delete(key []byte) error {
	if tx.readOnly {
		return ErrReadOnly
	}
	tx.writes[string(key)] = nil
	return nil
}

// GetBig reads an unsigned integer, zero when unset.
func (tx *Tx) GetBig(key []byte) (*big.Int, error) {
	v, _, err := tx.Get(key)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(v), nil
}

func (tx *Tx) PutBig(key []byte, v *big.Int) error {
	if v.Sign() < 0 {
		return errors.Errorf("negative value %s for key [%x]", v, key)
	}
	return tx.Put(key, v.Bytes())
}

// AddBig adds delta to the integer at key and returns the new value.
func (tx *Tx) AddBig(key []byte, delta *big.Int) (*big.Int, error) {
	cur, err := tx.GetBig(key)
	if err != nil {
		return nil, err
	}
	cur.Add(cur, delta)
	if !crypto.IsUint256(cur) {
		return nil, api.ValidationError("arithmetic overflow")
	}
	return cur, tx.PutBig(key, cur)
}

func (tx *Tx) GetAddress(key []byte) (crypto.Address, error) {
	v, _, err := tx.Get(key)
	if err != nil {
		return crypto.ZeroAddress, err
	}
	return crypto.BytesToAddress(v), nil
}

func (tx *Tx) PutAddress(key []byte, a crypto.Address) error {
	return tx.Put(key, a.Bytes())
}

// Emit records an event, published only if the transaction commits.
func (tx *Tx) Emit(ev Event) {
	if tx.readOnly {
		return
	}
	tx.events = append(tx.events, ev)
}

// Events returns the events emitted so far.
func (tx *Tx) Events() []Event {
	return tx.events
}

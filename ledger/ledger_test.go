package ledger

import (
	"context"
	"math/big"
	"testing"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zhigui-projects/go-quizledger/api"
	"github.com/zhigui-projects/go-quizledger/common/crypto"
	"github.com/zhigui-projects/go-quizledger/common/db/memorydb"
)

type noted struct {
	Note string `json:"note"`
}

func (noted) EventName() string { return "Noted" }

var (
	alice = crypto.BytesToAddress([]byte{0xa1})
	bob   = crypto.BytesToAddress([]byte{0xb0})
)

func newTestLedger(t *testing.T) (*Ledger, *fakeclock.FakeClock) {
	clk := fakeclock.NewFakeClock(time.Unix(1700000000, 500))
	l, err := New(memorydb.New(), WithClock(clk))
	require.NoError(t, err)
	return l, clk
}

func TestExecuteCommits(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	key := Key("test", []byte("k"))

	r, err := l.Execute(ctx, alice, func(tx *Tx) error {
		assert.Equal(t, alice, tx.Caller())
		assert.Equal(t, int64(1700000000), tx.Now().Unix())
		assert.Equal(t, 0, tx.Now().Nanosecond())
		require.NoError(t, tx.Put(key, []byte("v")))
		v, ok, err := tx.Get(key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("v"), v)
		tx.Emit(noted{Note: "hello"})
		return nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, r.TxID)
	assert.Equal(t, []Event{noted{Note: "hello"}}, r.Events)

	ev, ok := r.FindEvent("Noted")
	assert.True(t, ok)
	assert.Equal(t, noted{Note: "hello"}, ev)

	err = l.View(ctx, func(tx *Tx) error {
		v, ok, err := tx.Get(key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("v"), v)
		return nil
	})
	require.NoError(t, err)
}

func TestExecuteRevertsOnError(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	key := Key("test", []byte("k"))
	logs, cancel := l.Subscribe(4)
	defer cancel()

	boom := errors.New("boom")
	_, err := l.Execute(ctx, alice, func(tx *Tx) error {
		_ = tx.Put(key, []byte("v"))
		tx.Emit(noted{Note: "never"})
		return boom
	})
	assert.Equal(t, boom, err)

	_ = l.View(ctx, func(tx *Tx) error {
		ok, err := tx.Has(key)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})
	select {
	case lg := <-logs:
		t.Fatalf("unexpected log %v", lg)
	default:
	}
	stored, err := l.Logs(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestViewIsReadOnly(t *testing.T) {
	l, _ := newTestLedger(t)
	err := l.View(context.Background(), func(tx *Tx) error {
		return tx.Put([]byte("x"), []byte("y"))
	})
	assert.Equal(t, ErrReadOnly, err)
}

func TestCanceledContext(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	_, err := l.Execute(ctx, alice, func(tx *Tx) error {
		called = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestClockAdvances(t *testing.T) {
	l, clk := newTestLedger(t)
	before := l.Now()
	clk.Increment(3601 * time.Second)
	assert.Equal(t, before.Add(3601*time.Second), l.Now())
}

func TestJournalAndSubscribe(t *testing.T) {
	database := memorydb.New()
	l, err := New(database)
	require.NoError(t, err)
	ctx := context.Background()
	logs, cancel := l.Subscribe(4)

	for _, note := range []string{"a", "b"} {
		note := note
		_, err := l.Execute(ctx, bob, func(tx *Tx) error {
			tx.Emit(noted{Note: note})
			return nil
		})
		require.NoError(t, err)
	}
	first := <-logs
	second := <-logs
	assert.Equal(t, uint64(0), first.Index)
	assert.Equal(t, uint64(1), second.Index)
	assert.Equal(t, "Noted", second.Name)
	assert.Equal(t, bob, second.Caller)
	cancel()
	cancel()

	// a restarted ledger continues the journal
	l2, err := New(database)
	require.NoError(t, err)
	_, err = l2.Execute(ctx, bob, func(tx *Tx) error {
		tx.Emit(noted{Note: "c"})
		return nil
	})
	require.NoError(t, err)

	stored, err := l2.Logs(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, uint64(1), stored[0].Index)
	assert.Equal(t, uint64(2), stored[1].Index)
	assert.JSONEq(t, `{"note":"c"}`, string(stored[1].Data))

	limited, err := l2.Logs(ctx, 0, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	page, err := l2.Logs(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, uint64(2), page[0].Index)

	past, err := l2.Logs(ctx, 3, 0)
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestNativeTransfer(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Mint(ctx, alice, big.NewInt(100))
	require.NoError(t, err)
	_, err = l.Mint(ctx, alice, big.NewInt(0))
	assert.True(t, api.IsKind(err, api.KindValidation))

	_, err = l.Execute(ctx, alice, func(tx *Tx) error {
		return tx.Transfer(alice, bob, big.NewInt(30))
	})
	require.NoError(t, err)

	_, err = l.Execute(ctx, alice, func(tx *Tx) error {
		return tx.Transfer(alice, bob, big.NewInt(71))
	})
	assert.True(t, api.IsKind(err, api.KindValidation))
	assert.EqualError(t, err, "transfer failed")

	a, err := l.NativeBalance(ctx, alice)
	require.NoError(t, err)
	b, err := l.NativeBalance(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(70), a)
	assert.Equal(t, big.NewInt(30), b)
}

func TestNonce(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	noop := func(tx *Tx) error { return nil }

	_, err := l.Execute(WithNonce(ctx, 1), alice, noop)
	assert.True(t, api.IsKind(err, api.KindValidation))
	assert.Contains(t, err.Error(), "expected 0, got 1")

	_, err = l.Execute(WithNonce(ctx, 0), alice, noop)
	require.NoError(t, err)
	// replaying the same nonce fails
	_, err = l.Execute(WithNonce(ctx, 0), alice, noop)
	assert.Error(t, err)

	// a reverted body does not consume the nonce
	_, err = l.Execute(WithNonce(ctx, 1), alice, func(tx *Tx) error { return errors.New("no") })
	assert.Error(t, err)
	n, err := l.Nonce(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	// calls without a nonce leave it alone
	_, err = l.Execute(ctx, alice, noop)
	require.NoError(t, err)
	n, _ = l.Nonce(ctx, alice)
	assert.Equal(t, uint64(1), n)
}

func TestAddBigOverflow(t *testing.T) {
	l, _ := newTestLedger(t)
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	key := Key("test", []byte("n"))
	_, err := l.Execute(context.Background(), alice, func(tx *Tx) error {
		if err := tx.PutBig(key, max); err != nil {
			return err
		}
		_, err := tx.AddBig(key, big.NewInt(1))
		return err
	})
	assert.True(t, api.IsKind(err, api.KindValidation))
}

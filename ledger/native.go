package ledger

import (
	"context"
	"math/big"

	"github.com/zhigui-projects/go-quizledger/api"
	"github.com/zhigui-projects/go-quizledger/common/crypto"
)

const nativeNamespace = "native"

// Minted is emitted for genesis allocations.
type Minted struct {
	To     crypto.Address `json:"to"`
	Amount *big.Int       `json:"amount"`
}

func (Minted) EventName() string { return "Minted" }

func nativeKey(a crypto.Address) []byte {
	return Key(nativeNamespace, []byte("bal/"), a.Bytes())
}

func nonceKey(a crypto.Address) []byte {
	return Key(nativeNamespace, []byte("nonce/"), a.Bytes())
}

// NativeBalance is the value account a holds outside of any service.
func (tx *Tx) NativeBalance(a crypto.Address) (*big.Int, error) {
	return tx.GetBig(nativeKey(a))
}

// Transfer moves native value between accounts. It fails with a
// validation error if from holds less than amount.
func (tx *Tx) Transfer(from, to crypto.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return api.ValidationError("negative transfer amount")
	}
	bal, err := tx.NativeBalance(from)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return api.ValidationError("transfer failed")
	}
	if err := tx.PutBig(nativeKey(from), bal.Sub(bal, amount)); err != nil {
		return err
	}
	_, err = tx.AddBig(nativeKey(to), amount)
	return err
}

// Mint credits native value out of thin air. Only node bootstrap calls it.
func (l *Ledger) Mint(ctx context.Context, to crypto.Address, amount *big.Int) (*Receipt, error) {
	return l.Execute(ctx, crypto.ZeroAddress, func(tx *Tx) error {
		return tx.Mint(to, amount)
	})
}

// Mint credits to within tx, so genesis can commit with other writes.
func (tx *Tx) Mint(to crypto.Address, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return api.ValidationError("mint amount must be positive")
	}
	if _, err := tx.AddBig(nativeKey(to), amount); err != nil {
		return err
	}
	tx.Emit(Minted{To: to, Amount: new(big.Int).Set(amount)})
	return nil
}

func (l *Ledger) NativeBalance(ctx context.Context, a crypto.Address) (*big.Int, error) {
	var bal *big.Int
	err := l.View(ctx, func(tx *Tx) error {
		var err error
		bal, err = tx.NativeBalance(a)
		return err
	})
	return bal, err
}

// Nonce is the next nonce a signed request from a must carry.
func (l *Ledger) Nonce(ctx context.Context, a crypto.Address) (uint64, error) {
	var n uint64
	err := l.View(ctx, func(tx *Tx) error {
		v, err := tx.GetBig(nonceKey(a))
		if err != nil {
			return err
		}
		n = v.Uint64()
		return nil
	})
	return n, err
}

func (tx *Tx) useNonce(nonce uint64) error {
	cur, err := tx.GetBig(nonceKey(tx.caller))
	if err != nil {
		return err
	}
	if cur.Uint64() != nonce {
		return api.ValidationError("invalid nonce: expected %d, got %d", cur.Uint64(), nonce)
	}
	return tx.PutBig(nonceKey(tx.caller), new(big.Int).SetUint64(nonce+1))
}

/*
Copyright Zhigui.com. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package funds implements the signature authorized balance ledger: the
// owner submits withdrawals on behalf of participants, each carrying the
// participant's own signature over its resulting balance.
package funds

import (
	"context"
	"math/big"

	"github.com/zhigui-projects/go-quizledger/access"
	"github.com/zhigui-projects/go-quizledger/api"
	"github.com/zhigui-projects/go-quizledger/common/crypto"
	"github.com/zhigui-projects/go-quizledger/common/log"
	"github.com/zhigui-projects/go-quizledger/ledger"
)

const Namespace = "funds"

// MaxFeeBasisPoints is 100%.
const MaxFeeBasisPoints = 10000

var logger = log.GetLogger("module", "funds")

var (
	ErrZeroAmount = api.ValidationError("Amount must be greater than zero")
	ErrFeeTooHigh = api.ValidationError("Fee basis points exceed 10000")
)

type Manager struct {
	ledger *ledger.Ledger
	acl    *access.Control
	// service account holding deposited native value
	account crypto.Address
}

func NewManager(l *ledger.Ledger) *Manager {
	return &Manager{
		ledger:  l,
		acl:     access.New(Namespace),
		account: ledger.ServiceAddress(Namespace),
	}
}

// Account is where deposited native value is held.
func (m *Manager) Account() crypto.Address {
	return m.account
}

func balanceKey(a crypto.Address) []byte {
	return ledger.Key(Namespace, []byte("bal/"), a.Bytes())
}

func fundingKey(funder, recipient crypto.Address) []byte {
	return ledger.Key(Namespace, []byte("fund/"), funder.Bytes(), recipient.Bytes())
}

var (
	feeCollectorKey = ledger.Key(Namespace, []byte("fee/collector"))
	feeBpsKey       = ledger.Key(Namespace, []byte("fee/bps"))
)

// Initialize makes caller the owner and records the fee configuration. A
// zero fee collector defaults to the caller. Fees are recorded only.
func (m *Manager) Initialize(ctx context.Context, caller, feeCollector crypto.Address, feeBasisPoints uint64) (*ledger.Receipt, error) {
	return m.ledger.Execute(ctx, caller, m.InitializeFunc(feeCollector, feeBasisPoints))
}

// InitializeFunc is the body of Initialize, for callers that commit more
// writes in the same transaction.
func (m *Manager) InitializeFunc(feeCollector crypto.Address, feeBasisPoints uint64) ledger.TxFunc {
	return m.acl.Initializer(func(tx *ledger.Tx) error {
		if feeBasisPoints > MaxFeeBasisPoints {
			return ErrFeeTooHigh
		}
		if feeCollector.IsZero() {
			feeCollector = tx.Caller()
		}
		if err := m.acl.SetOwner(tx, tx.Caller()); err != nil {
			return err
		}
		if err := tx.PutAddress(feeCollectorKey, feeCollector); err != nil {
			return err
		}
		if err := tx.PutBig(feeBpsKey, new(big.Int).SetUint64(feeBasisPoints)); err != nil {
			return err
		}
		logger.Info("funds manager initialized", "owner", tx.Caller(),
			"feeCollector", feeCollector, "feeBasisPoints", feeBasisPoints)
		return nil
	})
}

// Deposit credits the caller's own balance with native value it sends.
func (m *Manager) Deposit(ctx context.Context, caller crypto.Address, amount *big.Int) (*ledger.Receipt, error) {
	return m.ledger.Execute(ctx, caller, func(tx *ledger.Tx) error {
		if err := m.receive(tx, amount); err != nil {
			return err
		}
		if _, err := tx.AddBig(balanceKey(tx.Caller()), amount); err != nil {
			return err
		}
		tx.Emit(DepositEvent{Account: tx.Caller(), Amount: new(big.Int).Set(amount)})
		return nil
	})
}

// FundPlayer credits recipient with native value sent by the caller and
// adds it to the caller's cumulative funding of recipient.
func (m *Manager) FundPlayer(ctx context.Context, caller, recipient crypto.Address, amount *big.Int) (*ledger.Receipt, error) {
	return m.ledger.Execute(ctx, caller, func(tx *ledger.Tx) error {
		if err := m.receive(tx, amount); err != nil {
			return err
		}
		if _, err := tx.AddBig(balanceKey(recipient), amount); err != nil {
			return err
		}
		if _, err := tx.AddBig(fundingKey(tx.Caller(), recipient), amount); err != nil {
			return err
		}
		tx.Emit(FundedPlayerEvent{Funder: tx.Caller(), Recipient: recipient, Amount: new(big.Int).Set(amount)})
		return nil
	})
}

func (m *Manager) receive(tx *ledger.Tx, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}
	if !crypto.IsUint256(amount) {
		return api.ValidationError("amount out of range")
	}
	return tx.Transfer(tx.Caller(), m.account, amount)
}

// Verify is the read only signature check withdrawals run. It never touches
// state.
func (m *Manager) Verify(ctx context.Context, w Withdrawal, sig []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return VerifySignature(w, sig), nil
}

// Withdraw sets the participant's balance to the signed new balance. Owner
// only. The balance is assigned, not decremented, so resubmitting an
// accepted withdrawal changes nothing.
func (m *Manager) Withdraw(ctx context.Context, caller crypto.Address, w Withdrawal, sig []byte) (*ledger.Receipt, error) {
	return m.ledger.Execute(ctx, caller, m.acl.OnlyOwner(func(tx *ledger.Tx) error {
		if !VerifySignature(w, sig) {
			logger.Warning("rejected withdrawal", "participant", w.Participant, "caller", tx.Caller())
			return api.ErrInvalidSignature
		}
		if err := tx.PutBig(balanceKey(w.Participant), w.NewBalance); err != nil {
			return err
		}
		tx.Emit(WithdrawEvent{
			Participant: w.Participant,
			Amount:      new(big.Int).Set(w.Amount),
			NewBalance:  new(big.Int).Set(w.NewBalance),
		})
		return nil
	}))
}

func (m *Manager) TransferOwnership(ctx context.Context, caller, newOwner crypto.Address) (*ledger.Receipt, error) {
	return m.ledger.Execute(ctx, caller, func(tx *ledger.Tx) error {
		return m.acl.TransferOwnership(tx, newOwner)
	})
}

func (m *Manager) RenounceOwnership(ctx context.Context, caller crypto.Address) (*ledger.Receipt, error) {
	return m.ledger.Execute(ctx, caller, m.acl.RenounceOwnership)
}

func (m *Manager) BalanceOf(ctx context.Context, a crypto.Address) (*big.Int, error) {
	return m.viewBig(ctx, balanceKey(a))
}

// Funding is the cumulative amount funder sent to recipient.
func (m *Manager) Funding(ctx context.Context, funder, recipient crypto.Address) (*big.Int, error) {
	return m.viewBig(ctx, fundingKey(funder, recipient))
}

func (m *Manager) FeeBasisPoints(ctx context.Context) (uint64, error) {
	bps, err := m.viewBig(ctx, feeBpsKey)
	if err != nil {
		return 0, err
	}
	return bps.Uint64(), nil
}

func (m *Manager) FeeCollector(ctx context.Context) (crypto.Address, error) {
	var a crypto.Address
	err := m.ledger.View(ctx, func(tx *ledger.Tx) error {
		var err error
		a, err = tx.GetAddress(feeCollectorKey)
		return err
	})
	return a, err
}

func (m *Manager) Owner(ctx context.Context) (crypto.Address, error) {
	var a crypto.Address
	err := m.ledger.View(ctx, func(tx *ledger.Tx) error {
		var err error
		a, err = m.acl.Owner(tx)
		return err
	})
	return a, err
}

func (m *Manager) viewBig(ctx context.Context, key []byte) (*big.Int, error) {
	var v *big.Int
	err := m.ledger.View(ctx, func(tx *ledger.Tx) error {
		var err error
		v, err = tx.GetBig(key)
		return err
	})
	return v, err
}

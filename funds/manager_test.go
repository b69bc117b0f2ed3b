package funds

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zhigui-projects/go-quizledger/access"
	"github.com/zhigui-projects/go-quizledger/api"
	"github.com/zhigui-projects/go-quizledger/common/crypto"
	"github.com/zhigui-projects/go-quizledger/common/db/memorydb"
	"github.com/zhigui-projects/go-quizledger/common/utils"
	"github.com/zhigui-projects/go-quizledger/ledger"
)

var ether = utils.MustParseEther

type fixture struct {
	ctx     context.Context
	ledger  *ledger.Ledger
	manager *Manager

	owner, acc1, acc2, acc3 *crypto.KeySigner
}

func newSigner(t *testing.T) *crypto.KeySigner {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return crypto.NewKeySigner(key)
}

// deployFundsManager mirrors the deployment fixture: acc1 deposits 10
// ether and acc2 deposits 20.
func deployFundsManager(t *testing.T) *fixture {
	l, err := ledger.New(memorydb.New())
	require.NoError(t, err)
	f := &fixture{
		ctx:     context.Background(),
		ledger:  l,
		manager: NewManager(l),
		owner:   newSigner(t),
		acc1:    newSigner(t),
		acc2:    newSigner(t),
		acc3:    newSigner(t),
	}
	for _, s := range []*crypto.KeySigner{f.owner, f.acc1, f.acc2, f.acc3} {
		_, err := l.Mint(f.ctx, s.Address(), ether("100"))
		require.NoError(t, err)
	}
	_, err = f.manager.Initialize(f.ctx, f.owner.Address(), crypto.ZeroAddress, 1000)
	require.NoError(t, err)

	_, err = f.manager.Deposit(f.ctx, f.acc1.Address(), ether("10"))
	require.NoError(t, err)
	_, err = f.manager.Deposit(f.ctx, f.acc2.Address(), ether("20"))
	require.NoError(t, err)
	return f
}

func (f *fixture) balance(t *testing.T, a crypto.Address) *big.Int {
	b, err := f.manager.BalanceOf(f.ctx, a)
	require.NoError(t, err)
	return b
}

func hello(participant crypto.Address, amount, newBalance string) Withdrawal {
	return Withdrawal{
		Participant: participant,
		Amount:      ether(amount),
		NewBalance:  ether(newBalance),
		Message:     "Hello",
		Nonce:       big.NewInt(123),
	}
}

func TestDeployAndSyncBalances(t *testing.T) {
	f := deployFundsManager(t)

	assert.Equal(t, 0, f.balance(t, f.acc1.Address()).Cmp(ether("10")))
	assert.Equal(t, 0, f.balance(t, f.acc2.Address()).Cmp(ether("20")))
	assert.Equal(t, 0, f.balance(t, f.acc3.Address()).Sign())

	owner, err := f.manager.Owner(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, f.owner.Address(), owner)

	collector, err := f.manager.FeeCollector(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, f.owner.Address(), collector)
	bps, err := f.manager.FeeBasisPoints(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), bps)

	native, err := f.ledger.NativeBalance(f.ctx, f.manager.Account())
	require.NoError(t, err)
	assert.Equal(t, 0, native.Cmp(ether("30")))
}

func TestInitializeTwiceFails(t *testing.T) {
	f := deployFundsManager(t)
	_, err := f.manager.Initialize(f.ctx, f.acc1.Address(), f.acc1.Address(), 0)
	assert.Equal(t, access.ErrAlreadyInitialized, err)

	owner, _ := f.manager.Owner(f.ctx)
	assert.Equal(t, f.owner.Address(), owner)
}

func TestInitializeRejectsFee(t *testing.T) {
	l, err := ledger.New(memorydb.New())
	require.NoError(t, err)
	m := NewManager(l)
	caller := crypto.BytesToAddress([]byte{1})

	_, err = m.Initialize(context.Background(), caller, caller, MaxFeeBasisPoints+1)
	assert.Equal(t, ErrFeeTooHigh, err)

	// a failed initializer leaves the manager uninitialized
	_, err = m.Initialize(context.Background(), caller, caller, MaxFeeBasisPoints)
	assert.NoError(t, err)
}

func TestDigestDeterminism(t *testing.T) {
	w := hello(crypto.BytesToAddress([]byte{0xaa}), "1", "9")
	d1, err := w.Digest()
	require.NoError(t, err)
	d2, err := w.Digest()
	require.NoError(t, err)
	assert.Equal(t, d1, d2)

	mutations := []func(*Withdrawal){
		func(w *Withdrawal) { w.Participant = crypto.BytesToAddress([]byte{0xab}) },
		func(w *Withdrawal) { w.Amount = new(big.Int).Add(w.Amount, big.NewInt(1)) },
		func(w *Withdrawal) { w.NewBalance = ether("1") },
		func(w *Withdrawal) { w.Message += " new thing" },
		func(w *Withdrawal) { w.Nonce = big.NewInt(124) },
	}
	for i, mutate := range mutations {
		changed := w
		mutate(&changed)
		d, err := changed.Digest()
		require.NoError(t, err)
		assert.NotEqual(t, d1, d, "mutation %d", i)
	}

	bad := w
	bad.Amount = big.NewInt(-1)
	_, err = bad.Digest()
	assert.Equal(t, crypto.ErrUint256Range, err)
}

func TestDigestEncoding(t *testing.T) {
	w := Withdrawal{
		Participant: crypto.BytesToAddress([]byte{0x01}),
		Amount:      big.NewInt(2),
		NewBalance:  big.NewInt(3),
		Message:     "m",
		Nonce:       big.NewInt(4),
	}
	packed := make([]byte, 0, 20+32+32+1+32)
	packed = append(packed, w.Participant.Bytes()...)
	for _, v := range []*big.Int{w.Amount, w.NewBalance} {
		packed = append(packed, v.FillBytes(make([]byte, 32))...)
	}
	packed = append(packed, 'm')
	packed = append(packed, w.Nonce.FillBytes(make([]byte, 32))...)

	d, err := w.Digest()
	require.NoError(t, err)
	assert.Equal(t, crypto.Keccak256(packed), d)
}

func TestVerifyRightSignature(t *testing.T) {
	f := deployFundsManager(t)
	w := hello(f.acc1.Address(), "1", "9")
	sig, err := w.Sign(f.acc1)
	require.NoError(t, err)

	ok, err := f.manager.Verify(f.ctx, w, sig)
	require.NoError(t, err)
	assert.True(t, ok)

	wrongAmount := w
	wrongAmount.Amount = new(big.Int).Add(w.Amount, big.NewInt(1))
	ok, err = f.manager.Verify(f.ctx, wrongAmount, sig)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifySelfAuthorization(t *testing.T) {
	f := deployFundsManager(t)
	w := hello(f.acc1.Address(), "1", "9")

	// the owner signing on acc1's behalf is not enough
	ownerSig, err := w.Sign(f.owner)
	require.NoError(t, err)
	assert.False(t, VerifySignature(w, ownerSig))

	sig, err := w.Sign(f.acc1)
	require.NoError(t, err)
	assert.True(t, VerifySignature(w, sig))

	assert.False(t, VerifySignature(w, nil))
	assert.False(t, VerifySignature(w, sig[:64]))
	truncated := w
	truncated.Nonce = nil
	assert.False(t, VerifySignature(truncated, sig))
}

func TestWithdrawalOnSignature(t *testing.T) {
	f := deployFundsManager(t)
	w := hello(f.acc1.Address(), "2", "8")
	sig, err := w.Sign(f.acc1)
	require.NoError(t, err)

	ok, err := f.manager.Verify(f.ctx, w, sig)
	require.NoError(t, err)
	require.True(t, ok)

	r, err := f.manager.Withdraw(f.ctx, f.owner.Address(), w, sig)
	require.NoError(t, err)
	assert.Equal(t, []ledger.Event{WithdrawEvent{
		Participant: f.acc1.Address(),
		Amount:      ether("2"),
		NewBalance:  ether("8"),
	}}, r.Events)
	assert.Equal(t, 0, f.balance(t, f.acc1.Address()).Cmp(ether("8")))

	_, err = f.manager.Withdraw(f.ctx, f.acc1.Address(), hello(f.acc2.Address(), "2", "8"), sig)
	assert.EqualError(t, err, "Ownable: caller is not the owner")
	assert.True(t, api.IsKind(err, api.KindAuthorization))

	tampered := []Withdrawal{
		hello(f.acc2.Address(), "2", "8"),
		{Participant: w.Participant, Amount: new(big.Int).Add(w.Amount, big.NewInt(1)), NewBalance: w.NewBalance, Message: w.Message, Nonce: w.Nonce},
		{Participant: w.Participant, Amount: w.Amount, NewBalance: w.NewBalance, Message: w.Message + " new thing", Nonce: w.Nonce},
		{Participant: w.Participant, Amount: w.Amount, NewBalance: w.NewBalance, Message: w.Message, Nonce: big.NewInt(124)},
		{Participant: w.Participant, Amount: w.Amount, NewBalance: ether("1"), Message: w.Message, Nonce: w.Nonce},
	}
	for i, tw := range tampered {
		_, err := f.manager.Withdraw(f.ctx, f.owner.Address(), tw, sig)
		assert.Equal(t, api.ErrInvalidSignature, err, "case %d", i)
		assert.EqualError(t, err, "Invalid Signature", "case %d", i)
	}
	assert.Equal(t, 0, f.balance(t, f.acc1.Address()).Cmp(ether("8")))
	assert.Equal(t, 0, f.balance(t, f.acc2.Address()).Cmp(ether("20")))
}

func TestWithdrawAtomicity(t *testing.T) {
	f := deployFundsManager(t)
	w := hello(f.acc1.Address(), "2", "8")
	sig, err := w.Sign(f.acc1)
	require.NoError(t, err)

	logs, cancel := f.ledger.Subscribe(8)
	defer cancel()

	_, err = f.manager.Withdraw(f.ctx, f.acc2.Address(), w, sig)
	assert.Error(t, err)
	badSig := append([]byte(nil), sig...)
	badSig[10] ^= 0xff
	_, err = f.manager.Withdraw(f.ctx, f.owner.Address(), w, badSig)
	assert.Error(t, err)

	assert.Equal(t, 0, f.balance(t, f.acc1.Address()).Cmp(ether("10")))
	assert.Len(t, logs, 0)
}

func TestWithdrawReplayIsNoop(t *testing.T) {
	f := deployFundsManager(t)
	w := hello(f.acc1.Address(), "2", "8")
	sig, err := w.Sign(f.acc1)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = f.manager.Withdraw(f.ctx, f.owner.Address(), w, sig)
		require.NoError(t, err)
		assert.Equal(t, 0, f.balance(t, f.acc1.Address()).Cmp(ether("8")))
	}

	// the assertion is trusted as is, even above the current balance
	up := hello(f.acc1.Address(), "0", "50")
	upSig, err := up.Sign(f.acc1)
	require.NoError(t, err)
	_, err = f.manager.Withdraw(f.ctx, f.owner.Address(), up, upSig)
	require.NoError(t, err)
	assert.Equal(t, 0, f.balance(t, f.acc1.Address()).Cmp(ether("50")))
}

func TestFundingPlayerWalletWorks(t *testing.T) {
	f := deployFundsManager(t)
	r, err := f.manager.FundPlayer(f.ctx, f.acc2.Address(), f.acc1.Address(), ether("5"))
	require.NoError(t, err)
	assert.Equal(t, []ledger.Event{FundedPlayerEvent{
		Funder:    f.acc2.Address(),
		Recipient: f.acc1.Address(),
		Amount:    ether("5"),
	}}, r.Events)

	funded, err := f.manager.Funding(f.ctx, f.acc2.Address(), f.acc1.Address())
	require.NoError(t, err)
	assert.Equal(t, 0, funded.Cmp(ether("5")))
}

func TestFundingAccumulation(t *testing.T) {
	f := deployFundsManager(t)
	recipient := f.acc3.Address()
	five := big.NewInt(5)

	for i := 0; i < 2; i++ {
		_, err := f.manager.FundPlayer(f.ctx, f.acc2.Address(), recipient, five)
		require.NoError(t, err)
	}

	funded, err := f.manager.Funding(f.ctx, f.acc2.Address(), recipient)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), funded)
	assert.Equal(t, big.NewInt(10), f.balance(t, recipient))

	// funding is tracked per (funder, recipient) pair
	other, err := f.manager.Funding(f.ctx, f.acc1.Address(), recipient)
	require.NoError(t, err)
	assert.Equal(t, 0, other.Sign())
}

func TestFundRejections(t *testing.T) {
	f := deployFundsManager(t)

	_, err := f.manager.FundPlayer(f.ctx, f.acc2.Address(), f.acc1.Address(), big.NewInt(0))
	assert.Equal(t, ErrZeroAmount, err)
	assert.True(t, api.IsKind(err, api.KindValidation))

	// acc2 has 80 ether of native value left
	_, err = f.manager.FundPlayer(f.ctx, f.acc2.Address(), f.acc1.Address(), ether("81"))
	assert.EqualError(t, err, "transfer failed")

	funded, err := f.manager.Funding(f.ctx, f.acc2.Address(), f.acc1.Address())
	require.NoError(t, err)
	assert.Equal(t, 0, funded.Sign())
	assert.Equal(t, 0, f.balance(t, f.acc1.Address()).Cmp(ether("10")))

	_, err = f.manager.Deposit(f.ctx, f.acc3.Address(), nil)
	assert.Equal(t, ErrZeroAmount, err)
}

func TestOwnershipTransferMovesWithdrawRight(t *testing.T) {
	f := deployFundsManager(t)
	_, err := f.manager.TransferOwnership(f.ctx, f.owner.Address(), f.acc3.Address())
	require.NoError(t, err)

	w := hello(f.acc1.Address(), "1", "9")
	sig, err := w.Sign(f.acc1)
	require.NoError(t, err)

	_, err = f.manager.Withdraw(f.ctx, f.owner.Address(), w, sig)
	assert.Equal(t, access.ErrNotOwner, err)
	_, err = f.manager.Withdraw(f.ctx, f.acc3.Address(), w, sig)
	assert.NoError(t, err)

	_, err = f.manager.RenounceOwnership(f.ctx, f.acc3.Address())
	require.NoError(t, err)
	_, err = f.manager.Withdraw(f.ctx, f.acc3.Address(), w, sig)
	assert.Equal(t, access.ErrNotOwner, err)
}

/*
Copyright Zhigui.com. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package rpc

import (
	"context"
	"io"
	"math/big"
	"time"

	"github.com/pkg/errors"
	"github.com/zhigui-projects/go-quizledger/common/crypto"
	"github.com/zhigui-projects/go-quizledger/funds"
	"github.com/zhigui-projects/go-quizledger/ledger"
	"github.com/zhigui-projects/go-quizledger/transport"
	"google.golang.org/grpc"
)

// Client signs and submits calls for one account. Errors returned by the
// server come back as *api.Error values.
type Client struct {
	conn   *grpc.ClientConn
	ledger LedgerClient
	signer crypto.Signer
}

// Dial connects to a ledger node. signer may be nil for read only use.
func Dial(address string, tls *transport.TLSOptions, signer crypto.Signer) (*Client, error) {
	gc, err := transport.NewClient(tls)
	if err != nil {
		return nil, err
	}
	conn, err := gc.NewConnection(address)
	if err != nil {
		return nil, err
	}
	return NewClient(conn, signer), nil
}

func NewClient(conn *grpc.ClientConn, signer crypto.Signer) *Client {
	return &Client{conn: conn, ledger: NewLedgerClient(conn), signer: signer}
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Address is the signing account, zero for read only clients.
func (c *Client) Address() crypto.Address {
	if c.signer == nil {
		return crypto.ZeroAddress
	}
	return c.signer.Address()
}

// Submit signs method(args) with the account's current nonce.
func (c *Client) Submit(ctx context.Context, method string, args interface{}) (*SubmitResponse, error) {
	if c.signer == nil {
		return nil, errors.New("client has no signing key")
	}
	nonce, err := c.Nonce(ctx, c.signer.Address())
	if err != nil {
		return nil, err
	}
	env, err := NewEnvelope(c.signer, nonce, method, args)
	if err != nil {
		return nil, err
	}
	resp, err := c.ledger.Submit(ctx, env)
	return resp, FromStatus(err)
}

func (c *Client) Deposit(ctx context.Context, amount *big.Int) (*SubmitResponse, error) {
	return c.Submit(ctx, MethodDeposit, &DepositArgs{Amount: amount})
}

func (c *Client) FundPlayer(ctx context.Context, recipient crypto.Address, amount *big.Int) (*SubmitResponse, error) {
	return c.Submit(ctx, MethodFundPlayer, &FundPlayerArgs{Recipient: recipient, Amount: amount})
}

// Withdraw submits a participant signed withdrawal. Only the funds owner
// can do this.
func (c *Client) Withdraw(ctx context.Context, w funds.Withdrawal, sig []byte) (*SubmitResponse, error) {
	return c.Submit(ctx, MethodWithdraw, &WithdrawArgs{Withdrawal: w, Signature: sig})
}

func (c *Client) TransferOwnership(ctx context.Context, newOwner crypto.Address) (*SubmitResponse, error) {
	return c.Submit(ctx, MethodTransferOwnership, &TransferOwnershipArgs{NewOwner: newOwner})
}

func (c *Client) SetPoolEndTime(ctx context.Context, poolID uint64, end time.Time) (*SubmitResponse, error) {
	return c.Submit(ctx, MethodSetPoolEndTime, &SetPoolEndTimeArgs{PoolID: poolID, EndTime: end.Unix()})
}

func (c *Client) SubmitAnswerHash(ctx context.Context, poolID uint64, participant crypto.Address, hash crypto.Hash) (*SubmitResponse, error) {
	return c.Submit(ctx, MethodSubmitAnswerHash, &SubmitAnswerHashArgs{PoolID: poolID, Participant: participant, Hash: hash})
}

func (c *Client) SubmitAnswerHashBatch(ctx context.Context, poolID uint64, participants []crypto.Address, hashes []crypto.Hash) (*SubmitResponse, error) {
	return c.Submit(ctx, MethodSubmitAnswerHashBatch, &SubmitAnswerHashBatchArgs{
		PoolID:       poolID,
		Participants: participants,
		Hashes:       hashes,
	})
}

func (c *Client) GrantRole(ctx context.Context, role crypto.Hash, account crypto.Address) (*SubmitResponse, error) {
	return c.Submit(ctx, MethodGrantRole, &RoleArgs{Role: role, Account: account})
}

func (c *Client) RevokeRole(ctx context.Context, role crypto.Hash, account crypto.Address) (*SubmitResponse, error) {
	return c.Submit(ctx, MethodRevokeRole, &RoleArgs{Role: role, Account: account})
}

func (c *Client) Verify(ctx context.Context, w funds.Withdrawal, sig []byte) (bool, error) {
	resp, err := c.ledger.Verify(ctx, &VerifyRequest{Withdrawal: w, Signature: sig})
	if err != nil {
		return false, FromStatus(err)
	}
	return resp.Value, nil
}

func (c *Client) BalanceOf(ctx context.Context, account crypto.Address) (*big.Int, error) {
	resp, err := c.ledger.BalanceOf(ctx, &AccountRequest{Account: account})
	if err != nil {
		return nil, FromStatus(err)
	}
	return amountOrZero(resp.Amount), nil
}

func (c *Client) Funding(ctx context.Context, funder, recipient crypto.Address) (*big.Int, error) {
	resp, err := c.ledger.Funding(ctx, &FundingRequest{Funder: funder, Recipient: recipient})
	if err != nil {
		return nil, FromStatus(err)
	}
	return amountOrZero(resp.Amount), nil
}

func (c *Client) NativeBalance(ctx context.Context, account crypto.Address) (*big.Int, error) {
	resp, err := c.ledger.NativeBalance(ctx, &AccountRequest{Account: account})
	if err != nil {
		return nil, FromStatus(err)
	}
	return amountOrZero(resp.Amount), nil
}

func (c *Client) Nonce(ctx context.Context, account crypto.Address) (uint64, error) {
	resp, err := c.ledger.Nonce(ctx, &AccountRequest{Account: account})
	if err != nil {
		return 0, FromStatus(err)
	}
	return resp.Nonce, nil
}

// PoolEndTime returns the zero time for pools without an end time.
func (c *Client) PoolEndTime(ctx context.Context, poolID uint64) (time.Time, error) {
	resp, err := c.ledger.PoolEndTime(ctx, &PoolRequest{PoolID: poolID})
	if err != nil {
		return time.Time{}, FromStatus(err)
	}
	if resp.Unix == 0 {
		return time.Time{}, nil
	}
	return time.Unix(resp.Unix, 0).UTC(), nil
}

func (c *Client) AnswerHash(ctx context.Context, poolID uint64, participant crypto.Address) (crypto.Hash, error) {
	resp, err := c.ledger.AnswerHash(ctx, &AnswerRequest{PoolID: poolID, Participant: participant})
	if err != nil {
		return crypto.ZeroHash, FromStatus(err)
	}
	return resp.Hash, nil
}

func (c *Client) VerifyAnswerHash(ctx context.Context, poolID uint64, participant crypto.Address, candidate crypto.Hash) (bool, error) {
	resp, err := c.ledger.VerifyAnswerHash(ctx, &AnswerRequest{PoolID: poolID, Participant: participant, Candidate: candidate})
	if err != nil {
		return false, FromStatus(err)
	}
	return resp.Value, nil
}

func (c *Client) Info(ctx context.Context) (*InfoResponse, error) {
	resp, err := c.ledger.Info(ctx, &InfoRequest{})
	return resp, FromStatus(err)
}

// Watch calls fn for every event from index from onwards until ctx ends,
// the stream fails or fn returns an error.
func (c *Client) Watch(ctx context.Context, from uint64, fn func(*ledger.StoredLog) error) error {
	stream, err := c.ledger.Watch(ctx, &WatchRequest{From: from})
	if err != nil {
		return FromStatus(err)
	}
	for {
		lg, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return FromStatus(err)
		}
		if err := fn(lg); err != nil {
			return err
		}
	}
}

// SignWithdrawal is what a participant runs to authorize a withdrawal the
// owner later submits.
func SignWithdrawal(participant crypto.Signer, w funds.Withdrawal) ([]byte, error) {
	if w.Participant != participant.Address() {
		return nil, errors.Errorf("withdrawal is for %s, key is %s", w.Participant, participant.Address())
	}
	return w.Sign(participant)
}

func amountOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

/*
Copyright Zhigui.com. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package rpc

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/zhigui-projects/go-quizledger/common/crypto"
	"github.com/zhigui-projects/go-quizledger/funds"
	"github.com/zhigui-projects/go-quizledger/ledger"
)

// Methods an Envelope can carry.
const (
	MethodDeposit               = "Deposit"
	MethodFundPlayer            = "FundPlayer"
	MethodWithdraw              = "Withdraw"
	MethodTransferOwnership     = "TransferOwnership"
	MethodSetPoolEndTime        = "SetPoolEndTime"
	MethodSubmitAnswerHash      = "SubmitAnswerHash"
	MethodSubmitAnswerHashBatch = "SubmitAnswerHashBatch"
	MethodGrantRole             = "GrantRole"
	MethodRevokeRole            = "RevokeRole"
)

// Envelope is a signed mutating call. The sender signs SigningHash under
// the signed message convention; Nonce must equal the sender's account
// nonce.
type Envelope struct {
	From      crypto.Address  `json:"from"`
	Nonce     uint64          `json:"nonce"`
	Method    string          `json:"method"`
	Payload   json.RawMessage `json:"payload"`
	Signature []byte          `json:"signature"`
}

// SigningHash is keccak256(method || nonce || payload).
func (e *Envelope) SigningHash() (crypto.Hash, error) {
	return crypto.NewPacker().
		String(e.Method).
		Uint64(e.Nonce).
		String(string(e.Payload)).
		Keccak256()
}

// Signer recovers the address that signed the envelope.
func (e *Envelope) Signer() (crypto.Address, error) {
	h, err := e.SigningHash()
	if err != nil {
		return crypto.ZeroAddress, err
	}
	return crypto.RecoverMessage(h.Bytes(), e.Signature)
}

// NewEnvelope encodes args and signs the call for signer.
func NewEnvelope(signer crypto.Signer, nonce uint64, method string, args interface{}) (*Envelope, error) {
	payload, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	env := &Envelope{From: signer.Address(), Nonce: nonce, Method: method, Payload: payload}
	h, err := env.SigningHash()
	if err != nil {
		return nil, err
	}
	if env.Signature, err = signer.Sign(h.Bytes()); err != nil {
		return nil, err
	}
	return env, nil
}

type DepositArgs struct {
	Amount *big.Int `json:"amount"`
}

type FundPlayerArgs struct {
	Recipient crypto.Address `json:"recipient"`
	Amount    *big.Int       `json:"amount"`
}

type WithdrawArgs struct {
	Withdrawal funds.Withdrawal `json:"withdrawal"`
	Signature  []byte           `json:"signature"`
}

type TransferOwnershipArgs struct {
	NewOwner crypto.Address `json:"newOwner"`
}

type SetPoolEndTimeArgs struct {
	PoolID  uint64 `json:"poolId"`
	EndTime int64  `json:"endTime"`
}

type SubmitAnswerHashArgs struct {
	PoolID      uint64         `json:"poolId"`
	Participant crypto.Address `json:"participant"`
	Hash        crypto.Hash    `json:"hash"`
}

type SubmitAnswerHashBatchArgs struct {
	PoolID       uint64           `json:"poolId"`
	Participants []crypto.Address `json:"participants"`
	Hashes       []crypto.Hash    `json:"hashes"`
}

// RoleArgs manages quiz verifier roles.
type RoleArgs struct {
	Role    crypto.Hash    `json:"role"`
	Account crypto.Address `json:"account"`
}

// EventData is an emitted event with its JSON payload.
type EventData struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

type SubmitResponse struct {
	TxID   string      `json:"txId"`
	Time   time.Time   `json:"time"`
	Events []EventData `json:"events"`
}

func newSubmitResponse(r *ledger.Receipt) (*SubmitResponse, error) {
	resp := &SubmitResponse{TxID: r.TxID, Time: r.Time}
	for _, ev := range r.Events {
		data, err := json.Marshal(ev)
		if err != nil {
			return nil, err
		}
		resp.Events = append(resp.Events, EventData{Name: ev.EventName(), Data: data})
	}
	return resp, nil
}

// Event returns the first event with the given name.
func (r *SubmitResponse) Event(name string) (EventData, bool) {
	for _, ev := range r.Events {
		if ev.Name == name {
			return ev, true
		}
	}
	return EventData{}, false
}

type VerifyRequest struct {
	Withdrawal funds.Withdrawal `json:"withdrawal"`
	Signature  []byte           `json:"signature"`
}

type BoolResponse struct {
	Value bool `json:"value"`
}

type AccountRequest struct {
	Account crypto.Address `json:"account"`
}

type FundingRequest struct {
	Funder    crypto.Address `json:"funder"`
	Recipient crypto.Address `json:"recipient"`
}

type AmountResponse struct {
	Amount *big.Int `json:"amount"`
}

type NonceResponse struct {
	Nonce uint64 `json:"nonce"`
}

type PoolRequest struct {
	PoolID uint64 `json:"poolId"`
}

// TimeResponse carries unix seconds, zero when unset.
type TimeResponse struct {
	Unix int64 `json:"unix"`
}

type AnswerRequest struct {
	PoolID      uint64         `json:"poolId"`
	Participant crypto.Address `json:"participant"`
	Candidate   crypto.Hash    `json:"candidate"`
}

type HashResponse struct {
	Hash crypto.Hash `json:"hash"`
}

type InfoRequest struct{}

type InfoResponse struct {
	Now            int64          `json:"now"`
	FundsOwner     crypto.Address `json:"fundsOwner"`
	FundsAccount   crypto.Address `json:"fundsAccount"`
	FeeCollector   crypto.Address `json:"feeCollector"`
	FeeBasisPoints uint64         `json:"feeBasisPoints"`
}

// WatchRequest streams journaled events from index From onwards, then
// live ones.
type WatchRequest struct {
	From uint64 `json:"from"`
}

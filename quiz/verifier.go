/*
Copyright Zhigui.com. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package quiz is a commit-reveal registry: operators commit one answer
// hash per pool and participant, and once the pool has ended anyone can
// check a candidate hash against the commitment.
package quiz

import (
	"context"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/pkg/errors"
	"github.com/zhigui-projects/go-quizledger/access"
	"github.com/zhigui-projects/go-quizledger/api"
	"github.com/zhigui-projects/go-quizledger/common/crypto"
	"github.com/zhigui-projects/go-quizledger/common/log"
	"github.com/zhigui-projects/go-quizledger/ledger"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const Namespace = "quiz"

var logger = log.GetLogger("module", "quiz")

var (
	ErrEndTimeNotFuture = api.ValidationError("End time must be in future")
	ErrLengthMismatch   = api.ValidationError("Length mismatch")
	ErrAlreadySubmitted = api.StateConflictError("Answer already submitted")
	ErrPoolNotEnded     = api.StateConflictError("Pool not ended")
)

// HashAnswer is the commitment clients submit for an answer.
func HashAnswer(answer string) crypto.Hash {
	return crypto.Keccak256([]byte(answer))
}

type Verifier struct {
	ledger *ledger.Ledger
	acl    *access.Control
}

func NewVerifier(l *ledger.Ledger) *Verifier {
	return &Verifier{ledger: l, acl: access.New(Namespace)}
}

func poolKey(poolID uint64) []byte {
	return ledger.Key(Namespace, []byte("pool/"), ledger.Uint64Bytes(poolID))
}

func answerKey(poolID uint64, participant crypto.Address) []byte {
	return ledger.Key(Namespace, []byte("ans/"), ledger.Uint64Bytes(poolID), participant.Bytes())
}

// Initialize grants the caller the admin role and operator the operator
// role.
func (v *Verifier) Initialize(ctx context.Context, caller, operator crypto.Address) (*ledger.Receipt, error) {
	return v.ledger.Execute(ctx, caller, v.acl.Initializer(func(tx *ledger.Tx) error {
		if operator.IsZero() {
			return api.ValidationError("operator is the zero address")
		}
		if err := v.acl.SetupRole(tx, access.DefaultAdminRole, tx.Caller()); err != nil {
			return err
		}
		if err := v.acl.SetupRole(tx, access.OperatorRole, operator); err != nil {
			return err
		}
		logger.Info("quiz verifier initialized", "admin", tx.Caller(), "operator", operator)
		return nil
	}))
}

// SetPoolEndTime stores or overwrites the pool deadline. The deadline must
// lie strictly after the ledger time; existing commitments do not pin it.
func (v *Verifier) SetPoolEndTime(ctx context.Context, caller crypto.Address, poolID uint64, endTime time.Time) (*ledger.Receipt, error) {
	return v.ledger.Execute(ctx, caller, v.acl.OnlyRole(access.OperatorRole, func(tx *ledger.Tx) error {
		end := time.Unix(endTime.Unix(), 0).UTC()
		if !end.After(tx.Now()) {
			return ErrEndTimeNotFuture
		}
		raw, err := proto.Marshal(timestamppb.New(end))
		if err != nil {
			return errors.Wrap(err, "error encoding pool end time")
		}
		if err := tx.Put(poolKey(poolID), raw); err != nil {
			return err
		}
		tx.Emit(PoolEndTimeSetEvent{PoolID: poolID, EndTime: end})
		return nil
	}))
}

func poolEndTime(tx *ledger.Tx, poolID uint64) (time.Time, bool, error) {
	raw, ok, err := tx.Get(poolKey(poolID))
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	ts := &timestamppb.Timestamp{}
	if err := proto.Unmarshal(raw, ts); err != nil {
		return time.Time{}, false, errors.Wrapf(err, "corrupted end time of pool %d", poolID)
	}
	return ts.AsTime(), true, nil
}

// GetPoolEndTime returns the deadline, the zero time for unknown pools.
func (v *Verifier) GetPoolEndTime(ctx context.Context, poolID uint64) (time.Time, error) {
	var end time.Time
	err := v.ledger.View(ctx, func(tx *ledger.Tx) error {
		var err error
		end, _, err = poolEndTime(tx, poolID)
		return err
	})
	return end, err
}

func (v *Verifier) commit(tx *ledger.Tx, poolID uint64, participant crypto.Address, hash crypto.Hash) error {
	key := answerKey(poolID, participant)
	exists, err := tx.Has(key)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadySubmitted
	}
	return tx.Put(key, hash.Bytes())
}

// SubmitAnswerHash commits hash for participant in poolID. A commitment is
// written once and never replaced. The pool deadline is not consulted.
func (v *Verifier) SubmitAnswerHash(ctx context.Context, caller crypto.Address, poolID uint64, participant crypto.Address, hash crypto.Hash) (*ledger.Receipt, error) {
	return v.ledger.Execute(ctx, caller, v.acl.OnlyRole(access.OperatorRole, func(tx *ledger.Tx) error {
		if err := v.commit(tx, poolID, participant, hash); err != nil {
			return err
		}
		tx.Emit(AnswerSubmittedEvent{PoolID: poolID, Participant: participant, Hash: hash})
		return nil
	}))
}

// SubmitAnswerHashBatch commits every (participant, hash) pair or none.
func (v *Verifier) SubmitAnswerHashBatch(ctx context.Context, caller crypto.Address, poolID uint64, participants []crypto.Address, hashes []crypto.Hash) (*ledger.Receipt, error) {
	return v.ledger.Execute(ctx, caller, v.acl.OnlyRole(access.OperatorRole, func(tx *ledger.Tx) error {
		if len(participants) != len(hashes) {
			return ErrLengthMismatch
		}
		for i, p := range participants {
			if err := v.commit(tx, poolID, p, hashes[i]); err != nil {
				logger.Debug("batch rejected", "poolId", poolID, "index", i, "participant", p, "error", err)
				return err
			}
		}
		tx.Emit(AnswersBatchSubmittedEvent{PoolID: poolID, Count: len(participants)})
		return nil
	}))
}

func answerHash(tx *ledger.Tx, poolID uint64, participant crypto.Address) (crypto.Hash, bool, error) {
	raw, ok, err := tx.Get(answerKey(poolID, participant))
	if err != nil || !ok {
		return crypto.ZeroHash, false, err
	}
	return crypto.BytesToHash(raw), true, nil
}

// GetAnswerHash returns the commitment, the zero hash when unset.
func (v *Verifier) GetAnswerHash(ctx context.Context, poolID uint64, participant crypto.Address) (crypto.Hash, error) {
	var h crypto.Hash
	err := v.ledger.View(ctx, func(tx *ledger.Tx) error {
		var err error
		h, _, err = answerHash(tx, poolID, participant)
		return err
	})
	return h, err
}

// VerifyAnswerHash reports whether candidate equals the commitment. It
// fails until the ledger time reaches the pool end time. A pool with no
// end time counts as ended.
func (v *Verifier) VerifyAnswerHash(ctx context.Context, poolID uint64, participant crypto.Address, candidate crypto.Hash) (bool, error) {
	var match bool
	err := v.ledger.View(ctx, func(tx *ledger.Tx) error {
		end, _, err := poolEndTime(tx, poolID)
		if err != nil {
			return err
		}
		if tx.Now().Before(end) {
			return ErrPoolNotEnded
		}
		stored, ok, err := answerHash(tx, poolID, participant)
		if err != nil {
			return err
		}
		match = ok && stored == candidate
		return nil
	})
	return match, err
}

func (v *Verifier) HasRole(ctx context.Context, role access.Role, account crypto.Address) (bool, error) {
	var ok bool
	err := v.ledger.View(ctx, func(tx *ledger.Tx) error {
		var err error
		ok, err = v.acl.HasRole(tx, role, account)
		return err
	})
	return ok, err
}

func (v *Verifier) GrantRole(ctx context.Context, caller crypto.Address, role access.Role, account crypto.Address) (*ledger.Receipt, error) {
	return v.ledger.Execute(ctx, caller, func(tx *ledger.Tx) error {
		return v.acl.GrantRole(tx, role, account)
	})
}

func (v *Verifier) RevokeRole(ctx context.Context, caller crypto.Address, role access.Role, account crypto.Address) (*ledger.Receipt, error) {
	return v.ledger.Execute(ctx, caller, func(tx *ledger.Tx) error {
		return v.acl.RevokeRole(tx, role, account)
	})
}

func (v *Verifier) RenounceRole(ctx context.Context, caller crypto.Address, role access.Role) (*ledger.Receipt, error) {
	return v.ledger.Execute(ctx, caller, func(tx *ledger.Tx) error {
		return v.acl.RenounceRole(tx, role, tx.Caller())
	})
}

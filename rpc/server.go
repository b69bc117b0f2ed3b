/*
Copyright Zhigui.com. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package rpc exposes the funds manager and the quiz verifier over gRPC.
// Mutating calls arrive as signed envelopes; reads are plain requests.
package rpc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/zhigui-projects/go-quizledger/api"
	"github.com/zhigui-projects/go-quizledger/common/log"
	"github.com/zhigui-projects/go-quizledger/funds"
	"github.com/zhigui-projects/go-quizledger/ledger"
	"github.com/zhigui-projects/go-quizledger/quiz"
	"github.com/zhigui-projects/go-quizledger/transport"
	"google.golang.org/grpc"
)

var logger = log.GetLogger("module", "rpc")

// ErrEnvelopeSignature rejects envelopes not signed by their sender.
var ErrEnvelopeSignature = api.NewError(api.KindSignature, "envelope signature does not match sender")

// watchPage is how many journal entries Watch reads at a time while
// catching up.
const watchPage = 256

type Server struct {
	ledger *ledger.Ledger
	funds  *funds.Manager
	quiz   *quiz.Verifier
}

var _ LedgerServer = (*Server)(nil)

func NewServer(l *ledger.Ledger, fm *funds.Manager, qv *quiz.Verifier) *Server {
	return &Server{ledger: l, funds: fm, quiz: qv}
}

// Register adds the ledger service to a transport server built from
// ServerConfig.
func Register(srv *transport.Server, s *Server) {
	RegisterLedgerServer(srv.Server(), s)
}

// ServerConfig returns a transport configuration for the ledger service.
func ServerConfig(address string, tls *transport.TLSOptions) transport.ServerConfig {
	return transport.ServerConfig{
		Address:            address,
		TLS:                tls,
		UnaryInterceptors:  []grpc.UnaryServerInterceptor{ErrorInterceptor},
		StreamInterceptors: []grpc.StreamServerInterceptor{StreamErrorInterceptor},
	}
}

func (s *Server) Submit(ctx context.Context, env *Envelope) (*SubmitResponse, error) {
	signer, err := env.Signer()
	if err != nil || signer != env.From {
		addr, name := transport.RemotePeer(ctx)
		logger.Warning("rejected envelope", "from", env.From, "method", env.Method,
			"remote", addr, "client", name, "error", err)
		return nil, ErrEnvelopeSignature
	}

	receipt, err := s.dispatch(ledger.WithNonce(ctx, env.Nonce), env)
	if err != nil {
		return nil, err
	}
	logger.Debug("envelope committed", "from", env.From, "method", env.Method, "txId", receipt.TxID)
	return newSubmitResponse(receipt)
}

func decodeArgs(env *Envelope, v interface{}) error {
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return api.ValidationError("malformed %s payload: %v", env.Method, err)
	}
	return nil
}

func (s *Server) dispatch(ctx context.Context, env *Envelope) (*ledger.Receipt, error) {
	from := env.From
	switch env.Method {
	case MethodDeposit:
		var args DepositArgs
		if err := decodeArgs(env, &args); err != nil {
			return nil, err
		}
		return s.funds.Deposit(ctx, from, args.Amount)
	case MethodFundPlayer:
		var args FundPlayerArgs
		if err := decodeArgs(env, &args); err != nil {
			return nil, err
		}
		return s.funds.FundPlayer(ctx, from, args.Recipient, args.Amount)
	case MethodWithdraw:
		var args WithdrawArgs
		if err := decodeArgs(env, &args); err != nil {
			return nil, err
		}
		return s.funds.Withdraw(ctx, from, args.Withdrawal, args.Signature)
	case MethodTransferOwnership:
		var args TransferOwnershipArgs
		if err := decodeArgs(env, &args); err != nil {
			return nil, err
		}
		return s.funds.TransferOwnership(ctx, from, args.NewOwner)
	case MethodSetPoolEndTime:
		var args SetPoolEndTimeArgs
		if err := decodeArgs(env, &args); err != nil {
			return nil, err
		}
		return s.quiz.SetPoolEndTime(ctx, from, args.PoolID, time.Unix(args.EndTime, 0))
	case MethodSubmitAnswerHash:
		var args SubmitAnswerHashArgs
		if err := decodeArgs(env, &args); err != nil {
			return nil, err
		}
		return s.quiz.SubmitAnswerHash(ctx, from, args.PoolID, args.Participant, args.Hash)
	case MethodSubmitAnswerHashBatch:
		var args SubmitAnswerHashBatchArgs
		if err := decodeArgs(env, &args); err != nil {
			return nil, err
		}
		return s.quiz.SubmitAnswerHashBatch(ctx, from, args.PoolID, args.Participants, args.Hashes)
	case MethodGrantRole:
		var args RoleArgs
		if err := decodeArgs(env, &args); err != nil {
			return nil, err
		}
		return s.quiz.GrantRole(ctx, from, args.Role, args.Account)
	case MethodRevokeRole:
		var args RoleArgs
		if err := decodeArgs(env, &args); err != nil {
			return nil, err
		}
		return s.quiz.RevokeRole(ctx, from, args.Role, args.Account)
	default:
		return nil, api.ValidationError("unknown method %q", env.Method)
	}
}

func (s *Server) Verify(ctx context.Context, req *VerifyRequest) (*BoolResponse, error) {
	ok, err := s.funds.Verify(ctx, req.Withdrawal, req.Signature)
	if err != nil {
		return nil, err
	}
	return &BoolResponse{Value: ok}, nil
}

func (s *Server) BalanceOf(ctx context.Context, req *AccountRequest) (*AmountResponse, error) {
	v, err := s.funds.BalanceOf(ctx, req.Account)
	if err != nil {
		return nil, err
	}
	return &AmountResponse{Amount: v}, nil
}

func (s *Server) Funding(ctx context.Context, req *FundingRequest) (*AmountResponse, error) {
	v, err := s.funds.Funding(ctx, req.Funder, req.Recipient)
	if err != nil {
		return nil, err
	}
	return &AmountResponse{Amount: v}, nil
}

func (s *Server) NativeBalance(ctx context.Context, req *AccountRequest) (*AmountResponse, error) {
	v, err := s.ledger.NativeBalance(ctx, req.Account)
	if err != nil {
		return nil, err
	}
	return &AmountResponse{Amount: v}, nil
}

func (s *Server) Nonce(ctx context.Context, req *AccountRequest) (*NonceResponse, error) {
	n, err := s.ledger.Nonce(ctx, req.Account)
	if err != nil {
		return nil, err
	}
	return &NonceResponse{Nonce: n}, nil
}

func (s *Server) PoolEndTime(ctx context.Context, req *PoolRequest) (*TimeResponse, error) {
	end, err := s.quiz.GetPoolEndTime(ctx, req.PoolID)
	if err != nil {
		return nil, err
	}
	resp := &TimeResponse{}
	if !end.IsZero() {
		resp.Unix = end.Unix()
	}
	return resp, nil
}

func (s *Server) AnswerHash(ctx context.Context, req *AnswerRequest) (*HashResponse, error) {
	h, err := s.quiz.GetAnswerHash(ctx, req.PoolID, req.Participant)
	if err != nil {
		return nil, err
	}
	return &HashResponse{Hash: h}, nil
}

func (s *Server) VerifyAnswerHash(ctx context.Context, req *AnswerRequest) (*BoolResponse, error) {
	ok, err := s.quiz.VerifyAnswerHash(ctx, req.PoolID, req.Participant, req.Candidate)
	if err != nil {
		return nil, err
	}
	return &BoolResponse{Value: ok}, nil
}

func (s *Server) Info(ctx context.Context, _ *InfoRequest) (*InfoResponse, error) {
	resp := &InfoResponse{Now: s.ledger.Now().Unix(), FundsAccount: s.funds.Account()}
	var err error
	if resp.FundsOwner, err = s.funds.Owner(ctx); err != nil {
		return nil, err
	}
	if resp.FeeCollector, err = s.funds.FeeCollector(ctx); err != nil {
		return nil, err
	}
	if resp.FeeBasisPoints, err = s.funds.FeeBasisPoints(ctx); err != nil {
		return nil, err
	}
	return resp, nil
}

// Watch replays the journal from req.From, then follows live events until
// the client goes away.
func (s *Server) Watch(req *WatchRequest, stream Ledger_WatchServer) error {
	ctx := stream.Context()
	// subscribe before replaying so nothing committed in between is lost
	live, cancel := s.ledger.Subscribe(watchPage)
	defer cancel()

	next, err := s.replay(ctx, stream, req.From, 0)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case lg, ok := <-live:
			if !ok {
				return nil
			}
			if lg.Index < next {
				continue
			}
			if lg.Index > next {
				// the subscription lagged; the journal has the gap
				if next, err = s.replay(ctx, stream, next, lg.Index); err != nil {
					return err
				}
			}
			sl, err := toStoredLog(lg)
			if err != nil {
				return err
			}
			if err := stream.Send(sl); err != nil {
				return err
			}
			next = lg.Index + 1
		}
	}
}

// replay sends journal entries in [from, upto), or everything from on when
// upto is zero, and returns the next index to send.
func (s *Server) replay(ctx context.Context, stream Ledger_WatchServer, from, upto uint64) (uint64, error) {
	next := from
	for upto == 0 || next < upto {
		page, err := s.ledger.Logs(ctx, next, watchPage)
		if err != nil {
			return next, err
		}
		for i := range page {
			if upto != 0 && page[i].Index >= upto {
				return next, nil
			}
			if err := stream.Send(&page[i]); err != nil {
				return next, err
			}
			next = page[i].Index + 1
		}
		if len(page) < watchPage {
			break
		}
	}
	return next, nil
}

func toStoredLog(lg ledger.Log) (*ledger.StoredLog, error) {
	data, err := json.Marshal(lg.Event)
	if err != nil {
		return nil, err
	}
	return &ledger.StoredLog{
		Index:  lg.Index,
		TxID:   lg.TxID,
		Time:   lg.Time,
		Caller: lg.Caller,
		Name:   lg.Name,
		Data:   data,
	}, nil
}

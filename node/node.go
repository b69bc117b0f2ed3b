/*
Copyright Zhigui.com. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package node assembles a ledger, the funds manager and the quiz verifier
// behind one gRPC endpoint.
package node

import (
	"context"
	"io/ioutil"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/zhigui-projects/go-quizledger/access"
	"github.com/zhigui-projects/go-quizledger/common/crypto"
	"github.com/zhigui-projects/go-quizledger/common/db"
	"github.com/zhigui-projects/go-quizledger/common/db/leveldb"
	"github.com/zhigui-projects/go-quizledger/common/log"
	"github.com/zhigui-projects/go-quizledger/funds"
	"github.com/zhigui-projects/go-quizledger/ledger"
	"github.com/zhigui-projects/go-quizledger/quiz"
	"github.com/zhigui-projects/go-quizledger/rpc"
	"github.com/zhigui-projects/go-quizledger/transport"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

var logger = log.GetLogger("module", "node")

// stopTimeout bounds graceful shutdown.
const stopTimeout = 5 * time.Second

type Node struct {
	cfg    *Config
	admin  crypto.Address
	db     db.Database
	ledger *ledger.Ledger
	funds  *funds.Manager
	quiz   *quiz.Verifier

	server *transport.Server
	health *health.Server
}

// LoadKey reads a hex private key file as written by the keygen command.
func LoadKey(path string) (*crypto.PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading key file %s", path)
	}
	key, err := crypto.ParsePrivateKey(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid key file %s", path)
	}
	return key, nil
}

// New opens the state database and bootstraps both services on first run.
func New(ctx context.Context, cfg *Config, opts ...ledger.Option) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	key, err := LoadKey(cfg.AdminKeyFile)
	if err != nil {
		return nil, err
	}

	var database db.Database
	if cfg.DataDir == "" {
		database, err = leveldb.OpenMemory(cfg.CacheSize)
	} else {
		database, err = leveldb.Open(cfg.DataDir, cfg.CacheSize)
	}
	if err != nil {
		return nil, err
	}

	l, err := ledger.New(database, opts...)
	if err != nil {
		database.Close()
		return nil, err
	}
	n := &Node{
		cfg:    cfg,
		admin:  crypto.PubkeyToAddress(key.PubKey()),
		db:     database,
		ledger: l,
		funds:  funds.NewManager(l),
		quiz:   quiz.NewVerifier(l),
	}
	if err := n.bootstrap(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return n, nil
}

// bootstrap initializes whichever service is still uninitialized. Genesis
// allocations commit in the same transaction as the funds manager
// initialization.
func (n *Node) bootstrap(ctx context.Context) error {
	feeCollector, _ := parseOptionalAddress("fee collector", n.cfg.FeeCollector)
	allocs, _ := ParseAlloc(n.cfg.Alloc)
	_, err := n.ledger.Execute(ctx, n.admin, n.genesis(feeCollector, allocs))
	switch {
	case err == nil:
		logger.Info("genesis", "admin", n.admin, "allocations", len(allocs))
	case errors.Is(err, access.ErrAlreadyInitialized):
		logger.Debug("funds manager already initialized")
	default:
		return errors.WithMessage(err, "error initializing funds manager")
	}

	operator, _ := parseOptionalAddress("operator", n.cfg.Operator)
	if operator.IsZero() {
		operator = n.admin
	}
	_, err = n.quiz.Initialize(ctx, n.admin, operator)
	if err != nil && !errors.Is(err, access.ErrAlreadyInitialized) {
		return errors.WithMessage(err, "error initializing quiz verifier")
	}
	return nil
}

func (n *Node) genesis(feeCollector crypto.Address, allocs []Allocation) ledger.TxFunc {
	initialize := n.funds.InitializeFunc(feeCollector, n.cfg.FeeBasisPoints)
	return func(tx *ledger.Tx) error {
		if err := initialize(tx); err != nil {
			return err
		}
		for _, a := range allocs {
			if err := tx.Mint(a.Account, a.Amount); err != nil {
				return errors.WithMessagef(err, "error crediting genesis allocation of %s", a.Account)
			}
		}
		return nil
	}
}

// Start binds the listen address and serves in the background.
func (n *Node) Start() error {
	tlsOpts, err := transport.LoadTLSOptions(n.cfg.TLSCertFile, n.cfg.TLSKeyFile, n.cfg.TLSCAFile)
	if err != nil {
		return err
	}
	srv, err := transport.NewServer(rpc.ServerConfig(n.cfg.Address(), tlsOpts))
	if err != nil {
		return err
	}
	rpc.Register(srv, rpc.NewServer(n.ledger, n.funds, n.quiz))
	n.health = health.NewServer()
	healthpb.RegisterHealthServer(srv.Server(), n.health)
	n.health.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	n.server = srv

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("grpc server stopped", "error", err)
		}
	}()
	logger.Info("node started, beginning to serve requests", "address", srv.Address(), "admin", n.admin)
	return nil
}

// Address is the bound listen address once started.
func (n *Node) Address() string {
	if n.server == nil {
		return n.cfg.Address()
	}
	return n.server.Address()
}

func (n *Node) Admin() crypto.Address  { return n.admin }
func (n *Node) Ledger() *ledger.Ledger { return n.ledger }
func (n *Node) Funds() *funds.Manager  { return n.funds }
func (n *Node) Quiz() *quiz.Verifier   { return n.quiz }

// Stop drains in-flight calls and closes the database.
func (n *Node) Stop() {
	if n.health != nil {
		n.health.Shutdown()
	}
	if n.server != nil {
		n.server.GracefulStop(stopTimeout)
	}
	n.db.Close()
	logger.Info("node stopped")
}

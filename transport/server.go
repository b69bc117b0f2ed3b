/*
Copyright Zhigui.com. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package transport

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"time"

	"github.com/pkg/errors"
	"github.com/zhigui-projects/go-quizledger/common/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/keepalive"
)

var logger = log.GetLogger("module", "transport")

// ServerConfig configures a Server.
type ServerConfig struct {
	// Listen address specified as hostname:port, port 0 picks a free one
	Address string
	TLS     *TLSOptions
	// Interceptors run in order around every unary call
	UnaryInterceptors  []grpc.UnaryServerInterceptor
	StreamInterceptors []grpc.StreamServerInterceptor
}

type Server struct {
	address  string
	listener net.Listener
	server   *grpc.Server
}

// NewServer listens on cfg.Address and prepares a grpc.Server with
// keepalive, message size limits and optional TLS.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Address == "" {
		return nil, errors.New("missing address parameter")
	}
	tlsConfig, err := parseTLSOptionsForServer(cfg.TLS)
	if err != nil {
		return nil, err
	}
	listen, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to listen on %s", cfg.Address)
	}

	var serverOpts []grpc.ServerOption
	if tlsConfig != nil {
		serverOpts = append(serverOpts, grpc.Creds(credentials.NewTLS(tlsConfig)))
	}
	serverOpts = append(serverOpts,
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    1 * time.Minute,
			Timeout: 20 * time.Second,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime: ServerMinInterval,
			// allow keepalive w/o rpc
			PermitWithoutStream: true,
		}),
		grpc.MaxSendMsgSize(MaxSendMsgSize),
		grpc.MaxRecvMsgSize(MaxRecvMsgSize),
		grpc.ConnectionTimeout(DefaultConnectionTimeout),
	)
	if len(cfg.UnaryInterceptors) > 0 {
		serverOpts = append(serverOpts, grpc.ChainUnaryInterceptor(cfg.UnaryInterceptors...))
	}
	if len(cfg.StreamInterceptors) > 0 {
		serverOpts = append(serverOpts, grpc.ChainStreamInterceptor(cfg.StreamInterceptors...))
	}

	return &Server{
		address:  listen.Addr().String(),
		listener: listen,
		server:   grpc.NewServer(serverOpts...),
	}, nil
}

// Address is the bound listen address.
func (s *Server) Address() string {
	return s.address
}

// Server returns the grpc.Server services register on.
func (s *Server) Server() *grpc.Server {
	return s.server
}

// Start serves until Stop or GracefulStop is called.
func (s *Server) Start() error {
	if s.listener == nil {
		return errors.New("nil listener")
	}
	if s.server == nil {
		return errors.New("nil server")
	}
	logger.Info("grpc server serving", "address", s.address)
	if err := s.server.Serve(s.listener); err != nil && err != grpc.ErrServerStopped {
		return errors.WithStack(err)
	}
	return nil
}

func (s *Server) Stop() {
	if s.server != nil {
		s.server.Stop()
	}
}

// GracefulStop waits for in-flight calls, forcing a stop after timeout.
func (s *Server) GracefulStop(timeout time.Duration) {
	if s.server == nil {
		return
	}
	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		logger.Warning("graceful stop timed out, closing connections", "timeout", timeout)
		s.server.Stop()
	}
}

func parseTLSOptionsForServer(opts *TLSOptions) (*tls.Config, error) {
	if opts == nil || !opts.UseTLS {
		return nil, nil
	}
	// make sure we have both Key and Certificate
	if opts.Key == nil || opts.Certificate == nil {
		return nil, errors.New("both Key and Certificate are required when using TLS")
	}
	cert, err := tls.X509KeyPair(opts.Certificate, opts.Key)
	if err != nil {
		return nil, errors.Errorf("failed to load server certificate, err: %v", err)
	}
	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
		CipherSuites: []uint16{tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
		},
		Certificates:           []tls.Certificate{cert},
		SessionTicketsDisabled: true,
		ClientAuth:             tls.RequestClientCert,
	}
	if opts.RequireClientCert {
		tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
		if len(opts.ClientRootCAs) > 0 {
			certPool := x509.NewCertPool()
			for _, certBytes := range opts.ClientRootCAs {
				if ok := certPool.AppendCertsFromPEM(certBytes); !ok {
					return nil, errors.New("error adding client root certificate")
				}
			}
			tlsConfig.ClientCAs = certPool
		}
	}
	return tlsConfig, nil
}

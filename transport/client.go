/*
Copyright Zhigui.com. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"io/ioutil"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/keepalive"
)

var (
	// Max send and receive bytes for grpc clients and servers
	MaxRecvMsgSize           = 4 * 1024 * 1024 // 4 MiB
	MaxSendMsgSize           = 4 * 1024 * 1024
	DefaultConnectionTimeout = time.Second * 3
	ServerMinInterval        = time.Duration(1) * time.Minute
)

// TLSOptions defines the TLS parameters of a Server or Client.
type TLSOptions struct {
	// PEM-encoded X509 public key to be used for TLS communication
	Certificate []byte
	// PEM-encoded private key to be used for TLS communication
	Key []byte
	// PEM-encoded X509 certificate authorities used by clients to verify
	// server certificates
	ServerRootCAs [][]byte
	// PEM-encoded X509 certificate authorities used by servers to verify
	// client certificates
	ClientRootCAs [][]byte
	UseTLS        bool
	// Whether or not TLS client must present certificates for authentication
	RequireClientCert bool
}

// LoadTLSOptions reads PEM files. Empty paths are skipped; the result has
// UseTLS set when any file was given.
func LoadTLSOptions(certFile, keyFile, caFile string) (*TLSOptions, error) {
	opts := &TLSOptions{}
	read := func(path string) ([]byte, error) {
		if path == "" {
			return nil, nil
		}
		opts.UseTLS = true
		raw, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "error reading %s", path)
		}
		return raw, nil
	}
	var err error
	if opts.Certificate, err = read(certFile); err != nil {
		return nil, err
	}
	if opts.Key, err = read(keyFile); err != nil {
		return nil, err
	}
	ca, err := read(caFile)
	if err != nil {
		return nil, err
	}
	if ca != nil {
		opts.ServerRootCAs = [][]byte{ca}
		opts.ClientRootCAs = [][]byte{ca}
	}
	return opts, nil
}

type Client struct {
	tlsConfig *tls.Config
	dialOpts  []grpc.DialOption
	// how long to block while establishing a connection
	timeout time.Duration
}

func NewClient(opts *TLSOptions) (*Client, error) {
	tlsConfig, err := parseTLSOptionsForClient(opts)
	if err != nil {
		return nil, err
	}
	client := &Client{tlsConfig: tlsConfig, timeout: DefaultConnectionTimeout}
	client.dialOpts = append(client.dialOpts,
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                1 * time.Minute,
			Timeout:             20 * time.Second,
			PermitWithoutStream: true,
		}),
		// make connection establishment blocking
		grpc.WithBlock(),
		grpc.FailOnNonTempDialError(true),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(MaxRecvMsgSize),
			grpc.MaxCallSendMsgSize(MaxSendMsgSize),
		),
	)
	return client, nil
}

// SetTimeout changes the dial timeout.
func (client *Client) SetTimeout(d time.Duration) {
	client.timeout = d
}

// NewConnection dials address, blocking up to the client timeout.
func (client *Client) NewConnection(address string, extra ...grpc.DialOption) (*grpc.ClientConn, error) {
	dialOpts := append([]grpc.DialOption(nil), client.dialOpts...)
	if client.tlsConfig != nil {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(credentials.NewTLS(client.tlsConfig)))
	} else {
		dialOpts = append(dialOpts, grpc.WithInsecure())
	}
	dialOpts = append(dialOpts, extra...)

	ctx, cancel := context.WithTimeout(context.Background(), client.timeout)
	defer cancel()
	conn, err := grpc.DialContext(ctx, address, dialOpts...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", address)
	}
	return conn, nil
}

func parseTLSOptionsForClient(opts *TLSOptions) (*tls.Config, error) {
	if opts == nil || !opts.UseTLS {
		return nil, nil
	}
	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}
	if len(opts.ServerRootCAs) > 0 {
		certPool := x509.NewCertPool()
		for _, certBytes := range opts.ServerRootCAs {
			if ok := certPool.AppendCertsFromPEM(certBytes); !ok {
				return nil, errors.New("error adding server root certificate")
			}
		}
		tlsConfig.RootCAs = certPool
	}
	if opts.RequireClientCert {
		if opts.Key == nil || opts.Certificate == nil {
			return nil, errors.New("both Key and Certificate are required when using mutual TLS")
		}
		cert, err := tls.X509KeyPair(opts.Certificate, opts.Key)
		if err != nil {
			return nil, errors.Errorf("failed to load client certificate, err: %v", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}
	return tlsConfig, nil
}

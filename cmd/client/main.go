/*
Copyright Zhigui.com. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/zhigui-projects/go-quizledger/common/crypto"
	"github.com/zhigui-projects/go-quizledger/node"
	"github.com/zhigui-projects/go-quizledger/rpc"
	"github.com/zhigui-projects/go-quizledger/transport"
)

type options struct {
	server  string
	keyFile string
	caFile  string
	timeout time.Duration
}

// newRootCmd builds the command tree; tests run it against an in-process
// node.
func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "quizledger-client",
		Short:         "Talk to a quiz ledger node.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&opts.server, "server", "s", "127.0.0.1:8000", "The RPC server to connect to.")
	flags.StringVarP(&opts.keyFile, "key", "k", "", "private key file signing requests")
	flags.StringVar(&opts.caFile, "tls.ca", "", "Use TLS, verifying the node against this root CA file")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "per command timeout")

	root.AddCommand(
		depositCmd(opts),
		fundCmd(opts),
		signWithdrawalCmd(opts),
		verifyCmd(opts),
		withdrawCmd(opts),
		balanceCmd(opts),
		fundingCmd(opts),
		transferOwnershipCmd(opts),
		setPoolCmd(opts),
		poolCmd(opts),
		submitAnswerCmd(opts),
		submitBatchCmd(opts),
		verifyAnswerCmd(opts),
		hashAnswerCmd(),
		roleCmd(opts, "grant-operator", true),
		roleCmd(opts, "revoke-operator", false),
		infoCmd(opts),
		watchCmd(opts),
	)
	return root
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (o *options) signer() (crypto.Signer, error) {
	if o.keyFile == "" {
		return nil, errors.New("--key is required for this command")
	}
	key, err := node.LoadKey(o.keyFile)
	if err != nil {
		return nil, err
	}
	return crypto.NewKeySigner(key), nil
}

// dial connects, signing with the key file when one is given.
func (o *options) dial(needKey bool) (*rpc.Client, error) {
	var signer crypto.Signer
	if needKey || o.keyFile != "" {
		s, err := o.signer()
		if err != nil {
			return nil, err
		}
		signer = s
	}
	tlsOpts, err := transport.LoadTLSOptions("", "", o.caFile)
	if err != nil {
		return nil, err
	}
	return rpc.Dial(o.server, tlsOpts, signer)
}

// run dials and calls fn with a context bounded by --timeout.
func (o *options) run(needKey bool, fn func(ctx context.Context, c *rpc.Client) error) error {
	c, err := o.dial(needKey)
	if err != nil {
		return err
	}
	defer c.Close()
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()
	return fn(ctx, c)
}

func printJSON(w io.Writer, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}

func parseUint(name, s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid %s [%s]", name, s)
	}
	return v, nil
}

func readFileOrStdin(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

/*
Copyright Zhigui.com. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package node

import (
	"math/big"
	"net"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/zhigui-projects/go-quizledger/common/crypto"
	"github.com/zhigui-projects/go-quizledger/common/db/leveldb"
	"github.com/zhigui-projects/go-quizledger/common/log"
	"github.com/zhigui-projects/go-quizledger/common/utils"
	"github.com/zhigui-projects/go-quizledger/funds"
)

// Config holds everything a node needs to start. Flags bind to its fields.
type Config struct {
	// DataDir holds the leveldb state; empty keeps state in memory
	DataDir   string
	CacheSize int

	ListenAddress string
	Port          int

	TLSCertFile string
	TLSKeyFile  string
	TLSCAFile   string

	// AdminKeyFile holds the hex private key of the administrator
	AdminKeyFile string
	// Operator gets the quiz operator role, the administrator when empty
	Operator string
	// FeeCollector defaults to the administrator
	FeeCollector   string
	FeeBasisPoints uint64
	// Alloc entries are address=amount, credited once at genesis
	Alloc []string

	Log log.Config
}

func DefaultConfig() *Config {
	return &Config{
		DataDir:       "data",
		CacheSize:     leveldb.DefaultCacheSize,
		ListenAddress: "127.0.0.1",
		Port:          8000,
		Log: log.Config{
			Level:  "info",
			Format: log.FormatTerminal,
		},
	}
}

// Address is the host:port the node listens on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.ListenAddress, strconv.Itoa(c.Port))
}

// Allocation is a genesis credit of native value.
type Allocation struct {
	Account crypto.Address
	Amount  *big.Int
}

// ParseAlloc parses address=amount entries; amounts take an ether suffix.
func ParseAlloc(entries []string) ([]Allocation, error) {
	out := make([]Allocation, 0, len(entries))
	for _, e := range entries {
		parts := strings.SplitN(e, "=", 2)
		if len(parts) != 2 {
			return nil, errors.Errorf("invalid alloc entry %q, want address=amount", e)
		}
		addr, err := crypto.ParseAddress(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid alloc address %q", parts[0])
		}
		amount, err := utils.ParseAmount(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid alloc amount %q", parts[1])
		}
		if amount.Sign() <= 0 {
			return nil, errors.Errorf("alloc amount for %s must be positive", addr)
		}
		out = append(out, Allocation{Account: addr, Amount: amount})
	}
	return out, nil
}

func parseOptionalAddress(name, s string) (crypto.Address, error) {
	if s == "" {
		return crypto.ZeroAddress, nil
	}
	a, err := crypto.ParseAddress(s)
	if err != nil {
		return crypto.ZeroAddress, errors.Wrapf(err, "invalid %s address", name)
	}
	return a, nil
}

// Validate checks the configuration without touching the filesystem.
func (c *Config) Validate() error {
	if c.ListenAddress == "" {
		return errors.New("listen address is required")
	}
	if c.Port < 0 || c.Port > 65535 {
		return errors.Errorf("invalid port %d", c.Port)
	}
	if c.AdminKeyFile == "" {
		return errors.New("admin key file is required")
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return errors.New("TLS requires both a certificate and a key file")
	}
	if c.FeeBasisPoints > funds.MaxFeeBasisPoints {
		return errors.Errorf("fee basis points %d exceed %d", c.FeeBasisPoints, funds.MaxFeeBasisPoints)
	}
	if _, err := parseOptionalAddress("operator", c.Operator); err != nil {
		return err
	}
	if _, err := parseOptionalAddress("fee collector", c.FeeCollector); err != nil {
		return err
	}
	if _, err := ParseAlloc(c.Alloc); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", log.FormatLogfmt, log.FormatTerminal, log.FormatJSON:
	default:
		return errors.Errorf("unknown log format [%s]", c.Log.Format)
	}
	return nil
}

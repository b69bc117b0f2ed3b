/*
Copyright Zhigui.com. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package utils

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

// EtherDecimals is the number of wei digits in one ether.
const EtherDecimals = 18

var weiPerEther = new(big.Int).Exp(big.NewInt(10), big.NewInt(EtherDecimals), nil)

// ParseEther converts a decimal ether amount such as "1.5" into wei.
func ParseEther(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return nil, errors.Errorf("invalid ether amount [%s]", s)
	}
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if len(frac) > EtherDecimals {
		return nil, errors.Errorf("ether amount [%s] has more than %d decimals", s, EtherDecimals)
	}
	if whole == "" {
		whole = "0"
	}
	digits := whole + frac + strings.Repeat("0", EtherDecimals-len(frac))
	wei, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, errors.Errorf("invalid ether amount [%s]", s)
	}
	return wei, nil
}

// MustParseEther is ParseEther for constants.
func MustParseEther(s string) *big.Int {
	wei, err := ParseEther(s)
	if err != nil {
		panic(err)
	}
	return wei
}

// FormatEther renders wei as a decimal ether string without trailing zeros.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	neg := wei.Sign() < 0
	q, r := new(big.Int).QuoRem(new(big.Int).Abs(wei), weiPerEther, new(big.Int))
	out := q.String()
	if r.Sign() != 0 {
		frac := r.String()
		frac = strings.Repeat("0", EtherDecimals-len(frac)) + frac
		out += "." + strings.TrimRight(frac, "0")
	}
	if neg {
		out = "-" + out
	}
	return out
}

// ParseAmount accepts either a plain wei integer or an ether amount with a
// trailing "ether" unit, e.g. "1000" or "2.5ether".
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "ether") {
		return ParseEther(strings.TrimSuffix(s, "ether"))
	}
	wei, ok := new(big.Int).SetString(s, 10)
	if !ok || wei.Sign() < 0 {
		return nil, errors.Errorf("invalid amount [%s]", s)
	}
	return wei, nil
}

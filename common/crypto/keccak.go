/*
Copyright Zhigui.com. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package crypto

import (
	"math/big"

	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

// Keccak256 is the pre-standard Keccak used by Ethereum, not SHA3-256.
func Keccak256(data ...[]byte) Hash {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	var h Hash
	d.Sum(h[:0])
	return h
}

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// ErrUint256Range is returned for negative values and values above 2^256-1.
var ErrUint256Range = errors.New("value out of uint256 range")

// IsUint256 reports whether v fits an unsigned 256-bit word.
func IsUint256(v *big.Int) bool {
	return v != nil && v.Sign() >= 0 && v.Cmp(maxUint256) <= 0
}

// PaddedUint256 returns v as a 32-byte big-endian word.
func PaddedUint256(v *big.Int) ([]byte, error) {
	if !IsUint256(v) {
		return nil, ErrUint256Range
	}
	word := make([]byte, 32)
	return v.FillBytes(word), nil
}

// Packer builds the tightly packed encoding of an ordered, typed field list
// (Solidity's abi.encodePacked): addresses in 20 bytes, uint256 in 32-byte
// big-endian words, strings as their raw bytes without length prefix.
type Packer struct {
	buf []byte
	err error
}

func NewPacker() *Packer {
	return &Packer{}
}

func (p *Packer) Address(a Address) *Packer {
	p.buf = append(p.buf, a[:]...)
	return p
}

func (p *Packer) Uint256(v *big.Int) *Packer {
	if p.err != nil {
		return p
	}
	word, err := PaddedUint256(v)
	if err != nil {
		p.err = err
		return p
	}
	p.buf = append(p.buf, word...)
	return p
}

func (p *Packer) Uint64(v uint64) *Packer {
	return p.Uint256(new(big.Int).SetUint64(v))
}

func (p *Packer) String(s string) *Packer {
	p.buf = append(p.buf, s...)
	return p
}

func (p *Packer) Bytes32(h Hash) *Packer {
	p.buf = append(p.buf, h[:]...)
	return p
}

// Bytes returns the packed encoding or the first field error.
func (p *Packer) Bytes() ([]byte, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.buf, nil
}

// Keccak256 hashes the packed encoding.
func (p *Packer) Keccak256() (Hash, error) {
	b, err := p.Bytes()
	if err != nil {
		return ZeroHash, err
	}
	return Keccak256(b), nil
}

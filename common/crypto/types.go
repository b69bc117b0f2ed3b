/*
Copyright Zhigui.com. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package crypto

import (
	"bytes"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

const (
	AddressLength = 20
	HashLength    = 32
)

// Address identifies an account: the last 20 bytes of the keccak256 of its
// uncompressed public key.
type Address [AddressLength]byte

// Hash is a 32-byte keccak256 digest.
type Hash [HashLength]byte

var (
	ZeroAddress Address
	ZeroHash    Hash
)

func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// ParseAddress accepts a 0x prefixed or bare 40 character hex string.
// Mixed case input is not checksum validated.
func ParseAddress(s string) (Address, error) {
	b, err := decodeHex(s, AddressLength)
	if err != nil {
		return ZeroAddress, errors.Wrapf(err, "invalid address [%s]", s)
	}
	return BytesToAddress(b), nil
}

func (a Address) Bytes() []byte { return a[:] }

func (a Address) IsZero() bool { return a == ZeroAddress }

// Hex returns the EIP-55 mixed case checksum encoding.
func (a Address) Hex() string {
	lower := hex.EncodeToString(a[:])
	sum := Keccak256([]byte(lower))
	out := []byte(lower)
	for i, c := range out {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := sum[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			out[i] = c - 'a' + 'A'
		}
	}
	return "0x" + string(out)
}

func (a Address) String() string { return a.Hex() }

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

func ParseHash(s string) (Hash, error) {
	b, err := decodeHex(s, HashLength)
	if err != nil {
		return ZeroHash, errors.Wrapf(err, "invalid hash [%s]", s)
	}
	return BytesToHash(b), nil
}

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) IsZero() bool { return h == ZeroHash }

func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

func (h Hash) String() string { return h.Hex() }

func (h Hash) Equal(o Hash) bool { return bytes.Equal(h[:], o[:]) }

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// DecodeHex decodes an optionally 0x prefixed hex string of any length.
func DecodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
}

func decodeHex(s string, size int) ([]byte, error) {
	b, err := DecodeHex(s)
	if err != nil {
		return nil, err
	}
	if len(b) != size {
		return nil, errors.Errorf("expected %d bytes, got %d", size, len(b))
	}
	return b, nil
}

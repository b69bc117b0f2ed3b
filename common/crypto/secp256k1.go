/*
Copyright Zhigui.com. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package crypto

import (
	"encoding/hex"
	"strconv"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/pkg/errors"
)

// SignatureLength is the r || s || v layout produced by Ethereum wallets.
const SignatureLength = 65

const signedMessagePrefix = "\x19Ethereum Signed Message:\n"

type PrivateKey = secp256k1.PrivateKey
type PublicKey = secp256k1.PublicKey

func GenerateKey() (*PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, errors.Wrap(err, "failed generating secp256k1 key")
	}
	return key, nil
}

// ParsePrivateKey decodes a 32-byte hex encoded scalar, rejecting zero and
// values not below the curve order.
func ParsePrivateKey(s string) (*PrivateKey, error) {
	b, err := decodeHex(s, 32)
	if err != nil {
		return nil, errors.Wrap(err, "invalid private key")
	}
	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(b); overflow || scalar.IsZero() {
		return nil, errors.New("invalid private key: scalar out of range")
	}
	return secp256k1.NewPrivateKey(&scalar), nil
}

func PrivateKeyHex(key *PrivateKey) string {
	return hex.EncodeToString(key.Serialize())
}

func PubkeyToAddress(pub *PublicKey) Address {
	uncompressed := pub.SerializeUncompressed()
	h := Keccak256(uncompressed[1:])
	return BytesToAddress(h[12:])
}

// SignedMessageHash applies the wallet "signed message" prefix:
// keccak256("\x19Ethereum Signed Message:\n" || len(msg) || msg).
func SignedMessageHash(msg []byte) Hash {
	return Keccak256([]byte(signedMessagePrefix+strconv.Itoa(len(msg))), msg)
}

// SignHash signs a 32-byte hash and returns r || s || v with v in {27, 28}.
func SignHash(key *PrivateKey, hash Hash) []byte {
	compact := ecdsa.SignCompact(key, hash[:], false)
	// compact layout is v || r || s
	sig := make([]byte, SignatureLength)
	copy(sig, compact[1:])
	sig[64] = compact[0]
	return sig
}

// SignMessage signs msg under the signed message convention.
func SignMessage(key *PrivateKey, msg []byte) []byte {
	return SignHash(key, SignedMessageHash(msg))
}

// RecoverHash returns the address whose key produced sig over hash.
// Signatures with a high S value or an unknown recovery id are rejected.
func RecoverHash(hash Hash, sig []byte) (Address, error) {
	if len(sig) != SignatureLength {
		return ZeroAddress, errors.Errorf("invalid signature length %d", len(sig))
	}
	v := sig[64]
	if v != 27 && v != 28 {
		return ZeroAddress, errors.Errorf("invalid signature recovery id %d", sig[64])
	}
	var s secp256k1.ModNScalar
	if overflow := s.SetByteSlice(sig[32:64]); overflow || s.IsOverHalfOrder() {
		return ZeroAddress, errors.New("invalid S. Must be smaller than half the order")
	}

	compact := make([]byte, SignatureLength)
	compact[0] = v
	copy(compact[1:], sig[:64])
	pub, _, err := ecdsa.RecoverCompact(compact, hash[:])
	if err != nil {
		return ZeroAddress, errors.Wrap(err, "failed recovering public key")
	}
	return PubkeyToAddress(pub), nil
}

// RecoverMessage recovers the signer of msg under the signed message
// convention.
func RecoverMessage(msg, sig []byte) (Address, error) {
	return RecoverHash(SignedMessageHash(msg), sig)
}

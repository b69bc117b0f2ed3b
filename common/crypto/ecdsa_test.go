/*
Copyright Zhigui.com. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package crypto

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const keyOne = "0000000000000000000000000000000000000000000000000000000000000001"

func TestKeccak256(t *testing.T) {
	assert.Equal(t, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		hex.EncodeToString(Keccak256().Bytes()))
	assert.Equal(t, Keccak256([]byte("ab"), []byte("c")), Keccak256([]byte("abc")))
}

func TestPubkeyToAddress(t *testing.T) {
	key, err := ParsePrivateKey(keyOne)
	require.NoError(t, err)
	addr := PubkeyToAddress(key.PubKey())
	assert.Equal(t, "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf", addr.Hex())

	parsed, err := ParseAddress("0x7e5f4552091a69125d5dfcb7b8c2659029395bdf")
	require.NoError(t, err)
	assert.Equal(t, addr, parsed)
}

func TestParsePrivateKey(t *testing.T) {
	_, err := ParsePrivateKey("00")
	assert.Error(t, err)

	_, err = ParsePrivateKey("0000000000000000000000000000000000000000000000000000000000000000")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "scalar out of range")

	key, err := GenerateKey()
	require.NoError(t, err)
	back, err := ParsePrivateKey(PrivateKeyHex(key))
	require.NoError(t, err)
	assert.Equal(t, PubkeyToAddress(key.PubKey()), PubkeyToAddress(back.PubKey()))
}

func TestSignAndRecover(t *testing.T) {
	t.Parallel()

	key, err := GenerateKey()
	require.NoError(t, err)
	signer := NewKeySigner(key)

	msg := []byte("hello world")
	sig, err := signer.Sign(msg)
	require.NoError(t, err)
	require.Len(t, sig, SignatureLength)
	assert.Contains(t, []byte{27, 28}, sig[64])

	recovered, err := RecoverMessage(msg, sig)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), recovered)

	ok, err := AddressVerifier{Addr: signer.Address()}.Verify(sig, msg)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = AddressVerifier{Addr: signer.Address()}.Verify(sig, []byte("hello world!"))
	assert.NoError(t, err)
	assert.False(t, ok)

}

func TestRecoverRejectsMalformed(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	msg := []byte("hello world")
	sig := SignMessage(key, msg)

	_, err = RecoverMessage(msg, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid signature length 0")

	badV := append([]byte(nil), sig...)
	for _, v := range []byte{0, 1, 26, 29, 30} {
		badV[64] = v
		_, err = RecoverMessage(msg, badV)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "recovery id", "v=%d", v)
	}

	// s' = n - s recovers the same key on raw ECDSA, so it must be refused
	var s secp256k1.ModNScalar
	s.SetByteSlice(sig[32:64])
	s.Negate()
	highS := append([]byte(nil), sig...)
	sBytes := s.Bytes()
	copy(highS[32:64], sBytes[:])
	// negating s flips the recovery parity, swap 27 and 28
	highS[64] = 55 - highS[64]
	_, err = RecoverMessage(msg, highS)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid S. Must be smaller than half the order")
}

func TestPacker(t *testing.T) {
	addr := BytesToAddress([]byte{0xaa})
	packed, err := NewPacker().
		Address(addr).
		Uint256(big.NewInt(1)).
		String("hi").
		Uint64(2).
		Bytes()
	require.NoError(t, err)
	require.Len(t, packed, 20+32+2+32)
	assert.Equal(t, byte(0xaa), packed[19])
	assert.Equal(t, byte(1), packed[51])
	assert.Equal(t, "hi", string(packed[52:54]))
	assert.Equal(t, byte(2), packed[85])

	_, err = NewPacker().Uint256(big.NewInt(-1)).Bytes()
	assert.Equal(t, ErrUint256Range, err)

	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	_, err = NewPacker().Uint256(tooBig).Keccak256()
	assert.Equal(t, ErrUint256Range, err)
}

func TestTextEncoding(t *testing.T) {
	h := Keccak256([]byte("test answer"))
	text, err := h.MarshalText()
	require.NoError(t, err)
	var back Hash
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, h, back)

	var a Address
	assert.Error(t, a.UnmarshalText([]byte("0x1234")))
}

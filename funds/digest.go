/*
Copyright Zhigui.com. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package funds

import (
	"math/big"

	"github.com/zhigui-projects/go-quizledger/common/crypto"
)

// Withdrawal is the tuple a participant signs to authorize its own new
// balance.
type Withdrawal struct {
	Participant crypto.Address `json:"participant"`
	Amount      *big.Int       `json:"amount"`
	NewBalance  *big.Int       `json:"newBalance"`
	Message     string         `json:"message"`
	Nonce       *big.Int       `json:"nonce"`
}

// Digest is keccak256 of the packed (address, uint256, uint256, string,
// uint256) encoding of the withdrawal, in that field order.
func (w Withdrawal) Digest() (crypto.Hash, error) {
	return crypto.NewPacker().
		Address(w.Participant).
		Uint256(w.Amount).
		Uint256(w.NewBalance).
		String(w.Message).
		Uint256(w.Nonce).
		Keccak256()
}

// Sign produces the participant's signature: a signed message over the
// 32 digest bytes.
func (w Withdrawal) Sign(signer crypto.Signer) ([]byte, error) {
	digest, err := w.Digest()
	if err != nil {
		return nil, err
	}
	return signer.Sign(digest.Bytes())
}

// VerifySignature reports whether sig was made by the participant's key
// over exactly this withdrawal. Malformed signatures and out of range
// fields yield false.
func VerifySignature(w Withdrawal, sig []byte) bool {
	digest, err := w.Digest()
	if err != nil {
		return false
	}
	ok, err := crypto.AddressVerifier{Addr: w.Participant}.Verify(sig, digest.Bytes())
	if err != nil {
		logger.Debug("withdrawal signature rejected", "participant", w.Participant, "error", err)
		return false
	}
	return ok
}

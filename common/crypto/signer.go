package crypto

// Signer produces signed-message signatures for a single account.
type Signer interface {
	Address() Address
	Sign(msg []byte) ([]byte, error)
}

// Verifier checks a signature over msg.
type Verifier interface {
	Verify(signature, msg []byte) (bool, error)
}

type KeySigner struct {
	Key  *PrivateKey
	addr Address
}

func NewKeySigner(key *PrivateKey) *KeySigner {
	return &KeySigner{Key: key, addr: PubkeyToAddress(key.PubKey())}
}

func (s *KeySigner) Address() Address {
	return s.addr
}

func (s *KeySigner) Sign(msg []byte) ([]byte, error) {
	return SignMessage(s.Key, msg), nil
}

// AddressVerifier accepts signatures recovering to Addr. A malformed
// signature is reported as an error, a well formed one by another key as
// (false, nil).
type AddressVerifier struct {
	Addr Address
}

func (v AddressVerifier) Verify(signature, msg []byte) (bool, error) {
	signer, err := RecoverMessage(msg, signature)
	if err != nil {
		return false, err
	}
	return signer == v.Addr, nil
}

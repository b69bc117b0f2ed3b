package ledger

import (
	"encoding/binary"

	"github.com/zhigui-projects/go-quizledger/common/crypto"
)

var (
	seqKey        = []byte("ledger/seq")
	journalPrefix = []byte("events/")
)

// Key builds a state key under a namespace. Callers keep the parts fixed
// width so distinct tuples never share a key.
func Key(namespace string, parts ...[]byte) []byte {
	k := make([]byte, 0, len(namespace)+1+32*len(parts))
	k = append(k, namespace...)
	k = append(k, '/')
	for _, p := range parts {
		k = append(k, p...)
	}
	return k
}

func Uint64Bytes(v uint64) []byte {
	return encodeUint64(v)
}

func encodeUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func journalKey(seq uint64) []byte {
	return append(append([]byte(nil), journalPrefix...), encodeUint64(seq)...)
}

// ServiceAddress is the account holding native value on behalf of a
// service.
func ServiceAddress(name string) crypto.Address {
	h := crypto.Keccak256([]byte("service:" + name))
	return crypto.BytesToAddress(h[12:])
}

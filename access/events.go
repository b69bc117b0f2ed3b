package access

import "github.com/zhigui-projects/go-quizledger/common/crypto"

type Initialized struct {
	Version uint64 `json:"version"`
}

func (Initialized) EventName() string { return "Initialized" }

type OwnershipTransferred struct {
	PreviousOwner crypto.Address `json:"previousOwner"`
	NewOwner      crypto.Address `json:"newOwner"`
}

func (OwnershipTransferred) EventName() string { return "OwnershipTransferred" }

type RoleGranted struct {
	Role    crypto.Hash    `json:"role"`
	Account crypto.Address `json:"account"`
	Sender  crypto.Address `json:"sender"`
}

func (RoleGranted) EventName() string { return "RoleGranted" }

type RoleRevoked struct {
	Role    crypto.Hash    `json:"role"`
	Account crypto.Address `json:"account"`
	Sender  crypto.Address `json:"sender"`
}

func (RoleRevoked) EventName() string { return "RoleRevoked" }

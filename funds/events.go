package funds

import (
	"math/big"

	"github.com/zhigui-projects/go-quizledger/common/crypto"
)

type DepositEvent struct {
	Account crypto.Address `json:"account"`
	Amount  *big.Int       `json:"amount"`
}

func (DepositEvent) EventName() string { return "Deposit" }

type FundedPlayerEvent struct {
	Funder    crypto.Address `json:"funder"`
	Recipient crypto.Address `json:"recipient"`
	Amount    *big.Int       `json:"amount"`
}

func (FundedPlayerEvent) EventName() string { return "FundedPlayer" }

type WithdrawEvent struct {
	Participant crypto.Address `json:"participant"`
	Amount      *big.Int       `json:"amount"`
	NewBalance  *big.Int       `json:"newBalance"`
}

func (WithdrawEvent) EventName() string { return "Withdraw" }

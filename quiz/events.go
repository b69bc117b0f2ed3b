package quiz

import (
	"time"

	"github.com/zhigui-projects/go-quizledger/common/crypto"
)

type PoolEndTimeSetEvent struct {
	PoolID  uint64    `json:"poolId"`
	EndTime time.Time `json:"endTime"`
}

func (PoolEndTimeSetEvent) EventName() string { return "PoolEndTimeSet" }

type AnswerSubmittedEvent struct {
	PoolID      uint64         `json:"poolId"`
	Participant crypto.Address `json:"participant"`
	Hash        crypto.Hash    `json:"hash"`
}

func (AnswerSubmittedEvent) EventName() string { return "AnswerSubmitted" }

type AnswersBatchSubmittedEvent struct {
	PoolID uint64 `json:"poolId"`
	Count  int    `json:"count"`
}

func (AnswersBatchSubmittedEvent) EventName() string { return "AnswersBatchSubmitted" }

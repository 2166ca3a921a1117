package market

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestMarketGetBondsByAnswer(t *testing.T) {
	userA := common.BytesToAddress([]byte{0xA1})
	gw := &fakeGateway{fakeReader: fakeReader{
		head: 200,
		events: []AnswerEvent{
			answerEvent(100, 0, 0xA1, 1, 10, 0x01),
			answerEvent(101, 0, 0xB2, 2, 5, 0x02),
			answerEvent(102, 0, 0xA1, 1, 3, 0x03),
		},
	}}
	m := New(gw, 0, nil)

	global, err := m.GetBondsByAnswer(context.Background(), common.BytesToHash([]byte{0x51}), nil)
	if err != nil {
		t.Fatalf("global bonds: %v", err)
	}
	if got := global.AnswerTotal(common.BytesToHash([]byte{1})); got.Cmp(big.NewInt(13)) != 0 {
		t.Fatalf("answer 1 global total = %s, want 13", got)
	}

	mine, err := m.GetBondsByAnswer(context.Background(), common.BytesToHash([]byte{0x51}), &userA)
	if err != nil {
		t.Fatalf("user bonds: %v", err)
	}
	if got := mine.AnswerTotal(common.BytesToHash([]byte{1})); got.Cmp(big.NewInt(13)) != 0 {
		t.Fatalf("user A answer 1 total = %s, want 13", got)
	}
	if got := mine.AnswerTotal(common.BytesToHash([]byte{2})); got.Sign() != 0 {
		t.Fatalf("user A holds no bonds on answer 2, got %s", got)
	}
	if got := mine.Total(); got.Cmp(big.NewInt(13)) != 0 {
		t.Fatalf("user A grand total = %s, want 13", got)
	}
}

func TestMarketGetQuestion(t *testing.T) {
	gw := &fakeGateway{fakeReader: fakeReader{
		state: stateFor(common.BytesToHash([]byte{1}), common.BytesToHash([]byte{0x03}), 1700000000, true),
	}}
	m := New(gw, 0, nil)
	question, err := m.GetQuestion(context.Background(), common.BytesToHash([]byte{0x51}))
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	if !question.Finalized || question.Claimed() {
		t.Fatalf("unexpected state %+v", question)
	}
}

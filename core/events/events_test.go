package events

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestStakedAttributes(t *testing.T) {
	evt := Staked{
		Account:      common.HexToAddress("0xA1"),
		StakingToken: common.HexToAddress("0x01"),
		Amount:       big.NewInt(500),
		NewPrincipal: big.NewInt(1500),
	}
	if evt.EventType() != TypeStaked {
		t.Fatalf("unexpected type %q", evt.EventType())
	}
	attrs := evt.Attributes()
	if attrs["amount"] != "500" || attrs["newPrincipal"] != "1500" {
		t.Fatalf("unexpected attributes: %v", attrs)
	}
}

func TestUnstakedAttributesHandleNilAmounts(t *testing.T) {
	evt := Unstaked{
		Account:      common.HexToAddress("0xA1"),
		StakingToken: common.HexToAddress("0x01"),
	}
	attrs := evt.Attributes()
	if attrs["principal"] != "0" || attrs["fee"] != "0" || attrs["net"] != "0" {
		t.Fatalf("nil amounts should render as zero: %v", attrs)
	}
}

type captureEmitter struct {
	events []Event
}

func (c *captureEmitter) Emit(evt Event) { c.events = append(c.events, evt) }

func TestNoopEmitterDiscards(t *testing.T) {
	NoopEmitter{}.Emit(PoolStarted{})

	capture := &captureEmitter{}
	capture.Emit(PoolStarted{StartTime: 1, ValidUntil: 2})
	if len(capture.events) != 1 {
		t.Fatalf("expected one captured event, got %d", len(capture.events))
	}
}

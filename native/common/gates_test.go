package common

import (
	"errors"
	"testing"
)

func TestGuardPassesWhenUnpaused(t *testing.T) {
	gates := NewGateSet()
	if err := Guard(gates, GateClaims); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Guard(nil, GateClaims); err != nil {
		t.Fatalf("nil view must pass: %v", err)
	}
}

func TestGuardRejectsPausedGate(t *testing.T) {
	gates := NewGateSet()
	gates.SetPaused(GateUnstaking, true)
	if err := Guard(gates, GateUnstaking); !errors.Is(err, ErrGatePaused) {
		t.Fatalf("expected ErrGatePaused, got %v", err)
	}
	if err := Guard(gates, GateClaims); err != nil {
		t.Fatalf("other gates unaffected: %v", err)
	}
	gates.SetPaused(GateUnstaking, false)
	if err := Guard(gates, GateUnstaking); err != nil {
		t.Fatalf("unpause should clear the gate: %v", err)
	}
}

package common

import (
	"errors"
	"sync"
)

// Gate identifiers used by the staking engine. GateStaking is declared for
// interface compatibility with the original deployment but is not consulted
// by any guard.
const (
	GateStaking   = "staking"
	GateClaims    = "claims"
	GateUnstaking = "unstaking"
)

var ErrGatePaused = errors.New("gate paused")

// PauseView exposes the read side of the global lifecycle gates.
type PauseView interface {
	IsPaused(gate string) bool
}

// Guard rejects the call when the named gate is paused.
func Guard(p PauseView, gate string) error {
	if p == nil || gate == "" {
		return nil
	}
	if p.IsPaused(gate) {
		return ErrGatePaused
	}
	return nil
}

// GateSet holds the global pause switches shared by every pool.
type GateSet struct {
	mu     sync.RWMutex
	paused map[string]bool
}

func NewGateSet() *GateSet {
	return &GateSet{paused: make(map[string]bool)}
}

// SetPaused toggles the named gate.
func (g *GateSet) SetPaused(gate string, paused bool) {
	if g == nil || gate == "" {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paused[gate] = paused
}

// IsPaused implements PauseView.
func (g *GateSet) IsPaused(gate string) bool {
	if g == nil {
		return false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.paused[gate]
}

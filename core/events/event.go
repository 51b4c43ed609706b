package events

import (
	"log/slog"
	"math/big"
)

// Event represents a structured state change emitted by the staking engine.
type Event interface {
	EventType() string
	Attributes() map[string]string
}

// Emitter broadcasts events to downstream subscribers (e.g. RPC, indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter satisfies the Emitter interface while discarding all events. It
// is the default when a component does not wire an emitter.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// SlogEmitter logs every event through a structured logger.
type SlogEmitter struct {
	Logger *slog.Logger
}

// Emit implements the Emitter interface.
func (e SlogEmitter) Emit(evt Event) {
	if evt == nil {
		return
	}
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := evt.Attributes()
	args := make([]any, 0, len(attrs)*2)
	for key, value := range attrs {
		args = append(args, slog.String(key, value))
	}
	logger.Info(evt.EventType(), args...)
}

func formatAmount(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}

package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventLevel   EventType = "level"
	EventHalt    EventType = "halt"
	EventOutcome EventType = "outcome"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// LevelEvent is emitted once per expanded level.
type LevelEvent struct {
	EventBase
	Stats LevelStats `json:"stats"`
}

// HaltEvent is emitted when a branch dies without accepting.
type HaltEvent struct {
	EventBase
	Depth         int           `json:"depth"`
	Configuration Configuration `json:"configuration"`
	Reason        HaltReason    `json:"reason"`
}

// OutcomeEvent is emitted once per trace.
type OutcomeEvent struct {
	EventBase
	Verdict  Verdict `json:"verdict"`
	Depth    int     `json:"depth"`
	Expanded int     `json:"expanded"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks observe the search; they cannot change its order or outcome.
type LifecycleHooks struct {
	OnLevel   func(context.Context, *LevelEvent)
	OnHalt    func(context.Context, *HaltEvent)
	OnOutcome func(context.Context, *OutcomeEvent)
}

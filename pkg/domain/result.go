package domain

import "time"

// Verdict is the outcome of a bounded trace.
type Verdict string

const (
	VerdictAccepted  Verdict = "accepted"
	VerdictRejected  Verdict = "rejected"
	VerdictUndecided Verdict = "undecided" // depth cap reached, not a negative answer
)

// HaltReason explains why a single branch stopped.
type HaltReason string

const (
	HaltExplicit HaltReason = "explicit_reject" // entered the reject state
	HaltImplicit HaltReason = "implicit_reject" // no rule for (state, head)
)

// LevelStats summarizes one level of the configuration tree.
type LevelStats struct {
	Depth           int `json:"depth"`
	Width           int `json:"width"`
	Scanned         int `json:"scanned"`
	ExplicitRejects int `json:"explicit_rejects"`
	ImplicitRejects int `json:"implicit_rejects"`
	Successors      int `json:"successors"`
}

// Result is what the engine returns for one trace.
// Path is only set for VerdictAccepted and runs from the initial
// configuration to the accepting one, inclusive.
type Result struct {
	Verdict  Verdict         `json:"verdict"`
	Depth    int             `json:"depth"`
	MaxDepth int             `json:"max_depth"`
	Path     []Configuration `json:"path,omitempty"`
	Levels   []LevelStats    `json:"levels"`
	Expanded int             `json:"expanded"`
}

// CapReached reports whether the trace stopped because of the depth budget.
func (r *Result) CapReached() bool {
	return r.Verdict == VerdictUndecided
}

// Report is a completed run as persisted by the run manager and served by adapters.
type Report struct {
	ID          string        `json:"id"`
	Machine     string        `json:"machine"`
	Input       string        `json:"input"`
	MaxDepth    int           `json:"max_depth"`
	Result      Result        `json:"result"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	Blank       Symbol        `json:"blank"`
	AcceptState string        `json:"accept_state"`
}

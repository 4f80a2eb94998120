package domain

import (
	"fmt"
	"slices"
)

// ConfigID is the identity of a configuration inside one trace.
// Two configurations with equal tapes and state reached through different
// branches carry different IDs.
type ConfigID int

// NoParent marks the initial configuration in an ancestry record.
const NoParent ConfigID = -1

// Configuration is one instantaneous description of the machine.
// Right starts at the head: Right[0] is the symbol under the head and an
// empty Right means the head sits on an implicit blank.
// Configurations are values; Successor never mutates its receiver.
type Configuration struct {
	ID    ConfigID `json:"id"`
	Left  Tape     `json:"left"`
	State string   `json:"state"`
	Right Tape     `json:"right"`
}

// InitialConfiguration places the head on the first input symbol.
func InitialConfiguration(start string, input Tape) Configuration {
	return Configuration{
		Left:  nil,
		State: start,
		Right: input.clone(0),
	}
}

// Head returns the symbol under the head.
func (c Configuration) Head(blank Symbol) Symbol {
	if len(c.Right) == 0 {
		return blank
	}
	return c.Right[0]
}

// Successor writes the symbol at the head, moves, and enters next.
// The returned configuration has no identity yet (ID is zero); the engine
// assigns one when it records the branch.
func (c Configuration) Successor(next string, write Symbol, move Move, blank Symbol) Configuration {
	var rest Tape
	if len(c.Right) > 1 {
		rest = c.Right[1:]
	}

	out := Configuration{State: next}

	switch move {
	case MoveRight:
		out.Left = append(c.Left.clone(1), write)
		if len(rest) > 0 {
			out.Right = rest.clone(0)
		}
	case MoveLeft:
		rewritten := make(Tape, 0, len(rest)+2)
		if len(c.Left) > 0 {
			last := len(c.Left) - 1
			out.Left = c.Left[:last].clone(0)
			rewritten = append(rewritten, c.Left[last])
		} else {
			rewritten = append(rewritten, blank)
		}
		rewritten = append(rewritten, write)
		out.Right = append(rewritten, rest...)
	default:
		if len(c.Left) > 0 {
			out.Left = c.Left.clone(0)
		}
		out.Right = append(Tape{write}, rest...)
	}

	return out
}

// SameAs compares tape contents and state, ignoring identity.
func (c Configuration) SameAs(o Configuration) bool {
	return c.State == o.State &&
		slices.Equal(c.Left, o.Left) &&
		slices.Equal(c.Right, o.Right)
}

func (c Configuration) String() string {
	return fmt.Sprintf("%s [%s] %s", c.Left, c.State, c.Right)
}

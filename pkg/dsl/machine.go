package dsl

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/ntmtrace/pkg/domain"
)

// MachineBuilder provides a fluent API for configuring a machine.
type MachineBuilder struct {
	machine domain.Machine
	errs    []error
}

// Describe sets the human-readable description.
func (m *MachineBuilder) Describe(text string) *MachineBuilder {
	m.machine.Description = text
	return m
}

// States declares states explicitly. Without it, the states are collected
// from start, accept, reject and the rules, in order of first mention.
func (m *MachineBuilder) States(states ...string) *MachineBuilder {
	m.machine.States = append(m.machine.States, states...)
	return m
}

// Input sets the input alphabet.
func (m *MachineBuilder) Input(symbols ...domain.Symbol) *MachineBuilder {
	m.machine.InputAlphabet = append(m.machine.InputAlphabet, symbols...)
	return m
}

// Tape declares the tape alphabet explicitly. Without it, the tape
// alphabet is the input alphabet plus every symbol the rules read or write.
func (m *MachineBuilder) Tape(symbols ...domain.Symbol) *MachineBuilder {
	m.machine.TapeAlphabet = append(m.machine.TapeAlphabet, symbols...)
	return m
}

// Blank overrides the blank symbol.
func (m *MachineBuilder) Blank(symbol domain.Symbol) *MachineBuilder {
	m.machine.Blank = symbol
	return m
}

// Start sets the start state.
func (m *MachineBuilder) Start(state string) *MachineBuilder {
	m.machine.Start = state
	return m
}

// Accept sets the accept state.
func (m *MachineBuilder) Accept(state string) *MachineBuilder {
	m.machine.Accept = state
	return m
}

// Reject sets the reject state.
func (m *MachineBuilder) Reject(state string) *MachineBuilder {
	m.machine.Reject = state
	return m
}

// Rule appends a transition. Rules keep their declaration order.
func (m *MachineBuilder) Rule(from string, read domain.Symbol, to string, write domain.Symbol, move domain.Move) *MachineBuilder {
	m.machine.Transitions = append(m.machine.Transitions, domain.Transition{
		From:  from,
		Read:  read,
		To:    to,
		Write: write,
		Move:  move,
	})
	return m
}

// Rules appends transitions in the compact "state,read,next,write,move"
// form. Malformed rules are reported by Build.
func (m *MachineBuilder) Rules(rules ...string) *MachineBuilder {
	for _, r := range rules {
		fields := strings.Split(r, ",")
		if len(fields) != 5 {
			m.errs = append(m.errs, fmt.Errorf("rule %q: want 5 fields, got %d", r, len(fields)))
			continue
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		move, err := domain.ParseMove(fields[4])
		if err != nil {
			m.errs = append(m.errs, fmt.Errorf("rule %q: %w", r, err))
			continue
		}
		m.Rule(fields[0], domain.Symbol(fields[1]), fields[2], domain.Symbol(fields[3]), move)
	}
	return m
}

// Build returns the machine with implicit states and tape alphabet filled in.
// It does not check consistency; the tracer validates machines on load.
func (m *MachineBuilder) Build() (domain.Machine, error) {
	if len(m.errs) > 0 {
		return domain.Machine{}, fmt.Errorf("machine %s: %w", m.machine.Name, errors.Join(m.errs...))
	}

	out := m.machine
	out.States = slices.Clone(m.machine.States)
	out.InputAlphabet = slices.Clone(m.machine.InputAlphabet)
	out.TapeAlphabet = slices.Clone(m.machine.TapeAlphabet)
	out.Transitions = slices.Clone(m.machine.Transitions)

	if len(out.States) == 0 {
		for _, s := range []string{out.Start, out.Accept, out.Reject} {
			out.States = appendUnique(out.States, s)
		}
		for _, t := range out.Transitions {
			out.States = appendUnique(out.States, t.From)
			out.States = appendUnique(out.States, t.To)
		}
	}

	if len(out.TapeAlphabet) == 0 {
		for _, s := range out.InputAlphabet {
			out.TapeAlphabet = appendUnique(out.TapeAlphabet, s)
		}
		for _, t := range out.Transitions {
			out.TapeAlphabet = appendUnique(out.TapeAlphabet, t.Read)
			out.TapeAlphabet = appendUnique(out.TapeAlphabet, t.Write)
		}
		out.TapeAlphabet = appendUnique(out.TapeAlphabet, out.Blank)
	}

	return out, nil
}

func appendUnique[T comparable](list []T, v T) []T {
	var zero T
	if v == zero || slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}

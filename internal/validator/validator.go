package validator

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/aretw0/ntmtrace/pkg/domain"
	"github.com/go-playground/validator/v10"
)

var structValidate = validator.New(validator.WithRequiredStructEnabled())

// ValidateMachine checks field constraints (struct tags) and cross references
// between states, alphabets and rules. Every problem is collected into a
// single *domain.ValidationError.
func ValidateMachine(m *domain.Machine) error {
	var problems []string

	if err := structValidate.Struct(m); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				problems = append(problems, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
			}
		} else {
			problems = append(problems, err.Error())
		}
	}

	for _, s := range []struct{ role, name string }{
		{"start", m.Start}, {"accept", m.Accept}, {"reject", m.Reject},
	} {
		if s.name != "" && len(m.States) > 0 && !m.HasState(s.name) {
			problems = append(problems, fmt.Sprintf("%s state '%s' is not declared", s.role, s.name))
		}
	}
	if m.Accept != "" && m.Accept == m.Reject {
		problems = append(problems, fmt.Sprintf("accept and reject are the same state '%s'", m.Accept))
	}
	if slices.Contains(m.InputAlphabet, m.Blank) {
		problems = append(problems, fmt.Sprintf("blank '%s' must not be an input symbol", m.Blank))
	}
	for _, s := range m.InputAlphabet {
		if !m.HasTapeSymbol(s) {
			problems = append(problems, fmt.Sprintf("input symbol '%s' is missing from the tape alphabet", s))
		}
	}

	for i, t := range m.Transitions {
		if !m.HasState(t.From) {
			problems = append(problems, fmt.Sprintf("rule %d (%s): unknown state '%s'", i, t, t.From))
		}
		if !m.HasState(t.To) {
			problems = append(problems, fmt.Sprintf("rule %d (%s): unknown state '%s'", i, t, t.To))
		}
		if !m.HasTapeSymbol(t.Read) {
			problems = append(problems, fmt.Sprintf("rule %d (%s): symbol '%s' is not in the tape alphabet", i, t, t.Read))
		}
		if !m.HasTapeSymbol(t.Write) {
			problems = append(problems, fmt.Sprintf("rule %d (%s): symbol '%s' is not in the tape alphabet", i, t, t.Write))
		}
	}

	if len(problems) > 0 {
		return &domain.ValidationError{Machine: m.Name, Problems: problems}
	}
	return nil
}

// ValidateInput reports input symbols outside the machine's input alphabet.
func ValidateInput(m *domain.Machine, input string) error {
	for i, s := range domain.TapeFromString(input) {
		if !m.HasInputSymbol(s) {
			return fmt.Errorf("%w: symbol '%s' at position %d is not in the input alphabet of '%s'", domain.ErrInvalidInput, s, i, m.Name)
		}
	}
	return nil
}

// Unreachable crawls the rule graph from the start state and returns the
// declared states that no rule sequence can enter, sorted.
func Unreachable(m *domain.Machine) []string {
	edges := make(map[string][]string)
	for _, t := range m.Transitions {
		edges[t.From] = append(edges[t.From], t.To)
	}

	visited := map[string]bool{m.Start: true}
	queue := []string{m.Start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range edges[current] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	var out []string
	for _, s := range m.States {
		if !visited[s] {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

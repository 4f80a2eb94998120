package domain

import "strings"

// Symbol is the content of a single tape cell.
type Symbol string

// DefaultBlank is used when a machine definition does not declare its blank.
const DefaultBlank Symbol = "_"

// Tape is an ordered run of cells.
type Tape []Symbol

// TapeFromString splits an input word into one symbol per rune.
func TapeFromString(s string) Tape {
	if s == "" {
		return nil
	}
	tape := make(Tape, 0, len(s))
	for _, r := range s {
		tape = append(tape, Symbol(string(r)))
	}
	return tape
}

// String concatenates the cells. Multi-character symbols are written as is.
func (t Tape) String() string {
	var sb strings.Builder
	for _, s := range t {
		sb.WriteString(string(s))
	}
	return sb.String()
}

func (t Tape) clone(extra int) Tape {
	out := make(Tape, len(t), len(t)+extra)
	copy(out, t)
	return out
}

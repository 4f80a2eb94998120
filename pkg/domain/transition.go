package domain

import (
	"fmt"
	"strings"
)

// Move is the head movement applied after writing a symbol.
type Move string

const (
	MoveLeft  Move = "L"
	MoveRight Move = "R"
	MoveStay  Move = "S"
)

// ParseMove normalizes a textual move. "N" and "-" are accepted as Stay.
func ParseMove(s string) (Move, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L", "LEFT":
		return MoveLeft, nil
	case "R", "RIGHT":
		return MoveRight, nil
	case "S", "STAY", "N", "-":
		return MoveStay, nil
	}
	return "", fmt.Errorf("unknown move %q", s)
}

// Transition defines one rule of the machine:
// (From, Read) -> (To, Write, Move).
type Transition struct {
	From  string `json:"from" yaml:"from" mapstructure:"from" validate:"required"`
	Read  Symbol `json:"read" yaml:"read" mapstructure:"read" validate:"required"`
	To    string `json:"to" yaml:"to" mapstructure:"to" validate:"required"`
	Write Symbol `json:"write" yaml:"write" mapstructure:"write" validate:"required"`
	Move  Move   `json:"move" yaml:"move" mapstructure:"move" validate:"required,oneof=L R S"`
}

func (t Transition) String() string {
	return fmt.Sprintf("%s,%s -> %s,%s,%s", t.From, t.Read, t.To, t.Write, t.Move)
}

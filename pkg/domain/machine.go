package domain

// Machine is the immutable definition of a nondeterministic Turing machine.
// Transitions keep their declaration order; the resolver reports rules in
// that order and the engine explores them in that order.
type Machine struct {
	Name          string       `json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	Description   string       `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	States        []string     `json:"states" yaml:"states" mapstructure:"states" validate:"required,min=1,dive,required"`
	InputAlphabet []Symbol     `json:"input_alphabet" yaml:"input_alphabet" mapstructure:"input_alphabet" validate:"dive,required"`
	TapeAlphabet  []Symbol     `json:"tape_alphabet" yaml:"tape_alphabet" mapstructure:"tape_alphabet" validate:"dive,required"`
	Blank         Symbol       `json:"blank" yaml:"blank" mapstructure:"blank" validate:"required"`
	Start         string       `json:"start" yaml:"start" mapstructure:"start" validate:"required"`
	Accept        string       `json:"accept" yaml:"accept" mapstructure:"accept" validate:"required"`
	Reject        string       `json:"reject" yaml:"reject" mapstructure:"reject"`
	Transitions   []Transition `json:"transitions" yaml:"transitions" mapstructure:"transitions" validate:"dive"`
}

// Initial builds the starting configuration for an input word.
func (m *Machine) Initial(input string) Configuration {
	return InitialConfiguration(m.Start, TapeFromString(input))
}

// HasState reports whether s is declared.
func (m *Machine) HasState(s string) bool {
	for _, st := range m.States {
		if st == s {
			return true
		}
	}
	return false
}

// HasTapeSymbol reports whether s belongs to the tape alphabet.
// An empty tape alphabet accepts every symbol.
func (m *Machine) HasTapeSymbol(s Symbol) bool {
	if len(m.TapeAlphabet) == 0 || s == m.Blank {
		return true
	}
	for _, t := range m.TapeAlphabet {
		if t == s {
			return true
		}
	}
	return false
}

// HasInputSymbol reports whether s belongs to the input alphabet.
// An empty input alphabet accepts every symbol.
func (m *Machine) HasInputSymbol(s Symbol) bool {
	if len(m.InputAlphabet) == 0 {
		return true
	}
	for _, t := range m.InputAlphabet {
		if t == s {
			return true
		}
	}
	return false
}

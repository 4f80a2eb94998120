package loam

// MachineMetadata represents the frontmatter of a machine document.
// Alphabets and rules stay loosely typed ([]any) because YAML decodes bare
// digits as numbers and rules may be either maps or compact strings; the
// compiler normalizes both.
type MachineMetadata struct {
	Name          string   `json:"name" mapstructure:"name"`
	Description   string   `json:"description" mapstructure:"description"`
	States        []string `json:"states" mapstructure:"states"`
	InputAlphabet []any    `json:"input_alphabet" mapstructure:"input_alphabet"`
	TapeAlphabet  []any    `json:"tape_alphabet" mapstructure:"tape_alphabet"`
	Blank         any      `json:"blank" mapstructure:"blank"`
	Start         string   `json:"start" mapstructure:"start"`
	Accept        string   `json:"accept" mapstructure:"accept"`
	Reject        string   `json:"reject" mapstructure:"reject"`
	Transitions   []any    `json:"transitions" mapstructure:"transitions"`
	Rules         []any    `json:"rules" mapstructure:"rules"`
}

package loam

// MachineMetadata is the frontmatter (or YAML/JSON body) of a machine document.
// Symbol-bearing fields stay loosely typed: YAML reads `read: 0` as a number,
// and the compiler normalizes everything to strings.
type MachineMetadata struct {
	ID          string `json:"id" mapstructure:"id"`
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description" mapstructure:"description"`
	SampleTape  any    `json:"sample_tape" mapstructure:"sample_tape"`

	States        []any `json:"states" mapstructure:"states"`
	Symbols       []any `json:"symbols" mapstructure:"symbols"`
	InputAlphabet []any `json:"input_alphabet" mapstructure:"input_alphabet"`
	TapeAlphabet  []any `json:"tape_alphabet" mapstructure:"tape_alphabet"`
	Blank         any   `json:"blank" mapstructure:"blank"`

	Initial any `json:"initial" mapstructure:"initial"`
	Start   any `json:"start" mapstructure:"start"`
	Final   any `json:"final" mapstructure:"final"`
	Accept  any `json:"accept" mapstructure:"accept"`

	Transitions []any    `json:"transitions" mapstructure:"transitions"`
	Rules       []string `json:"rules" mapstructure:"rules"`
}

// IsMachine reports whether the document declares an initial state; other
// documents in the directory (READMEs, notes) are ignored.
func (m MachineMetadata) IsMachine() bool {
	return m.Initial != nil || m.Start != nil
}

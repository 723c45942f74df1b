package dto

// MachineDocument is the on-disk shape of a machine description (YAML, JSON or
// Markdown frontmatter). It uses "mapstructure" tags so loosely typed input
// (e.g. `read: 0` in YAML) decodes into strings.
type MachineDocument struct {
	ID          string `json:"id" mapstructure:"id"`
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description" mapstructure:"description"`
	SampleTape  string `json:"sample_tape" mapstructure:"sample_tape"`

	States        []string `json:"states" mapstructure:"states"`
	Symbols       []string `json:"symbols" mapstructure:"symbols"`
	InputAlphabet []string `json:"input_alphabet" mapstructure:"input_alphabet"`
	TapeAlphabet  []string `json:"tape_alphabet" mapstructure:"tape_alphabet"`
	Blank         string   `json:"blank" mapstructure:"blank"`

	Initial string `json:"initial" mapstructure:"initial"`
	// Start is an alias of Initial.
	Start string `json:"start" mapstructure:"start"`
	// Final accepts a single state or a list.
	Final []string `json:"final" mapstructure:"final"`
	// Accept is an alias of Final.
	Accept []string `json:"accept" mapstructure:"accept"`

	Transitions []TransitionDocument `json:"transitions" mapstructure:"transitions"`
	// Rules lists transitions in the compact "state, symbol: next, write, dir" form.
	Rules []string `json:"rules" mapstructure:"rules"`
}

// TransitionDocument is one rule in expanded form. Aliases (state/symbol/to/dir)
// are accepted to match the way people write transition tables.
type TransitionDocument struct {
	From   string `json:"from" mapstructure:"from"`
	State  string `json:"state" mapstructure:"state"`
	Read   string `json:"read" mapstructure:"read"`
	Symbol string `json:"symbol" mapstructure:"symbol"`
	Next   string `json:"next" mapstructure:"next"`
	To     string `json:"to" mapstructure:"to"`
	Write  string `json:"write" mapstructure:"write"`
	Move   string `json:"move" mapstructure:"move"`
	Dir    string `json:"dir" mapstructure:"dir"`
}

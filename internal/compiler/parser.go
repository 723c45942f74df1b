package compiler

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/aretw0/turing/internal/dto"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultBlank is used when a document declares no blank symbol.
const DefaultBlank domain.Symbol = "_"

// Parser is responsible for converting raw bytes into a Machine.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes a YAML (or JSON) machine document and compiles it.
func (p *Parser) Parse(data []byte) (*domain.Machine, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse machine: %w", err)
	}
	if raw == nil {
		return nil, &domain.ConfigurationError{Reason: "empty machine document"}
	}
	doc, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return Compile(doc)
}

// ParseFile reads and parses a machine file. The file name (without
// extension) names the machine when the document does not.
func (p *Parser) ParseFile(path string) (*domain.Machine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read machine file: %w", err)
	}
	m, err := p.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if m.Name == "" {
		m.Name = trimExtension(path)
	}
	return m, nil
}

// Decode maps a loosely typed document (YAML/JSON/frontmatter) onto the DTO.
func Decode(raw map[string]any) (*dto.MachineDocument, error) {
	var doc dto.MachineDocument
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &doc,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, &domain.ConfigurationError{Reason: fmt.Sprintf("malformed machine document: %v", err)}
	}
	return &doc, nil
}

// Compile turns a document into a validated machine.
// Omitted sections are derived: states in order of first mention, the tape
// alphabet from the input alphabet, the symbols used by rules and the blank.
func Compile(doc *dto.MachineDocument) (*domain.Machine, error) {
	m := &domain.Machine{
		Name:          firstNonEmpty(doc.Name, doc.ID),
		Description:   strings.TrimSpace(doc.Description),
		SampleTape:    doc.SampleTape,
		Symbols:       toSymbols(doc.Symbols),
		InputAlphabet: toSymbols(doc.InputAlphabet),
		TapeAlphabet:  toSymbols(doc.TapeAlphabet),
		Blank:         domain.Symbol(doc.Blank),
		Initial:       domain.State(firstNonEmpty(doc.Initial, doc.Start)),
	}
	if m.Blank == "" {
		m.Blank = DefaultBlank
	}
	for _, f := range append(slices.Clone(doc.Final), doc.Accept...) {
		if s := domain.State(f); !slices.Contains(m.Final, s) {
			m.Final = append(m.Final, s)
		}
	}

	for i, td := range doc.Transitions {
		t, err := compileTransition(i, td)
		if err != nil {
			return nil, err
		}
		m.Transitions = append(m.Transitions, t)
	}
	for i, line := range doc.Rules {
		t, err := ParseRule(line)
		if err != nil {
			return nil, &domain.ConfigurationError{Field: fmt.Sprintf("rules[%d]", i), Reason: err.Error()}
		}
		m.Transitions = append(m.Transitions, t)
	}

	m.States = toStates(doc.States)
	if len(m.States) == 0 {
		m.States = deriveStates(m)
	}
	if len(m.TapeAlphabet) == 0 {
		m.TapeAlphabet = deriveTapeAlphabet(m)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func compileTransition(i int, td dto.TransitionDocument) (domain.Transition, error) {
	field := fmt.Sprintf("transitions[%d]", i)
	move, err := domain.ParseDirection(firstNonEmpty(td.Move, td.Dir))
	if err != nil {
		return domain.Transition{}, &domain.ConfigurationError{Field: field + ".move", Reason: err.Error()}
	}
	t := domain.Transition{
		From:  domain.State(firstNonEmpty(td.From, td.State)),
		Read:  domain.Symbol(firstNonEmpty(td.Read, td.Symbol)),
		Next:  domain.State(firstNonEmpty(td.Next, td.To)),
		Write: domain.Symbol(td.Write),
		Move:  move,
	}
	if t.From == "" || t.Read == "" || t.Next == "" {
		return domain.Transition{}, &domain.ConfigurationError{Field: field, Reason: "from, read and next are required"}
	}
	if t.Write == "" {
		t.Write = t.Read
	}
	return t, nil
}

// ParseRule parses a transition written as "state, symbol: next, write, dir".
func ParseRule(line string) (domain.Transition, error) {
	lhs, rhs, ok := strings.Cut(line, ":")
	if !ok {
		return domain.Transition{}, fmt.Errorf("rule %q: expected \"state, symbol: next, write, dir\"", line)
	}
	left := splitFields(lhs)
	right := splitFields(rhs)
	if len(left) != 2 || len(right) != 3 {
		return domain.Transition{}, fmt.Errorf("rule %q: expected \"state, symbol: next, write, dir\"", line)
	}
	move, err := domain.ParseDirection(right[2])
	if err != nil {
		return domain.Transition{}, fmt.Errorf("rule %q: %w", line, err)
	}
	return domain.Transition{
		From:  domain.State(left[0]),
		Read:  domain.Symbol(left[1]),
		Next:  domain.State(right[0]),
		Write: domain.Symbol(right[1]),
		Move:  move,
	}, nil
}

// Marshal renders a machine as a YAML document that Parse reads back.
func Marshal(m *domain.Machine) ([]byte, error) {
	return yaml.Marshal(m)
}

func splitFields(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func deriveStates(m *domain.Machine) []domain.State {
	var states []domain.State
	see := func(s domain.State) {
		if s != "" && !slices.Contains(states, s) {
			states = append(states, s)
		}
	}
	see(m.Initial)
	for _, t := range m.Transitions {
		see(t.From)
		see(t.Next)
	}
	for _, f := range m.Final {
		see(f)
	}
	return states
}

func deriveTapeAlphabet(m *domain.Machine) []domain.Symbol {
	tape := slices.Clone(m.InputAlphabet)
	see := func(s domain.Symbol) {
		if s != m.Blank && !slices.Contains(tape, s) {
			tape = append(tape, s)
		}
	}
	for _, t := range m.Transitions {
		see(t.Read)
		see(t.Write)
	}
	if !slices.Contains(tape, m.Blank) {
		tape = append(tape, m.Blank)
	}
	return tape
}

func toSymbols(in []string) []domain.Symbol {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Symbol, len(in))
	for i, s := range in {
		out[i] = domain.Symbol(s)
	}
	return out
}

func toStates(in []string) []domain.State {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.State, len(in))
	for i, s := range in {
		out[i] = domain.State(s)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func trimExtension(path string) string {
	base := path
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}

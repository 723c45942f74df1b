package validator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
)

// Report collects the findings of Validate. Errors make the machine unusable
// (or unencodable); warnings flag rules that can never fire or states a run can
// never leave.
type Report struct {
	Errors   []string
	Warnings []string
}

// OK reports whether no error was found.
func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

// Err folds the errors into a single error, or nil.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("found %d errors:\n- %s", len(r.Errors), strings.Join(r.Errors, "\n- "))
}

func (r *Report) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks undeclared references and crawls the transition graph from
// the initial state to find unreachable states.
func Validate(m *domain.Machine) *Report {
	r := &Report{}
	if m == nil {
		r.errorf("machine description is missing")
		return r
	}
	if err := m.Validate(); err != nil {
		r.errorf("%v", err)
	}

	for _, sym := range m.InputAlphabet {
		if !m.InTapeAlphabet(sym) {
			r.errorf("input symbol '%s' is not in the tape alphabet", sym)
		}
	}
	if slices.Contains(m.InputAlphabet, m.Blank) {
		r.warnf("blank symbol '%s' is part of the input alphabet", m.Blank)
	}

	for i, t := range m.Transitions {
		if !m.HasState(t.From) {
			r.errorf("transitions[%d] (%s): source state '%s' is not declared", i, t, t.From)
		}
		if !m.HasState(t.Next) {
			r.errorf("transitions[%d] (%s): target state '%s' is not declared", i, t, t.Next)
		}
		if !m.InTapeAlphabet(t.Read) {
			r.errorf("transitions[%d] (%s): read symbol '%s' is not in the tape alphabet", i, t, t.Read)
		}
		if !m.InTapeAlphabet(t.Write) {
			r.errorf("transitions[%d] (%s): written symbol '%s' is not in the tape alphabet", i, t, t.Write)
		}
		if m.IsFinal(t.From) {
			r.warnf("transitions[%d] (%s): leaves final state '%s' and never fires", i, t, t.From)
		}
	}

	if !m.HasState(m.Initial) {
		return r
	}

	reachable := Reachable(m)
	if !slices.ContainsFunc(m.Final, func(f domain.State) bool { return reachable[f] }) {
		r.errorf("no final state is reachable from '%s'", m.Initial)
	}
	for _, s := range m.States {
		if !reachable[s] {
			r.warnf("state '%s' is unreachable from '%s'", s, m.Initial)
		}
	}
	for _, s := range m.States {
		if reachable[s] && !m.IsFinal(s) && !hasOutgoing(m, s) {
			r.warnf("state '%s' has no outgoing transitions; runs reaching it reject", s)
		}
	}
	return r
}

// Reachable returns the states reachable from the initial state, crawling
// transitions breadth-first.
func Reachable(m *domain.Machine) map[domain.State]bool {
	visited := map[domain.State]bool{}
	queue := []domain.State{m.Initial}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true
		if m.IsFinal(current) {
			continue // runs stop here
		}

		for _, t := range m.Transitions {
			if t.From == current && !visited[t.Next] {
				queue = append(queue, t.Next)
			}
		}
	}
	return visited
}

func hasOutgoing(m *domain.Machine, s domain.State) bool {
	return slices.ContainsFunc(m.Transitions, func(t domain.Transition) bool { return t.From == s })
}

package dsl

import "github.com/aretw0/turing/pkg/domain"

// StateBuilder provides a fluent API for the rules leaving one state.
type StateBuilder struct {
	builder *Builder
	state   domain.State
}

// On starts a rule for the given symbol under the head.
func (s *StateBuilder) On(read string) *RuleBuilder {
	s.builder.seeSymbol(domain.Symbol(read))
	return &RuleBuilder{
		parent: s,
		rule: domain.Transition{
			From:  s.state,
			Read:  domain.Symbol(read),
			Write: domain.Symbol(read),
		},
	}
}

// RuleBuilder configures a single transition.
type RuleBuilder struct {
	parent *StateBuilder
	rule   domain.Transition
}

// Write sets the symbol written before the move. Defaults to the symbol read.
func (r *RuleBuilder) Write(sym string) *RuleBuilder {
	r.rule.Write = domain.Symbol(sym)
	return r
}

// Left finishes the rule with a left move into next.
func (r *RuleBuilder) Left(next string) *StateBuilder {
	return r.finish(domain.Left, next)
}

// Right finishes the rule with a right move into next.
func (r *RuleBuilder) Right(next string) *StateBuilder {
	return r.finish(domain.Right, next)
}

func (r *RuleBuilder) finish(d domain.Direction, next string) *StateBuilder {
	b := r.parent.builder
	r.rule.Move = d
	r.rule.Next = domain.State(next)
	b.seeSymbol(r.rule.Write)
	b.seeState(r.rule.Next)
	b.rules = append(b.rules, r.rule)
	return r.parent
}

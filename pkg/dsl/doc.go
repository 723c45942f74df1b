/*
Package dsl provides a fluent builder for machine descriptions.

	b := dsl.New("unary-increment").
		Blank("_").
		Input("1").
		Start("start").
		Final("halt")

	b.State("start").On("1").Write("1").Right("init")
	b.State("init").
		On("1").Write("1").Right("init").
		On("_").Write("1").Left("halt")

	machine, err := b.Build()

States are numbered in the order they are first mentioned and the tape alphabet
(unless set explicitly with Tape) is the input alphabet followed by every other
symbol in order of appearance, with the blank last. That order is what the
encoder indexes.
*/
package dsl

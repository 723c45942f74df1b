/*
Package turing simulates single-tape deterministic Turing machines and produces
the canonical string encoding of a machine description.

The machine description (pkg/domain.Machine) is plain data: states, alphabets, a
blank symbol, initial and final states and an ordered transition table. The Engine
executes it over a lazily growing tape and records a trace of every step; the
encoder (pkg/encoder) turns the same description into its positional string form.
Both only read the description.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/turing"
		"github.com/aretw0/turing/pkg/domain"
		"github.com/aretw0/turing/pkg/library"
	)

	func main() {
		eng, err := turing.New(library.UnaryIncrement(), domain.SplitTape("11"),
			turing.WithMaxSteps(1000),
		)
		if err != nil {
			log.Fatal(err)
		}

		// Run until a final state; a missing rule surfaces as *domain.NoTransitionError.
		if err := eng.Run(context.Background()); err != nil {
			log.Fatal(err)
		}
		fmt.Println(eng.TapeString()) // 111

		code, err := eng.Encode()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(code)
	}
*/
package turing

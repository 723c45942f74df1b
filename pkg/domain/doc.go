/*
Package domain contains the core domain models of the Turing machine engine.

It defines the machine description (states, alphabets, blank symbol and the
transition table), the execution trace and the persisted run snapshot. This
package is kept pure and free of external dependencies like I/O or persistence,
following Hexagonal Architecture principles.

# Key Entities

  - Machine: the immutable description shared by the engine and the encoder.
  - Transition: one row of the partial function (state, symbol) -> (state, symbol, direction).
  - TraceEntry: the outcome of a single executed step.
  - Snapshot: a serializable copy of a run (configuration + trace) used by stores.
*/
package domain

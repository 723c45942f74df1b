package runtime

import (
	"slices"

	"github.com/aretw0/turing/pkg/domain"
)

// Tape is the lazily materialized, conceptually bi-infinite tape.
// It is never empty and the head always points at an existing cell.
type Tape struct {
	cells []domain.Symbol
	head  int
	blank domain.Symbol
}

// NewTape copies initial into a new tape with the head on the first cell.
func NewTape(initial []domain.Symbol, blank domain.Symbol) (*Tape, error) {
	if len(initial) == 0 {
		return nil, &domain.ConfigurationError{Field: "tape", Reason: "initial tape is empty (e.g. provide '11*11')"}
	}
	return &Tape{cells: slices.Clone(initial), blank: blank}, nil
}

// restoreTape rebuilds a tape from a snapshot, validating the head position.
func restoreTape(cells []domain.Symbol, head int, blank domain.Symbol) (*Tape, error) {
	t, err := NewTape(cells, blank)
	if err != nil {
		return nil, err
	}
	if head < 0 || head >= len(cells) {
		return nil, &domain.ConfigurationError{Field: "head", Reason: "head position outside the tape"}
	}
	t.head = head
	return t, nil
}

// Read returns the symbol under the head.
func (t *Tape) Read() domain.Symbol {
	return t.cells[t.head]
}

// Write replaces the symbol under the head.
func (t *Tape) Write(sym domain.Symbol) {
	t.cells[t.head] = sym
}

// Move shifts the head, growing the tape with one blank when it would leave either end.
// Moving left from cell 0 prepends the blank and keeps the head at 0.
func (t *Tape) Move(d domain.Direction) {
	switch d {
	case domain.Right:
		t.head++
		if t.head == len(t.cells) {
			t.cells = append(t.cells, t.blank)
		}
	case domain.Left:
		if t.head == 0 {
			t.cells = slices.Insert(t.cells, 0, t.blank)
		} else {
			t.head--
		}
	}
}

// Head returns the current head position.
func (t *Tape) Head() int { return t.head }

// Len returns the number of materialized cells.
func (t *Tape) Len() int { return len(t.cells) }

// Cells returns a copy of the materialized cells.
func (t *Tape) Cells() []domain.Symbol {
	return slices.Clone(t.cells)
}

// String joins the cells.
func (t *Tape) String() string {
	return domain.JoinTape(t.cells)
}

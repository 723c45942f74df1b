package domain

import (
	"slices"
	"strings"
	"time"
)

// RunStatus defines where a run currently stands.
type RunStatus string

const (
	StatusRunning   RunStatus = "running"   // Steps may still be applied
	StatusHalted    RunStatus = "halted"    // A final state was reached
	StatusRejected  RunStatus = "rejected"  // No transition for (state, symbol)
	StatusSuspended RunStatus = "suspended" // Step budget exhausted or run cancelled
)

// TraceEntry records the outcome of one executed step.
type TraceEntry struct {
	Step int `json:"step"`
	// State is the state after the step.
	State State `json:"state"`
	// Read is the symbol under the head before the write.
	Read       Symbol     `json:"read"`
	Transition Transition `json:"transition"`
	// Tape is the full tape contents after the step.
	Tape string `json:"tape"`
	Head int    `json:"head"`
}

// Snapshot is a serializable copy of a run, used to persist and resume execution.
type Snapshot struct {
	RunID     string       `json:"run_id"`
	Machine   *Machine     `json:"machine"`
	State     State        `json:"state"`
	Tape      []Symbol     `json:"tape"`
	Head      int          `json:"head"`
	Steps     int          `json:"steps"`
	Status    RunStatus    `json:"status"`
	Trace     []TraceEntry `json:"trace"`
	UpdatedAt time.Time    `json:"updated_at"`

	// Sealed carries an encrypted copy of the snapshot. Stores that seal
	// snapshots leave the machine, tape and trace empty.
	Sealed string `json:"sealed,omitempty"`
}

// TapeString joins the snapshot tape.
func (s *Snapshot) TapeString() string {
	return JoinTape(s.Tape)
}

// Clone returns a deep copy so stores never share memory with callers.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Machine = s.Machine.Clone()
	c.Tape = slices.Clone(s.Tape)
	c.Trace = slices.Clone(s.Trace)
	return &c
}

// JoinTape renders a tape as the concatenation of its symbols.
func JoinTape(tape []Symbol) string {
	var sb strings.Builder
	for _, sym := range tape {
		sb.WriteString(string(sym))
	}
	return sb.String()
}

// SplitTape turns a tape string into one symbol per rune.
func SplitTape(s string) []Symbol {
	tape := make([]Symbol, 0, len(s))
	for _, r := range s {
		tape = append(tape, Symbol(r))
	}
	return tape
}

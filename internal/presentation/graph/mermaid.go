package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
)

// GraphOverlay contains run data to visualize on the graph.
type GraphOverlay struct {
	VisitedStates []domain.State
	CurrentState  domain.State
}

// OverlayFromTrace marks every state a run went through, starting at initial.
func OverlayFromTrace(initial domain.State, trace []domain.TraceEntry) *GraphOverlay {
	o := &GraphOverlay{
		VisitedStates: []domain.State{initial},
		CurrentState:  initial,
	}
	for _, e := range trace {
		o.VisitedStates = append(o.VisitedStates, e.State)
		o.CurrentState = e.State
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the transition table.
// It applies semantic styling:
// - Initial: ((Circle))
// - Final: (((Double circle)))
// - Default: [Rectangle]
// Rules sharing the same source and target are merged into one edge labelled
// "read/write,dir" per rule. Overlay styles (Visited/Current) are applied if provided.
func GenerateMermaid(m *domain.Machine, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	ids := newIDs()
	for _, s := range m.States {
		id := ids.of(s)
		opener, closer := "[", "]"
		switch {
		case m.IsFinal(s):
			opener, closer = "(((", ")))"
		case s == m.Initial:
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, escape(string(s)), closer)
	}

	type edge struct{ from, to domain.State }
	var order []edge
	labels := make(map[edge][]string)
	for _, t := range m.Transitions {
		e := edge{t.From, t.Next}
		if _, seen := labels[e]; !seen {
			order = append(order, e)
		}
		labels[e] = append(labels[e], fmt.Sprintf("%s/%s,%s", t.Read, t.Write, t.Move))
	}
	for _, e := range order {
		label := escape(strings.Join(labels[e], "<br/>"))
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", ids.of(e.from), label, ids.of(e.to))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast on both light and dark themes
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		styled := make(map[domain.State]bool)
		for _, s := range overlay.VisitedStates {
			if s == "" || styled[s] || !m.HasState(s) {
				continue
			}
			styled[s] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", ids.of(s))
		}
		if overlay.CurrentState != "" && m.HasState(overlay.CurrentState) {
			fmt.Fprintf(&sb, "    class %s current;\n", ids.of(overlay.CurrentState))
		}
	}

	return sb.String()
}

// idAllocator hands out positional node IDs so any state name (including Mermaid
// keywords such as "end") is safe.
type idAllocator struct {
	byState map[domain.State]string
}

func newIDs() *idAllocator {
	return &idAllocator{byState: make(map[domain.State]string)}
}

func (x *idAllocator) of(s domain.State) string {
	id, ok := x.byState[s]
	if !ok {
		id = fmt.Sprintf("s%d", len(x.byState))
		x.byState[s] = id
	}
	return id
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "#quot;")
}

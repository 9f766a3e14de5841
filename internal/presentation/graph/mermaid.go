package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/weft/pkg/chain"
	"github.com/aretw0/weft/pkg/domain"
)

// Overlay marks the advice that actually fired during one invocation.
// Entries use the "phase:advice" form produced by memory.Sink.Trace.
type Overlay struct {
	Fired []string
}

// GenerateMermaid produces a Mermaid flowchart of the dispatch path of a chain.
// Shapes follow the phase:
// - Caller/return: ((Circle))
// - Around: [[Subroutine]]
// - Body: [(Cylinder)]
// - Other advice: [Rectangle]
// Success and failure branches rejoin at the AfterAlways advice.
func GenerateMermaid(c chain.Chain, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    call((\"call\"))\n")

	fired := make(map[string]bool)
	if overlay != nil {
		for _, f := range overlay.Fired {
			fired[f] = true
		}
	}
	var highlight []string

	node := func(id, opener, closer, label string) {
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, escapeLabel(label), closer)
	}
	edge := func(from, to, label string) {
		if label == "" {
			fmt.Fprintf(&sb, "    %s --> %s\n", from, to)
			return
		}
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", from, label, to)
	}
	links := func(prefix string, phase domain.Phase, ls []chain.Link, opener, closer string) []string {
		ids := make([]string, 0, len(ls))
		for i, l := range ls {
			id := fmt.Sprintf("%s%d", prefix, i)
			node(id, opener, closer, string(phase)+": "+l.Advice.Name)
			if fired[string(phase)+":"+l.Advice.Name] {
				highlight = append(highlight, id)
			}
			ids = append(ids, id)
		}
		return ids
	}
	// chainEdges links ids in order, starting from prev, and returns the last id.
	chainEdges := func(prev, label string, ids []string) string {
		for _, id := range ids {
			edge(prev, id, label)
			label = ""
			prev = id
		}
		return prev
	}

	before := links("b", domain.PhaseBefore, c.Before, "[", "]")
	around := links("a", domain.PhaseAround, c.Around, "[[", "]]")
	success := links("s", domain.PhaseAfterSuccess, c.AfterSuccess, "[", "]")
	failure := links("f", domain.PhaseAfterFailure, c.AfterFailure, "[", "]")
	always := links("w", domain.PhaseAfterAlways, c.AfterAlways, "[", "]")
	node("body", "[(", ")]", c.Target.ShortString())
	sb.WriteString("    ret((\"return\"))\n")

	prev := chainEdges("call", "", before)
	prev = chainEdges(prev, "", around)
	edge(prev, "body", "")

	join := "ret"
	if len(always) > 0 {
		join = always[0]
	}
	okEnd := chainEdges("body", "success", success)
	failEnd := chainEdges("body", "failure", failure)
	if okEnd == "body" && failEnd == "body" {
		edge("body", join, "")
	} else {
		if okEnd == "body" {
			edge("body", join, "success")
		} else {
			edge(okEnd, join, "")
		}
		if failEnd == "body" {
			edge("body", join, "failure")
		} else {
			edge(failEnd, join, "")
		}
	}
	if len(always) > 0 {
		last := chainEdges(always[0], "", always[1:])
		edge(last, "ret", "")
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef fired fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		for _, id := range highlight {
			fmt.Fprintf(&sb, "    class %s fired;\n", id)
		}
	}
	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

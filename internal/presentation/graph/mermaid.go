package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/ntmtrace/pkg/domain"
)

// GraphOverlay contains trace data to visualize on the graph.
type GraphOverlay struct {
	VisitedStates []string
	CurrentState  string
}

// OverlayFromPath marks every state on an accepting path as visited and
// the last one as current.
func OverlayFromPath(path []domain.Configuration) *GraphOverlay {
	if len(path) == 0 {
		return nil
	}
	o := &GraphOverlay{CurrentState: path[len(path)-1].State}
	for _, c := range path {
		o.VisitedStates = append(o.VisitedStates, c.State)
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the machine's state graph.
// It applies semantic styling:
// - Start: ((Circle))
// - Accept: (((Double circle)))
// - Reject: {{Hexagon}}
// - Default: [Rectangle]
// Each rule becomes one edge labelled "read/write,move", in declaration order.
func GenerateMermaid(m *domain.Machine, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, state := range m.States {
		safeID := sanitizeMermaidID(state)

		opener, closer := "[", "]"
		switch state {
		case m.Start:
			opener, closer = "((", "))"
		case m.Accept:
			opener, closer = "(((", ")))"
		case m.Reject:
			opener, closer = "{{", "}}"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(state), closer))
	}

	for _, t := range m.Transitions {
		label := fmt.Sprintf("%s/%s,%s", t.Read, t.Write, t.Move)
		sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n",
			sanitizeMermaidID(t.From), escapeLabel(label), sanitizeMermaidID(t.To)))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast regardless of theme
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, s := range overlay.VisitedStates {
			safeID := sanitizeMermaidID(s)
			if !visitedSet[safeID] && safeID != "" && s != overlay.CurrentState {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentState != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentState)))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return r.Replace(id)
}

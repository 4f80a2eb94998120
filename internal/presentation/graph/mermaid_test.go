package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/ntmtrace/internal/presentation/graph"
	"github.com/aretw0/ntmtrace/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func machine() *domain.Machine {
	return &domain.Machine{
		Name:   "a_star",
		States: []string{"q0", "q-1", "qAccept", "qReject"},
		Start:  "q0",
		Accept: "qAccept",
		Reject: "qReject",
		Transitions: []domain.Transition{
			{From: "q0", Read: "a", To: "q0", Write: "a", Move: domain.MoveRight},
			{From: "q0", Read: "_", To: "qAccept", Write: "_", Move: domain.MoveStay},
			{From: "q0", Read: "\"", To: "q-1", Write: "x", Move: domain.MoveLeft},
		},
	}
}

func TestGenerateMermaid(t *testing.T) {
	out := graph.GenerateMermaid(machine(), nil)

	assert.True(t, strings.HasPrefix(out, "graph LR\n"))
	for _, want := range []string{
		`q0(("q0"))`,
		`qAccept((("qAccept")))`,
		`qReject{{"qReject"}}`,
		`q_1["q-1"]`,
		`q0 -- "a/a,R" --> q0`,
		`q0 -- "_/_,S" --> qAccept`,
		`q0 -- "'/x,L" --> q_1`,
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "classDef")

	// Edges keep declaration order.
	assert.Less(t, strings.Index(out, `"a/a,R"`), strings.Index(out, `"_/_,S"`))
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	path := []domain.Configuration{
		{State: "q0"}, {State: "q0"}, {State: "qAccept"},
	}
	out := graph.GenerateMermaid(machine(), graph.OverlayFromPath(path))

	assert.Contains(t, out, "class q0 visited;")
	assert.Equal(t, 1, strings.Count(out, "class q0 visited;"))
	assert.Contains(t, out, "class qAccept current;")
	assert.NotContains(t, out, "class qAccept visited;")
}

func TestOverlayFromPath_Empty(t *testing.T) {
	assert.Nil(t, graph.OverlayFromPath(nil))
}

package search_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"klee-compare/internal/ir"
	"klee-compare/internal/priority"
	"klee-compare/internal/search"
)

func TestHeuristic_PriorityDelegatesAndDefaultsToZero(t *testing.T) {
	known := ir.NewInstr(0, "nop", "", nil)
	unknown := ir.NewInstr(1, "nop", "", nil)

	p := priority.Priorities{known: 7}
	h := search.New(p)

	require.EqualValues(t, 7, h.Priority(known))
	require.Zero(t, h.Priority(unknown))
}

func TestHeuristic_NilHeuristicReturnsZero(t *testing.T) {
	var h *search.Heuristic
	require.Zero(t, h.Priority(ir.NewInstr(0, "nop", "", nil)))
}

// Package priority is the Priority Propagator component (spec §4.4): it
// assigns every instruction in the patched module a priority — the maximum
// summed block weight along any forward path to a function exit — then
// boosts priorities across call sites to a fixed point.
//
// The pipeline is organized as a small, ordered sequence of passes over the
// module, in the teacher corpus's optimization-pipeline idiom (see
// internal/ir's grounding notes in DESIGN.md): a weight-coupling pass, then
// intra-procedural back-propagation, then inter-procedural boost.
package priority

import (
	"klee-compare/internal/ir"
	"klee-compare/internal/match"
)

// Priorities maps every instruction of the patched module to its priority.
// Instructions absent from the map (never produced by Run) are priority 0 —
// the contract internal/search.Priority relies on.
type Priorities map[*ir.Instr]uint64

// Run executes the full pipeline over patched, given the block weights
// match.Run already computed, and returns the resulting priority map.
func Run(patched *ir.Module, weights match.Weights) Priorities {
	p := Priorities{}
	effective := coupleCallWeights(patched, weights)

	for _, f := range patched.Functions() {
		backPropagate(f, effective, p)
	}

	boostAcrossCalls(patched, p)

	return p
}

// Priority returns the priority of inst, or 0 if absent — the same
// contract internal/search exposes, duplicated here so priority.Priorities
// is usable standalone in tests without pulling in the search package.
func (p Priorities) Priority(inst *ir.Instr) uint64 {
	return p[inst]
}

package priority

import (
	"klee-compare/internal/ir"
	"klee-compare/internal/match"
)

// coupleCallWeights runs the "priority-weight coupling" pass described in
// spec §9/§4.4: an earlier, separate fixed point that raises a call's
// enclosing block to weight 1 whenever any instruction in any possible
// callee sits in a weight-1 block. This guarantees that traversing a call
// into changed code counts as traversing changed code.
//
// Per the Open Question recorded in SPEC_FULL.md, this implementation
// folds the raised weight back into the ordinary per-block weight map
// (the coarser of the two documented readings) rather than maintaining a
// separate per-instruction weight: every later pass that asks "what is the
// weight of this instruction's block" already sees the raise.
func coupleCallWeights(m *ir.Module, weights match.Weights) match.Weights {
	eff := make(match.Weights, len(weights))
	for b, w := range weights {
		eff[b] = w
	}

	changed := true
	for changed {
		changed = false
		for _, f := range m.Functions() {
			for _, b := range f.Blocks {
				if eff[b] == match.Changed {
					continue
				}
				if calleeHasChangedBlock(m, b, eff) {
					eff[b] = match.Changed
					changed = true
				}
			}
		}
	}

	return eff
}

func calleeHasChangedBlock(m *ir.Module, b *ir.BasicBlock, eff match.Weights) bool {
	for _, inst := range b.Instructions {
		if !inst.IsCall() {
			continue
		}
		for _, callee := range m.PossibleCallees(inst) {
			for _, cb := range callee.Blocks {
				if eff[cb] == match.Changed {
					return true
				}
			}
		}
	}
	return false
}

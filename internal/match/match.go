// Package match is the Block Matcher component (spec §4.3): for each basic
// block in the patched module it looks for an equivalent basic block in the
// original module with matching control-flow successors, producing a weight
// for every patched block.
package match

import (
	"klee-compare/internal/equiv"
	"klee-compare/internal/ir"
)

// Weight is the per-block property defined in spec §3: 0 if the block has a
// matched twin in the original module (including matched successor
// structure), 1 if changed or new.
type Weight int

const (
	Matched Weight = 0
	Changed Weight = 1
)

// Weights maps every basic block of the patched module to its weight.
type Weights map[*ir.BasicBlock]Weight

// Run compares patched against original and returns the weight of every
// block in patched, implementing spec §4.3's per-function procedure.
func Run(patched, original *ir.Module) Weights {
	weights := Weights{}

	for _, f := range patched.Functions() {
		f0, ok := original.Function(f.Name)
		if !ok {
			for _, b := range f.Blocks {
				weights[b] = Changed
			}
			continue
		}
		matchFunction(f, f0, weights)
	}

	return weights
}

// matchFunction runs the lockstep comparison and control-flow refinement
// for one function pair.
func matchFunction(f, f0 *ir.Function, weights Weights) {
	eq := map[*ir.BasicBlock][]*ir.BasicBlock{} // EQ(B): candidate twins

	for _, b := range f.Blocks {
		weights[b] = Changed // tentative, per spec: "Initialize weight(B)=1"
		for _, b0 := range f0.Blocks {
			if blocksMatch(b, b0) {
				eq[b] = append(eq[b], b0)
			}
		}
		if len(eq[b]) > 0 {
			weights[b] = Matched // tentative; control-flow refinement may revert this
		}
	}

	refineControlFlow(f, eq, weights)
}

// blocksMatch walks both non-debug instruction streams of b and b0 in
// lockstep: branch pairs are accepted without recursing through equiv.Equal
// (the successor check handles them), a branch facing a non-branch is a
// mismatch, every other instruction (including non-branch terminators such
// as ret) is compared with equiv.Equal, and a stream ending before the other
// means the blocks do not match.
func blocksMatch(b, b0 *ir.BasicBlock) bool {
	insts := b.NonDebug()
	insts0 := b0.NonDebug()
	if len(insts) != len(insts0) {
		return false
	}

	memo := equiv.NewMemo()
	for i := range insts {
		a, a0 := insts[i], insts0[i]
		if a.IsBranch() != a0.IsBranch() {
			return false
		}
		if a.IsBranch() {
			continue // successor structure is checked by refineControlFlow
		}
		if !equiv.Equal(a, a0, memo) {
			return false
		}
	}
	return true
}

// refineControlFlow enforces spec §4.3's control-flow refinement: a block
// keeps weight 0 only if at least one candidate twin has the same number of
// successors, each landing (in order) on a block whose own EQ set contains
// that twin's corresponding successor.
func refineControlFlow(f *ir.Function, eq map[*ir.BasicBlock][]*ir.BasicBlock, weights Weights) {
	for _, b := range f.Blocks {
		if weights[b] != Matched {
			continue
		}
		if !hasValidTwin(b, eq) {
			weights[b] = Changed
		}
	}
}

func hasValidTwin(b *ir.BasicBlock, eq map[*ir.BasicBlock][]*ir.BasicBlock) bool {
	for _, b0 := range eq[b] {
		if successorsAlign(b, b0, eq) {
			return true
		}
	}
	return false
}

func successorsAlign(b, b0 *ir.BasicBlock, eq map[*ir.BasicBlock][]*ir.BasicBlock) bool {
	if len(b.Successors) != len(b0.Successors) {
		return false
	}
	for i, s := range b.Successors {
		s0 := b0.Successors[i]
		if !contains(eq[s], s0) {
			return false
		}
	}
	return true
}

func contains(blocks []*ir.BasicBlock, target *ir.BasicBlock) bool {
	for _, b := range blocks {
		if b == target {
			return true
		}
	}
	return false
}

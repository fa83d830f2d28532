package equiv

import (
	"fmt"

	"klee-compare/internal/errx"
	"klee-compare/internal/ir"
)

// Memo records positive equivalence outcomes for one function-matching pass
// (spec §4.2 "Lifetime: per function during matching"). A subsequent Equal
// call for a pair already in the memo short-circuits to true.
type Memo map[*ir.Instr]*ir.Instr

// NewMemo returns an empty memo, scoped to a single function comparison.
func NewMemo() Memo { return Memo{} }

// Equal decides whether a and b are equivalent instructions under the
// tolerances of spec §4.2: canonical text must match token-by-token, with
// both-sides-Meta, both-sides-SSAName, and both-sides-StructTok tokens
// treated as equal regardless of literal value; every other token must
// match exactly. If the textual predicate holds, every operand pair is then
// checked recursively. Branches must never be passed in — the Block
// Matcher (§4.3) handles successor structure separately.
func Equal(a, b *ir.Instr, memo Memo) bool {
	if a.IsBranch() || b.IsBranch() {
		panic("equiv: branches must be compared via successor structure, not Equal")
	}
	if existing, ok := memo[a]; ok {
		return existing == b
	}

	if !textEqual(Tokenize(a.Text()), Tokenize(b.Text())) {
		return false
	}

	if !operandsEqual(a, b, memo) {
		return false
	}

	memo[a] = b
	return true
}

// textEqual applies the token-wise tolerance rules of spec §4.2.
func textEqual(ta, tb []Token) bool {
	if len(ta) != len(tb) {
		return false
	}
	for i := range ta {
		if ta[i].Kind.Tolerant() && tb[i].Kind.Tolerant() && ta[i].Kind == tb[i].Kind {
			continue
		}
		if ta[i] != tb[i] {
			return false
		}
	}
	return true
}

// operandsEqual checks every operand pair once the textual predicate holds.
// A mismatched arity here — textually equal instructions whose operand
// counts disagree — is an internal-shape bug (spec §7 category 3, spec §9),
// never a normal "not equivalent" outcome, because the canonical printer
// guarantees operand count is reflected in the text.
func operandsEqual(a, b *ir.Instr, memo Memo) bool {
	if len(a.Operands) != len(b.Operands) {
		panic(errx.ShapeError(fmt.Errorf(
			"equiv: instructions %q and %q are textually equal but disagree on operand count (%d vs %d)",
			a.Text(), b.Text(), len(a.Operands), len(b.Operands))))
	}
	for i := range a.Operands {
		oa, ob := a.Operands[i], b.Operands[i]
		switch oa.Kind {
		case ir.OperandConstant:
			if ob.Kind != ir.OperandConstant {
				return false
			}
			// Text equality already established by textEqual.
		case ir.OperandInstruction:
			if ob.Kind != ir.OperandInstruction || oa.Def == nil || ob.Def == nil {
				return false
			}
			if !Equal(oa.Def, ob.Def, memo) {
				return false
			}
		default:
			// Function arguments, globals: no further check.
		}
	}
	return true
}

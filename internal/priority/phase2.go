package priority

import "klee-compare/internal/ir"

// boostAcrossCalls runs spec §4.4 Phase 2 to a fixed point: for every call
// site c with return location r such that priority(r) > 0, every
// zero-priority instruction inside any of c's possible callees is raised to
// priority(r). This single pass over possible_callees subsumes the spec's
// two bullets ("for every use of F" and "for every call site c") — a direct
// call's possible-callee set is exactly {F}, so the direct-call case is the
// possible-callee rule applied to a singleton set.
func boostAcrossCalls(m *ir.Module, p Priorities) {
	changed := true
	for changed {
		changed = false
		for _, f := range m.Functions() {
			for _, b := range f.Blocks {
				for _, inst := range b.Instructions {
					if !inst.IsCall() {
						continue
					}
					r, ok := returnLocation(inst)
					if !ok {
						continue
					}
					rp := p[r]
					if rp == 0 {
						continue
					}
					for _, callee := range m.PossibleCallees(inst) {
						if boostCallee(callee, rp, p) {
							changed = true
						}
					}
				}
			}
		}
	}
}

func boostCallee(callee *ir.Function, rp uint64, p Priorities) bool {
	changed := false
	for _, b := range callee.Blocks {
		for _, inst := range b.Instructions {
			if p[inst] == 0 {
				p[inst] = rp
				changed = true
			}
		}
	}
	return changed
}

// returnLocation finds the first instruction executed in the caller after
// call returns (spec Glossary "Return location"): the next instruction in
// the same block for a direct call, or the first non-debug instruction of
// the normal-destination block for an invoke-style call (a call that is
// itself a terminator with successors).
func returnLocation(call *ir.Instr) (*ir.Instr, bool) {
	b := call.GetBlock()

	if call.IsTerminator() {
		if len(b.Successors) == 0 {
			return nil, false
		}
		dest := b.Successors[0].NonDebug()
		if len(dest) == 0 {
			return nil, false
		}
		return dest[0], true
	}

	for i, inst := range b.Instructions {
		if inst != call {
			continue
		}
		if i+1 < len(b.Instructions) {
			return b.Instructions[i+1], true
		}
		return nil, false
	}
	return nil, false
}

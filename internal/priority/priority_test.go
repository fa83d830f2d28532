package priority_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"klee-compare/internal/ir"
	"klee-compare/internal/match"
	"klee-compare/internal/priority"
)

// buildLinear builds entry -> mid -> exit, all non-branch/terminator
// instructions aside from exit's terminator.
func buildLinear() (*ir.Module, *ir.Function) {
	m := ir.NewModule("m")
	f := &ir.Function{Name: "f"}
	m.AddFunction(f)

	entry := &ir.BasicBlock{Label: "entry"}
	mid := &ir.BasicBlock{Label: "mid"}
	exit := &ir.BasicBlock{Label: "exit"}

	entry.Instructions = []*ir.Instr{
		ir.NewInstr(0, "nop", "", nil),
		ir.NewInstr(1, "br", "", nil).MarkBranch(),
	}
	mid.Instructions = []*ir.Instr{
		ir.NewInstr(2, "nop", "", nil),
		ir.NewInstr(3, "br", "", nil).MarkBranch(),
	}
	exit.Instructions = []*ir.Instr{ir.NewInstr(4, "ret", "", nil).MarkTerminator()}

	f.AddBlock(entry)
	f.AddBlock(mid)
	f.AddBlock(exit)
	entry.AddSuccessor(mid)
	mid.AddSuccessor(exit)

	return m, f
}

func TestRun_AllZeroWeightMeansAllZeroPriority(t *testing.T) {
	m, f := buildLinear()
	weights := match.Weights{}
	for _, b := range f.Blocks {
		weights[b] = match.Matched
	}

	p := priority.Run(m, weights)
	for _, b := range f.Blocks {
		for _, inst := range b.Instructions {
			require.Zero(t, p.Priority(inst))
		}
	}
}

func TestRun_ChangedExitBlockRaisesEntirePath(t *testing.T) {
	m, f := buildLinear()
	weights := match.Weights{}
	for _, b := range f.Blocks {
		weights[b] = match.Matched
	}
	exit, _ := f.Block("exit")
	weights[exit] = match.Changed

	p := priority.Run(m, weights)

	entry, _ := f.Block("entry")
	mid, _ := f.Block("mid")
	// Every instruction upstream of the changed exit block must have
	// positive priority (spec §8 P2) — the exit block's own terminator has
	// no successor to inherit from, so it legitimately stays at 0 unless
	// something else (a Phase 2 call boost) raises it; there is none here.
	for _, b := range []*ir.BasicBlock{entry, mid} {
		for _, inst := range b.Instructions {
			require.Positive(t, p.Priority(inst), "block %s inst %s", b.Label, inst.Opcode)
		}
	}
	require.Zero(t, p.Priority(exit.Instructions[0]))
	// Priority must be non-increasing along the forward path within a block
	// plus across the terminator-to-successor-first-instruction edge
	// (spec §3 invariant).
	require.GreaterOrEqual(t, p.Priority(entry.Instructions[0]), p.Priority(entry.Instructions[1]))
}

func TestRun_LeafCalleeChangeBoostsCaller(t *testing.T) {
	m := ir.NewModule("m")

	g := &ir.Function{Name: "g"}
	m.AddFunction(g)
	gEntry := &ir.BasicBlock{Label: "entry"}
	gEntry.Instructions = []*ir.Instr{
		ir.NewInstr(0, "nop", "", nil),
		ir.NewInstr(1, "ret", "", nil).MarkTerminator(),
	}
	g.AddBlock(gEntry)

	caller := &ir.Function{Name: "caller"}
	m.AddFunction(caller)
	cEntry := &ir.BasicBlock{Label: "entry"}
	callInst := ir.NewInstr(2, "call", "", []*ir.Operand{{Kind: ir.OperandOther, Text: "@g"}}).
		MarkCall(&ir.Operand{Kind: ir.OperandOther, Text: "@g"})
	retInst := ir.NewInstr(3, "ret", "", nil).MarkTerminator()
	cEntry.Instructions = []*ir.Instr{callInst, retInst}
	caller.AddBlock(cEntry)

	weights := match.Weights{
		gEntry: match.Changed,
		cEntry: match.Matched,
	}

	p := priority.Run(m, weights)

	// g's own instructions have positive priority (its block is changed).
	require.Positive(t, p.Priority(gEntry.Instructions[0]))
	// The call-boost coupling pass raises the caller's enclosing block to
	// weight 1 (callee has a changed block), which in turn gives the call
	// site itself positive priority too — every call site of g inherits
	// non-zero priority (spec §8 scenario 5).
	require.Positive(t, p.Priority(callInst))
}

func TestRun_IndirectCallWidensBoost(t *testing.T) {
	m := ir.NewModule("m")

	changedCallee := &ir.Function{Name: "changed", Params: []ir.Param{{Name: "x", Type: "i32"}}}
	m.AddFunction(changedCallee)
	ccEntry := &ir.BasicBlock{Label: "entry"}
	ccEntry.Instructions = []*ir.Instr{
		ir.NewInstr(0, "nop", "", nil),
		ir.NewInstr(1, "ret", "", nil).MarkTerminator(),
	}
	changedCallee.AddBlock(ccEntry)

	unchangedCallee := &ir.Function{Name: "unchanged", Params: []ir.Param{{Name: "x", Type: "i32"}}}
	m.AddFunction(unchangedCallee)
	ucEntry := &ir.BasicBlock{Label: "entry"}
	ucEntry.Instructions = []*ir.Instr{
		ir.NewInstr(2, "nop", "", nil),
		ir.NewInstr(3, "ret", "", nil).MarkTerminator(),
	}
	unchangedCallee.AddBlock(ucEntry)

	// caller: entry calls through a function pointer, then branches to a
	// tail block whose own block is changed — giving the call's return
	// location (entry's terminator) positive priority, which Phase 2 then
	// propagates into every possible callee of the indirect call.
	caller := &ir.Function{Name: "caller"}
	m.AddFunction(caller)
	cEntry := &ir.BasicBlock{Label: "entry"}
	tail := &ir.BasicBlock{Label: "tail"}
	callInst := ir.NewInstr(4, "call", "", []*ir.Operand{{Kind: ir.OperandOther, Text: "%x", Type: "i32"}}).
		MarkCall(&ir.Operand{Kind: ir.OperandOther, Text: "%fp"})
	cEntry.Instructions = []*ir.Instr{callInst, ir.NewInstr(5, "br", "", nil).MarkBranch()}
	tail.Instructions = []*ir.Instr{ir.NewInstr(6, "ret", "", nil).MarkTerminator()}
	caller.AddBlock(cEntry)
	caller.AddBlock(tail)
	cEntry.AddSuccessor(tail)

	weights := match.Weights{
		ccEntry: match.Changed,
		ucEntry: match.Matched,
		cEntry:  match.Matched,
		tail:    match.Changed,
	}

	p := priority.Run(m, weights)

	// changedCallee is positive on its own merits (its block is changed).
	require.Positive(t, p.Priority(ccEntry.Instructions[0]))
	// unchangedCallee's own block is Matched — it would stay at priority 0
	// from block weight alone — but it is still a possible callee of the
	// same indirect call site, so Phase 2's call-site boost reaches it too
	// (spec §8 scenario 6: the indirect dispatch widens the possible-callee
	// set, so both callees receive priority inheritance).
	require.Positive(t, p.Priority(ucEntry.Instructions[0]))
}

package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildDiamond builds:
//
//	entry -> left, right
//	left -> join
//	right -> join
//	join (exit)
func buildDiamond() (*Module, *Function) {
	m := NewModule("diamond")
	f := &Function{Name: "f"}
	m.AddFunction(f)

	entry := &BasicBlock{Label: "entry"}
	left := &BasicBlock{Label: "left"}
	right := &BasicBlock{Label: "right"}
	join := &BasicBlock{Label: "join"}

	entry.Instructions = []*Instr{NewInstr(0, "br", "", nil).MarkBranch()}
	left.Instructions = []*Instr{NewInstr(1, "br", "", nil).MarkBranch()}
	right.Instructions = []*Instr{NewInstr(2, "br", "", nil).MarkBranch()}
	join.Instructions = []*Instr{NewInstr(3, "ret", "", nil).MarkTerminator()}

	f.AddBlock(entry)
	f.AddBlock(left)
	f.AddBlock(right)
	f.AddBlock(join)

	entry.AddSuccessor(left)
	entry.AddSuccessor(right)
	left.AddSuccessor(join)
	right.AddSuccessor(join)

	return m, f
}

func TestDominators_Diamond(t *testing.T) {
	_, f := buildDiamond()
	dom := Dominators(f)

	entry, _ := f.Block("entry")
	left, _ := f.Block("left")
	right, _ := f.Block("right")
	join, _ := f.Block("join")

	require.True(t, dom.Dominates(entry, left))
	require.True(t, dom.Dominates(entry, right))
	require.True(t, dom.Dominates(entry, join))
	require.False(t, dom.Dominates(left, right))
	require.False(t, dom.Dominates(left, join)) // join has two predecessors, left alone doesn't dominate it

	idom, ok := dom.ImmediateDominator(join)
	require.True(t, ok)
	require.Equal(t, entry, idom)
}

func TestBasicBlock_NonDebug(t *testing.T) {
	b := &BasicBlock{Label: "b"}
	b.Instructions = []*Instr{
		NewInstr(0, "add", "%1", nil),
		NewInstr(1, "dbg.value", "", nil).MarkDebugOnly(),
		NewInstr(2, "ret", "", nil).MarkTerminator(),
	}
	nd := b.NonDebug()
	require.Len(t, nd, 2)
	require.Equal(t, "add", nd[0].Opcode)
	require.Equal(t, "ret", nd[1].Opcode)
}

func TestInstr_Text(t *testing.T) {
	op := &Operand{Kind: OperandConstant, Text: "42"}
	inst := NewInstr(0, "add", "%1", []*Operand{op, {Kind: OperandOther, Text: "%x"}})
	require.Equal(t, "%1 = add 42, %x", inst.Text())
}

func TestModule_FunctionsOrderIsStable(t *testing.T) {
	m := NewModule("m")
	m.AddFunction(&Function{Name: "b"})
	m.AddFunction(&Function{Name: "a"})
	names := make([]string, 0)
	for _, f := range m.Functions() {
		names = append(names, f.Name)
	}
	require.Equal(t, []string{"b", "a"}, names)
}

func TestPossibleCallees_DirectAndIndirect(t *testing.T) {
	m := NewModule("m")
	g := &Function{Name: "g", Params: []Param{{Name: "x", Type: "i32"}}}
	h := &Function{Name: "h", Params: []Param{{Name: "x", Type: "i32"}}}
	other := &Function{Name: "other", Params: []Param{{Name: "x", Type: "i64"}}}
	m.AddFunction(g)
	m.AddFunction(h)
	m.AddFunction(other)

	direct := NewInstr(0, "call", "", []*Operand{{Kind: OperandOther, Text: "@g"}}).
		MarkCall(&Operand{Kind: OperandOther, Text: "@g"})
	callees := m.PossibleCallees(direct)
	require.Len(t, callees, 1)
	require.Equal(t, "g", callees[0].Name)

	indirect := NewInstr(1, "call", "", []*Operand{{Kind: OperandOther, Text: "%x", Type: "i32"}}).
		MarkCall(&Operand{Kind: OperandOther, Text: "%fp"})
	callees = m.PossibleCallees(indirect)
	require.Len(t, callees, 2)
	names := []string{callees[0].Name, callees[1].Name}
	require.ElementsMatch(t, []string{"g", "h"}, names)
}

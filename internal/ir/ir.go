// Package ir is the IR Accessor (spec §4.1): a thin, read-only adapter over
// an already-loaded IR module. It does not parse bitcode itself — loading is
// an external collaborator's job (see internal/irtext for the textual
// stand-in used by this module's tests and CLI) — it only exposes the
// queries the rest of the analyzer needs: function/block/instruction
// iteration, successor/predecessor edges, dominator trees, and possible-callee
// resolution for call sites.
package ir

import (
	"fmt"
	"sort"
)

// Module is an immutable, already-parsed IR unit: a finite set of functions,
// each with a finite set of basic blocks, each an ordered instruction
// sequence (spec §3 "Module").
type Module struct {
	Name      string
	functions map[string]*Function
	order     []string
}

// NewModule returns an empty module ready for AddFunction calls. Modules are
// built once (by a loader such as internal/irtext) and treated as immutable
// afterward by every other component.
func NewModule(name string) *Module {
	return &Module{Name: name, functions: map[string]*Function{}}
}

// AddFunction registers a function under its name. Names must be unique
// within a module.
func (m *Module) AddFunction(f *Function) {
	if _, exists := m.functions[f.Name]; !exists {
		m.order = append(m.order, f.Name)
	}
	m.functions[f.Name] = f
	f.module = m
}

// Function looks up a function by name.
func (m *Module) Function(name string) (*Function, bool) {
	f, ok := m.functions[name]
	return f, ok
}

// Functions returns every function, in the order they were added (the
// textual/source order of the module), which this module treats as the
// canonical iteration order everywhere determinism matters (priority
// propagation, block matching).
func (m *Module) Functions() []*Function {
	out := make([]*Function, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.functions[name])
	}
	return out
}

// Function represents a function in the loaded module.
type Function struct {
	Name     string
	Params   []Param
	Variadic bool
	Entry    *BasicBlock
	Blocks   []*BasicBlock // source order; Blocks[0] need not be Entry for irregular loaders, but normally is

	module *Module
}

// Param is a formal parameter: a name plus its static type string, used by
// the indirect-call prefix-compatibility check (spec §4.4).
type Param struct {
	Name string
	Type string
}

// Module returns the owning module.
func (f *Function) Module() *Module { return f.module }

// AddBlock appends a block to the function in source order and records b as
// the owning block of every instruction it already holds.
func (f *Function) AddBlock(b *BasicBlock) {
	b.Func = f
	for _, inst := range b.Instructions {
		inst.block = b
	}
	f.Blocks = append(f.Blocks, b)
	if f.Entry == nil {
		f.Entry = b
	}
}

// Block looks up one of the function's blocks by label.
func (f *Function) Block(label string) (*BasicBlock, bool) {
	for _, b := range f.Blocks {
		if b.Label == label {
			return b, true
		}
	}
	return nil, false
}

// BasicBlock is a maximal straight-line instruction sequence ending in a
// terminator.
type BasicBlock struct {
	Label        string
	Func         *Function
	Instructions []*Instr // source order; last entry is always the terminator
	Successors   []*BasicBlock
	Predecessors []*BasicBlock
}

// Terminator returns the block's final instruction. Every well-formed block
// has one; a block with no instructions is a loader bug, not something this
// package tolerates silently.
func (b *BasicBlock) Terminator() *Instr {
	if len(b.Instructions) == 0 {
		panic(fmt.Sprintf("ir: block %q has no instructions", b.Label))
	}
	return b.Instructions[len(b.Instructions)-1]
}

// NonDebug returns the block's instructions with debug-only instructions
// filtered out, preserving order — the view the Block Matcher (§4.3) and
// Priority Propagator (§4.4) walk.
func (b *BasicBlock) NonDebug() []*Instr {
	out := make([]*Instr, 0, len(b.Instructions))
	for _, inst := range b.Instructions {
		if !inst.DebugOnly() {
			out = append(out, inst)
		}
	}
	return out
}

// AddSuccessor links b -> s and registers the reverse predecessor edge.
func (b *BasicBlock) AddSuccessor(s *BasicBlock) {
	b.Successors = append(b.Successors, s)
	s.Predecessors = append(s.Predecessors, b)
}

// OperandKind classifies what an Operand refers to.
type OperandKind int

const (
	// OperandConstant is a compile-time constant; text comparison alone
	// establishes equality between two constant operands (spec §4.2).
	OperandConstant OperandKind = iota
	// OperandInstruction is defined by another instruction in the module;
	// equivalence recurses into the defining instruction.
	OperandInstruction
	// OperandOther covers function arguments and globals: no further check
	// beyond the text/token comparison already performed.
	OperandOther
)

// Operand is one operand of an instruction.
type Operand struct {
	Kind OperandKind
	Text string // canonical textual form of just this operand, e.g. "%3", "42", "@callee"
	Def  *Instr // set when Kind == OperandInstruction
	Type string // static type string; used for call-site argument/parameter matching
}

// Instr is a single instruction. The loaded IR is opaque beyond what spec
// §4.1 lists as required queries, so one concrete struct (rather than a
// family of opcode-specific types) models every instruction kind; Opcode
// distinguishes them structurally where callers need to.
type Instr struct {
	SeqID      int // sequence number set by the builder; internal/irtext numbers each function's instructions from 0
	Opcode     string
	Result     string // SSA name defined by this instruction, "" if void
	Operands   []*Operand
	block      *BasicBlock
	terminator bool
	branch     bool
	call       bool
	callTarget *Operand // set when call is true
	debugOnly  bool
	textOverride string // non-empty when the loader already has canonical text
}

// GetBlock returns the owning basic block (set by Function.AddBlock).
func (i *Instr) GetBlock() *BasicBlock { return i.block }

// IsTerminator reports whether this instruction ends its block.
func (i *Instr) IsTerminator() bool { return i.terminator }

// IsBranch reports whether this is a branch-family terminator (conditional
// or unconditional branch, switch). Calls are never branches even though
// some call-like terminators (invoke) also have successors — those are
// modeled as IsCall() && IsTerminator() so callers can tell them apart.
func (i *Instr) IsBranch() bool { return i.branch }

// IsCall reports whether this is a call or invoke-style instruction.
func (i *Instr) IsCall() bool { return i.call }

// CallTarget returns the callee operand of a call instruction. ok is false
// for non-call instructions.
func (i *Instr) CallTarget() (*Operand, bool) {
	if !i.call {
		return nil, false
	}
	return i.callTarget, true
}

// DebugOnly reports whether this instruction carries no observable
// semantics (a debug-info intrinsic) and should be skipped by equivalence
// and priority-propagation walks.
func (i *Instr) DebugOnly() bool { return i.debugOnly }

// Text renders the instruction to its canonical textual form: the
// representation Instruction Equivalence (§4.2) tokenizes and compares. A
// call/invoke's callee is rendered as its first operand here even though it
// is not part of Operands — otherwise two calls with the same argument list
// but different callees would render identically and Equal would wrongly
// treat a redirected call as unchanged.
func (i *Instr) Text() string {
	if i.textOverride != "" {
		return i.textOverride
	}
	var parts []string
	if i.Result != "" {
		parts = append(parts, i.Result, "=")
	}
	parts = append(parts, i.Opcode)

	operandTexts := make([]string, 0, len(i.Operands)+1)
	if i.call && i.callTarget != nil {
		operandTexts = append(operandTexts, i.callTarget.Text)
	}
	for _, op := range i.Operands {
		operandTexts = append(operandTexts, op.Text)
	}
	for idx, t := range operandTexts {
		if idx > 0 {
			parts = append(parts, ",")
		}
		parts = append(parts, t)
	}

	out := ""
	for idx, p := range parts {
		if idx > 0 && p != "," {
			out += " "
		}
		out += p
	}
	return out
}

func (i *Instr) String() string { return i.Text() }

// NewInstr builds an instruction and wires it into its block. Callers (the
// loader, or tests building modules by hand) set the terminator/branch/call
// flags explicitly — this package never infers them from Opcode strings,
// since the set of real opcodes is defined by the external IR, not by us.
func NewInstr(seqID int, opcode, result string, operands []*Operand) *Instr {
	return &Instr{SeqID: seqID, Opcode: opcode, Result: result, Operands: operands}
}

// MarkTerminator flags the instruction as a block terminator.
func (i *Instr) MarkTerminator() *Instr { i.terminator = true; return i }

// MarkBranch flags the instruction as a branch-family terminator.
func (i *Instr) MarkBranch() *Instr { i.branch = true; i.terminator = true; return i }

// MarkCall flags the instruction as a call with the given callee operand.
func (i *Instr) MarkCall(target *Operand) *Instr { i.call = true; i.callTarget = target; return i }

// MarkDebugOnly flags the instruction as carrying no observable semantics.
func (i *Instr) MarkDebugOnly() *Instr { i.debugOnly = true; return i }

// WithText overrides Text() with an already-rendered canonical form (used by
// loaders that read canonical text straight off the wire rather than
// reconstructing it from Opcode/Operands).
func (i *Instr) WithText(text string) *Instr { i.textOverride = text; return i }

// SortedFunctionNames is a small determinism helper used by components that
// need to iterate a module's functions in a stable, map-independent order.
func SortedFunctionNames(m *Module) []string {
	names := make([]string, 0, len(m.functions))
	for name := range m.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package irtext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"

	"klee-compare/grammar"
	"klee-compare/internal/errx"
	"klee-compare/internal/ir"
)

var parser = participle.MustBuild[file](
	participle.Lexer(grammar.IRLexer),
	participle.Elide("Whitespace", "DocComment"),
)

// Load parses src (in the format documented on package irtext) and builds an
// *ir.Module from it. A malformed file is a Configuration error (spec §7
// category 1: this is input the operator supplied, not an internal
// analyzer bug) — the caller decides whether that's fatal.
func Load(name, src string) (*ir.Module, error) {
	f, err := parser.ParseString(name, src)
	if err != nil {
		return nil, errx.ConfigError(fmt.Errorf("irtext: parsing %s: %w", name, err))
	}
	return build(f), nil
}

// build converts the parsed AST into an ir.Module. Opcode-specific meaning
// (terminator/branch/call flags, successor edges) is assigned here; the
// grammar itself stays opcode-agnostic.
func build(f *file) *ir.Module {
	m := ir.NewModule(unquote(f.Name))
	for _, fn := range f.Functions {
		m.AddFunction(buildFunction(fn))
	}
	for i, fn := range f.Functions {
		wireSuccessors(m.Functions()[i], fn)
	}
	return m
}

func buildFunction(fn *function) *ir.Function {
	f := &ir.Function{Name: strings.TrimPrefix(fn.Name, "@"), Variadic: fn.Variadic}
	for _, p := range fn.Params {
		f.Params = append(f.Params, ir.Param{Name: p.Name, Type: p.Type})
	}

	defs := map[string]*ir.Instr{} // SSA result name -> defining instruction, cumulative across blocks
	seq := 0
	for _, blk := range fn.Blocks {
		b := &ir.BasicBlock{Label: blk.Label}
		for _, in := range blk.Instructions {
			inst := buildInstr(seq, in, defs)
			seq++
			b.Instructions = append(b.Instructions, inst)
			if in.Result != "" {
				defs[in.Result] = inst
			}
		}
		f.AddBlock(b)
	}
	return f
}

// buildInstr converts one parsed instruction, classifying operands against
// the defs table built so far and assigning opcode-specific flags. "ret",
// "br", and "call"/"invoke" are the only opcodes with special meaning;
// everything else is an ordinary non-terminator instruction.
func buildInstr(seq int, in *instr, defs map[string]*ir.Instr) *ir.Instr {
	switch in.Opcode {
	case "call", "invoke":
		if len(in.Operands) == 0 {
			panic(errx.ShapeError(fmt.Errorf("irtext: %q has no callee operand", in.Opcode)))
		}
		target := buildOperand(in.Operands[0], defs)
		args := make([]*ir.Operand, 0, len(in.Operands)-1)
		for _, op := range in.Operands[1:] {
			args = append(args, buildOperand(op, defs))
		}
		inst := ir.NewInstr(seq, in.Opcode, in.Result, args)
		inst.MarkCall(target)
		if in.Opcode == "invoke" {
			inst.MarkTerminator()
		}
		return inst

	case "br":
		operands := buildOperands(in.Operands, defs)
		return ir.NewInstr(seq, in.Opcode, in.Result, operands).MarkBranch()

	case "ret":
		operands := buildOperands(in.Operands, defs)
		return ir.NewInstr(seq, in.Opcode, in.Result, operands).MarkTerminator()

	default:
		operands := buildOperands(in.Operands, defs)
		return ir.NewInstr(seq, in.Opcode, in.Result, operands)
	}
}

func buildOperands(ops []*operand, defs map[string]*ir.Instr) []*ir.Operand {
	out := make([]*ir.Operand, 0, len(ops))
	for _, op := range ops {
		out = append(out, buildOperand(op, defs))
	}
	return out
}

// buildOperand classifies a parsed operand by its lexical form: "%name"
// referring to a prior SSA result is OperandInstruction (with Def linked for
// equiv's recursive check); "%name" with no known definition is a function
// parameter, OperandOther; "@name" is a global/function reference,
// OperandOther; everything else (numbers, strings, debug metadata, bare
// identifiers such as block labels) is OperandConstant — their equivalence
// is decided purely by the token-wise text comparison already performed.
func buildOperand(op *operand, defs map[string]*ir.Instr) *ir.Operand {
	if strings.HasPrefix(op.Text, "%") {
		if def, ok := defs[op.Text]; ok {
			return &ir.Operand{Kind: ir.OperandInstruction, Text: op.Text, Def: def, Type: op.Type}
		}
		return &ir.Operand{Kind: ir.OperandOther, Text: op.Text, Type: op.Type}
	}
	if strings.HasPrefix(op.Text, "@") {
		return &ir.Operand{Kind: ir.OperandOther, Text: op.Text, Type: op.Type}
	}
	return &ir.Operand{Kind: ir.OperandConstant, Text: op.Text, Type: op.Type}
}

// unquote strips the surrounding quotes the String token keeps on its raw
// value; a malformed literal is a loader bug, not a user-facing condition,
// since the lexer only produces well-formed quoted strings.
func unquote(s string) string {
	v, err := strconv.Unquote(s)
	if err != nil {
		return strings.Trim(s, `"`)
	}
	return v
}

// wireSuccessors links each block's control-flow edges after every block in
// the function is known: a "br"/"invoke" instruction's operands that name a
// block label in this function become successor edges, in operand order.
func wireSuccessors(f *ir.Function, fn *function) {
	for _, blk := range fn.Blocks {
		b, _ := f.Block(blk.Label)
		term := b.Terminator()
		if !term.IsBranch() && !(term.IsCall() && term.IsTerminator()) {
			continue
		}
		for _, op := range term.Operands {
			if target, ok := f.Block(op.Text); ok {
				b.AddSuccessor(target)
			}
		}
	}
}

package ir

import "strings"

// ResolveDirect strips a leading "@" and a "bitcast " pointer-cast wrapper to
// find the concrete function a call operand names, when it names one
// directly. The IR model has no aliases, so no alias-to-aliasee chasing is
// done. ok is false when the operand is not a direct reference to a
// function (i.e. the call is indirect, spec §4.4).
func (m *Module) ResolveDirect(target *Operand) (*Function, bool) {
	name := strings.TrimPrefix(target.Text, "@")
	name = strings.TrimPrefix(name, "bitcast ")
	// A cast operand's canonical text can carry "(...)to @name" wrapping;
	// the callee name is always the last @-prefixed token.
	if idx := strings.LastIndex(name, "@"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.TrimRight(name, ")")
	if f, ok := m.Function(name); ok {
		return f, true
	}
	return nil, false
}

// PossibleCallees computes the over-approximate callee set of a call
// instruction (spec §4.4): the sole concrete function when the callee
// resolves directly, otherwise every function whose parameter list is
// prefix-compatible with the call's argument operands. Inline-assembly
// calls (Opcode == "call asm") are always skipped, per spec §4.4's "skipped
// throughout".
func (m *Module) PossibleCallees(call *Instr) []*Function {
	target, ok := call.CallTarget()
	if !ok || call.Opcode == "call asm" {
		return nil
	}
	if f, ok := m.ResolveDirect(target); ok {
		return []*Function{f}
	}

	args := call.Operands
	var out []*Function
	for _, name := range SortedFunctionNames(m) {
		f := m.functions[name]
		if prefixCompatible(f, args) {
			out = append(out, f)
		}
	}
	return out
}

// prefixCompatible reports whether f's parameter list is a prefix-compatible
// match for a call's argument operands: each positional argument's static
// type equals the corresponding parameter's type, and a variadic callee
// matches once the call supplies at least as many arguments as the callee
// has fixed parameters.
func prefixCompatible(f *Function, args []*Operand) bool {
	if !f.Variadic && len(args) != len(f.Params) {
		return false
	}
	if len(args) < len(f.Params) {
		return false
	}
	for i, p := range f.Params {
		if args[i].Type != p.Type {
			return false
		}
	}
	return true
}

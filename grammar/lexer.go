// Package grammar holds the stateful participle lexers shared by the
// instruction-text tokenizer (internal/equiv) and the toy textual-IR loader
// (internal/irtext). Keeping both lexers here, rather than duplicating the
// lexer.MustStateful boilerplate in each consumer, mirrors how this corpus
// keeps exactly one lexer definition per surface syntax.
package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// InstructionLexer tokenizes the canonical textual form of a single IR
// instruction (as rendered by ir.Instr.Text, which renders a call or
// invoke's callee as a leading `@name` operand). Token kinds are chosen so
// that the equivalence tolerances in internal/equiv — both sides `%...`,
// both sides `!...`, both sides containing `struct` — can be applied purely
// by inspecting a token's kind, without re-scanning its literal text.
// GlobalName (`@...`) is deliberately not tolerant: a call redirected to a
// different callee must make the instruction text differ.
var InstructionLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Meta", `![a-zA-Z0-9_.]*`, nil},
		{"SSAName", `%[a-zA-Z0-9_.]*`, nil},
		{"GlobalName", `@[a-zA-Z0-9_.]*`, nil},
		{"StructTok", `([a-zA-Z_][a-zA-Z0-9_.]*)?struct[a-zA-Z0-9_.]*`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_.]*`, nil},
		{"Number", `-?(0x[0-9a-fA-F]+|[0-9]+)`, nil},
		{"String", `"(\\"|[^"])*"`, nil},
		{"Operator", `(==|!=|<=|>=|->|=)`, nil},
		{"Punctuation", `[{}\[\]:,;()*]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})

// IRLexer tokenizes the toy textual IR format consumed by internal/irtext,
// the stand-in for a real bitcode loader (see SPEC_FULL.md "Open Questions").
// Its Operator rule additionally recognizes "..." for variadic parameter
// lists, which instruction text never contains.
var IRLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"DocComment", `;;[^\n]*`, nil},
		{"Meta", `![a-zA-Z0-9_.]*`, nil},
		{"SSAName", `%[a-zA-Z0-9_.]*`, nil},
		{"GlobalName", `@[a-zA-Z0-9_.]*`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_.]*`, nil},
		{"Number", `-?(0x[0-9a-fA-F]+|[0-9]+)`, nil},
		{"String", `"(\\"|[^"])*"`, nil},
		{"Operator", `(==|!=|<=|>=|->|=|\.\.\.)`, nil},
		{"Punctuation", `[{}\[\]:,;()*]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})

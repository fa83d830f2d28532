// Package equiv is the Instruction Equivalence component (spec §4.2): it
// decides whether two instructions are equivalent modulo operand-name
// aliasing, debug metadata, and struct-type numbering, then recurses into
// operand definitions.
package equiv

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"

	"klee-compare/grammar"
	"klee-compare/internal/errx"
	"klee-compare/token"
)

// Token is one lexical token of an instruction's canonical text.
type Token struct {
	Kind  token.Kind
	Value string
}

// Tokenize runs the instruction-text lexer over s and returns its tokens
// with whitespace elided, in source order. Panics with a shape error when s
// cannot be tokenized (the printer and lexer have drifted apart).
func Tokenize(s string) []Token {
	lex, err := grammar.InstructionLexer.LexString("", s)
	if err != nil {
		// The instruction lexer's rules cover every character class the
		// canonical printer ever emits; a lex failure here means Text()
		// produced something the printer and lexer have drifted on, which
		// is an internal-shape bug (spec §7 category 3), not a normal error.
		panic(errx.ShapeError(fmt.Errorf("equiv: failed to tokenize instruction text %q: %w", s, err)))
	}

	symbols := grammar.InstructionLexer.Symbols()
	names := make(map[lexer.TokenType]string, len(symbols))
	for name, tt := range symbols {
		names[tt] = name
	}

	var out []Token
	for {
		tok, err := lex.Next()
		if err != nil {
			panic(errx.ShapeError(fmt.Errorf("equiv: failed to tokenize instruction text %q: %w", s, err)))
		}
		if tok.EOF() {
			break
		}
		kind := token.Kind(names[tok.Type])
		if kind == token.Whitespace {
			continue
		}
		out = append(out, Token{Kind: kind, Value: tok.Value})
	}
	return out
}

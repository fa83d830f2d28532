// Package token names the lexical token kinds produced by the
// participle lexers in package grammar, and the equivalence tolerance
// each kind gets under the instruction-text comparison rules (spec §4.2):
// a Meta or SSAName or StructTok token is tolerated when BOTH sides of a
// comparison carry the same kind at that position, regardless of literal
// text; every other kind must match byte-for-byte.
package token

type Kind string

const (
	Meta        Kind = "Meta"        // !dbg, !0, !tbaa.* — debug/metadata
	SSAName     Kind = "SSAName"     // %1, %foo — SSA value names
	StructTok   Kind = "StructTok"   // struct.Foo.3 — generated struct numbering (%struct.Foo.3 lexes as SSAName)
	GlobalName  Kind = "GlobalName"  // @callee
	Ident       Kind = "Ident"
	Number      Kind = "Number"
	String      Kind = "String"
	Operator    Kind = "Operator"
	Punctuation Kind = "Punctuation"
	DocComment  Kind = "DocComment"
	Whitespace  Kind = "Whitespace"
	EOF         Kind = "EOF"
)

// Tolerant reports whether two tokens of this kind are considered equal
// purely by virtue of sharing the kind — the `%`/`!`/`struct` tolerances of
// spec §4.2 — as opposed to requiring identical literal text.
func (k Kind) Tolerant() bool {
	switch k {
	case Meta, SSAName, StructTok:
		return true
	default:
		return false
	}
}

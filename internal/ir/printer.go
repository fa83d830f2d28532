package ir

import (
	"fmt"
	"strings"
)

// Printer renders a Module to a human-readable listing, in the teacher's
// indent-and-writeLine idiom (see the original kanso IR printer this is
// adapted from).
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter creates an empty printer.
func NewPrinter() *Printer { return &Printer{} }

// Print returns a listing of every function, block, and instruction in m.
func Print(m *Module) string {
	p := NewPrinter()
	p.printModule(m)
	return p.output.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printModule(m *Module) {
	p.writeLine("MODULE %s", m.Name)
	for _, f := range m.Functions() {
		p.printFunction(f)
	}
}

func (p *Printer) printFunction(f *Function) {
	p.writeLine("")
	params := make([]string, len(f.Params))
	for i, param := range f.Params {
		params[i] = fmt.Sprintf("%s: %s", param.Name, param.Type)
	}
	p.writeLine("FUNCTION %s(%s)", f.Name, strings.Join(params, ", "))
	p.indent++
	for _, b := range f.Blocks {
		p.printBlock(b)
	}
	p.indent--
}

func (p *Printer) printBlock(b *BasicBlock) {
	succs := make([]string, len(b.Successors))
	for i, s := range b.Successors {
		succs[i] = s.Label
	}
	p.writeLine("%s: -> [%s]", b.Label, strings.Join(succs, ", "))
	p.indent++
	for _, inst := range b.Instructions {
		p.writeLine("%s", inst.Text())
	}
	p.indent--
}

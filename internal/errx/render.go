package errx

import (
	"fmt"

	"github.com/fatih/color"
)

// categoryColor mirrors the teacher's getLevelColor: one SprintFunc per
// category, bold for anything fatal.
func categoryColor(c Category) func(a ...interface{}) string {
	switch c {
	case Config:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case Filesystem:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Shape:
		return color.New(color.FgMagenta, color.Bold).SprintFunc()
	case Replay:
		return color.New(color.FgCyan).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

// Render formats e for the operator: "error[shape]: <message>" with the
// category tag colorized the way the teacher colorizes its diagnostic
// level tag.
func Render(e *Error) string {
	tag := categoryColor(e.Category)(string(e.Category))
	label := "error"
	if !e.Fatal {
		label = "warning"
	}
	return fmt.Sprintf("%s[%s]: %s", label, tag, e.Err)
}

// Classify inspects a value recovered from a panic (raised by code that hit
// an IR-shape surprise, spec §7 category 3) and returns it as an *Error when
// that's what it is. Callers must call the builtin recover() themselves,
// directly inside their own deferred function — recover only stops a panic
// when called directly by the deferred function, not by a helper it calls —
// then pass the result here for classification:
//
//	defer func() {
//	    if e, ok := errx.Classify(recover()); ok {
//	        fmt.Fprintln(os.Stderr, errx.Render(e))
//	        os.Exit(1)
//	    }
//	}()
func Classify(r any) (*Error, bool) {
	if r == nil {
		return nil, false
	}
	e, ok := r.(*Error)
	return e, ok
}

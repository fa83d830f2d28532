// Package errx is this module's error taxonomy (spec §7): four categories —
// Configuration, Filesystem, IR-shape-surprise, Replay failure — each with
// its own fatal/recoverable default, rendered for the operator the way the
// teacher's internal/errors package renders compiler diagnostics: a colored
// category tag via github.com/fatih/color, reused here unchanged for concern
// rather than swapped for a stdlib-only rendering.
package errx

import "fmt"

// Category is one of the four error classes spec §7 names.
type Category string

const (
	// Config covers a missing environment variable or missing input file:
	// always fatal, reported before any analysis begins.
	Config Category = "config"
	// Filesystem covers an output directory that cannot be created or a
	// dump file that cannot be moved. Fatal before analysis starts;
	// recoverable (log and treat as an empty dump) once replay is underway —
	// callers choose which via the fatal argument to FilesystemError().
	Filesystem Category = "filesystem"
	// Shape covers an IR-shape surprise: an operand-count disagreement
	// between textually-equal instructions, or an alias that does not
	// resolve to a function. Always fatal — spec §7 category 3 requires the
	// analyzer to abort rather than risk emitting an untrustworthy priority.
	Shape Category = "shape"
	// Replay covers a crashing or non-zero-exit replay child. Always
	// recoverable: the resulting dump (possibly empty) is compared as-is
	// and the campaign continues.
	Replay Category = "replay"
)

// Error is a structured, categorized error value. Category and Fatal drive
// CLI rendering: Render tags the message with Category and labels it
// "error" when Fatal, "warning" otherwise. cmd/klee-compare exits non-zero
// on any error it receives, whatever its Fatal flag.
type Error struct {
	Category Category
	Fatal    bool
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Category, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ConfigError wraps err as a fatal Configuration error.
func ConfigError(err error) *Error {
	return &Error{Category: Config, Fatal: true, Err: err}
}

// FilesystemError wraps err as a Filesystem error with caller-chosen
// severity (fatal before analysis starts; recoverable once replay is
// underway, per spec §7 category 2).
func FilesystemError(err error, fatal bool) *Error {
	return &Error{Category: Filesystem, Fatal: fatal, Err: err}
}

// ShapeError wraps err as a fatal IR-shape-surprise error (spec §7 category
// 3). Callers typically panic with this value rather than return it — an
// analyzer in this state cannot trust any priority it would go on to
// compute, so it aborts rather than unwinds normally.
func ShapeError(err error) *Error {
	return &Error{Category: Shape, Fatal: true, Err: err}
}

// ReplayError wraps err as a recoverable Replay error (spec §7 category 4):
// the driver logs it, treats the dump as-is (possibly empty), and continues
// the campaign.
func ReplayError(err error) *Error {
	return &Error{Category: Replay, Fatal: false, Err: err}
}

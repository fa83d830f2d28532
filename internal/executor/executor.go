// Package executor wraps the opaque CLI contract spec §6 documents for the
// symbolic executor: two invocation shapes (primary, replay), resolved
// against an installation directory named by an environment variable
// (internal/config). The executor itself, and its bitcode loader, are
// external collaborators this module never embeds or reimplements (spec §1
// Non-goals) — this package only knows how to find the binary and build its
// argv, the same "shell out to a well-known CLI" pattern the corpus's own
// child-process callers use for os/exec: no third-party process-management
// library in this corpus's stack replaces the standard library's exec.Cmd
// for spawning an arbitrary external binary, so this is one of the few
// places this module reaches for os/exec directly (recorded in DESIGN.md).
package executor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"klee-compare/internal/errx"
)

// Executor resolves and invokes the executor binary under home/bin/name.
type Executor struct {
	home string
	name string
	libc string
}

// New returns an Executor rooted at home (spec §6 "Environment"), invoking
// the binary named name with --libc=libc on every run.
func New(home, name, libc string) *Executor {
	return &Executor{home: home, name: name, libc: libc}
}

// Path resolves the executable, failing with a Configuration error (spec §7
// category 1) if it is not present — the exit-code contract (§6) requires
// this module to fail fast rather than let the shell report "not found".
func (e *Executor) Path() (string, error) {
	path := filepath.Join(e.home, "bin", e.name)
	if _, err := os.Stat(path); err != nil {
		return "", errx.ConfigError(fmt.Errorf("executor: %s not found under %s/bin: %w", e.name, e.home, err))
	}
	return path, nil
}

// Primary builds the primary invocation (spec §6): analysis driven by the
// patch-priority search heuristic, comparing original against patched, with
// test output written to outputDirName (relative to workDir, normally
// "klee-out" inside out-N/).
func (e *Executor) Primary(ctx context.Context, workDir, outputDirName, original, patched string, programArgs []string) (*exec.Cmd, error) {
	path, err := e.Path()
	if err != nil {
		return nil, err
	}

	argv := []string{
		"--libc=" + e.libc,
		"--posix-runtime",
		"--output-dir", outputDirName,
		"--search", "patch-priority",
		"--compare-bitcode", original,
	}
	argv = append(argv, programArgs...)
	argv = append(argv, patched)

	cmd := exec.CommandContext(ctx, path, argv...)
	cmd.Dir = workDir
	return cmd, nil
}

// Replay builds a replay invocation (spec §6): posix-compare mode, replaying
// a single ktest file against one module, with output written to outputDir.
func (e *Executor) Replay(ctx context.Context, workDir, outputDir, ktestFile, module string) (*exec.Cmd, error) {
	path, err := e.Path()
	if err != nil {
		return nil, err
	}

	argv := []string{
		"--libc=" + e.libc,
		"--posix-runtime",
		"--posix-compare",
		"--output-dir", outputDir,
		"--replay-ktest-file", ktestFile,
		module,
	}

	cmd := exec.CommandContext(ctx, path, argv...)
	cmd.Dir = workDir
	return cmd, nil
}

// Package replay is the Differential Replay Driver (spec §4.7): the single
// consumer of internal/watch's ktest queue. For every generated test it
// replays both modules, compares their observable output, and appends one
// line to results.txt — isolating any single replay crash (spec §7 category
// 4) so the rest of the campaign continues.
package replay

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"klee-compare/internal/errx"
	"klee-compare/internal/executor"
	"klee-compare/internal/watch"
)

const (
	kleeOutDirName    = "klee-out"
	patchedReplayDir  = "PATCHED"
	originalReplayDir = "ORIGINAL"
	dumpFileName      = "dump.log"
)

// Driver runs C7's consumer loop.
type Driver struct {
	queue    *watch.Queue
	exec     *executor.Executor
	workDir  string // out-N/, the executor's and replay children's working directory
	dumpPath string // the well-known scratch path the POSIX runtime writes to
	patched  string
	original string
	poll     time.Duration
	logger   zerolog.Logger

	paths       int
	differences int
}

// New builds a Driver. dumpPath is the fixed scratch path spec §6's
// "Dump-file contract" describes; poll is the empty-queue back-off (spec
// §4.7 "≈500ms").
func New(queue *watch.Queue, exec *executor.Executor, workDir, dumpPath, patchedModule, originalModule string, poll time.Duration, logger zerolog.Logger) *Driver {
	return &Driver{
		queue:    queue,
		exec:     exec,
		workDir:  workDir,
		dumpPath: dumpPath,
		patched:  patchedModule,
		original: originalModule,
		poll:     poll,
		logger:   logger.With().Str("component", "replay").Logger(),
	}
}

// Run drains the queue until done is set (by the Supervisor, spec §4.8) and
// the queue is empty, then appends the summary line and returns. ctx
// cancellation during an idle poll stops the loop immediately; a replay
// already in flight always finishes before Run checks done again, so no
// partial result line is ever written (spec §5 "Cancellation").
func (d *Driver) Run(ctx context.Context, done *atomic.Bool) error {
	resultsPath := filepath.Join(d.workDir, "results.txt")
	f, err := os.Create(resultsPath)
	if err != nil {
		return errx.FilesystemError(fmt.Errorf("replay: creating %s: %w", resultsPath, err), true)
	}
	defer f.Close()

	for {
		name, ok := d.queue.TryPop()
		if ok {
			d.replayOne(name, f)
			continue
		}

		if done.Load() {
			// TryPop already reported empty above; nothing left to drain.
			break
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(d.poll):
		}
	}

	fmt.Fprintf(f, "paths compared = %d\n", d.paths)
	fmt.Fprintf(f, "paths differing = %d\n", d.differences)
	d.logger.Info().Int("paths", d.paths).Int("differences", d.differences).Msg("replay campaign finished")
	return nil
}

// replayOne runs both replays for test name, compares their dumps, appends
// the result line, and cleans up the transient output directories (spec
// §4.7's final bullet) before returning.
func (d *Driver) replayOne(name string, results io.Writer) {
	ktestFile := filepath.Join(kleeOutDirName, name)

	patchedLines := d.runOneReplay(patchedReplayDir, d.patched, ktestFile)
	originalLines := d.runOneReplay(originalReplayDir, d.original, ktestFile)

	differ := dumpsDiffer(patchedLines, originalLines)
	d.paths++
	status := "MATCH"
	if differ {
		d.differences++
		status = "DIFFER"
	}
	fmt.Fprintf(results, "Outputs %s on test %s\n", status, name)

	os.RemoveAll(filepath.Join(d.workDir, patchedReplayDir))
	os.RemoveAll(filepath.Join(d.workDir, originalReplayDir))
}

// runOneReplay spawns one replay child, moves its dump into outDirName, and
// returns the dump's lines. A crashing or non-zero-exit child (spec §7
// category 4) is logged and otherwise ignored: the dump — possibly empty,
// possibly partial — is compared exactly as a successful run's would be.
//
// The child is built against context.Background(), deliberately detached
// from the Supervisor's teardown cancellation: spec §5 requires the driver
// to finish its current pair of replays before exiting, so no in-flight
// replay may be killed by the done/cancel signal that stops the watcher.
func (d *Driver) runOneReplay(outDirName, module, ktestFile string) []string {
	outDir := filepath.Join(d.workDir, outDirName)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		d.logger.Warn().Err(err).Str("dir", outDir).Msg("could not create replay output directory")
	}

	cmd, err := d.exec.Replay(context.Background(), d.workDir, outDirName, ktestFile, module)
	if err != nil {
		d.logger.Warn().Err(err).Msg("could not build replay command")
		return d.moveDump(outDir)
	}
	if err := cmd.Run(); err != nil {
		d.logger.Warn().Err(err).Str("module", module).Str("test", ktestFile).Msg("replay child exited non-zero")
	}
	return d.moveDump(outDir)
}

// moveDump relocates the well-known scratch dump into outDir (spec §4.7:
// "move the side-effect dump file from its well-known scratch path...If no
// dump existed, create an empty one"), then reads it back as lines.
func (d *Driver) moveDump(outDir string) []string {
	dest := filepath.Join(outDir, dumpFileName)
	if err := os.Rename(d.dumpPath, dest); err != nil {
		if !os.IsNotExist(err) {
			d.logger.Warn().Err(err).Msg("failed to move dump file; treating as empty (spec §7 category 2)")
		}
		if werr := os.WriteFile(dest, nil, 0o644); werr != nil {
			d.logger.Warn().Err(werr).Msg("failed to create empty dump placeholder")
		}
	}
	return readDumpLines(dest)
}

func readDumpLines(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return nil
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// dumpsDiffer reports whether two dumps differ (spec §4.7): any
// corresponding line unequal, or one stream longer than the other.
func dumpsDiffer(a, b []string) bool {
	if len(a) != len(b) {
		return true
	}
	for i := range a {
		if a[i] != b[i] {
			return true
		}
	}
	return false
}

// Package supervisor is C8 (spec §4.8): the process that owns one run end
// to end. It picks a fresh out-N/ directory, launches the primary executor,
// starts the watcher and replay driver alongside it, and tears everything
// down once the executor exits — the actor-owns-its-children shape the
// nmxmxh-inos_v1 kernel supervisor uses, adapted here onto
// golang.org/x/sync/errgroup instead of a hand-rolled sync.WaitGroup, since
// this supervisor only ever has the two children and wants their first
// error surfaced rather than silently swallowed.
package supervisor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"klee-compare/internal/config"
	"klee-compare/internal/errx"
	"klee-compare/internal/executor"
	"klee-compare/internal/replay"
	"klee-compare/internal/watch"
)

const (
	kleeOutDirName  = "klee-out"
	execLogFileName = "klee_out.txt"

	// drainDelay is the "sleeps briefly to drain the queue" pause spec §4.8
	// inserts between the primary executor exiting and done being set, so
	// any test file event still in flight reaches the watcher first.
	drainDelay = 200 * time.Millisecond
)

// Supervisor runs one full patch-directed comparison campaign.
type Supervisor struct {
	cfg    *config.Config
	exec   *executor.Executor
	logger zerolog.Logger
}

// New builds a Supervisor from a validated Config and the executor it
// resolves to.
func New(cfg *config.Config, exec *executor.Executor, logger zerolog.Logger) *Supervisor {
	return &Supervisor{cfg: cfg, exec: exec, logger: logger.With().Str("component", "supervisor").Logger()}
}

// Run executes one campaign and returns the process exit code spec §6
// documents: 0 on normal completion, non-zero if the executor cannot be
// located, the output directory cannot be created, or the primary replayer
// cannot be started.
func (s *Supervisor) Run(ctx context.Context) int {
	outDir, n, err := createOutputDir(s.cfg.OutputRoot)
	if err != nil {
		s.logger.Error().Err(err).Msg("could not create output directory")
		return 1
	}
	s.logger.Info().Str("dir", outDir).Int("n", n).Msg("created output directory")

	kleeOut := filepath.Join(outDir, kleeOutDirName)
	if err := os.MkdirAll(kleeOut, 0o755); err != nil {
		s.logger.Error().Err(err).Msg("could not create klee-out directory")
		return 1
	}

	if _, err := s.exec.Path(); err != nil {
		s.logger.Error().Err(err).Msg("could not locate executor")
		return 1
	}

	queue := watch.NewQueue(64)
	watcher, err := watch.New(kleeOut, queue, s.logger)
	if err != nil {
		s.logger.Error().Err(err).Msg("could not install watcher")
		return 1
	}
	driver := replay.New(queue, s.exec, outDir, s.cfg.DumpScratchPath, s.cfg.PatchedPath, s.cfg.OriginalPath,
		time.Duration(s.cfg.ReplayPollInterval)*time.Millisecond, s.logger)

	childCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var done atomic.Bool
	var g errgroup.Group
	g.Go(func() error { return watcher.Run(childCtx) })
	// The driver runs on ctx, not childCtx: it stops through done after
	// draining the queue, so cancel() below only stops the watcher.
	g.Go(func() error { return driver.Run(ctx, &done) })

	exitCode := s.runPrimary(ctx, outDir)

	time.Sleep(drainDelay)
	done.Store(true) // release: C7 observes this before reading the now-final queue state
	cancel()         // signal the watcher to stop its blocking read

	if err := g.Wait(); err != nil {
		s.logger.Warn().Err(err).Msg("a child task returned an error")
	}

	return exitCode
}

// runPrimary starts and waits for the primary executor invocation, mirroring
// spec §6's argv contract exactly; its stdout/stderr are captured to
// klee_out.txt.
func (s *Supervisor) runPrimary(ctx context.Context, outDir string) int {
	logPath := filepath.Join(outDir, execLogFileName)
	logFile, err := os.Create(logPath)
	if err != nil {
		s.logger.Error().Err(err).Msg("could not create executor log file")
		return 1
	}
	defer logFile.Close()

	cmd, err := s.exec.Primary(ctx, outDir, kleeOutDirName, s.cfg.OriginalPath, s.cfg.PatchedPath, s.cfg.ProgramArgs)
	if err != nil {
		s.logger.Error().Err(err).Msg("could not build primary executor command")
		return 1
	}
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Start(); err != nil {
		s.logger.Error().Err(err).Msg("could not start primary executor")
		return 1
	}
	if err := cmd.Wait(); err != nil {
		s.logger.Warn().Err(err).Msg("primary executor exited with an error")
	}
	return 0
}

// createOutputDir creates out-N for the smallest non-negative N under root
// for which creation succeeds (spec §4.8).
func createOutputDir(root string) (dir string, n int, err error) {
	for i := 0; ; i++ {
		candidate := filepath.Join(root, fmt.Sprintf("out-%d", i))
		mkErr := os.Mkdir(candidate, 0o755)
		if mkErr == nil {
			return candidate, i, nil
		}
		if !os.IsExist(mkErr) {
			return "", 0, errx.FilesystemError(fmt.Errorf("supervisor: creating %s: %w", candidate, mkErr), true)
		}
	}
}

package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"klee-compare/internal/errx"
)

const (
	ktestPrefix = "test"
	ktestSuffix = ".ktest"
	ktestLength = 16 // spec §4.6: "total length 16"
)

// Watcher is C6: it watches dir for file-creation events and pushes every
// name matching the ktest filename shape onto a shared Queue, in emission
// order. Install it (New) before starting the executor so no test can be
// missed, then run it (Run) on its own goroutine.
type Watcher struct {
	dir    string
	queue  *Queue
	logger zerolog.Logger
	fw     *fsnotify.Watcher
}

// New opens a filesystem watch on dir. Failing to open the watch is a
// Filesystem error (spec §7 category 2), always fatal — the harness must
// not start the executor if it cannot observe the test directory.
func New(dir string, queue *Queue, logger zerolog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errx.FilesystemError(fmt.Errorf("watch: creating fsnotify watcher: %w", err), true)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, errx.FilesystemError(fmt.Errorf("watch: watching %s: %w", dir, err), true)
	}
	return &Watcher{dir: dir, queue: queue, logger: logger.With().Str("component", "watch").Logger(), fw: fw}, nil
}

// Run blocks, pushing matching creation events onto the queue, until ctx is
// canceled (the Supervisor's cooperative teardown signal, spec §5) or the
// underlying watch closes. Cancellation interrupts the blocking read
// without waiting for another event.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fw.Close()
	w.logger.Debug().Str("dir", w.dir).Msg("watch installed")

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug().Msg("watch stopping")
			return nil

		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Base(event.Name)
			if !isKtestName(name) {
				continue
			}
			w.queue.Push(name)
			w.logger.Debug().Str("test", name).Msg("queued test file")

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("watch error")
		}
	}
}

// isKtestName reports whether name has the shape spec §4.6 describes: the
// "test" prefix, the ".ktest" extension, an all-digit run between them, and
// total length 16 — the invariant this implementation treats as primary
// (see DESIGN.md for the digit-count note).
func isKtestName(name string) bool {
	if len(name) != ktestLength {
		return false
	}
	if !strings.HasPrefix(name, ktestPrefix) || !strings.HasSuffix(name, ktestSuffix) {
		return false
	}
	digits := name[len(ktestPrefix) : len(name)-len(ktestSuffix)]
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

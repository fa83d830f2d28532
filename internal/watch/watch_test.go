package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"klee-compare/internal/errx"
	"klee-compare/internal/watch"
)

func TestWatcher_QueuesOnlyMatchingKtestNames(t *testing.T) {
	dir := t.TempDir()
	queue := watch.NewQueue(8)
	w, err := watch.New(dir, queue, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watch a moment to install before writing files (mirrors the
	// real install-before-executor-starts ordering, spec §4.6).
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "test000001.ktest"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test000002.ktest"), []byte("x"), 0o644))

	require.Eventually(t, func() bool {
		return queue.Len() >= 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop after cancellation")
	}

	first, ok := queue.TryPop()
	require.True(t, ok)
	require.Equal(t, "test000001.ktest", first)
	second, ok := queue.TryPop()
	require.True(t, ok)
	require.Equal(t, "test000002.ktest", second)
}

func TestNew_MissingDirectoryIsFilesystemError(t *testing.T) {
	_, err := watch.New(filepath.Join(t.TempDir(), "does-not-exist"), watch.NewQueue(1), zerolog.Nop())
	require.Error(t, err)
	e, ok := err.(*errx.Error)
	require.True(t, ok)
	require.Equal(t, errx.Filesystem, e.Category)
}

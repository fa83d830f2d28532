package errx_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"klee-compare/internal/errx"
)

func TestConfigError_IsFatal(t *testing.T) {
	e := errx.ConfigError(errors.New("missing KLEE_HOME"))
	require.True(t, e.Fatal)
	require.Equal(t, errx.Config, e.Category)
	require.ErrorIs(t, e, e.Err)
}

func TestFilesystemError_SeverityIsCallerChosen(t *testing.T) {
	fatal := errx.FilesystemError(errors.New("mkdir out-0"), true)
	recoverable := errx.FilesystemError(errors.New("move dump"), false)
	require.True(t, fatal.Fatal)
	require.False(t, recoverable.Fatal)
}

func TestClassify_OnlyAcceptsErrxError(t *testing.T) {
	e, ok := errx.Classify(errx.ShapeError(errors.New("operand count mismatch")))
	require.True(t, ok)
	require.Equal(t, errx.Shape, e.Category)

	_, ok = errx.Classify("not an errx.Error")
	require.False(t, ok)

	_, ok = errx.Classify(nil)
	require.False(t, ok)
}

func TestRender_IncludesCategoryAndMessage(t *testing.T) {
	out := errx.Render(errx.ReplayError(errors.New("replay child exited 1")))
	require.Contains(t, out, "replay child exited 1")
	tagEnd := strings.Index(out, "]: ")
	require.Positive(t, tagEnd)
	require.Contains(t, out[:tagEnd], string(errx.Replay))
}

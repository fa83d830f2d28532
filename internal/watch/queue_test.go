package watch_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"klee-compare/internal/watch"
)

func TestQueue_PushThenTryPopPreservesOrder(t *testing.T) {
	q := watch.NewQueue(4)
	q.Push("test000001.ktest")
	q.Push("test000002.ktest")

	name, ok := q.TryPop()
	require.True(t, ok)
	require.Equal(t, "test000001.ktest", name)

	name, ok = q.TryPop()
	require.True(t, ok)
	require.Equal(t, "test000002.ktest", name)
}

func TestQueue_TryPopOnEmptyReturnsFalse(t *testing.T) {
	q := watch.NewQueue(4)
	_, ok := q.TryPop()
	require.False(t, ok)
}

func TestQueue_LenReflectsPendingEntries(t *testing.T) {
	q := watch.NewQueue(4)
	require.Equal(t, 0, q.Len())
	q.Push("test000001.ktest")
	require.Equal(t, 1, q.Len())
	q.TryPop()
	require.Equal(t, 0, q.Len())
}

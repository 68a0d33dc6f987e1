package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDInQueue(t *testing.T) {
	// No wraparound: window [2, 5).
	assert.True(t, IDInQueue(2, 5, 2))
	assert.True(t, IDInQueue(2, 5, 4))
	assert.False(t, IDInQueue(2, 5, 5))
	assert.False(t, IDInQueue(2, 5, 1))

	// Wrapped: window [6, 2) on an 8-slot ring.
	assert.True(t, IDInQueue(6, 2, 7))
	assert.True(t, IDInQueue(6, 2, 0))
	assert.True(t, IDInQueue(6, 2, 1))
	assert.False(t, IDInQueue(6, 2, 2))
	assert.False(t, IDInQueue(6, 2, 5))
}

func TestOptCellPushReturnsWindow(t *testing.T) {
	q := NewOptCell[string](4)

	headAtPush, id, err := q.Push("a")
	require.Nil(t, err)
	assert.Equal(t, uint32(0), headAtPush)
	assert.Equal(t, uint32(0), id)

	_, id2, err := q.Push("b")
	require.Nil(t, err)
	assert.Equal(t, uint32(1), id2)
}

func TestOptCellTryPullIDThenPullSkips(t *testing.T) {
	q := NewOptCell[string](4)
	_, id0, _ := q.Push("a")
	_, _, _ = q.Push("b")

	v, ok := q.TryPullID(id0)
	require.True(t, ok)
	assert.Equal(t, "a", v)

	// Second attempt on the same id must fail: already consumed.
	_, ok = q.TryPullID(id0)
	assert.False(t, ok)

	// Normal Pull now skips the emptied cell and returns "b".
	v, qerr := q.Pull()
	require.Nil(t, qerr)
	assert.Equal(t, "b", v)
}

func TestOptCellTryPullIDOutsideWindow(t *testing.T) {
	q := NewOptCell[int](4)
	_, _, _ = q.Push(1)
	_, _ = q.Pull()

	_, ok := q.TryPullID(99)
	assert.False(t, ok)
}

func TestOptCellFull(t *testing.T) {
	q := NewOptCell[int](2)
	_, _, err := q.Push(1)
	require.Nil(t, err)
	_, _, err = q.Push(2)
	require.NotNil(t, err)
	assert.Equal(t, ErrFull, err.Kind)
}

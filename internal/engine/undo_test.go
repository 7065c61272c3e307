package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fanspark/discovery/internal/engine"
)

func TestUndoStack_PushPopOrder(t *testing.T) {
	u := engine.NewUndoStack(5)
	u.Push(0)
	u.Push(1)
	u.Push(2)

	idx, ok := u.Pop()
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	idx, ok = u.Pop()
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestUndoStack_EmptyPop(t *testing.T) {
	u := engine.NewUndoStack(5)
	_, ok := u.Pop()
	assert.False(t, ok)
}

func TestUndoStack_BoundedEvictsOldest(t *testing.T) {
	u := engine.NewUndoStack(5)
	for i := 0; i < 8; i++ {
		u.Push(i)
	}
	assert.Equal(t, 5, u.Len())
	assert.Equal(t, []int{3, 4, 5, 6, 7}, u.Entries())
}

func TestUndoStack_Clear(t *testing.T) {
	u := engine.NewUndoStack(5)
	u.Push(1)
	u.Push(2)
	u.Clear()
	assert.Equal(t, 0, u.Len())
	_, ok := u.Pop()
	assert.False(t, ok)
}

func TestUndoStack_DefaultDepth(t *testing.T) {
	u := engine.NewUndoStack(0)
	for i := 0; i < 10; i++ {
		u.Push(i)
	}
	assert.Equal(t, engine.DefaultUndoDepth, u.Len())
}

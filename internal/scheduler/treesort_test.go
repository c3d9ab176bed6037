package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeSorterPopsInTimeOrder(t *testing.T) {
	s := NewTreeSorter()
	s.Push(0, 5.0)
	s.Push(1, 1.0)
	s.Push(2, 3.0)

	var order []int
	for s.Len() > 0 {
		id, ok := s.Pop()
		require.True(t, ok)
		order = append(order, id)
	}
	assert.Equal(t, []int{1, 2, 0}, order)
}

func TestTreeSorterInvalidateRemovesMiddleElement(t *testing.T) {
	s := NewTreeSorter()
	s.Push(0, 1.0)
	s.Push(1, 2.0)
	s.Push(2, 3.0)
	s.Push(3, 4.0)

	s.Invalidate(2)
	assert.Equal(t, 3, s.Len())

	var order []int
	for s.Len() > 0 {
		id, _ := s.Pop()
		order = append(order, id)
	}
	assert.Equal(t, []int{0, 1, 3}, order)
}

func TestTreeSorterInvalidateUnknownIDIsNoop(t *testing.T) {
	s := NewTreeSorter()
	s.Push(0, 1.0)
	s.Invalidate(99)
	assert.Equal(t, 1, s.Len())
}

func TestTreeSorterPopEmptyReturnsFalse(t *testing.T) {
	s := NewTreeSorter()
	_, ok := s.Pop()
	assert.False(t, ok)
}

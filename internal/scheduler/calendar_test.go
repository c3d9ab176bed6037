package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarQueuePopsInTimeOrder(t *testing.T) {
	c := NewCalendarQueue(4, 1.0, 0)
	c.Push(0, 3.5)
	c.Push(1, 0.2)
	c.Push(2, 1.1)
	c.Push(3, 2.9)

	var order []int
	for {
		id, ok := c.Pop()
		if !ok {
			break
		}
		order = append(order, id)
	}
	assert.Equal(t, []int{1, 2, 3, 0}, order)
}

func TestCalendarQueueOverflowDrainsAcrossLaps(t *testing.T) {
	c := NewCalendarQueue(2, 1.0, 0)
	c.Push(0, 0.5)  // bucket 0
	c.Push(1, 5.5)  // past the 2-bucket horizon -> overflow

	id, ok := c.Pop()
	require.True(t, ok)
	assert.Equal(t, 0, id)

	id, ok = c.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, id, "overflow entry surfaces once the calendar advances far enough")
}

func TestCalendarQueueInvalidateRemovesPendingEntry(t *testing.T) {
	c := NewCalendarQueue(4, 1.0, 0)
	c.Push(0, 0.5)
	c.Push(1, 0.6)
	c.Invalidate(0)

	assert.Equal(t, 1, c.Len())
	id, ok := c.Pop()
	require.True(t, ok)
	assert.Equal(t, 1, id)
}

func TestCalendarQueueInvalidateFromOverflow(t *testing.T) {
	c := NewCalendarQueue(2, 1.0, 0)
	c.Push(0, 5.5)
	c.Invalidate(0)
	assert.Equal(t, 0, c.Len())
	_, ok := c.Pop()
	assert.False(t, ok)
}

package workqueue

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	var q Queue[int]
	assert.True(t, q.Empty())

	_, ok := q.Pop()
	assert.False(t, ok)

	for i := range 5 {
		q.Push(i)
	}
	head, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, 0, head)
	assert.Equal(t, 5, q.Len())

	if diff := cmp.Diff([]int{0, 1, 2, 3, 4}, q.Drain()); diff != "" {
		t.Errorf("drain order mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, q.Empty())
}

func TestQueue_CompactionKeepsOrder(t *testing.T) {
	var q Queue[int]
	var got []int
	next := 0
	// Interleave pushes and pops so the head crosses the compaction threshold
	// many times.
	for round := range 50 {
		for range 7 {
			q.Push(next)
			next++
		}
		for range 5 {
			v, ok := q.Pop()
			require.True(t, ok, "round %d", round)
			got = append(got, v)
		}
	}
	got = append(got, q.Drain()...)

	want := make([]int, next)
	for i := range want {
		want[i] = i
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	assert.LessOrEqual(t, len(q.items), compactAt*2)
}

func TestTwoPriority_DrainsPrioritizedFirst(t *testing.T) {
	var q TwoPriority[string]
	q.PushRegular("r1")
	q.PushPrioritized("p1")
	q.PushRegular("r2")
	q.PushPrioritized("p2")

	assert.Equal(t, 4, q.Len())

	var got []string
	for v, ok := q.Pop(); ok; v, ok = q.Pop() {
		got = append(got, v)
	}
	if diff := cmp.Diff([]string{"p1", "p2", "r1", "r2"}, got); diff != "" {
		t.Errorf("pop order mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, q.Empty())
}

func TestTwoPriority_EmptyRequiresBothLanes(t *testing.T) {
	var q TwoPriority[int]
	q.PushRegular(1)
	assert.False(t, q.Empty())
	q.Pop()
	assert.True(t, q.Empty())

	q.PushPrioritized(1)
	assert.False(t, q.Empty())
}

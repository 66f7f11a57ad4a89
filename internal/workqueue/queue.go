package workqueue

// compactAt is the minimum number of consumed slots before Queue considers
// shifting its backing array.
const compactAt = 32

// Queue is a FIFO with O(1) amortized Push and Pop. Consumed slots at the
// head are reclaimed once they make up at least half of the backing array.
//
// Queue is not safe for concurrent use.
type Queue[T any] struct {
	items []T
	head  int
}

// Push appends v at the tail.
func (q *Queue[T]) Push(v T) {
	q.items = append(q.items, v)
}

// Pop removes and returns the head. ok is false when the queue is empty.
func (q *Queue[T]) Pop() (v T, ok bool) {
	if q.head == len(q.items) {
		return v, false
	}
	v = q.items[q.head]
	var zero T
	q.items[q.head] = zero
	q.head++
	q.compact()
	return v, true
}

// Peek returns the head without removing it.
func (q *Queue[T]) Peek() (v T, ok bool) {
	if q.head == len(q.items) {
		return v, false
	}
	return q.items[q.head], true
}

func (q *Queue[T]) Len() int { return len(q.items) - q.head }

func (q *Queue[T]) Empty() bool { return q.Len() == 0 }

func (q *Queue[T]) compact() {
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
		return
	}
	if q.head < compactAt || q.head*2 < len(q.items) {
		return
	}
	n := copy(q.items, q.items[q.head:])
	clear(q.items[n:])
	q.items = q.items[:n]
	q.head = 0
}

// Drain removes every element and returns them in FIFO order.
func (q *Queue[T]) Drain() []T {
	out := make([]T, 0, q.Len())
	for v, ok := q.Pop(); ok; v, ok = q.Pop() {
		out = append(out, v)
	}
	return out
}

package workqueue

// TwoPriority is a pair of FIFO lanes. It is not safe for concurrent use;
// the event loop guards it with its own mutex.
type TwoPriority[T any] struct {
	prioritized Queue[T]
	regular     Queue[T]
}

// PushRegular enqueues a box-processing job.
func (q *TwoPriority[T]) PushRegular(v T) {
	q.regular.Push(v)
}

// PushPrioritized enqueues a UI job.
func (q *TwoPriority[T]) PushPrioritized(v T) {
	q.prioritized.Push(v)
}

// Pop returns the oldest prioritized job, or the oldest regular job when the
// prioritized lane is empty.
func (q *TwoPriority[T]) Pop() (T, bool) {
	if v, ok := q.prioritized.Pop(); ok {
		return v, true
	}
	return q.regular.Pop()
}

// Empty is true only when both lanes are empty.
func (q *TwoPriority[T]) Empty() bool {
	return q.prioritized.Empty() && q.regular.Empty()
}

func (q *TwoPriority[T]) Len() int {
	return q.prioritized.Len() + q.regular.Len()
}

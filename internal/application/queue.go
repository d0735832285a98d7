package app

import "sync"

// Queue неограниченная очередь между потоками.
// Pop блокируется до появления элемента или закрытия очереди.
type Queue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []T
	closed bool
}

// NewQueue создаёт пустую очередь
func NewQueue[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push добавляет элемент. Возвращает false, если очередь закрыта.
func (q *Queue[T]) Push(v T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.items = append(q.items, v)
	q.cond.Signal()
	return true
}

// Pop забирает первый элемент, блокируясь пока очередь пуста.
// После закрытия оставшиеся элементы ещё выдаются, затем возвращается false.
func (q *Queue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	return q.shift()
}

// TryPop забирает первый элемент без ожидания
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.shift()
}

// DrainLatest забирает все элементы и возвращает последний
func (q *Queue[T]) DrainLatest() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	last := q.items[len(q.items)-1]
	clear(q.items)
	q.items = q.items[:0]
	return last, true
}

// Len возвращает число элементов в очереди
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close закрывает очередь и будит ожидающих
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
}

func (q *Queue[T]) shift() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	v := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return v, true
}

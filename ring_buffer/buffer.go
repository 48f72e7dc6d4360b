package ring_buffer

// Buffer is a FIFO ring of items that grows when full. The VAD uses it as the
// rolling frame buffer: unbounded while speaking, trimmed from the front
// while idle.
type Buffer[T any] struct {
	buffer []T
	head   int
	size   int
}

func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}

	return &Buffer[T]{
		buffer: make([]T, capacity),
	}
}

func (r *Buffer[T]) Len() int {
	return r.size
}

// Push appends v at the back, growing the ring if needed.
func (r *Buffer[T]) Push(v T) {
	if r.size == len(r.buffer) {
		r.grow()
	}

	r.buffer[(r.head+r.size)%len(r.buffer)] = v
	r.size++
}

// TrimFront drops items from the front until at most max remain and reports
// how many were dropped.
func (r *Buffer[T]) TrimFront(max int) int {
	if max < 0 {
		max = 0
	}

	dropped := 0

	var zero T

	for r.size > max {
		r.buffer[r.head] = zero
		r.head = (r.head + 1) % len(r.buffer)
		r.size--
		dropped++
	}

	return dropped
}

// Read returns the items oldest first without removing them.
func (r *Buffer[T]) Read() []T {
	items := make([]T, r.size)
	for i := 0; i < r.size; i++ {
		items[i] = r.buffer[(r.head+i)%len(r.buffer)]
	}

	return items
}

// Drain returns the items oldest first and empties the buffer.
func (r *Buffer[T]) Drain() []T {
	items := r.Read()
	r.Clear()

	return items
}

func (r *Buffer[T]) Clear() {
	var zero T

	for i := range r.buffer {
		r.buffer[i] = zero
	}

	r.head = 0
	r.size = 0
}

func (r *Buffer[T]) grow() {
	grown := make([]T, len(r.buffer)*2)
	for i := 0; i < r.size; i++ {
		grown[i] = r.buffer[(r.head+i)%len(r.buffer)]
	}

	r.buffer = grown
	r.head = 0
}

package recast

// stack is a LIFO work list reused across flood fills.
type stack[T any] struct {
	data []T
}

func newStack[T any](capacity int) *stack[T] {
	return &stack[T]{data: make([]T, 0, capacity)}
}

func (s *stack[T]) Push(value T) {
	s.data = append(s.data, value)
}

// Pop panics on an empty stack, check Empty first.
func (s *stack[T]) Pop() T {
	e := s.data[len(s.data)-1]
	s.data = s.data[:len(s.data)-1]
	return e
}

func (s *stack[T]) Peek() T {
	return s.data[len(s.data)-1]
}

func (s *stack[T]) Len() int {
	return len(s.data)
}

func (s *stack[T]) Empty() bool {
	return len(s.data) == 0
}

// Clear keeps the backing array.
func (s *stack[T]) Clear() {
	s.data = s.data[:0]
}

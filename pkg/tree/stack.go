package tree

// Stack tracks which tree is current while trees are built. All node
// creation in a scope targets the top of the stack.
type Stack struct {
	trees []*Tree
}

// NewStack returns an empty stack.
func NewStack() *Stack {
	return &Stack{}
}

// Push makes t the current tree.
func (s *Stack) Push(t *Tree) {
	s.trees = append(s.trees, t)
}

// Pop removes and returns the current tree.
func (s *Stack) Pop() (*Tree, error) {
	if len(s.trees) == 0 {
		return nil, ErrEmptyStack
	}
	t := s.trees[len(s.trees)-1]
	s.trees[len(s.trees)-1] = nil
	s.trees = s.trees[:len(s.trees)-1]
	return t, nil
}

// Current returns the tree on top of the stack.
func (s *Stack) Current() (*Tree, error) {
	if len(s.trees) == 0 {
		return nil, ErrEmptyStack
	}
	return s.trees[len(s.trees)-1], nil
}

// Depth returns the number of trees on the stack.
func (s *Stack) Depth() int {
	return len(s.trees)
}

// Unwind pops trees until the stack is depth deep.
func (s *Stack) Unwind(depth int) {
	for len(s.trees) > depth {
		_, _ = s.Pop()
	}
}

// With pushes t, runs fn and restores the stack to its previous depth on
// every exit path, panics included.
func (s *Stack) With(t *Tree, fn func(*Tree) error) error {
	depth := s.Depth()
	s.Push(t)
	defer s.Unwind(depth)
	return fn(t)
}

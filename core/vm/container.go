// Copyright 2026 The gscore Authors
// This file is part of the gscore library.
//
// The gscore library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The gscore library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the gscore library. If not, see <http://www.gnu.org/licenses/>.

package vm

// Container is the frame stack of one execution thread. Only the top frame
// is active; frames below it are suspended callers.
type Container struct {
	stack    []*Context
	maxDepth int
}

// NewContainer returns an empty stack. A positive maxDepth caps the number
// of frames; zero leaves depth to be bounded by step metering alone.
func NewContainer(maxDepth int) *Container {
	return &Container{maxDepth: maxDepth}
}

// Push makes c the active frame.
func (s *Container) Push(c *Context) error {
	if s.maxDepth > 0 && len(s.stack) >= s.maxDepth {
		return ErrCallDepth
	}
	s.stack = append(s.stack, c)
	return nil
}

// Current returns the active frame.
func (s *Container) Current() (*Context, error) {
	if len(s.stack) == 0 {
		return nil, ErrNoActiveContext
	}
	return s.stack[len(s.stack)-1], nil
}

// Pop removes and returns the active frame.
func (s *Container) Pop() (*Context, error) {
	if len(s.stack) == 0 {
		return nil, ErrNoActiveContext
	}
	top := s.stack[len(s.stack)-1]
	s.stack[len(s.stack)-1] = nil
	s.stack = s.stack[:len(s.stack)-1]
	return top, nil
}

// Clear drops every frame.
func (s *Container) Clear() {
	for i := range s.stack {
		s.stack[i] = nil
	}
	s.stack = s.stack[:0]
}

// Depth returns the number of frames on the stack.
func (s *Container) Depth() int { return len(s.stack) }

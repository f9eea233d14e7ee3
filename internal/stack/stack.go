// Package stack implements the interpreter's runtime stack (component C):
// an ordered, index-0-is-top slice of Cells. Handlers never mutate a Stack
// in place — every opcode in internal/opcodes receives one and returns a
// new one, the same immutable-rewrite discipline internal/vmvalue uses for
// Values.
package stack

import (
	"github.com/tzstack/michelvm/internal/vmerrors"
	"github.com/tzstack/michelvm/internal/vmvalue"
)

// Cell is one stack slot: a Value plus the name of the instruction that
// produced it, carried for diagnostics and for history snapshots.
type Cell struct {
	Value vmvalue.Value
	Op    string
}

// Stack is the runtime stack, index 0 is the top.
type Stack []Cell

// Push returns a new Stack with cell placed on top.
func (s Stack) Push(cell Cell) Stack {
	out := make(Stack, 0, len(s)+1)
	out = append(out, cell)
	out = append(out, s...)
	return out
}

// Depth returns the number of cells currently on the stack.
func (s Stack) Depth() int { return len(s) }

// Peek returns the cell at depth i without removing it (0 = top).
func (s Stack) Peek(i int) (Cell, error) {
	if i < 0 || i >= len(s) {
		return Cell{}, vmerrors.StackTooShallow(i+1, len(s), "PEEK")
	}
	return s[i], nil
}

// Drop returns a new Stack with n cells removed from the top.
func (s Stack) Drop(n int) (Stack, error) {
	if n < 0 || n > len(s) {
		return nil, vmerrors.StackTooShallow(n, len(s), "DROP")
	}
	out := make(Stack, len(s)-n)
	copy(out, s[n:])
	return out, nil
}

// Dig removes the cell at depth n and returns (cell, remaining-stack).
func (s Stack) Dig(n int) (Cell, Stack, error) {
	if n < 0 || n >= len(s) {
		return Cell{}, nil, vmerrors.StackTooShallow(n+1, len(s), "DIG")
	}
	cell := s[n]
	out := make(Stack, 0, len(s)-1)
	out = append(out, s[:n]...)
	out = append(out, s[n+1:]...)
	return cell, out, nil
}

// Dug inserts cell at depth n, keeping the cells at [0,n) in place and pushing
// the cells currently at depth n and below down by one.
func (s Stack) Dug(cell Cell, n int) (Stack, error) {
	if n < 0 || n > len(s) {
		return nil, vmerrors.StackTooShallow(n, len(s), "DUG")
	}
	out := make(Stack, 0, len(s)+1)
	out = append(out, s[:n]...)
	out = append(out, cell)
	out = append(out, s[n:]...)
	return out, nil
}

// Clone returns a shallow copy of s; Cells themselves are immutable so a
// shallow copy is safe to hand to a history snapshot.
func (s Stack) Clone() Stack {
	out := make(Stack, len(s))
	copy(out, s)
	return out
}

// RequireDepth returns a StackTooShallow error if s has fewer than n cells.
func RequireDepth(s Stack, n int, opcode string) error {
	if len(s) < n {
		return vmerrors.StackTooShallow(n, len(s), opcode)
	}
	return nil
}

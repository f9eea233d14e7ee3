package stack_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzstack/michelvm/internal/stack"
	"github.com/tzstack/michelvm/internal/vmerrors"
	"github.com/tzstack/michelvm/internal/vmvalue"
)

func cell(n int64, op string) stack.Cell {
	v, _ := vmvalue.NewNat(big.NewInt(n))
	return stack.Cell{Value: v, Op: op}
}

func TestPushIsTopInsert(t *testing.T) {
	s := stack.Stack{cell(1, "PUSH")}
	s2 := s.Push(cell(2, "PUSH"))
	require.Equal(t, 2, s2.Depth())
	assert.Equal(t, int64(2), s2[0].Value.Num.Int64())
	assert.Equal(t, int64(1), s2[1].Value.Num.Int64())
}

func TestDropTooDeepErrors(t *testing.T) {
	s := stack.Stack{cell(1, "PUSH")}
	_, err := s.Drop(2)
	require.Error(t, err)
	assert.True(t, vmerrors.Is(err, vmerrors.KindStackTooShallow))
}

func TestDigDug(t *testing.T) {
	s := stack.Stack{cell(1, "a"), cell(2, "b"), cell(3, "c")}
	dug, rest, err := s.Dig(2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), dug.Value.Num.Int64())
	require.Equal(t, 2, rest.Depth())

	restored, err := rest.Dug(dug, 1)
	require.NoError(t, err)
	require.Equal(t, 3, restored.Depth())
	assert.Equal(t, int64(3), restored[1].Value.Num.Int64())
}

func TestCloneIsIndependent(t *testing.T) {
	s := stack.Stack{cell(1, "a")}
	c := s.Clone()
	c[0] = cell(9, "b")
	assert.Equal(t, int64(1), s[0].Value.Num.Int64())
}

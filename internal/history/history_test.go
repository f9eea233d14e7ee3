package history_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzstack/michelvm/internal/history"
	"github.com/tzstack/michelvm/internal/stack"
	"github.com/tzstack/michelvm/internal/vmvalue"
)

func natCell(n int64, op string) stack.Cell {
	v, _ := vmvalue.NewNat(big.NewInt(n))
	return stack.Cell{Value: v, Op: op}
}

func TestAppendGrowsLength(t *testing.T) {
	var h history.History
	h = h.Append(stack.Stack{})
	h = h.Append(stack.Stack{natCell(1, "PUSH")})
	assert.Len(t, h, 2)
}

func TestHistoryHashDeterministic(t *testing.T) {
	var h1, h2 history.History
	h1 = h1.Append(stack.Stack{natCell(1, "PUSH")})
	h2 = h2.Append(stack.Stack{natCell(1, "PUSH")})

	d1, err := h1.HistoryHash()
	require.NoError(t, err)
	d2, err := h2.HistoryHash()
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}

func TestHistoryHashSensitiveToContent(t *testing.T) {
	var h1, h2 history.History
	h1 = h1.Append(stack.Stack{natCell(1, "PUSH")})
	h2 = h2.Append(stack.Stack{natCell(2, "PUSH")})

	d1, err := h1.HistoryHash()
	require.NoError(t, err)
	d2, err := h2.HistoryHash()
	require.NoError(t, err)
	assert.NotEqual(t, d1, d2)
}

func TestAppendDoesNotMutatePrior(t *testing.T) {
	var h history.History
	h = h.Append(stack.Stack{natCell(1, "PUSH")})
	snapshot := h
	h = h.Append(stack.Stack{natCell(2, "PUSH")})
	assert.Len(t, snapshot, 1)
	assert.Len(t, h, 2)
}

package dispatch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzstack/michelvm/internal/dispatch"
	"github.com/tzstack/michelvm/internal/vmerrors"
)

func TestRegisterAndGet(t *testing.T) {
	r := dispatch.NewRegistry()
	r.Register("DROP", func(req dispatch.Request) (dispatch.Response, error) {
		return dispatch.Response{Stack: req.Stack, Ctx: req.Ctx}, nil
	})

	h, ok := r.Get("DROP")
	require.True(t, ok)
	resp, err := h(dispatch.Request{})
	require.NoError(t, err)
	assert.Empty(t, resp.Stack)
}

func TestMustGetUnknownReturnsUnknownOpcode(t *testing.T) {
	r := dispatch.NewRegistry()
	r.Register("SWAP", func(req dispatch.Request) (dispatch.Response, error) { return dispatch.Response{}, nil })

	_, err := r.MustGet("SWAPP")
	require.Error(t, err)
	assert.True(t, vmerrors.Is(err, vmerrors.KindUnknownOpcode))
}

func TestNamesSorted(t *testing.T) {
	r := dispatch.NewRegistry()
	r.Register("SWAP", nil)
	r.Register("DROP", nil)
	r.Register("DUP", nil)
	assert.Equal(t, []string{"DROP", "DUP", "SWAP"}, r.Names())
}

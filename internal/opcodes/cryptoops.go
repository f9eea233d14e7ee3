package opcodes

import (
	"github.com/tzstack/michelvm/internal/dispatch"
	"github.com/tzstack/michelvm/internal/hashext"
	"github.com/tzstack/michelvm/internal/stack"
	"github.com/tzstack/michelvm/internal/vmerrors"
	"github.com/tzstack/michelvm/internal/vmtypes"
	"github.com/tzstack/michelvm/internal/vmvalue"
)

func init() {
	dispatch.Register("KECCAK", keccakHandler)
}

func keccakHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := stack.RequireDepth(req.Stack, 1, "KECCAK"); err != nil {
		return dispatch.Response{}, err
	}
	top, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	if top.Value.Typ.Kind != vmtypes.KindBytes {
		return dispatch.Response{}, vmerrors.WrongType([]string{"bytes"}, vmtypes.Render(top.Value.Typ), "KECCAK")
	}
	digest := hashext.Keccak256(top.Value.Bytes)
	out := rest.Push(stack.Cell{Value: vmvalue.NewBytes(digest), Op: "KECCAK"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

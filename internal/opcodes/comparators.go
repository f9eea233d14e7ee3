package opcodes

import (
	"math/big"

	"github.com/tzstack/michelvm/internal/dispatch"
	"github.com/tzstack/michelvm/internal/stack"
	"github.com/tzstack/michelvm/internal/vmerrors"
	"github.com/tzstack/michelvm/internal/vmtypes"
	"github.com/tzstack/michelvm/internal/vmvalue"
)

func init() {
	dispatch.Register("COMPARE", compareHandler)
	dispatch.Register("EQ", signTestHandler("EQ", func(s int) bool { return s == 0 }))
	dispatch.Register("NEQ", signTestHandler("NEQ", func(s int) bool { return s != 0 }))
	dispatch.Register("LT", signTestHandler("LT", func(s int) bool { return s < 0 }))
	dispatch.Register("GT", signTestHandler("GT", func(s int) bool { return s > 0 }))
	dispatch.Register("LE", signTestHandler("LE", func(s int) bool { return s <= 0 }))
	dispatch.Register("GE", signTestHandler("GE", func(s int) bool { return s >= 0 }))
}

// compareHandler implements §4.H.3's total order, delegating the actual
// per-variant comparison to vmvalue.Compare.
func compareHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := stack.RequireDepth(req.Stack, 2, "COMPARE"); err != nil {
		return dispatch.Response{}, err
	}
	top, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	second, rest, err := rest.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	c, err := vmvalue.Compare(top.Value, second.Value)
	if err != nil {
		return dispatch.Response{}, err
	}
	result := vmvalue.NewInt(big.NewInt(int64(clampSign(c))))
	out := rest.Push(stack.Cell{Value: result, Op: "COMPARE"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

func clampSign(c int) int {
	switch {
	case c < 0:
		return -1
	case c > 0:
		return 1
	default:
		return 0
	}
}

// signTestHandler builds the EQ/NEQ/LT/GT/LE/GE family: each consumes a
// single int (typically COMPARE's result) and tests its sign.
func signTestHandler(opcode string, test func(sign int) bool) dispatch.Handler {
	return func(req dispatch.Request) (dispatch.Response, error) {
		if err := stack.RequireDepth(req.Stack, 1, opcode); err != nil {
			return dispatch.Response{}, err
		}
		top, rest, err := req.Stack.Dig(0)
		if err != nil {
			return dispatch.Response{}, err
		}
		if top.Value.Typ.Kind != vmtypes.KindInt {
			return dispatch.Response{}, vmerrors.WrongType([]string{"int"}, vmtypes.Render(top.Value.Typ), opcode)
		}
		result := vmvalue.NewBool(test(top.Value.Num.Sign()))
		out := rest.Push(stack.Cell{Value: result, Op: opcode})
		return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
	}
}

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
	dispatch.Register("NOT", notHandler)
	dispatch.Register("AND", andHandler)
	dispatch.Register("OR", orHandler)
	dispatch.Register("XOR", xorHandler)
}

// notHandler: bool complements to bool; int/nat bitwise-complement to int
// (Michelson's NOT on numerics is -(x)-1, i.e. two's-complement NOT).
func notHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := stack.RequireDepth(req.Stack, 1, "NOT"); err != nil {
		return dispatch.Response{}, err
	}
	top, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	var result vmvalue.Value
	switch top.Value.Typ.Kind {
	case vmtypes.KindBool:
		result = vmvalue.NewBool(!top.Value.Bool)
	case vmtypes.KindInt, vmtypes.KindNat:
		n := new(big.Int).Not(top.Value.Num)
		result = vmvalue.NewInt(n)
	default:
		return dispatch.Response{}, vmerrors.WrongType([]string{"bool", "int", "nat"}, vmtypes.Render(top.Value.Typ), "NOT")
	}
	out := rest.Push(stack.Cell{Value: result, Op: "NOT"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

type bitwiseOp func(z, x, y *big.Int) *big.Int

func boolNatHandler(opcode string, boolOp func(a, b bool) bool, natOp bitwiseOp) dispatch.Handler {
	return func(req dispatch.Request) (dispatch.Response, error) {
		if err := stack.RequireDepth(req.Stack, 2, opcode); err != nil {
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
		a, b := second.Value, top.Value
		var result vmvalue.Value
		switch {
		case a.Typ.Kind == vmtypes.KindBool && b.Typ.Kind == vmtypes.KindBool:
			result = vmvalue.NewBool(boolOp(a.Bool, b.Bool))
		case a.Typ.Kind == vmtypes.KindNat && b.Typ.Kind == vmtypes.KindNat:
			n := natOp(new(big.Int), a.Num, b.Num)
			nv, err := vmvalue.NewNat(n)
			if err != nil {
				return dispatch.Response{}, err
			}
			result = nv
		default:
			return dispatch.Response{}, vmerrors.WrongType([]string{"bool/bool", "nat/nat"}, vmtypes.Render(a.Typ)+", "+vmtypes.Render(b.Typ), opcode)
		}
		out := rest.Push(stack.Cell{Value: result, Op: opcode})
		return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
	}
}

var andHandler = boolNatHandler("AND", func(a, b bool) bool { return a && b }, (*big.Int).And)
var orHandler = boolNatHandler("OR", func(a, b bool) bool { return a || b }, (*big.Int).Or)
var xorHandler = boolNatHandler("XOR", func(a, b bool) bool { return a != b }, (*big.Int).Xor)

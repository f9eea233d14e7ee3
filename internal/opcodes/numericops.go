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
	dispatch.Register("ADD", addHandler)
	dispatch.Register("SUB", subHandler)
	dispatch.Register("SUB_MUTEZ", subMutezHandler)
	dispatch.Register("MUL", mulHandler)
	dispatch.Register("EDIV", edivHandler)
	dispatch.Register("NEG", negHandler)
	dispatch.Register("ABS", absHandler)
	dispatch.Register("INT", intHandler)
	dispatch.Register("ISNAT", isnatHandler)
}

func popTwoNumeric(st stack.Stack, opcode string) (vmvalue.Value, vmvalue.Value, stack.Stack, error) {
	if err := stack.RequireDepth(st, 2, opcode); err != nil {
		return vmvalue.Value{}, vmvalue.Value{}, nil, err
	}
	top, rest, err := st.Dig(0)
	if err != nil {
		return vmvalue.Value{}, vmvalue.Value{}, nil, err
	}
	second, rest, err := rest.Dig(0)
	if err != nil {
		return vmvalue.Value{}, vmvalue.Value{}, nil, err
	}
	return top.Value, second.Value, rest, nil
}

func buildNumeric(k vmtypes.Kind, n *big.Int) (vmvalue.Value, error) {
	switch k {
	case vmtypes.KindInt:
		return vmvalue.NewInt(n), nil
	case vmtypes.KindNat:
		return vmvalue.NewNat(n)
	case vmtypes.KindMutez:
		return vmvalue.NewMutez(n)
	case vmtypes.KindTimestamp:
		return vmvalue.NewTimestamp(n)
	default:
		return vmvalue.Value{}, vmerrors.New(vmerrors.KindWrongType, "not a numeric kind")
	}
}

// addResultKind implements SPEC_FULL.md §4.H.1's additive type table.
func addResultKind(a, b vmtypes.Kind) (vmtypes.Kind, bool) {
	switch {
	case a == vmtypes.KindInt && b == vmtypes.KindInt:
		return vmtypes.KindInt, true
	case a == vmtypes.KindInt && b == vmtypes.KindNat, a == vmtypes.KindNat && b == vmtypes.KindInt:
		return vmtypes.KindInt, true
	case a == vmtypes.KindNat && b == vmtypes.KindNat:
		return vmtypes.KindNat, true
	case a == vmtypes.KindInt && b == vmtypes.KindTimestamp, a == vmtypes.KindTimestamp && b == vmtypes.KindInt:
		return vmtypes.KindTimestamp, true
	case a == vmtypes.KindMutez && b == vmtypes.KindMutez:
		return vmtypes.KindMutez, true
	default:
		return 0, false
	}
}

func addHandler(req dispatch.Request) (dispatch.Response, error) {
	a, b, rest, err := popTwoNumeric(req.Stack, "ADD")
	if err != nil {
		return dispatch.Response{}, err
	}
	resultKind, ok := addResultKind(a.Typ.Kind, b.Typ.Kind)
	if !ok {
		return dispatch.Response{}, vmerrors.WrongType([]string{"numeric"}, vmtypes.Render(a.Typ)+" + "+vmtypes.Render(b.Typ), "ADD")
	}
	sum := new(big.Int).Add(a.Num, b.Num)
	v, err := buildNumeric(resultKind, sum)
	if err != nil {
		return dispatch.Response{}, err
	}
	out := rest.Push(stack.Cell{Value: v, Op: "ADD"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

// subResultKind implements SUB: always numeric-int, except the two
// timestamp-involving cases and the mutez-mutez case, which SUB forbids
// outright (use SUB_MUTEZ instead).
func subResultKind(a, b vmtypes.Kind) (vmtypes.Kind, bool) {
	if a == vmtypes.KindMutez && b == vmtypes.KindMutez {
		return 0, false
	}
	switch {
	case a == vmtypes.KindTimestamp && b == vmtypes.KindInt:
		return vmtypes.KindTimestamp, true
	case a == vmtypes.KindTimestamp && b == vmtypes.KindTimestamp:
		return vmtypes.KindInt, true
	case isIntOrNat(a) && isIntOrNat(b):
		return vmtypes.KindInt, true
	default:
		return 0, false
	}
}

func isIntOrNat(k vmtypes.Kind) bool { return k == vmtypes.KindInt || k == vmtypes.KindNat }

func subHandler(req dispatch.Request) (dispatch.Response, error) {
	a, b, rest, err := popTwoNumeric(req.Stack, "SUB")
	if err != nil {
		return dispatch.Response{}, err
	}
	if a.Typ.Kind == vmtypes.KindMutez && b.Typ.Kind == vmtypes.KindMutez {
		return dispatch.Response{}, vmerrors.New(vmerrors.KindWrongType, "SUB: mutez-mutez is forbidden, use SUB_MUTEZ")
	}
	resultKind, ok := subResultKind(a.Typ.Kind, b.Typ.Kind)
	if !ok {
		return dispatch.Response{}, vmerrors.WrongType([]string{"numeric"}, vmtypes.Render(a.Typ)+" - "+vmtypes.Render(b.Typ), "SUB")
	}
	diff := new(big.Int).Sub(a.Num, b.Num)
	v, err := buildNumeric(resultKind, diff)
	if err != nil {
		return dispatch.Response{}, err
	}
	out := rest.Push(stack.Cell{Value: v, Op: "SUB"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

// subMutezHandler implements the mutez-only SUB_MUTEZ overload: option(mutez),
// None on underflow rather than a negative-mutez error.
func subMutezHandler(req dispatch.Request) (dispatch.Response, error) {
	a, b, rest, err := popTwoNumeric(req.Stack, "SUB_MUTEZ")
	if err != nil {
		return dispatch.Response{}, err
	}
	if a.Typ.Kind != vmtypes.KindMutez || b.Typ.Kind != vmtypes.KindMutez {
		return dispatch.Response{}, vmerrors.WrongType([]string{"mutez"}, vmtypes.Render(a.Typ)+", "+vmtypes.Render(b.Typ), "SUB_MUTEZ")
	}
	diff := new(big.Int).Sub(a.Num, b.Num)
	var result vmvalue.Value
	if diff.Sign() < 0 {
		result = vmvalue.NewNone(vmtypes.Scalar(vmtypes.KindMutez))
	} else {
		mz, err := vmvalue.NewMutez(diff)
		if err != nil {
			return dispatch.Response{}, err
		}
		result = vmvalue.NewSome(mz)
	}
	out := rest.Push(stack.Cell{Value: result, Op: "SUB_MUTEZ"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

func mulResultKind(a, b vmtypes.Kind) (vmtypes.Kind, bool) {
	switch {
	case a == vmtypes.KindInt && b == vmtypes.KindInt:
		return vmtypes.KindInt, true
	case a == vmtypes.KindInt && b == vmtypes.KindNat, a == vmtypes.KindNat && b == vmtypes.KindInt:
		return vmtypes.KindInt, true
	case a == vmtypes.KindNat && b == vmtypes.KindNat:
		return vmtypes.KindNat, true
	case a == vmtypes.KindNat && b == vmtypes.KindMutez, a == vmtypes.KindMutez && b == vmtypes.KindNat:
		return vmtypes.KindMutez, true
	default:
		return 0, false
	}
}

func mulHandler(req dispatch.Request) (dispatch.Response, error) {
	a, b, rest, err := popTwoNumeric(req.Stack, "MUL")
	if err != nil {
		return dispatch.Response{}, err
	}
	resultKind, ok := mulResultKind(a.Typ.Kind, b.Typ.Kind)
	if !ok {
		return dispatch.Response{}, vmerrors.WrongType([]string{"numeric"}, vmtypes.Render(a.Typ)+" * "+vmtypes.Render(b.Typ), "MUL")
	}
	prod := new(big.Int).Mul(a.Num, b.Num)
	v, err := buildNumeric(resultKind, prod)
	if err != nil {
		return dispatch.Response{}, err
	}
	out := rest.Push(stack.Cell{Value: v, Op: "MUL"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

// edivResultKinds implements SPEC_FULL.md §4.H.2's quotient/remainder table.
func edivResultKinds(dividend, divisor vmtypes.Kind) (q, r vmtypes.Kind, ok bool) {
	switch {
	case dividend == vmtypes.KindInt && (divisor == vmtypes.KindInt || divisor == vmtypes.KindNat):
		return vmtypes.KindInt, vmtypes.KindNat, true
	case dividend == vmtypes.KindNat && divisor == vmtypes.KindInt:
		return vmtypes.KindInt, vmtypes.KindNat, true
	case dividend == vmtypes.KindNat && divisor == vmtypes.KindNat:
		return vmtypes.KindNat, vmtypes.KindNat, true
	case dividend == vmtypes.KindMutez && divisor == vmtypes.KindNat:
		return vmtypes.KindMutez, vmtypes.KindMutez, true
	case dividend == vmtypes.KindMutez && divisor == vmtypes.KindMutez:
		return vmtypes.KindNat, vmtypes.KindMutez, true
	default:
		return 0, 0, false
	}
}

// edivHandler divides with Euclidean semantics (big.Int.DivMod guarantees
// 0 <= remainder < |divisor|, matching §4.H's invariant) and wraps the
// result in option(pair(q,r)), None iff the divisor is zero.
func edivHandler(req dispatch.Request) (dispatch.Response, error) {
	a, b, rest, err := popTwoNumeric(req.Stack, "EDIV")
	if err != nil {
		return dispatch.Response{}, err
	}
	qKind, rKind, ok := edivResultKinds(a.Typ.Kind, b.Typ.Kind)
	if !ok {
		return dispatch.Response{}, vmerrors.WrongType([]string{"numeric"}, vmtypes.Render(a.Typ)+" / "+vmtypes.Render(b.Typ), "EDIV")
	}
	var result vmvalue.Value
	if b.Num.Sign() == 0 {
		pairType := vmtypes.Pair(vmtypes.Scalar(qKind), vmtypes.Scalar(rKind))
		result = vmvalue.NewNone(pairType)
	} else {
		q, r := new(big.Int), new(big.Int)
		q.DivMod(a.Num, b.Num, r)
		qv, err := buildNumeric(qKind, q)
		if err != nil {
			return dispatch.Response{}, err
		}
		rv, err := buildNumeric(rKind, r)
		if err != nil {
			return dispatch.Response{}, err
		}
		result = vmvalue.NewSome(vmvalue.NewPair(qv, rv))
	}
	out := rest.Push(stack.Cell{Value: result, Op: "EDIV"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

func negHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := stack.RequireDepth(req.Stack, 1, "NEG"); err != nil {
		return dispatch.Response{}, err
	}
	top, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	if !isIntOrNat(top.Value.Typ.Kind) {
		return dispatch.Response{}, vmerrors.WrongType([]string{"int", "nat"}, vmtypes.Render(top.Value.Typ), "NEG")
	}
	v := vmvalue.NewInt(new(big.Int).Neg(top.Value.Num))
	out := rest.Push(stack.Cell{Value: v, Op: "NEG"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

func absHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := stack.RequireDepth(req.Stack, 1, "ABS"); err != nil {
		return dispatch.Response{}, err
	}
	top, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	if top.Value.Typ.Kind != vmtypes.KindInt {
		return dispatch.Response{}, vmerrors.WrongType([]string{"int"}, vmtypes.Render(top.Value.Typ), "ABS")
	}
	v, err := vmvalue.NewNat(new(big.Int).Abs(top.Value.Num))
	if err != nil {
		return dispatch.Response{}, err
	}
	out := rest.Push(stack.Cell{Value: v, Op: "ABS"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

func intHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := stack.RequireDepth(req.Stack, 1, "INT"); err != nil {
		return dispatch.Response{}, err
	}
	top, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	if top.Value.Typ.Kind != vmtypes.KindNat {
		return dispatch.Response{}, vmerrors.WrongType([]string{"nat"}, vmtypes.Render(top.Value.Typ), "INT")
	}
	v := vmvalue.NewInt(top.Value.Num)
	out := rest.Push(stack.Cell{Value: v, Op: "INT"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

func isnatHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := stack.RequireDepth(req.Stack, 1, "ISNAT"); err != nil {
		return dispatch.Response{}, err
	}
	top, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	if top.Value.Typ.Kind != vmtypes.KindInt {
		return dispatch.Response{}, vmerrors.WrongType([]string{"int"}, vmtypes.Render(top.Value.Typ), "ISNAT")
	}
	var result vmvalue.Value
	if top.Value.Num.Sign() < 0 {
		result = vmvalue.NewNone(vmtypes.Scalar(vmtypes.KindNat))
	} else {
		nv, err := vmvalue.NewNat(top.Value.Num)
		if err != nil {
			return dispatch.Response{}, err
		}
		result = vmvalue.NewSome(nv)
	}
	out := rest.Push(stack.Cell{Value: result, Op: "ISNAT"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

package opcodes

import (
	"github.com/tzstack/michelvm/internal/dispatch"
	"github.com/tzstack/michelvm/internal/stack"
	"github.com/tzstack/michelvm/internal/vmerrors"
	"github.com/tzstack/michelvm/internal/vmtypes"
	"github.com/tzstack/michelvm/internal/vmvalue"
)

func init() {
	dispatch.Register("PUSH", pushHandler)
	dispatch.Register("SLICE", sliceHandler)
	dispatch.Register("TICKET", ticketHandler)
	dispatch.Register("ADDRESS", addressHandler)
}

func pushHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := requireArgCount(req.Args, 2, "PUSH"); err != nil {
		return dispatch.Response{}, err
	}
	t, err := typeFromNode(*req.Args[0].Node, "PUSH")
	if err != nil {
		return dispatch.Response{}, err
	}
	v, err := evalLiteral(*req.Args[1].Node, t, "PUSH")
	if err != nil {
		return dispatch.Response{}, err
	}
	out := req.Stack.Push(stack.Cell{Value: v, Op: "PUSH"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

// sliceHandler implements SLICE: offset, length, string/bytes -> option of
// the substring; None (not an error) whenever the range falls outside the
// source (§4.H's edge case table).
func sliceHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := stack.RequireDepth(req.Stack, 3, "SLICE"); err != nil {
		return dispatch.Response{}, err
	}
	offsetCell, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	lengthCell, rest, err := rest.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	srcCell, rest, err := rest.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	if offsetCell.Value.Typ.Kind != vmtypes.KindNat || lengthCell.Value.Typ.Kind != vmtypes.KindNat {
		return dispatch.Response{}, vmerrors.WrongType([]string{"nat"}, "offset/length", "SLICE")
	}
	offset := offsetCell.Value.Num.Int64()
	length := lengthCell.Value.Num.Int64()

	var result vmvalue.Value
	switch srcCell.Value.Typ.Kind {
	case vmtypes.KindString:
		s := srcCell.Value.Str
		if offset < 0 || length < 0 || offset+length > int64(len(s)) {
			result = vmvalue.NewNone(vmtypes.Scalar(vmtypes.KindString))
		} else {
			result = vmvalue.NewSome(vmvalue.NewString(s[offset : offset+length]))
		}
	case vmtypes.KindBytes:
		b := srcCell.Value.Bytes
		if offset < 0 || length < 0 || offset+length > int64(len(b)) {
			result = vmvalue.NewNone(vmtypes.Scalar(vmtypes.KindBytes))
		} else {
			result = vmvalue.NewSome(vmvalue.NewBytes(b[offset : offset+length]))
		}
	default:
		return dispatch.Response{}, vmerrors.WrongType([]string{"string", "bytes"}, vmtypes.Render(srcCell.Value.Typ), "SLICE")
	}
	out := rest.Push(stack.Cell{Value: result, Op: "SLICE"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

// ticketHandler implements TICKET: v, nat amount -> option(ticket); None
// when amount is 0, never an InvalidLiteral error in that case (§4.H's
// edge case table) — the ticketer is the executing contract's own address.
func ticketHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := stack.RequireDepth(req.Stack, 2, "TICKET"); err != nil {
		return dispatch.Response{}, err
	}
	contentCell, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	amountCell, rest, err := rest.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	if amountCell.Value.Typ.Kind != vmtypes.KindNat {
		return dispatch.Response{}, vmerrors.WrongType([]string{"nat"}, vmtypes.Render(amountCell.Value.Typ), "TICKET")
	}
	var result vmvalue.Value
	if amountCell.Value.Num.Sign() == 0 {
		result = vmvalue.NewNone(vmtypes.TicketOf(contentCell.Value.Typ))
	} else {
		t, err := vmvalue.NewTicket(contentCell.Value, amountCell.Value.Num, req.Ctx.SelfAddress)
		if err != nil {
			return dispatch.Response{}, err
		}
		result = vmvalue.NewSome(t)
	}
	out := rest.Push(stack.Cell{Value: result, Op: "TICKET"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

// addressHandler implements §9 open question (b): ADDRESS extracts a
// contract value's address unchanged.
func addressHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := stack.RequireDepth(req.Stack, 1, "ADDRESS"); err != nil {
		return dispatch.Response{}, err
	}
	top, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	if top.Value.Typ.Kind != vmtypes.KindContract {
		return dispatch.Response{}, vmerrors.WrongType([]string{"contract"}, vmtypes.Render(top.Value.Typ), "ADDRESS")
	}
	v, err := vmvalue.NewAddress(top.Value.Contract.Address)
	if err != nil {
		return dispatch.Response{}, err
	}
	out := rest.Push(stack.Cell{Value: v, Op: "ADDRESS"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

package opcodes

import (
	"github.com/tzstack/michelvm/internal/dispatch"
	"github.com/tzstack/michelvm/internal/stack"
	"github.com/tzstack/michelvm/internal/vmerrors"
	"github.com/tzstack/michelvm/internal/vmtypes"
)

func init() {
	dispatch.Register("DROP", dropHandler)
	dispatch.Register("DUP", dupHandler)
	dispatch.Register("SWAP", swapHandler)
	dispatch.Register("DIG", digHandler)
	dispatch.Register("DUG", dugHandler)
}

func dropHandler(req dispatch.Request) (dispatch.Response, error) {
	n, err := intArg(req.Args, 0, 1, "DROP")
	if err != nil {
		return dispatch.Response{}, err
	}
	if n == 0 {
		return dispatch.Response{}, vmerrors.Noop("DROP 0 is a no-op")
	}
	st, err := req.Stack.Drop(n)
	if err != nil {
		return dispatch.Response{}, err
	}
	return dispatch.Response{Stack: st, Ctx: req.Ctx}, nil
}

func dupHandler(req dispatch.Request) (dispatch.Response, error) {
	n, err := intArg(req.Args, 0, 1, "DUP")
	if err != nil {
		return dispatch.Response{}, err
	}
	if n == 0 {
		return dispatch.Response{}, vmerrors.Noop("DUP 0 is a no-op")
	}
	cell, err := req.Stack.Peek(n - 1)
	if err != nil {
		return dispatch.Response{}, err
	}
	if containsTicket(cell.Value.Typ) {
		return dispatch.Response{}, vmerrors.New(vmerrors.KindNonDuplicable, "DUP: ticket values cannot be duplicated")
	}
	out := req.Stack.Push(stack.Cell{Value: cell.Value, Op: "DUP"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

func swapHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := stack.RequireDepth(req.Stack, 2, "SWAP"); err != nil {
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
	out := rest.Push(stack.Cell{Value: top.Value, Op: "SWAP"}).Push(stack.Cell{Value: second.Value, Op: "SWAP"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

func digHandler(req dispatch.Request) (dispatch.Response, error) {
	n, err := requireIntArg(req.Args, 0, "DIG")
	if err != nil {
		return dispatch.Response{}, err
	}
	if n == 0 {
		return dispatch.Response{}, vmerrors.Noop("DIG 0 is a no-op")
	}
	cell, rest, err := req.Stack.Dig(n)
	if err != nil {
		return dispatch.Response{}, err
	}
	out := rest.Push(stack.Cell{Value: cell.Value, Op: "DIG"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

func dugHandler(req dispatch.Request) (dispatch.Response, error) {
	n, err := requireIntArg(req.Args, 0, "DUG")
	if err != nil {
		return dispatch.Response{}, err
	}
	if n == 0 {
		return dispatch.Response{}, vmerrors.Noop("DUG 0 is a no-op")
	}
	top, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	out, err := rest.Dug(stack.Cell{Value: top.Value, Op: "DUG"}, n)
	if err != nil {
		return dispatch.Response{}, err
	}
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

// containsTicket reports whether t contains a ticket anywhere in its shape —
// DUP must refuse to copy a ticket at any nesting depth, not just a bare one.
func containsTicket(t vmtypes.Type) bool {
	switch t.Kind {
	case vmtypes.KindTicket:
		return true
	case vmtypes.KindOption, vmtypes.KindList, vmtypes.KindSet:
		return t.A != nil && containsTicket(*t.A)
	case vmtypes.KindPair, vmtypes.KindOr, vmtypes.KindMap, vmtypes.KindBigMap:
		return (t.A != nil && containsTicket(*t.A)) || (t.B != nil && containsTicket(*t.B))
	default:
		return false
	}
}

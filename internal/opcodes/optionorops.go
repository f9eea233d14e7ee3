package opcodes

import (
	"github.com/tzstack/michelvm/internal/dispatch"
	"github.com/tzstack/michelvm/internal/stack"
	"github.com/tzstack/michelvm/internal/vmerrors"
	"github.com/tzstack/michelvm/internal/vmtypes"
	"github.com/tzstack/michelvm/internal/vmvalue"
)

func init() {
	dispatch.Register("SOME", someHandler)
	dispatch.Register("NONE", noneHandler)
	dispatch.Register("LEFT", leftHandler)
	dispatch.Register("RIGHT", rightHandler)
	dispatch.Register("IF", ifHandler)
	dispatch.Register("IF_LEFT", ifLeftHandler)
	dispatch.Register("IF_SOME", ifSomeHandler)
	dispatch.Register("IF_NONE", ifNoneHandler)
	dispatch.Register("IF_CONS", ifConsHandler)
}

func someHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := stack.RequireDepth(req.Stack, 1, "SOME"); err != nil {
		return dispatch.Response{}, err
	}
	top, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	out := rest.Push(stack.Cell{Value: vmvalue.NewSome(top.Value), Op: "SOME"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

func noneHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := requireArgCount(req.Args, 1, "NONE"); err != nil {
		return dispatch.Response{}, err
	}
	t, err := typeFromNode(*req.Args[0].Node, "NONE")
	if err != nil {
		return dispatch.Response{}, err
	}
	out := req.Stack.Push(stack.Cell{Value: vmvalue.NewNone(t), Op: "NONE"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

// buildOr is shared by LEFT and RIGHT, grounded on the original's LEFT_RIGHT
// shared-validation shape (SPEC_FULL.md §4's supplemented-features note).
func buildOr(req dispatch.Request, opcode string, isLeft bool) (dispatch.Response, error) {
	if err := requireArgCount(req.Args, 1, opcode); err != nil {
		return dispatch.Response{}, err
	}
	otherSide, err := typeFromNode(*req.Args[0].Node, opcode)
	if err != nil {
		return dispatch.Response{}, err
	}
	if err := stack.RequireDepth(req.Stack, 1, opcode); err != nil {
		return dispatch.Response{}, err
	}
	top, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	var v vmvalue.Value
	if isLeft {
		v = vmvalue.NewLeft(top.Value, otherSide)
	} else {
		v = vmvalue.NewRight(top.Value, otherSide)
	}
	out := rest.Push(stack.Cell{Value: v, Op: opcode})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

func leftHandler(req dispatch.Request) (dispatch.Response, error)  { return buildOr(req, "LEFT", true) }
func rightHandler(req dispatch.Request) (dispatch.Response, error) { return buildOr(req, "RIGHT", false) }

func branchSeqs(req dispatch.Request, opcode string) ([]dispatch.Request, error) {
	if len(req.Args) != 2 {
		return nil, vmerrors.UnexpectedArgCount(2, len(req.Args), opcode)
	}
	return nil, nil
}

func ifHandler(req dispatch.Request) (dispatch.Response, error) {
	if _, err := branchSeqs(req, "IF"); err != nil {
		return dispatch.Response{}, err
	}
	if err := stack.RequireDepth(req.Stack, 1, "IF"); err != nil {
		return dispatch.Response{}, err
	}
	top, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	if top.Value.Typ.Kind != vmtypes.KindBool {
		return dispatch.Response{}, vmerrors.WrongType([]string{"bool"}, vmtypes.Render(top.Value.Typ), "IF")
	}
	branch := req.Args[1].Seq
	if top.Value.Bool {
		branch = req.Args[0].Seq
	}
	out, err := req.Run(branch, rest, req.Ctx)
	if err != nil {
		return dispatch.Response{}, err
	}
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

func ifLeftHandler(req dispatch.Request) (dispatch.Response, error) {
	if _, err := branchSeqs(req, "IF_LEFT"); err != nil {
		return dispatch.Response{}, err
	}
	if err := stack.RequireDepth(req.Stack, 1, "IF_LEFT"); err != nil {
		return dispatch.Response{}, err
	}
	top, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	if top.Value.Typ.Kind != vmtypes.KindOr {
		return dispatch.Response{}, vmerrors.WrongType([]string{"or"}, vmtypes.Render(top.Value.Typ), "IF_LEFT")
	}
	unwrapped := rest.Push(stack.Cell{Value: *top.Value.OrInner, Op: "IF_LEFT"})
	branch := req.Args[1].Seq
	if top.Value.OrIsLeft {
		branch = req.Args[0].Seq
	}
	out, err := req.Run(branch, unwrapped, req.Ctx)
	if err != nil {
		return dispatch.Response{}, err
	}
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

func ifSomeHandler(req dispatch.Request) (dispatch.Response, error) {
	if _, err := branchSeqs(req, "IF_SOME"); err != nil {
		return dispatch.Response{}, err
	}
	if err := stack.RequireDepth(req.Stack, 1, "IF_SOME"); err != nil {
		return dispatch.Response{}, err
	}
	top, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	if top.Value.Typ.Kind != vmtypes.KindOption {
		return dispatch.Response{}, vmerrors.WrongType([]string{"option"}, vmtypes.Render(top.Value.Typ), "IF_SOME")
	}
	if top.Value.Opt != nil {
		unwrapped := rest.Push(stack.Cell{Value: *top.Value.Opt, Op: "IF_SOME"})
		out, err := req.Run(req.Args[0].Seq, unwrapped, req.Ctx)
		if err != nil {
			return dispatch.Response{}, err
		}
		return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
	}
	out, err := req.Run(req.Args[1].Seq, rest, req.Ctx)
	if err != nil {
		return dispatch.Response{}, err
	}
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

func ifNoneHandler(req dispatch.Request) (dispatch.Response, error) {
	if _, err := branchSeqs(req, "IF_NONE"); err != nil {
		return dispatch.Response{}, err
	}
	if err := stack.RequireDepth(req.Stack, 1, "IF_NONE"); err != nil {
		return dispatch.Response{}, err
	}
	top, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	if top.Value.Typ.Kind != vmtypes.KindOption {
		return dispatch.Response{}, vmerrors.WrongType([]string{"option"}, vmtypes.Render(top.Value.Typ), "IF_NONE")
	}
	if top.Value.Opt == nil {
		out, err := req.Run(req.Args[0].Seq, rest, req.Ctx)
		if err != nil {
			return dispatch.Response{}, err
		}
		return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
	}
	unwrapped := rest.Push(stack.Cell{Value: *top.Value.Opt, Op: "IF_NONE"})
	out, err := req.Run(req.Args[1].Seq, unwrapped, req.Ctx)
	if err != nil {
		return dispatch.Response{}, err
	}
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

func ifConsHandler(req dispatch.Request) (dispatch.Response, error) {
	if _, err := branchSeqs(req, "IF_CONS"); err != nil {
		return dispatch.Response{}, err
	}
	if err := stack.RequireDepth(req.Stack, 1, "IF_CONS"); err != nil {
		return dispatch.Response{}, err
	}
	top, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	if top.Value.Typ.Kind != vmtypes.KindList {
		return dispatch.Response{}, vmerrors.WrongType([]string{"list"}, vmtypes.Render(top.Value.Typ), "IF_CONS")
	}
	if len(top.Value.Elems) > 0 {
		head := top.Value.Elems[0]
		tail := vmvalue.Value{Typ: top.Value.Typ, Elems: top.Value.Elems[1:]}
		pushed := rest.Push(stack.Cell{Value: tail, Op: "IF_CONS"}).Push(stack.Cell{Value: head, Op: "IF_CONS"})
		out, err := req.Run(req.Args[0].Seq, pushed, req.Ctx)
		if err != nil {
			return dispatch.Response{}, err
		}
		return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
	}
	out, err := req.Run(req.Args[1].Seq, rest, req.Ctx)
	if err != nil {
		return dispatch.Response{}, err
	}
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

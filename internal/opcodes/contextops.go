package opcodes

import (
	"github.com/tzstack/michelvm/internal/dispatch"
	"github.com/tzstack/michelvm/internal/stack"
	"github.com/tzstack/michelvm/internal/vmerrors"
	"github.com/tzstack/michelvm/internal/vmtypes"
	"github.com/tzstack/michelvm/internal/vmvalue"
)

func init() {
	dispatch.Register("BALANCE", contextPush("BALANCE", func(req dispatch.Request) (vmvalue.Value, error) {
		return vmvalue.NewMutez(req.Ctx.Balance)
	}))
	dispatch.Register("SENDER", contextPush("SENDER", func(req dispatch.Request) (vmvalue.Value, error) {
		return vmvalue.NewAddress(req.Ctx.Sender)
	}))
	dispatch.Register("SOURCE", contextPush("SOURCE", func(req dispatch.Request) (vmvalue.Value, error) {
		return vmvalue.NewAddress(req.Ctx.Source)
	}))
	dispatch.Register("SELF_ADDRESS", contextPush("SELF_ADDRESS", func(req dispatch.Request) (vmvalue.Value, error) {
		return vmvalue.NewAddress(req.Ctx.SelfAddress)
	}))
	dispatch.Register("AMOUNT", contextPush("AMOUNT", func(req dispatch.Request) (vmvalue.Value, error) {
		return vmvalue.NewMutez(req.Ctx.Amount)
	}))
	dispatch.Register("NOW", contextPush("NOW", func(req dispatch.Request) (vmvalue.Value, error) {
		return vmvalue.NewTimestamp(req.Ctx.Now)
	}))
	dispatch.Register("LEVEL", contextPush("LEVEL", func(req dispatch.Request) (vmvalue.Value, error) {
		return vmvalue.NewNat(req.Ctx.Level)
	}))
	dispatch.Register("CHAIN_ID", contextPush("CHAIN_ID", func(req dispatch.Request) (vmvalue.Value, error) {
		return vmvalue.NewChainID(req.Ctx.ChainID), nil
	}))
	dispatch.Register("UNIT", contextPush("UNIT", func(req dispatch.Request) (vmvalue.Value, error) {
		return vmvalue.Unit(), nil
	}))
	dispatch.Register("NEVER", neverHandler)
}

// contextPush builds a zero-arity, zero-stack-depth handler that pushes one
// value sourced from the execution context (§3.4) — the BALANCE/SENDER/
// SOURCE/... family all share this shape.
func contextPush(opcode string, source func(dispatch.Request) (vmvalue.Value, error)) dispatch.Handler {
	return func(req dispatch.Request) (dispatch.Response, error) {
		v, err := source(req)
		if err != nil {
			return dispatch.Response{}, err
		}
		out := req.Stack.Push(stack.Cell{Value: v, Op: opcode})
		return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
	}
}

// neverHandler implements the never type's eliminator: it pops a never-typed
// value (one a well-typed program can never actually construct) and, being
// bottom-typed, produces nothing — a minimal no-reachable-path opcode kept
// for the closed sum's completeness (§3.1 lists never as a scalar type).
func neverHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := stack.RequireDepth(req.Stack, 1, "NEVER"); err != nil {
		return dispatch.Response{}, err
	}
	top, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	if top.Value.Typ.Kind != vmtypes.KindNever {
		return dispatch.Response{}, vmerrors.WrongType([]string{"never"}, vmtypes.Render(top.Value.Typ), "NEVER")
	}
	return dispatch.Response{Stack: rest, Ctx: req.Ctx}, nil
}

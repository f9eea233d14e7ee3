// Package vm implements the execution driver (component I): the loop that
// walks a program's IR array in order, dispatching each node to its
// registered internal/opcodes handler, and recording a stack snapshot after
// every step.
//
// FAILWITH is special-cased directly in the loop rather than routed through
// internal/dispatch's registry — it is a defined termination, not an
// opcode with a stack-rewrite shape, so it has no place in a Handler's
// (Request)->(Response, error) contract (§4.I).
package vm

import (
	"errors"

	"github.com/tzstack/michelvm/internal/dispatch"
	"github.com/tzstack/michelvm/internal/history"
	"github.com/tzstack/michelvm/internal/invariant"
	"github.com/tzstack/michelvm/internal/ir"
	"github.com/tzstack/michelvm/internal/stack"
	"github.com/tzstack/michelvm/internal/vmctx"
)

// failSignal carries a FAILWITH termination up through a nested branch's
// dispatch.RunFunc, whose signature has no room for a has_failed flag of
// its own — a plain stack/error return can't otherwise tell "this branch's
// body defined-terminated" apart from "this branch's body errored".
type failSignal struct {
	stack stack.Stack
}

func (f *failSignal) Error() string { return "FAILWITH" }

// Result is the execution driver's final output (§4.I, §6): the ending
// stack, the full snapshot history, and whether FAILWITH fired.
type Result struct {
	Stack     stack.Stack
	History   history.History
	HasFailed bool
}

// HistoryHash returns the hex-encoded sha256 fingerprint of r.History, a
// stable value two independent runs of the same program can compare.
func (r Result) HistoryHash() (string, error) {
	return r.History.HistoryHash()
}

// Run walks nodes in order against the given starting stack and context,
// dispatching each instruction via internal/dispatch's global registry.
// Branch and block-operand opcodes (IF family, MAP, ITER) recurse back into
// Run through the closure passed as their Request.Run field, so this
// package never imports internal/opcodes and internal/opcodes never
// imports internal/vm.
func Run(nodes []ir.Node, st stack.Stack, ctx vmctx.Context) (Result, error) {
	hist := history.History{}.Append(st)
	cur := st

	for i, node := range nodes {
		ctx = ctx.WithPos(i)

		if node.Prim == "FAILWITH" {
			invariant.Precondition(len(cur) >= 1, "FAILWITH requires a non-empty stack")
			failed := stack.Stack{{Value: cur[0].Value, Op: "FAILWITH"}}
			hist = hist.Append(failed)
			return Result{Stack: failed, History: hist, HasFailed: true}, nil
		}

		handler, err := dispatch.MustGet(node.Prim)
		if err != nil {
			return Result{}, err
		}
		resp, err := handler(dispatch.Request{
			Stack: cur,
			Args:  node.Args,
			Ctx:   ctx,
			Run:   runSub,
		})
		if err != nil {
			var fs *failSignal
			if errors.As(err, &fs) {
				hist = hist.Append(fs.stack)
				return Result{Stack: fs.stack, History: hist, HasFailed: true}, nil
			}
			return Result{}, err
		}
		cur, ctx = resp.Stack, resp.Ctx
		hist = hist.Append(cur)
	}

	return Result{Stack: cur, History: hist, HasFailed: false}, nil
}

// runSub adapts Run to dispatch.RunFunc's signature (stack, error) instead
// of (Result, error) — branch/block-operand handlers only need the
// resulting stack, not a nested history; the outer Run's own history
// already records the step that invoked them. A FAILWITH anywhere inside
// nodes is converted to a failSignal error so it keeps unwinding past
// however many branch levels sit between here and the outermost Run.
func runSub(nodes []ir.Node, st stack.Stack, ctx vmctx.Context) (stack.Stack, error) {
	res, err := Run(nodes, st, ctx)
	if err != nil {
		return nil, err
	}
	if res.HasFailed {
		return nil, &failSignal{stack: res.Stack}
	}
	return res.Stack, nil
}

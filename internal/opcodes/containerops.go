package opcodes

import (
	"github.com/tzstack/michelvm/internal/dispatch"
	"github.com/tzstack/michelvm/internal/stack"
	"github.com/tzstack/michelvm/internal/vmerrors"
	"github.com/tzstack/michelvm/internal/vmtypes"
	"github.com/tzstack/michelvm/internal/vmvalue"
)

func init() {
	dispatch.Register("CONS", consHandler)
	dispatch.Register("NIL", nilHandler)
	dispatch.Register("SIZE", sizeHandler)
	dispatch.Register("CONCAT", concatHandler)
	dispatch.Register("MEM", memHandler)
	dispatch.Register("UPDATE", updateHandler)
	dispatch.Register("MAP", mapHandler)
	dispatch.Register("ITER", iterHandler)
	dispatch.Register("EMPTY_SET", emptySetHandler)
	dispatch.Register("EMPTY_MAP", emptyMapHandler)
	dispatch.Register("EMPTY_BIG_MAP", emptyBigMapHandler)
}

func consHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := stack.RequireDepth(req.Stack, 2, "CONS"); err != nil {
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
	v, err := vmvalue.Cons(top.Value, second.Value)
	if err != nil {
		return dispatch.Response{}, err
	}
	out := rest.Push(stack.Cell{Value: v, Op: "CONS"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

func nilHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := requireArgCount(req.Args, 1, "NIL"); err != nil {
		return dispatch.Response{}, err
	}
	t, err := typeFromNode(*req.Args[0].Node, "NIL")
	if err != nil {
		return dispatch.Response{}, err
	}
	v, err := vmvalue.NewList(t, nil)
	if err != nil {
		return dispatch.Response{}, err
	}
	out := req.Stack.Push(stack.Cell{Value: v, Op: "NIL"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

func emptySetHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := requireArgCount(req.Args, 1, "EMPTY_SET"); err != nil {
		return dispatch.Response{}, err
	}
	t, err := typeFromNode(*req.Args[0].Node, "EMPTY_SET")
	if err != nil {
		return dispatch.Response{}, err
	}
	v, err := vmvalue.NewSet(t, nil)
	if err != nil {
		return dispatch.Response{}, err
	}
	out := req.Stack.Push(stack.Cell{Value: v, Op: "EMPTY_SET"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

func emptyMapHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := requireArgCount(req.Args, 2, "EMPTY_MAP"); err != nil {
		return dispatch.Response{}, err
	}
	k, err := typeFromNode(*req.Args[0].Node, "EMPTY_MAP")
	if err != nil {
		return dispatch.Response{}, err
	}
	val, err := typeFromNode(*req.Args[1].Node, "EMPTY_MAP")
	if err != nil {
		return dispatch.Response{}, err
	}
	v, err := vmvalue.NewMap(k, val, nil)
	if err != nil {
		return dispatch.Response{}, err
	}
	out := req.Stack.Push(stack.Cell{Value: v, Op: "EMPTY_MAP"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

func emptyBigMapHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := requireArgCount(req.Args, 2, "EMPTY_BIG_MAP"); err != nil {
		return dispatch.Response{}, err
	}
	k, err := typeFromNode(*req.Args[0].Node, "EMPTY_BIG_MAP")
	if err != nil {
		return dispatch.Response{}, err
	}
	val, err := typeFromNode(*req.Args[1].Node, "EMPTY_BIG_MAP")
	if err != nil {
		return dispatch.Response{}, err
	}
	v, err := vmvalue.NewBigMap(k, val, nil)
	if err != nil {
		return dispatch.Response{}, err
	}
	out := req.Stack.Push(stack.Cell{Value: v, Op: "EMPTY_BIG_MAP"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

func sizeHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := stack.RequireDepth(req.Stack, 1, "SIZE"); err != nil {
		return dispatch.Response{}, err
	}
	top, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	n, err := vmvalue.Size(top.Value)
	if err != nil {
		return dispatch.Response{}, err
	}
	v, err := vmvalue.NewNat(bigFromInt(n))
	if err != nil {
		return dispatch.Response{}, err
	}
	out := rest.Push(stack.Cell{Value: v, Op: "SIZE"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

// concatHandler handles two-string, two-bytes, and list-of-string/bytes
// concatenation (§4.H's CONCAT row covers all three shapes).
func concatHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := stack.RequireDepth(req.Stack, 1, "CONCAT"); err != nil {
		return dispatch.Response{}, err
	}
	top, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	if top.Value.Typ.Kind == vmtypes.KindList {
		result, err := concatElems(top.Value)
		if err != nil {
			return dispatch.Response{}, err
		}
		out := rest.Push(stack.Cell{Value: result, Op: "CONCAT"})
		return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
	}
	if err := stack.RequireDepth(rest, 1, "CONCAT"); err != nil {
		return dispatch.Response{}, err
	}
	second, rest2, err := rest.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	var result vmvalue.Value
	switch {
	case second.Value.Typ.Kind == vmtypes.KindString && top.Value.Typ.Kind == vmtypes.KindString:
		result = vmvalue.NewString(top.Value.Str + second.Value.Str)
	case second.Value.Typ.Kind == vmtypes.KindBytes && top.Value.Typ.Kind == vmtypes.KindBytes:
		b := make([]byte, 0, len(second.Value.Bytes)+len(top.Value.Bytes))
		b = append(b, top.Value.Bytes...)
		b = append(b, second.Value.Bytes...)
		result = vmvalue.NewBytes(b)
	default:
		return dispatch.Response{}, vmerrors.WrongType([]string{"string", "bytes"}, vmtypes.Render(second.Value.Typ)+", "+vmtypes.Render(top.Value.Typ), "CONCAT")
	}
	out := rest2.Push(stack.Cell{Value: result, Op: "CONCAT"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

// concatElems implements CONCAT's list-of-string/bytes overload.
func concatElems(list vmvalue.Value) (vmvalue.Value, error) {
	if len(list.Elems) == 0 {
		return vmvalue.Value{}, vmerrors.WrongType([]string{"list(string)", "list(bytes)"}, "list()", "CONCAT")
	}
	switch list.Elems[0].Typ.Kind {
	case vmtypes.KindString:
		var s string
		for _, e := range list.Elems {
			if e.Typ.Kind != vmtypes.KindString {
				return vmvalue.Value{}, vmerrors.WrongType([]string{"string"}, vmtypes.Render(e.Typ), "CONCAT")
			}
			s += e.Str
		}
		return vmvalue.NewString(s), nil
	case vmtypes.KindBytes:
		var b []byte
		for _, e := range list.Elems {
			if e.Typ.Kind != vmtypes.KindBytes {
				return vmvalue.Value{}, vmerrors.WrongType([]string{"bytes"}, vmtypes.Render(e.Typ), "CONCAT")
			}
			b = append(b, e.Bytes...)
		}
		return vmvalue.NewBytes(b), nil
	default:
		return vmvalue.Value{}, vmerrors.WrongType([]string{"list(string)", "list(bytes)"}, vmtypes.Render(list.Typ), "CONCAT")
	}
}

func memHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := stack.RequireDepth(req.Stack, 2, "MEM"); err != nil {
		return dispatch.Response{}, err
	}
	key, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	container, rest, err := rest.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	found, err := vmvalue.Contains(key.Value, container.Value)
	if err != nil {
		return dispatch.Response{}, err
	}
	out := rest.Push(stack.Cell{Value: vmvalue.NewBool(found), Op: "MEM"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

// updateHandler covers the set and map/big_map overloads of UPDATE.
func updateHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := stack.RequireDepth(req.Stack, 3, "UPDATE"); err != nil {
		return dispatch.Response{}, err
	}
	key, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	middle, rest, err := rest.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	container, rest, err := rest.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	var result vmvalue.Value
	switch container.Value.Typ.Kind {
	case vmtypes.KindSet:
		if middle.Value.Typ.Kind != vmtypes.KindBool {
			return dispatch.Response{}, vmerrors.WrongType([]string{"bool"}, vmtypes.Render(middle.Value.Typ), "UPDATE")
		}
		result, err = vmvalue.SetUpdate(key.Value, middle.Value.Bool, container.Value)
	case vmtypes.KindMap, vmtypes.KindBigMap:
		if middle.Value.Typ.Kind != vmtypes.KindOption {
			return dispatch.Response{}, vmerrors.WrongType([]string{"option"}, vmtypes.Render(middle.Value.Typ), "UPDATE")
		}
		result, err = vmvalue.MapUpdate(key.Value, middle.Value.Opt, container.Value)
	default:
		return dispatch.Response{}, vmerrors.WrongType([]string{"set", "map", "big_map"}, vmtypes.Render(container.Value.Typ), "UPDATE")
	}
	if err != nil {
		return dispatch.Response{}, err
	}
	out := rest.Push(stack.Cell{Value: result, Op: "UPDATE"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

// mapHandler implements MAP per §9 open question (c): the body runs once
// per element with the element pushed on top of the remaining stack, and
// the body's resulting top-of-stack becomes the transformed element; the
// container is reconstructed in original order/keys.
func mapHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := requireArgCount(req.Args, 1, "MAP"); err != nil {
		return dispatch.Response{}, err
	}
	body := req.Args[0].Seq
	if err := stack.RequireDepth(req.Stack, 1, "MAP"); err != nil {
		return dispatch.Response{}, err
	}
	top, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	switch top.Value.Typ.Kind {
	case vmtypes.KindList:
		transformed := make([]vmvalue.Value, len(top.Value.Elems))
		for i, e := range top.Value.Elems {
			sub := rest.Push(stack.Cell{Value: e, Op: "MAP"})
			res, err := req.Run(body, sub, req.Ctx)
			if err != nil {
				return dispatch.Response{}, err
			}
			newTop, err := res.Peek(0)
			if err != nil {
				return dispatch.Response{}, err
			}
			transformed[i] = newTop.Value
		}
		elemType := *top.Value.Typ.A
		if len(transformed) > 0 {
			elemType = transformed[0].Typ
		}
		v, err := vmvalue.NewList(elemType, transformed)
		if err != nil {
			return dispatch.Response{}, err
		}
		out := rest.Push(stack.Cell{Value: v, Op: "MAP"})
		return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil

	case vmtypes.KindMap, vmtypes.KindBigMap:
		newEntries := make([]vmvalue.MapEntry, len(top.Value.Entries))
		for i, e := range top.Value.Entries {
			pair := vmvalue.NewPair(e.Key, e.Val)
			sub := rest.Push(stack.Cell{Value: pair, Op: "MAP"})
			res, err := req.Run(body, sub, req.Ctx)
			if err != nil {
				return dispatch.Response{}, err
			}
			newTop, err := res.Peek(0)
			if err != nil {
				return dispatch.Response{}, err
			}
			newEntries[i] = vmvalue.MapEntry{Key: e.Key, Val: newTop.Value}
		}
		valType := *top.Value.Typ.B
		if len(newEntries) > 0 {
			valType = newEntries[0].Val.Typ
		}
		var v vmvalue.Value
		if top.Value.Typ.Kind == vmtypes.KindMap {
			v, err = vmvalue.NewMap(*top.Value.Typ.A, valType, newEntries)
		} else {
			v, err = vmvalue.NewBigMap(*top.Value.Typ.A, valType, newEntries)
		}
		if err != nil {
			return dispatch.Response{}, err
		}
		out := rest.Push(stack.Cell{Value: v, Op: "MAP"})
		return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil

	default:
		return dispatch.Response{}, vmerrors.WrongType([]string{"list", "map", "big_map"}, vmtypes.Render(top.Value.Typ), "MAP")
	}
}

// iterHandler runs body once per element, threading the running stack
// through every iteration so an accumulator beneath the container can carry
// state across elements (standard Michelson ITER semantics).
func iterHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := requireArgCount(req.Args, 1, "ITER"); err != nil {
		return dispatch.Response{}, err
	}
	body := req.Args[0].Seq
	if err := stack.RequireDepth(req.Stack, 1, "ITER"); err != nil {
		return dispatch.Response{}, err
	}
	top, cur, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	switch top.Value.Typ.Kind {
	case vmtypes.KindList, vmtypes.KindSet:
		for _, e := range top.Value.Elems {
			cur = cur.Push(stack.Cell{Value: e, Op: "ITER"})
			cur, err = req.Run(body, cur, req.Ctx)
			if err != nil {
				return dispatch.Response{}, err
			}
		}
	case vmtypes.KindMap, vmtypes.KindBigMap:
		for _, e := range top.Value.Entries {
			cur = cur.Push(stack.Cell{Value: vmvalue.NewPair(e.Key, e.Val), Op: "ITER"})
			cur, err = req.Run(body, cur, req.Ctx)
			if err != nil {
				return dispatch.Response{}, err
			}
		}
	default:
		return dispatch.Response{}, vmerrors.WrongType([]string{"list", "set", "map", "big_map"}, vmtypes.Render(top.Value.Typ), "ITER")
	}
	return dispatch.Response{Stack: cur, Ctx: req.Ctx}, nil
}

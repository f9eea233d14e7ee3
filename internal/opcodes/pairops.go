package opcodes

import (
	"github.com/tzstack/michelvm/internal/dispatch"
	"github.com/tzstack/michelvm/internal/stack"
	"github.com/tzstack/michelvm/internal/vmerrors"
	"github.com/tzstack/michelvm/internal/vmtypes"
	"github.com/tzstack/michelvm/internal/vmvalue"
)

func init() {
	dispatch.Register("PAIR", pairHandler)
	dispatch.Register("UNPAIR", unpairHandler)
	dispatch.Register("CAR", carHandler)
	dispatch.Register("CDR", cdrHandler)
	dispatch.Register("GET", getHandler)
}

// pairHandler implements bare PAIR (arity 2) and the supplemented PAIR n
// right-comb form (SPEC_FULL.md §4.H).
func pairHandler(req dispatch.Request) (dispatch.Response, error) {
	n, err := intArg(req.Args, 0, 2, "PAIR")
	if err != nil {
		return dispatch.Response{}, err
	}
	if n < 2 {
		return dispatch.Response{}, vmerrors.UnexpectedArgCount(2, n, "PAIR")
	}
	if err := stack.RequireDepth(req.Stack, n, "PAIR"); err != nil {
		return dispatch.Response{}, err
	}
	leaves := make([]vmvalue.Value, n)
	rest := req.Stack
	for i := 0; i < n; i++ {
		cell, r, err := rest.Dig(0)
		if err != nil {
			return dispatch.Response{}, err
		}
		leaves[i] = cell.Value
		rest = r
	}
	v, err := vmvalue.Fold(leaves)
	if err != nil {
		return dispatch.Response{}, err
	}
	out := rest.Push(stack.Cell{Value: v, Op: "PAIR"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

// unpairHandler implements bare UNPAIR (arity 2) and the supplemented
// UNPAIR n right-comb form.
func unpairHandler(req dispatch.Request) (dispatch.Response, error) {
	n, err := intArg(req.Args, 0, 2, "UNPAIR")
	if err != nil {
		return dispatch.Response{}, err
	}
	if err := stack.RequireDepth(req.Stack, 1, "UNPAIR"); err != nil {
		return dispatch.Response{}, err
	}
	top, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	leaves, err := vmvalue.Unfold(top.Value, n)
	if err != nil {
		return dispatch.Response{}, err
	}
	out := rest
	for i := len(leaves) - 1; i >= 0; i-- {
		out = out.Push(stack.Cell{Value: leaves[i], Op: "UNPAIR"})
	}
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

func carHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := stack.RequireDepth(req.Stack, 1, "CAR"); err != nil {
		return dispatch.Response{}, err
	}
	top, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	v, err := vmvalue.Car(top.Value)
	if err != nil {
		return dispatch.Response{}, err
	}
	out := rest.Push(stack.Cell{Value: v, Op: "CAR"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

func cdrHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := stack.RequireDepth(req.Stack, 1, "CDR"); err != nil {
		return dispatch.Response{}, err
	}
	top, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	v, err := vmvalue.Cdr(top.Value)
	if err != nil {
		return dispatch.Response{}, err
	}
	out := rest.Push(stack.Cell{Value: v, Op: "CDR"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

// getHandler implements both overloads of GET: the bare map/big_map lookup
// (key, container -> option(V)) and the supplemented GET n right-comb field
// projection (pair -> field value), disambiguated by whether GET carries an
// int operand.
func getHandler(req dispatch.Request) (dispatch.Response, error) {
	if len(req.Args) == 0 {
		return mapGetHandler(req)
	}
	return pairGetHandler(req)
}

func mapGetHandler(req dispatch.Request) (dispatch.Response, error) {
	if err := stack.RequireDepth(req.Stack, 2, "GET"); err != nil {
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
	val, found, err := vmvalue.MapGet(key.Value, container.Value)
	if err != nil {
		return dispatch.Response{}, err
	}
	var result vmvalue.Value
	if found {
		result = vmvalue.NewSome(val)
	} else {
		result = vmvalue.NewNone(*container.Value.Typ.B)
	}
	out := rest.Push(stack.Cell{Value: result, Op: "GET"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

// pairGetHandler implements GET n per SPEC_FULL.md §4.H's right-comb index
// rule: n=0 is identity; for n>0, let k = ceil(n/2); odd n projects the CAR
// after (k-1) CDRs, even n is the plain result of k CDRs. Like the bare
// map-lookup overload, the projected field comes back wrapped in
// option(...) (§6: GET n returns an "optional field").
func pairGetHandler(req dispatch.Request) (dispatch.Response, error) {
	n, err := requireIntArg(req.Args, 0, "GET")
	if err != nil {
		return dispatch.Response{}, err
	}
	if err := stack.RequireDepth(req.Stack, 1, "GET"); err != nil {
		return dispatch.Response{}, err
	}
	top, rest, err := req.Stack.Dig(0)
	if err != nil {
		return dispatch.Response{}, err
	}
	v, err := getByCombIndex(top.Value, n)
	if err != nil {
		return dispatch.Response{}, err
	}
	out := rest.Push(stack.Cell{Value: vmvalue.NewSome(v), Op: "GET"})
	return dispatch.Response{Stack: out, Ctx: req.Ctx}, nil
}

func getByCombIndex(v vmvalue.Value, n int) (vmvalue.Value, error) {
	if n < 0 {
		return vmvalue.Value{}, vmerrors.InvalidLiteral("nat", "negative", "GET")
	}
	if n == 0 {
		return v, nil
	}
	k := (n + 1) / 2 // ceil(n/2)
	cdrs := k
	wantCar := n%2 == 1
	if wantCar {
		cdrs = k - 1
	}
	cur := v
	for i := 0; i < cdrs; i++ {
		if cur.Typ.Kind != vmtypes.KindPair {
			return vmvalue.Value{}, vmerrors.StackTooShallow(n, i, "GET")
		}
		cur = *cur.PairR
	}
	if wantCar {
		if cur.Typ.Kind != vmtypes.KindPair {
			return vmvalue.Value{}, vmerrors.StackTooShallow(n, cdrs, "GET")
		}
		return *cur.PairL, nil
	}
	return cur, nil
}

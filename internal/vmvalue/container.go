package vmvalue

import (
	"github.com/tzstack/michelvm/internal/hashext"
	"github.com/tzstack/michelvm/internal/vmerrors"
	"github.com/tzstack/michelvm/internal/vmtypes"
)

// Car returns the left projection of a pair value.
func Car(p Value) (Value, error) {
	if p.Typ.Kind != vmtypes.KindPair {
		return Value{}, vmerrors.WrongType([]string{"pair"}, vmtypes.Render(p.Typ), "CAR")
	}
	return *p.PairL, nil
}

// Cdr returns the right projection of a pair value.
func Cdr(p Value) (Value, error) {
	if p.Typ.Kind != vmtypes.KindPair {
		return Value{}, vmerrors.WrongType([]string{"pair"}, vmtypes.Render(p.Typ), "CDR")
	}
	return *p.PairR, nil
}

// Cons prepends elem to a list, failing if elem's type disagrees with the
// list's declared element type (§4.H's stack prologue: type check before
// rewrite).
func Cons(elem, list Value) (Value, error) {
	if list.Typ.Kind != vmtypes.KindList {
		return Value{}, vmerrors.WrongType([]string{"list"}, vmtypes.Render(list.Typ), "CONS")
	}
	if !vmtypes.Equals(elem.Typ, *list.Typ.A) {
		return Value{}, vmerrors.WrongType([]string{vmtypes.Render(*list.Typ.A)}, vmtypes.Render(elem.Typ), "CONS")
	}
	out := make([]Value, 0, len(list.Elems)+1)
	out = append(out, elem)
	out = append(out, list.Elems...)
	return Value{Typ: list.Typ, Elems: out}, nil
}

// Size returns the element count of a list, set, map, or big_map, or the
// byte/character length of a string/bytes value — the unified SIZE opcode
// operates over all of these (§4's opcode table).
func Size(v Value) (int, error) {
	switch v.Typ.Kind {
	case vmtypes.KindList, vmtypes.KindSet:
		return len(v.Elems), nil
	case vmtypes.KindMap, vmtypes.KindBigMap:
		return len(v.Entries), nil
	case vmtypes.KindString:
		return len(v.Str), nil
	case vmtypes.KindBytes:
		return len(v.Bytes), nil
	default:
		return 0, vmerrors.WrongType([]string{"list", "set", "map", "big_map", "string", "bytes"}, vmtypes.Render(v.Typ), "SIZE")
	}
}

// Contains reports whether key is present in a set, or is a key of a map or
// big_map value (MEM opcode).
func Contains(key, container Value) (bool, error) {
	switch container.Typ.Kind {
	case vmtypes.KindSet:
		for _, e := range container.Elems {
			if c, err := Compare(key, e); err == nil && c == 0 {
				return true, nil
			}
		}
		return false, nil
	case vmtypes.KindMap, vmtypes.KindBigMap:
		for _, e := range container.Entries {
			if c, err := Compare(key, e.Key); err == nil && c == 0 {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, vmerrors.WrongType([]string{"set", "map", "big_map"}, vmtypes.Render(container.Typ), "MEM")
	}
}

// MapGet looks up key in a map or big_map, returning (value, true) if
// present and (Value{}, false) otherwise (GET opcode).
func MapGet(key, container Value) (Value, bool, error) {
	if container.Typ.Kind != vmtypes.KindMap && container.Typ.Kind != vmtypes.KindBigMap {
		return Value{}, false, vmerrors.WrongType([]string{"map", "big_map"}, vmtypes.Render(container.Typ), "GET")
	}
	for _, e := range container.Entries {
		if c, err := Compare(key, e.Key); err == nil && c == 0 {
			return e.Val, true, nil
		}
	}
	return Value{}, false, nil
}

// MapUpdate inserts, replaces, or removes a key in a map/big_map depending
// on whether newVal is Some or None (UPDATE opcode's map overload).
func MapUpdate(key Value, newVal *Value, container Value) (Value, error) {
	if container.Typ.Kind != vmtypes.KindMap && container.Typ.Kind != vmtypes.KindBigMap {
		return Value{}, vmerrors.WrongType([]string{"map", "big_map"}, vmtypes.Render(container.Typ), "UPDATE")
	}
	out := make([]MapEntry, 0, len(container.Entries)+1)
	replaced := false
	for _, e := range container.Entries {
		if c, err := Compare(key, e.Key); err == nil && c == 0 {
			replaced = true
			if newVal != nil {
				out = append(out, MapEntry{Key: key, Val: *newVal})
			}
			continue
		}
		out = append(out, e)
	}
	if !replaced && newVal != nil {
		out = append(out, MapEntry{Key: key, Val: *newVal})
	}
	return Value{Typ: container.Typ, Entries: out}, nil
}

// SetUpdate inserts or removes elem from a set depending on present.
func SetUpdate(elem Value, present bool, set Value) (Value, error) {
	if set.Typ.Kind != vmtypes.KindSet {
		return Value{}, vmerrors.WrongType([]string{"set"}, vmtypes.Render(set.Typ), "UPDATE")
	}
	out := make([]Value, 0, len(set.Elems)+1)
	found := false
	for _, e := range set.Elems {
		if c, err := Compare(elem, e); err == nil && c == 0 {
			found = true
			if present {
				out = append(out, elem)
			}
			continue
		}
		out = append(out, e)
	}
	if !found && present {
		out = append(out, elem)
	}
	return Value{Typ: set.Typ, Elems: out}, nil
}

// RightCombDepth returns the nesting depth of a right comb of pair(a, b)
// values with exactly n leaves — the shape UNPAIR n and PAIR n operate
// over. A right comb with n leaves has n-1 nested pair nodes.
func RightCombDepth(n int) int {
	if n <= 1 {
		return 0
	}
	return n - 1
}

// Unfold flattens a right-comb pair value into its n leaves (UNPAIR n).
func Unfold(p Value, n int) ([]Value, error) {
	if n < 2 {
		return nil, vmerrors.UnexpectedArgCount(2, n, "UNPAIR")
	}
	leaves := make([]Value, 0, n)
	cur := p
	for i := 0; i < n-1; i++ {
		if cur.Typ.Kind != vmtypes.KindPair {
			return nil, vmerrors.WrongType([]string{"pair"}, vmtypes.Render(cur.Typ), "UNPAIR")
		}
		leaves = append(leaves, *cur.PairL)
		cur = *cur.PairR
	}
	leaves = append(leaves, cur)
	return leaves, nil
}

// Fold builds a right-comb pair value from n leaves (PAIR n).
func Fold(leaves []Value) (Value, error) {
	if len(leaves) < 2 {
		return Value{}, vmerrors.UnexpectedArgCount(2, len(leaves), "PAIR")
	}
	cur := leaves[len(leaves)-1]
	for i := len(leaves) - 2; i >= 0; i-- {
		cur = NewPair(leaves[i], cur)
	}
	return cur, nil
}

// AddressClass classifies an address string per §3.2's account/contract
// split.
type AddressClass int

const (
	AddressInvalid AddressClass = iota
	AddressAccount
	AddressContract
)

// ClassifyAddress reports which AddressClass s belongs to.
func ClassifyAddress(s string) AddressClass {
	if hashext.ValidateAddress(s) != nil {
		return AddressInvalid
	}
	if hashext.IsContractAddress(s) {
		return AddressContract
	}
	return AddressAccount
}

// Package vmvalue implements the typed value model (component B): a closed
// sum of value shapes, each carrying its declared vmtypes.Type, with
// constructors that enforce the invariants in spec §3.2.
//
// Values are immutable once constructed. Every "mutating" helper returns a
// new Value; none of them touch the receiver in place. This is the same
// contract the interpreter's Stack cells rely on (internal/stack): a Value
// referenced by one cell can be safely shared by a history snapshot and by
// a freshly rewritten cell without defensive copying.
package vmvalue

import (
	"math/big"
	"strconv"

	"github.com/tzstack/michelvm/internal/hashext"
	"github.com/tzstack/michelvm/internal/vmerrors"
	"github.com/tzstack/michelvm/internal/vmtypes"
)

// Value is the tagged union of every value shape in §3.2. Exactly the
// fields relevant to Typ.Kind are populated; the rest are zero.
type Value struct {
	Typ vmtypes.Type

	Bool  bool     // bool
	Num   *big.Int // int, nat, mutez, timestamp
	Str   string   // string, key_hash, key, signature, chain_id, address, operation descriptor
	Bytes []byte   // bytes

	Opt *Value // option: nil = None, non-nil = Some(*Opt)

	OrIsLeft bool   // or: true iff Left
	OrInner  *Value // or: the wrapped value

	PairL *Value // pair: left projection (car)
	PairR *Value // pair: right projection (cdr)

	Elems []Value // list/set: ordered elements

	Entries []MapEntry // map/big_map: key/value pairs, insertion order preserved

	Ticket *TicketPayload

	Contract *ContractPayload
}

// MapEntry is one key/value pair of a map or big_map value.
type MapEntry struct {
	Key Value
	Val Value
}

// TicketPayload is the (value, amount, ticketer) carried by a ticket.
type TicketPayload struct {
	Content Value
	Amount  *big.Int
	Ticketer string
}

// ContractPayload is the (address, parameter type) carried by a contract value.
type ContractPayload struct {
	Address string
	Param   vmtypes.Type
}

// TypeOf returns v's declared type.
func TypeOf(v Value) vmtypes.Type { return v.Typ }

// String implements fmt.Stringer so Value can feed vmerrors helpers directly.
func (v Value) String() string {
	return vmtypes.Render(v.Typ)
}

// Unit constructs the single unit value.
func Unit() Value { return Value{Typ: vmtypes.Scalar(vmtypes.KindUnit)} }

// NewBool constructs a bool value.
func NewBool(b bool) Value { return Value{Typ: vmtypes.Scalar(vmtypes.KindBool), Bool: b} }

// NewInt constructs an unbounded signed int value.
func NewInt(n *big.Int) Value { return Value{Typ: vmtypes.Scalar(vmtypes.KindInt), Num: new(big.Int).Set(n)} }

// NewNat constructs a nat value; returns InvalidNat if n is negative (§3.2).
func NewNat(n *big.Int) (Value, error) {
	if n.Sign() < 0 {
		return Value{}, vmerrors.InvalidNat(bigStringer{n})
	}
	return Value{Typ: vmtypes.Scalar(vmtypes.KindNat), Num: new(big.Int).Set(n)}, nil
}

// NewMutez constructs a mutez value; returns InvalidMutez if n is negative.
func NewMutez(n *big.Int) (Value, error) {
	if n.Sign() < 0 {
		return Value{}, vmerrors.InvalidMutez(bigStringer{n})
	}
	return Value{Typ: vmtypes.Scalar(vmtypes.KindMutez), Num: new(big.Int).Set(n)}, nil
}

// NewTimestamp constructs a timestamp value; must be non-negative (§3.2).
func NewTimestamp(n *big.Int) (Value, error) {
	if n.Sign() < 0 {
		return Value{}, vmerrors.New(vmerrors.KindInvalidLiteral, "timestamp must be non-negative")
	}
	return Value{Typ: vmtypes.Scalar(vmtypes.KindTimestamp), Num: new(big.Int).Set(n)}, nil
}

// NewString constructs a string value.
func NewString(s string) Value { return Value{Typ: vmtypes.Scalar(vmtypes.KindString), Str: s} }

// NewBytes constructs a bytes value.
func NewBytes(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{Typ: vmtypes.Scalar(vmtypes.KindBytes), Bytes: cp}
}

// NewKeyHash constructs a key_hash value.
func NewKeyHash(s string) Value { return Value{Typ: vmtypes.Scalar(vmtypes.KindKeyHash), Str: s} }

// NewKey constructs a key value.
func NewKey(s string) Value { return Value{Typ: vmtypes.Scalar(vmtypes.KindKey), Str: s} }

// NewSignature constructs a signature value.
func NewSignature(s string) Value { return Value{Typ: vmtypes.Scalar(vmtypes.KindSignature), Str: s} }

// NewChainID constructs a chain_id value.
func NewChainID(s string) Value { return Value{Typ: vmtypes.Scalar(vmtypes.KindChainID), Str: s} }

// NewOperation constructs an operation value carrying an opaque descriptor;
// the actual operation content is out of scope (§1).
func NewOperation(descriptor string) Value {
	return Value{Typ: vmtypes.Scalar(vmtypes.KindOperation), Str: descriptor}
}

// NewAddress constructs an address value, validating its base58 shape via
// internal/hashext (§3.2: 36 characters, tz1/tz2/tz3/KT1 prefix, valid
// base58 alphabet).
func NewAddress(s string) (Value, error) {
	if err := hashext.ValidateAddress(s); err != nil {
		return Value{}, err
	}
	return Value{Typ: vmtypes.Scalar(vmtypes.KindAddress), Str: s}, nil
}

// NewNone constructs option(elemType) with no value (None).
func NewNone(elemType vmtypes.Type) Value {
	return Value{Typ: vmtypes.Option(elemType)}
}

// NewSome constructs Some(inner); the option's element type is inner's type.
func NewSome(inner Value) Value {
	t := inner.Typ
	return Value{Typ: vmtypes.Option(t), Opt: &inner}
}

// NewPair constructs pair(left, right).
func NewPair(left, right Value) Value {
	l, r := left, right
	return Value{Typ: vmtypes.Pair(left.Typ, right.Typ), PairL: &l, PairR: &r}
}

// NewLeft constructs Left(v) : or(type(v), otherSide).
func NewLeft(v Value, otherSide vmtypes.Type) Value {
	inner := v
	return Value{Typ: vmtypes.Or(v.Typ, otherSide), OrIsLeft: true, OrInner: &inner}
}

// NewRight constructs Right(v) : or(otherSide, type(v)).
func NewRight(v Value, otherSide vmtypes.Type) Value {
	inner := v
	return Value{Typ: vmtypes.Or(otherSide, v.Typ), OrIsLeft: false, OrInner: &inner}
}

// NewList constructs list(elemType) from elems, failing if any element's
// type disagrees with elemType (§3.2).
func NewList(elemType vmtypes.Type, elems []Value) (Value, error) {
	for i, e := range elems {
		if !vmtypes.Equals(e.Typ, elemType) {
			return Value{}, vmerrors.WrongType([]string{vmtypes.Render(elemType)}, vmtypes.Render(e.Typ), "list element "+strconv.Itoa(i))
		}
	}
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return Value{Typ: vmtypes.List(elemType), Elems: cp}, nil
}

// NewSet constructs set(elemType) from elems, deduplicating (construction's
// job per §3.2) and validating element types.
func NewSet(elemType vmtypes.Type, elems []Value) (Value, error) {
	var deduped []Value
	for i, e := range elems {
		if !vmtypes.Equals(e.Typ, elemType) {
			return Value{}, vmerrors.WrongType([]string{vmtypes.Render(elemType)}, vmtypes.Render(e.Typ), "set element "+strconv.Itoa(i))
		}
		dup := false
		for _, d := range deduped {
			c, err := Compare(e, d)
			if err == nil && c == 0 {
				dup = true
				break
			}
		}
		if !dup {
			deduped = append(deduped, e)
		}
	}
	return Value{Typ: vmtypes.Set(elemType), Elems: deduped}, nil
}

// NewMap constructs map(keyType, valType) from entries, deduplicating by
// key (last write wins) and validating comparability of the key type.
func NewMap(keyType, valType vmtypes.Type, entries []MapEntry) (Value, error) {
	return newMapLike(vmtypes.Map(keyType, valType), keyType, valType, entries)
}

// NewBigMap constructs big_map(keyType, valType); see NewMap.
func NewBigMap(keyType, valType vmtypes.Type, entries []MapEntry) (Value, error) {
	return newMapLike(vmtypes.BigMap(keyType, valType), keyType, valType, entries)
}

func newMapLike(t, keyType, valType vmtypes.Type, entries []MapEntry) (Value, error) {
	if !vmtypes.IsComparableKey(keyType) {
		return Value{}, vmerrors.New(vmerrors.KindWrongType, "map key type is not comparable: "+vmtypes.Render(keyType))
	}
	var out []MapEntry
	for _, e := range entries {
		if !vmtypes.Equals(e.Key.Typ, keyType) {
			return Value{}, vmerrors.WrongType([]string{vmtypes.Render(keyType)}, vmtypes.Render(e.Key.Typ), "map key")
		}
		if !vmtypes.Equals(e.Val.Typ, valType) {
			return Value{}, vmerrors.WrongType([]string{vmtypes.Render(valType)}, vmtypes.Render(e.Val.Typ), "map value")
		}
		replaced := false
		for i, o := range out {
			if c, err := Compare(o.Key, e.Key); err == nil && c == 0 {
				out[i] = e
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, e)
		}
	}
	return Value{Typ: t, Entries: out}, nil
}

// NewTicket constructs ticket(content) with the given positive amount and
// ticketer address. amount must be > 0 (§3.2); the TICKET opcode is
// responsible for returning None instead of calling this when amount == 0.
func NewTicket(content Value, amount *big.Int, ticketer string) (Value, error) {
	if amount.Sign() <= 0 {
		return Value{}, vmerrors.New(vmerrors.KindInvalidLiteral, "ticket amount must be > 0")
	}
	return Value{
		Typ: vmtypes.TicketOf(content.Typ),
		Ticket: &TicketPayload{
			Content:  content,
			Amount:   new(big.Int).Set(amount),
			Ticketer: ticketer,
		},
	}, nil
}

// NewContract constructs a contract(address, param) value, validating the
// address the same way NewAddress does.
func NewContract(address string, param vmtypes.Type) (Value, error) {
	if err := hashext.ValidateAddress(address); err != nil {
		return Value{}, err
	}
	return Value{
		Typ:      vmtypes.Contract(vmtypes.Scalar(vmtypes.KindAddress), param),
		Contract: &ContractPayload{Address: address, Param: param},
	}, nil
}

type bigStringer struct{ n *big.Int }

func (b bigStringer) String() string { return b.n.String() }

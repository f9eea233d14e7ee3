// Package vmtypes implements the closed sum of type descriptors (component A):
// scalars, the four unary constructors (option, list, set, ticket), and the five
// binary constructors (pair, or, map, big_map, contract).
//
// A Type is immutable once constructed. Equality is structural and ignores
// annotations, which are carried only for diagnostics and rendering.
package vmtypes

import (
	"strings"
)

// Kind tags a Type variant.
type Kind int

const (
	KindUnit Kind = iota
	KindNever
	KindBool
	KindInt
	KindNat
	KindString
	KindChainID
	KindBytes
	KindMutez
	KindKeyHash
	KindKey
	KindSignature
	KindTimestamp
	KindAddress
	KindOperation
	KindTicket

	KindOption
	KindList
	KindSet

	KindPair
	KindOr
	KindMap
	KindBigMap
	KindContract
)

// scalarKeywords maps the nullary surface keywords to their Kind. Ticket is
// not among them: its value carries (inner value, amount, ticketer), and its
// keyword form (ticket(T)) is listed in unaryKeywords, taking one child, the
// ticketed value's type, stored in A.
var scalarKeywords = map[string]Kind{
	"unit":      KindUnit,
	"never":     KindNever,
	"bool":      KindBool,
	"int":       KindInt,
	"nat":       KindNat,
	"string":    KindString,
	"chain_id":  KindChainID,
	"bytes":     KindBytes,
	"mutez":     KindMutez,
	"key_hash":  KindKeyHash,
	"key":       KindKey,
	"signature": KindSignature,
	"timestamp": KindTimestamp,
	"address":   KindAddress,
	"operation": KindOperation,
}

var unaryKeywords = map[string]Kind{
	"option": KindOption,
	"list":   KindList,
	"set":    KindSet,
	"ticket": KindTicket,
}

var binaryKeywords = map[string]Kind{
	"pair":     KindPair,
	"or":       KindOr,
	"map":      KindMap,
	"big_map":  KindBigMap,
	"contract": KindContract,
}

var kindKeywords = func() map[Kind]string {
	m := make(map[Kind]string)
	for kw, k := range scalarKeywords {
		m[k] = kw
	}
	for kw, k := range unaryKeywords {
		m[k] = kw
	}
	for kw, k := range binaryKeywords {
		m[k] = kw
	}
	return m
}()

// Type is the closed sum: scalars carry no children, unary constructors
// carry A, binary constructors carry A and B.
type Type struct {
	Kind Kind
	A    *Type
	B    *Type

	// Annot is a user-facing label (@name, :name, %name) attached when this
	// type was parsed. It never participates in Equals.
	Annot string
}

// Scalar builds a scalar type.
func Scalar(k Kind) Type { return Type{Kind: k} }

// Option builds option(elem).
func Option(elem Type) Type { return Type{Kind: KindOption, A: &elem} }

// List builds list(elem).
func List(elem Type) Type { return Type{Kind: KindList, A: &elem} }

// Set builds set(elem).
func Set(elem Type) Type { return Type{Kind: KindSet, A: &elem} }

// TicketOf builds ticket(content).
func TicketOf(content Type) Type { return Type{Kind: KindTicket, A: &content} }

// Pair builds pair(left, right).
func Pair(left, right Type) Type { return Type{Kind: KindPair, A: &left, B: &right} }

// Or builds or(left, right).
func Or(left, right Type) Type { return Type{Kind: KindOr, A: &left, B: &right} }

// Map builds map(key, value).
func Map(key, value Type) Type { return Type{Kind: KindMap, A: &key, B: &value} }

// BigMap builds big_map(key, value).
func BigMap(key, value Type) Type { return Type{Kind: KindBigMap, A: &key, B: &value} }

// Contract builds contract(addr, param).
func Contract(addr, param Type) Type { return Type{Kind: KindContract, A: &addr, B: &param} }

// IsScalar reports whether t carries no children.
func (t Type) IsScalar() bool {
	_, ok := scalarKeywords[kindKeywords[t.Kind]]
	return ok
}

// Equals is structural equality, ignoring annotations.
func Equals(a, b Type) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch {
	case a.A != nil && b.A != nil:
		if !Equals(*a.A, *b.A) {
			return false
		}
	case a.A != nil || b.A != nil:
		return false
	}
	switch {
	case a.B != nil && b.B != nil:
		if !Equals(*a.B, *b.B) {
			return false
		}
	case a.B != nil || b.B != nil:
		return false
	}
	return true
}

// String renders t in its canonical textual form.
func (t Type) String() string { return Render(t) }

// Render produces the canonical textual form of t, including annotations.
func Render(t Type) string {
	var b strings.Builder
	render(&b, t)
	return b.String()
}

func render(b *strings.Builder, t Type) {
	kw, ok := kindKeywords[t.Kind]
	if !ok {
		b.WriteString("<unknown>")
		return
	}
	b.WriteString(kw)
	if t.Annot != "" {
		b.WriteByte(' ')
		b.WriteString(t.Annot)
	}
	if t.A != nil {
		b.WriteByte(' ')
		if needsParens(*t.A) {
			b.WriteByte('(')
			render(b, *t.A)
			b.WriteByte(')')
		} else {
			render(b, *t.A)
		}
	}
	if t.B != nil {
		b.WriteByte(' ')
		if needsParens(*t.B) {
			b.WriteByte('(')
			render(b, *t.B)
			b.WriteByte(')')
		} else {
			render(b, *t.B)
		}
	}
}

func needsParens(t Type) bool {
	return t.A != nil || t.B != nil
}

// IsComparableKey reports whether a value of type t is eligible as a
// map/big_map/set key (§3.2: "keys must be a comparable subset of types").
func IsComparableKey(t Type) bool {
	switch t.Kind {
	case KindUnit, KindBool, KindInt, KindNat, KindString, KindChainID,
		KindBytes, KindMutez, KindKeyHash, KindKey, KindSignature,
		KindTimestamp, KindAddress:
		return true
	case KindPair:
		return IsComparableKey(*t.A) && IsComparableKey(*t.B)
	case KindOption:
		return IsComparableKey(*t.A)
	case KindOr:
		return IsComparableKey(*t.A) && IsComparableKey(*t.B)
	default:
		return false
	}
}

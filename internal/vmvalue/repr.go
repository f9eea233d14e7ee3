package vmvalue

import (
	"strings"

	"github.com/tzstack/michelvm/internal/vmtypes"
)

// Repr renders v's actual content deterministically, for use anywhere a
// content-sensitive fingerprint is needed (internal/history's canonical
// snapshot hashing). Unlike Value.String, which renders only the declared
// type for error-message purposes, Repr walks the value itself.
func Repr(v Value) string {
	var b strings.Builder
	repr(&b, v)
	return b.String()
}

func repr(b *strings.Builder, v Value) {
	switch v.Typ.Kind {
	case vmtypes.KindUnit:
		b.WriteString("Unit")
	case vmtypes.KindBool:
		if v.Bool {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case vmtypes.KindInt, vmtypes.KindNat, vmtypes.KindMutez, vmtypes.KindTimestamp:
		b.WriteString(v.Num.String())
	case vmtypes.KindString, vmtypes.KindKeyHash, vmtypes.KindKey, vmtypes.KindSignature,
		vmtypes.KindChainID, vmtypes.KindAddress, vmtypes.KindOperation:
		b.WriteByte('"')
		b.WriteString(v.Str)
		b.WriteByte('"')
	case vmtypes.KindBytes:
		b.WriteString("0x")
		const hexdigits = "0123456789abcdef"
		for _, c := range v.Bytes {
			b.WriteByte(hexdigits[c>>4])
			b.WriteByte(hexdigits[c&0xf])
		}
	case vmtypes.KindOption:
		if v.Opt == nil {
			b.WriteString("None")
		} else {
			b.WriteString("Some(")
			repr(b, *v.Opt)
			b.WriteByte(')')
		}
	case vmtypes.KindOr:
		if v.OrIsLeft {
			b.WriteString("Left(")
		} else {
			b.WriteString("Right(")
		}
		repr(b, *v.OrInner)
		b.WriteByte(')')
	case vmtypes.KindPair:
		b.WriteString("Pair(")
		repr(b, *v.PairL)
		b.WriteString(", ")
		repr(b, *v.PairR)
		b.WriteByte(')')
	case vmtypes.KindList:
		b.WriteString("[")
		for i, e := range v.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			repr(b, e)
		}
		b.WriteString("]")
	case vmtypes.KindSet:
		b.WriteString("{")
		for i, e := range v.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			repr(b, e)
		}
		b.WriteString("}")
	case vmtypes.KindMap, vmtypes.KindBigMap:
		b.WriteString("{")
		for i, e := range v.Entries {
			if i > 0 {
				b.WriteString(", ")
			}
			repr(b, e.Key)
			b.WriteString(" -> ")
			repr(b, e.Val)
		}
		b.WriteString("}")
	case vmtypes.KindTicket:
		b.WriteString("Ticket(")
		repr(b, v.Ticket.Content)
		b.WriteString(", amount=")
		b.WriteString(v.Ticket.Amount.String())
		b.WriteString(", ticketer=")
		b.WriteString(v.Ticket.Ticketer)
		b.WriteByte(')')
	case vmtypes.KindContract:
		b.WriteString("Contract(")
		b.WriteString(v.Contract.Address)
		b.WriteByte(')')
	default:
		b.WriteString("<unknown>")
	}
}

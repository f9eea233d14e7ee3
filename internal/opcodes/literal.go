// literal.go bridges the textual/IR literal nodes progparser and ir produce
// back into vmtypes.Type and vmvalue.Value — the step PUSH, NONE, NIL, and
// the EMPTY_* family all need before their stack prologue even starts.
package opcodes

import (
	"math/big"
	"strings"

	"github.com/tzstack/michelvm/internal/ir"
	"github.com/tzstack/michelvm/internal/vmerrors"
	"github.com/tzstack/michelvm/internal/vmtypes"
	"github.com/tzstack/michelvm/internal/vmvalue"
)

// renderTypeNode reconstructs the type-expression text vmtypes.Parse
// expects from a type-shaped IR node (the progparser's parenthesized
// compound-operand shape mirrors vmtypes' own keyword-then-operands
// grammar, so re-rendering to text and reusing the existing parser avoids
// a second tree-to-Type walker).
func renderTypeNode(n ir.Node) string {
	if len(n.Args) == 0 {
		return n.Prim
	}
	parts := make([]string, 0, len(n.Args)+1)
	parts = append(parts, n.Prim)
	for _, a := range n.Args {
		if a.Node == nil {
			continue
		}
		parts = append(parts, "("+renderTypeNode(*a.Node)+")")
	}
	return strings.Join(parts, " ")
}

// typeFromNode parses a type operand node into a vmtypes.Type.
func typeFromNode(n ir.Node, opcode string) (vmtypes.Type, error) {
	t, err := vmtypes.Parse(renderTypeNode(n))
	if err != nil {
		return vmtypes.Type{}, vmerrors.Wrap(vmerrors.KindInvalidLiteral, opcode+": invalid type operand", err)
	}
	return t, nil
}

// evalLiteral evaluates a literal/constructor IR node against its declared
// type, producing the typed Value PUSH (and any other literal-carrying
// opcode) needs.
func evalLiteral(n ir.Node, t vmtypes.Type, opcode string) (vmvalue.Value, error) {
	switch t.Kind {
	case vmtypes.KindUnit:
		if n.Prim != "Unit" {
			return vmvalue.Value{}, vmerrors.InvalidLiteral("unit", n.Prim, opcode)
		}
		return vmvalue.Unit(), nil

	case vmtypes.KindBool:
		switch n.Prim {
		case "True":
			return vmvalue.NewBool(true), nil
		case "False":
			return vmvalue.NewBool(false), nil
		default:
			return vmvalue.Value{}, vmerrors.InvalidLiteral("bool", n.Prim, opcode)
		}

	case vmtypes.KindInt:
		num, err := parseIntLit(n, opcode, "int")
		if err != nil {
			return vmvalue.Value{}, err
		}
		return vmvalue.NewInt(num), nil

	case vmtypes.KindNat:
		num, err := parseIntLit(n, opcode, "nat")
		if err != nil {
			return vmvalue.Value{}, err
		}
		return vmvalue.NewNat(num)

	case vmtypes.KindMutez:
		num, err := parseIntLit(n, opcode, "mutez")
		if err != nil {
			return vmvalue.Value{}, err
		}
		return vmvalue.NewMutez(num)

	case vmtypes.KindTimestamp:
		num, err := parseIntLit(n, opcode, "timestamp")
		if err != nil {
			return vmvalue.Value{}, err
		}
		return vmvalue.NewTimestamp(num)

	case vmtypes.KindString:
		if n.StringLit == nil {
			return vmvalue.Value{}, vmerrors.InvalidLiteral("string", n.Prim, opcode)
		}
		return vmvalue.NewString(*n.StringLit), nil

	case vmtypes.KindBytes:
		if n.StringLit == nil {
			return vmvalue.Value{}, vmerrors.InvalidLiteral("bytes", n.Prim, opcode)
		}
		b, err := decodeHex(*n.StringLit)
		if err != nil {
			return vmvalue.Value{}, vmerrors.InvalidLiteral("bytes", *n.StringLit, opcode)
		}
		return vmvalue.NewBytes(b), nil

	case vmtypes.KindKeyHash, vmtypes.KindKey, vmtypes.KindSignature, vmtypes.KindChainID, vmtypes.KindOperation:
		if n.StringLit == nil {
			return vmvalue.Value{}, vmerrors.InvalidLiteral(vmtypes.Render(t), n.Prim, opcode)
		}
		return scalarStringValue(t.Kind, *n.StringLit), nil

	case vmtypes.KindAddress:
		if n.StringLit == nil {
			return vmvalue.Value{}, vmerrors.InvalidLiteral("address", n.Prim, opcode)
		}
		return vmvalue.NewAddress(*n.StringLit)

	case vmtypes.KindOption:
		if n.Prim == "None" {
			return vmvalue.NewNone(*t.A), nil
		}
		if n.Prim == "Some" && len(n.Args) == 1 {
			inner, err := evalLiteral(*n.Args[0].Node, *t.A, opcode)
			if err != nil {
				return vmvalue.Value{}, err
			}
			return vmvalue.NewSome(inner), nil
		}
		return vmvalue.Value{}, vmerrors.InvalidLiteral("option", n.Prim, opcode)

	case vmtypes.KindOr:
		if n.Prim == "Left" && len(n.Args) == 1 {
			inner, err := evalLiteral(*n.Args[0].Node, *t.A, opcode)
			if err != nil {
				return vmvalue.Value{}, err
			}
			return vmvalue.NewLeft(inner, *t.B), nil
		}
		if n.Prim == "Right" && len(n.Args) == 1 {
			inner, err := evalLiteral(*n.Args[0].Node, *t.B, opcode)
			if err != nil {
				return vmvalue.Value{}, err
			}
			return vmvalue.NewRight(inner, *t.A), nil
		}
		return vmvalue.Value{}, vmerrors.InvalidLiteral("or", n.Prim, opcode)

	case vmtypes.KindPair:
		if n.Prim != "Pair" || len(n.Args) != 2 {
			return vmvalue.Value{}, vmerrors.InvalidLiteral("pair", n.Prim, opcode)
		}
		left, err := evalLiteral(*n.Args[0].Node, *t.A, opcode)
		if err != nil {
			return vmvalue.Value{}, err
		}
		right, err := evalLiteral(*n.Args[1].Node, *t.B, opcode)
		if err != nil {
			return vmvalue.Value{}, err
		}
		return vmvalue.NewPair(left, right), nil

	case vmtypes.KindList:
		elems, err := evalCollectionElements(n, *t.A, opcode)
		if err != nil {
			return vmvalue.Value{}, err
		}
		return vmvalue.NewList(*t.A, elems)

	case vmtypes.KindSet:
		elems, err := evalCollectionElements(n, *t.A, opcode)
		if err != nil {
			return vmvalue.Value{}, err
		}
		return vmvalue.NewSet(*t.A, elems)

	case vmtypes.KindMap, vmtypes.KindBigMap:
		entries, err := evalMapEntries(n, *t.A, *t.B, opcode)
		if err != nil {
			return vmvalue.Value{}, err
		}
		if t.Kind == vmtypes.KindMap {
			return vmvalue.NewMap(*t.A, *t.B, entries)
		}
		return vmvalue.NewBigMap(*t.A, *t.B, entries)

	default:
		return vmvalue.Value{}, vmerrors.New(vmerrors.KindInvalidLiteral, opcode+": unsupported literal type "+vmtypes.Render(t))
	}
}

func scalarStringValue(k vmtypes.Kind, s string) vmvalue.Value {
	switch k {
	case vmtypes.KindKeyHash:
		return vmvalue.NewKeyHash(s)
	case vmtypes.KindKey:
		return vmvalue.NewKey(s)
	case vmtypes.KindSignature:
		return vmvalue.NewSignature(s)
	case vmtypes.KindChainID:
		return vmvalue.NewChainID(s)
	default:
		return vmvalue.NewOperation(s)
	}
}

func parseIntLit(n ir.Node, opcode, kind string) (*big.Int, error) {
	if n.IntLit == nil {
		return nil, vmerrors.InvalidLiteral(kind, n.Prim, opcode)
	}
	num, ok := new(big.Int).SetString(*n.IntLit, 10)
	if !ok {
		return nil, vmerrors.InvalidLiteral(kind, *n.IntLit, opcode)
	}
	return num, nil
}

func evalCollectionElements(n ir.Node, elemType vmtypes.Type, opcode string) ([]vmvalue.Value, error) {
	if n.Prim != "%collection%" {
		return nil, vmerrors.InvalidLiteral("collection", n.Prim, opcode)
	}
	out := make([]vmvalue.Value, 0, len(n.Args))
	for _, a := range n.Args {
		v, err := evalLiteral(*a.Node, elemType, opcode)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func evalMapEntries(n ir.Node, keyType, valType vmtypes.Type, opcode string) ([]vmvalue.MapEntry, error) {
	if n.Prim != "%collection%" {
		return nil, vmerrors.InvalidLiteral("map", n.Prim, opcode)
	}
	out := make([]vmvalue.MapEntry, 0, len(n.Args))
	for _, a := range n.Args {
		elt := a.Node
		if elt.Prim != "Elt" || len(elt.Args) != 2 {
			return nil, vmerrors.InvalidLiteral("map entry", elt.Prim, opcode)
		}
		k, err := evalLiteral(*elt.Args[0].Node, keyType, opcode)
		if err != nil {
			return nil, err
		}
		v, err := evalLiteral(*elt.Args[1].Node, valType, opcode)
		if err != nil {
			return nil, err
		}
		out = append(out, vmvalue.MapEntry{Key: k, Val: v})
	}
	return out, nil
}

func decodeHex(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, vmerrors.New(vmerrors.KindInvalidLiteral, "odd-length hex string")
	}
	out := make([]byte, len(s)/2)
	for i := 0; i < len(out); i++ {
		hi, ok1 := hexVal(s[2*i])
		lo, ok2 := hexVal(s[2*i+1])
		if !ok1 || !ok2 {
			return nil, vmerrors.New(vmerrors.KindInvalidLiteral, "invalid hex digit")
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
